package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"contractimport/importer"
)

func TestConfigLogLevelValidation(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		wantError bool
	}{
		{"Valid DEBUG", "DEBUG", false},
		{"Valid INFO", "INFO", false},
		{"Valid WARN", "WARN", false},
		{"Valid ERROR", "ERROR", false},
		{"Valid lowercase debug", "debug", false},
		{"Invalid value", "INVALID", true},
		{"Empty string", "", false}, // Пустая строка допустима (будет использовано значение по умолчанию)
		{"Mixed case", "DeBuG", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			cfg.LogLevel = tt.logLevel

			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestConfigValidationCollectsErrors(t *testing.T) {
	cfg := GetDefaults()
	cfg.DBDriver = "mysql"
	cfg.DBDSN = ""
	cfg.MaxIdleConns = 50
	cfg.TargetYear = 26
	cfg.Sections = append(cfg.Sections, importer.SectionDef{Name: "baghdad"})

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
	}
	for _, want := range []string{
		"invalid db driver: mysql",
		"db dsn is required",
		"max idle connections cannot be greater",
		"target year must be between",
		"duplicate section: baghdad",
		"section baghdad has no markers",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestConfigDefaultsAreValid(t *testing.T) {
	if err := GetDefaults().Validate(); err != nil {
		t.Errorf("defaults should be valid, got %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("IMPORT_INPUT_PATH", "/data/export.csv")
	t.Setenv("IMPORT_DB_DRIVER", "pgx")
	t.Setenv("IMPORT_DB_DSN", "postgres://localhost/contracts")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("IMPORT_TARGET_YEAR", "2027")
	t.Setenv("IMPORT_CLEAR_BEFORE_IMPORT", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.InputPath != "/data/export.csv" {
		t.Errorf("InputPath = %q", cfg.InputPath)
	}
	if cfg.DBDriver != "pgx" {
		t.Errorf("DBDriver = %q", cfg.DBDriver)
	}
	if cfg.ConnMaxLifetime != 90*time.Second {
		t.Errorf("ConnMaxLifetime = %v", cfg.ConnMaxLifetime)
	}
	if cfg.TargetYear != 2027 {
		t.Errorf("TargetYear = %d", cfg.TargetYear)
	}
	if cfg.ClearBeforeImport {
		t.Error("ClearBeforeImport should be false")
	}
	if cfg.SeedBranches {
		t.Error("SeedBranches should default to false")
	}
	if len(cfg.Sections) != len(importer.DefaultSections()) {
		t.Errorf("expected built-in sections, got %d", len(cfg.Sections))
	}
	if cfg.SlogLevel().String() != "DEBUG" {
		t.Errorf("SlogLevel() = %v", cfg.SlogLevel())
	}

	opts := cfg.PipelineOptions()
	if opts.InputPath != cfg.InputPath || opts.TargetYear != 2027 || opts.ClearBeforeImport {
		t.Errorf("PipelineOptions() = %+v", opts)
	}
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "IMPORT_STORAGE_ROOT=/srv/storage\nIMPORT_DOCUMENT_YEAR=2025\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("IMPORT_STORAGE_ROOT", "")
	os.Unsetenv("IMPORT_STORAGE_ROOT")
	// уже заданные переменные не перезаписываются
	t.Setenv("IMPORT_DOCUMENT_YEAR", "2024")

	cfg, err := LoadConfig(envFile)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.StorageRoot != "/srv/storage" {
		t.Errorf("StorageRoot = %q", cfg.StorageRoot)
	}
	if cfg.DocumentYear != 2024 {
		t.Errorf("DocumentYear = %d, environment should win", cfg.DocumentYear)
	}
}

func TestLoadSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.yaml")
	content := `sections:
  - name: mosul
    markers: ["مستودع الموصل", "MOSUL WAREHOUSE"]
    beneficiary: شركة نينوى
    destination: الموصل
    branch_id: BR-MSL
    warehouse_id: WH-MSL-01
  - name: transit
    markers: ["ترانزيت"]
    destination: ترانزيت
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("IMPORT_SECTIONS_FILE", path)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(cfg.Sections))
	}
	mosul := cfg.Sections[0]
	if mosul.BranchID != "BR-MSL" || mosul.WarehouseID != "WH-MSL-01" || len(mosul.Markers) != 2 {
		t.Errorf("unexpected section: %+v", mosul)
	}
	if cfg.Sections[1].BranchID != "" {
		t.Errorf("transit section should have no branch")
	}
}

func TestLoadSectionsMissingFile(t *testing.T) {
	if _, err := LoadSections(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
