package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"contractimport/database"
	"contractimport/importer"
	"contractimport/pipeline"
)

// Config конфигурация импорта
type Config struct {
	// Входные данные
	InputPath     string `json:"input_path"`
	DocumentsRoot string `json:"documents_root"`
	StorageRoot   string `json:"storage_root"`

	// База данных
	DBDriver string `json:"db_driver"`
	DBDSN    string `json:"db_dsn"`

	// Connection pooling
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Логирование
	LogLevel string `json:"log_level"`

	// Разбор
	TargetYear   int                   `json:"target_year"`
	DocumentYear int                   `json:"document_year"`
	SectionsFile string                `json:"sections_file"`
	Sections     []importer.SectionDef `json:"-"`

	ReportXLSX        string `json:"report_xlsx"`
	ClearBeforeImport bool   `json:"clear_before_import"`
	SeedBranches      bool   `json:"seed_branches"`
}

// DefaultEnvFiles are read, when present, before the environment.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadConfig загружает конфигурацию из .env файлов и переменных окружения
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	if n, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	} else if n > 0 {
		slog.Debug("Loaded env files", "count", n)
	}

	config := &Config{
		InputPath:     getEnv("IMPORT_INPUT_PATH", "contracts_export.csv"),
		DocumentsRoot: getEnv("IMPORT_DOCUMENTS_ROOT", "documents"),
		StorageRoot:   getEnv("IMPORT_STORAGE_ROOT", "storage"),

		DBDriver: getEnv("IMPORT_DB_DRIVER", database.DriverSQLite),
		DBDSN:    getEnv("IMPORT_DB_DSN", "contracts.db"),

		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		TargetYear:   getEnvInt("IMPORT_TARGET_YEAR", importer.DefaultTargetYear),
		DocumentYear: getEnvInt("IMPORT_DOCUMENT_YEAR", time.Now().Year()),
		SectionsFile: os.Getenv("IMPORT_SECTIONS_FILE"),

		ReportXLSX:        os.Getenv("IMPORT_REPORT_XLSX"),
		ClearBeforeImport: getEnvBool("IMPORT_CLEAR_BEFORE_IMPORT", true),
		SeedBranches:      getEnvBool("IMPORT_SEED_BRANCHES", false),
	}

	config.Sections = importer.DefaultSections()
	if config.SectionsFile != "" {
		sections, err := LoadSections(config.SectionsFile)
		if err != nil {
			return nil, err
		}
		config.Sections = sections
	}

	// Валидация
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadEnv loads the env files that exist and returns how many were read.
// Variables already set in the environment win.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

type sectionsFile struct {
	Sections []importer.SectionDef `yaml:"sections"`
}

// LoadSections reads the section table from a YAML file:
//
//	sections:
//	  - name: baghdad
//	    markers: ["مستودع بغداد"]
//	    branch_id: BR-BGW
func LoadSections(path string) ([]importer.SectionDef, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sections file: %w", err)
	}
	defer file.Close()

	var doc sectionsFile
	if err := yaml.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode sections file %s: %w", path, err)
	}
	return doc.Sections, nil
}

// DBConfig returns the connection pool settings.
func (c *Config) DBConfig() database.DBConfig {
	return database.DBConfig{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

// PipelineOptions returns the options of one import run.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		InputPath:         c.InputPath,
		DocumentsRoot:     c.DocumentsRoot,
		StorageRoot:       c.StorageRoot,
		TargetYear:        c.TargetYear,
		DocumentYear:      c.DocumentYear,
		Sections:          c.Sections,
		ClearBeforeImport: c.ClearBeforeImport,
		SeedBranches:      c.SeedBranches,
		ReportXLSX:        c.ReportXLSX,
	}
}

// SlogLevel maps LogLevel to a slog level, INFO when unset.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool получает переменную окружения как bool или возвращает значение по умолчанию
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
