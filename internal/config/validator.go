package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"contractimport/database"
	"contractimport/importer"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errs []string

	// Входные данные
	if c.InputPath == "" {
		errs = append(errs, "input path is required")
	}

	// Валидация базы данных
	switch c.DBDriver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		errs = append(errs, fmt.Sprintf("invalid db driver: %s (valid: %s, %s)",
			c.DBDriver, database.DriverSQLite, database.DriverPostgres))
	}
	if c.DBDSN == "" {
		errs = append(errs, "db dsn is required")
	}

	// Валидация connection pooling
	if c.MaxOpenConns < 1 {
		errs = append(errs, "max open connections must be at least 1")
	}
	if c.MaxIdleConns < 1 {
		errs = append(errs, "max idle connections must be at least 1")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		errs = append(errs, "max idle connections cannot be greater than max open connections")
	}
	if c.ConnMaxLifetime < time.Second {
		errs = append(errs, "connection max lifetime must be at least 1 second")
	}

	// Валидация уровня логирования
	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	if c.LogLevel != "" {
		valid := false
		logLevelUpper := strings.ToUpper(c.LogLevel)
		for _, level := range validLogLevels {
			if logLevelUpper == level {
				valid = true
				break
			}
		}
		if !valid {
			errs = append(errs, fmt.Sprintf("invalid log level: %s (valid: %s)",
				c.LogLevel, strings.Join(validLogLevels, ", ")))
		}
	}

	// Годы
	if c.TargetYear < 2000 || c.TargetYear > 2100 {
		errs = append(errs, fmt.Sprintf("target year must be between 2000 and 2100, got %d", c.TargetYear))
	}
	if c.DocumentYear < 2000 || c.DocumentYear > 2100 {
		errs = append(errs, fmt.Sprintf("document year must be between 2000 and 2100, got %d", c.DocumentYear))
	}

	// Секции
	if len(c.Sections) == 0 {
		errs = append(errs, "at least one section is required")
	}
	seen := make(map[string]bool, len(c.Sections))
	for i, s := range c.Sections {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("section %d has no name", i+1))
			continue
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Sprintf("duplicate section: %s", s.Name))
		}
		seen[s.Name] = true
		if len(s.Markers) == 0 {
			errs = append(errs, fmt.Sprintf("section %s has no markers", s.Name))
		}
		if s.WarehouseID != "" && s.BranchID == "" {
			errs = append(errs, fmt.Sprintf("section %s has a warehouse but no branch", s.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return nil
}

// GetDefaults возвращает конфигурацию со значениями по умолчанию
func GetDefaults() *Config {
	return &Config{
		InputPath:         "contracts_export.csv",
		DocumentsRoot:     "documents",
		StorageRoot:       "storage",
		DBDriver:          database.DriverSQLite,
		DBDSN:             "contracts.db",
		MaxOpenConns:      10,
		MaxIdleConns:      5,
		ConnMaxLifetime:   5 * time.Minute,
		LogLevel:          "INFO",
		TargetYear:        importer.DefaultTargetYear,
		DocumentYear:      time.Now().Year(),
		Sections:          importer.DefaultSections(),
		ClearBeforeImport: true,
	}
}
