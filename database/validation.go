package database

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// tableNamePattern паттерн для валидации имен таблиц (alphanumeric + underscore)
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateTableName проверяет, что имя таблицы безопасно для использования в SQL запросах.
// Имя должно соответствовать паттерну и входить в схему импорта.
func ValidateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name format: %s", name)
	}
	if !knownTables[name] {
		return fmt.Errorf("table name '%s' is not in allowed list. Allowed tables: %v", name, getKeys(knownTables))
	}
	return nil
}

// getKeys возвращает ключи из map (для сообщений об ошибках)
func getKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// splitStatements splits a DDL script on ';'. The schema has no string
// literals containing semicolons.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
