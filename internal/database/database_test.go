package database

import (
	"strings"
	"testing"

	"storefront/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "app",
		Password: "p@ss/word",
		Database: "storefront",
		Schema:   "public",
	})

	if !strings.HasPrefix(dsn, "postgres://app:p%40ss%2Fword@db:5432/storefront?") {
		t.Errorf("unexpected DSN %q", dsn)
	}
	if !strings.Contains(dsn, "sslmode=disable") || !strings.Contains(dsn, "search_path=public") {
		t.Errorf("DSN missing query options: %q", dsn)
	}
}
