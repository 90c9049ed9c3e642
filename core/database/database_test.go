package database

import (
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Host: "db", User: "bot", Password: "p@ss", Name: "links"}
	if got := cfg.DSN(); got != "user=bot password=p@ss host=db port=5432 dbname=links sslmode=disable" {
		t.Fatalf("DSN = %q", got)
	}
	if got := cfg.URL(); got != "postgres://bot:p%40ss@db:5432/links?sslmode=disable" {
		t.Fatalf("URL = %q", got)
	}
	if d := cfg.withDefaults(); d.WaitTimeout != 30*time.Second || d.MaxConnections != 4 {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}

func TestMigrationFileSelection(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000001_categories.up.sql":   {Data: []byte("CREATE TABLE x();")},
		"migrations/000001_categories.down.sql": {Data: []byte("DROP TABLE x;")},
		"migrations/000002_links.up.sql":        {Data: []byte("CREATE TABLE y();")},
		"migrations/README":                     {Data: []byte("notes")},
	}
	files := listMigrationFiles(fsys, "migrations")
	if strings.Join(files, ",") != "000001_categories.up.sql,000002_links.up.sql" {
		t.Fatalf("files = %v", files)
	}
	if got := selectApplied(files, 1, 2); len(got) != 1 || got[0] != "000002_links.up.sql" {
		t.Fatalf("applied = %v", got)
	}
	if got := selectApplied(files, 2, 2); got != nil {
		t.Fatalf("expected nothing applied, got %v", got)
	}
}
