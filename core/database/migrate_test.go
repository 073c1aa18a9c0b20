package database

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestListMigrationFilesSortsUpOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_items.up.sql", "0001_init.up.sql", "0001_init.down.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	got := listMigrationFiles(dir)
	want := []string{"0001_init.up.sql", "0002_items.up.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("listMigrationFiles = %v, want %v", got, want)
	}
}

func TestAppliedBetween(t *testing.T) {
	files := []string{"0001_init.up.sql", "0002_items.up.sql", "0003_dialogs.up.sql"}
	if got := appliedBetween(files, 1, 3); !reflect.DeepEqual(got, files[1:]) {
		t.Fatalf("appliedBetween(1,3) = %v", got)
	}
	if got := appliedBetween(files, 3, 3); len(got) != 0 {
		t.Fatalf("no change applied %v", got)
	}
	if got := appliedBetween(files, 0, 2); !reflect.DeepEqual(got, files[:2]) {
		t.Fatalf("appliedBetween(0,2) = %v", got)
	}
	if v := fileVersion("0010_pods.up.sql"); v != 10 {
		t.Fatalf("fileVersion = %d", v)
	}
}

func TestConfigURLEscapesPassword(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "pod", Password: "p@ss:word", Name: "foodpod"}
	u := cfg.URL()
	if !strings.HasPrefix(u, "postgres://pod:p%40ss%3Aword@db:5432/foodpod") {
		t.Fatalf("unexpected URL %s", u)
	}
	if !strings.HasSuffix(u, "sslmode=disable") {
		t.Fatalf("expected default sslmode in %s", u)
	}
	if dsn := cfg.DSN(); !strings.Contains(dsn, "sslmode=disable") {
		t.Fatalf("expected default sslmode in DSN %s", dsn)
	}
}
