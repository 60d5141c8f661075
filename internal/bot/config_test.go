package bot

import (
	"os"
	"path/filepath"
	"testing"

	coredatabase "github.com/m3rciful/quizbot/core/database"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "telegram:\n  token: test-token\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Backend != BackendFile {
		t.Fatalf("backend = %q", cfg.Store.Backend)
	}
	if cfg.Store.Path == "" {
		t.Fatal("file backend path not defaulted")
	}
	if cfg.Quiz.MaxOptions != 4 {
		t.Fatalf("max options = %d", cfg.Quiz.MaxOptions)
	}
	if cfg.Quiz.IDScheme != "sequential" || cfg.Quiz.IDPrefix != "quiz" {
		t.Fatalf("id settings = %q %q", cfg.Quiz.IDScheme, cfg.Quiz.IDPrefix)
	}
	if cfg.Quiz.CorrectMarker == "" {
		t.Fatal("correct marker not defaulted")
	}
}

func TestLoadConfigSQLiteBackend(t *testing.T) {
	body := "telegram:\n  token: test-token\nstore:\n  backend: sqlite\n"
	cfg, err := LoadConfig(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Driver != coredatabase.DriverSQLite {
		t.Fatalf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Database.Path == "" {
		t.Fatal("sqlite path not defaulted")
	}
}

func TestLoadConfigPostgresRequiresHost(t *testing.T) {
	body := "telegram:\n  token: test-token\nstore:\n  backend: postgres\n"
	if _, err := LoadConfig(writeConfig(t, body)); err == nil {
		t.Fatal("expected error for postgres without host")
	}
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]string{
		"bad backend":     "telegram:\n  token: t\nstore:\n  backend: redis\n",
		"bad scheme":      "telegram:\n  token: t\nquiz:\n  id_scheme: guid\n",
		"options too low": "telegram:\n  token: t\nquiz:\n  max_options: 1\n",
		"negative ttl":    "telegram:\n  token: t\nquiz:\n  session_ttl_minutes: -5\n",
		"missing token":   "logging:\n  level: info\n",
	}
	for name, body := range cases {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
