package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.ScopeRole != DefaultScopeRole {
		t.Fatalf("expected default scope role %q, got %q", DefaultScopeRole, cfg.ScopeRole)
	}
	if cfg.RestoreDays != DefaultRestoreDays {
		t.Fatalf("expected default restore days %d, got %d", DefaultRestoreDays, cfg.RestoreDays)
	}
	if cfg.FetchTags {
		t.Fatal("expected fetch_tags default false")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte(`profile = "ops"
account = "111122223333"
container = "backups"
log_level = "warn"
restore_days = 3
`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Default()
	if err := loadFileIfExists(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Profile != "ops" {
		t.Fatalf("expected profile 'ops', got %q", cfg.Profile)
	}
	if cfg.Account != "111122223333" {
		t.Fatalf("expected account, got %q", cfg.Account)
	}
	if cfg.Container != "backups" {
		t.Fatalf("expected container 'backups', got %q", cfg.Container)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected log_level 'warn', got %q", cfg.LogLevel)
	}
	if cfg.RestoreDays != 3 {
		t.Fatalf("expected restore_days 3, got %d", cfg.RestoreDays)
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg := Default()
	if err := loadFileIfExists(filepath.Join(t.TempDir(), "nope.toml"), &cfg); err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configDirEnvKey, t.TempDir())
	t.Setenv("TIERSWEEP_PROFILE", "env-profile")
	t.Setenv("TIERSWEEP_ACCOUNT", "444455556666")
	t.Setenv("TIERSWEEP_DB", "/tmp/override.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Profile != "env-profile" {
		t.Fatalf("expected env profile, got %q", cfg.Profile)
	}
	if cfg.Account != "444455556666" {
		t.Fatalf("expected env account, got %q", cfg.Account)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	t.Setenv(configDirEnvKey, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath == "" || filepath.Base(cfg.DBPath) != DefaultDBFileName {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.AuditDir == "" || filepath.Base(cfg.AuditDir) != DefaultAuditDirName {
		t.Fatalf("expected default audit dir, got %q", cfg.AuditDir)
	}
}

func TestSetKeyAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)

	if err := SetKey(path, "container", "backups"); err != nil {
		t.Fatalf("set container: %v", err)
	}
	if err := SetKey(path, "restore_days", "14"); err != nil {
		t.Fatalf("set restore_days: %v", err)
	}

	cfg := Default()
	if err := loadFileIfExists(path, &cfg); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got, _ := cfg.Get("container"); got != "backups" {
		t.Fatalf("expected 'backups', got %q", got)
	}
	if got, _ := cfg.Get("restore_days"); got != "14" {
		t.Fatalf("expected '14', got %q", got)
	}
}

func TestSetKeyRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)

	if err := SetKey(path, "not_a_key", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if err := SetKey(path, "restore_days", "zero"); err == nil {
		t.Fatal("expected error for non-integer restore_days")
	}
	if err := SetKey(path, "restore_days", "-1"); err == nil {
		t.Fatal("expected error for negative restore_days")
	}
	if err := SetKey(path, "fetch_tags", "maybe"); err == nil {
		t.Fatal("expected error for non-boolean fetch_tags")
	}
}
