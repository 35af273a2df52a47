package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, name := range []string{
		"NEPTUNE_CONFIG", "NEPTUNE_FILE", "NEPTUNE_STATE_DIR", "NEPTUNE_JOURNAL",
		"NEPTUNE_RELOAD_DEBOUNCE", "NEPTUNE_BACKUP_CORRUPT", "NEPTUNE_SHOW_COMPLETED",
		"NEPTUNE_LOG_LEVEL", "NEPTUNE_LOG_FORMAT", "NEPTUNE_SCHEDULER_BUFFER",
	} {
		t.Setenv(name, "")
	}
	return home
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRuntimeConfigDefaults(t *testing.T) {
	home := setupTestHome(t)
	cfg := DefaultRuntimeConfig()
	if cfg.DefaultFile != filepath.Join(home, ".config", "neptune", "Neptune.todo") {
		t.Fatalf("unexpected default file: %s", cfg.DefaultFile)
	}
	if cfg.StateDir != filepath.Join(home, ".local", "state", "neptune") {
		t.Fatalf("unexpected state dir: %s", cfg.StateDir)
	}
	if cfg.JournalPath != filepath.Join(cfg.StateDir, "journal.db") || !cfg.JournalEnabled() {
		t.Fatalf("unexpected journal default: %+v", cfg)
	}
	if cfg.ReloadDebounce != 100*time.Millisecond || !cfg.BackupCorrupt || cfg.ShowCompleted {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" || cfg.SchedulerBuffer != 4 {
		t.Fatalf("unexpected log defaults: %+v", cfg)
	}
	if cfg.LogPath() != filepath.Join(cfg.StateDir, "neptune.log") {
		t.Fatalf("unexpected log path: %s", cfg.LogPath())
	}
}

func TestRuntimeConfigFromEnv(t *testing.T) {
	home := setupTestHome(t)
	t.Setenv("NEPTUNE_FILE", "~/lists/work.todo")
	t.Setenv("NEPTUNE_STATE_DIR", "/tmp/neptune-state")
	t.Setenv("NEPTUNE_RELOAD_DEBOUNCE", "250")
	t.Setenv("NEPTUNE_BACKUP_CORRUPT", "off")
	t.Setenv("NEPTUNE_SHOW_COMPLETED", "yes")
	t.Setenv("NEPTUNE_LOG_LEVEL", "debug")
	t.Setenv("NEPTUNE_LOG_FORMAT", "json")
	t.Setenv("NEPTUNE_SCHEDULER_BUFFER", "16")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if cfg.DefaultFile != filepath.Join(home, "lists", "work.todo") {
		t.Fatalf("expected home expansion, got %s", cfg.DefaultFile)
	}
	if cfg.StateDir != "/tmp/neptune-state" || cfg.JournalPath != "/tmp/neptune-state/journal.db" {
		t.Fatalf("expected journal to follow state dir: %+v", cfg)
	}
	if cfg.ReloadDebounce != 250*time.Millisecond {
		t.Fatalf("expected bare number as milliseconds, got %s", cfg.ReloadDebounce)
	}
	if cfg.BackupCorrupt || !cfg.ShowCompleted {
		t.Fatalf("unexpected bool overrides: %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" || cfg.SchedulerBuffer != 16 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestJournalCanBeDisabled(t *testing.T) {
	setupTestHome(t)
	t.Setenv("NEPTUNE_JOURNAL", "off")
	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if cfg.JournalEnabled() {
		t.Fatalf("expected journal disabled, got %q", cfg.JournalPath)
	}
}

func TestInvalidEnvValuesAreIgnored(t *testing.T) {
	setupTestHome(t)
	t.Setenv("NEPTUNE_RELOAD_DEBOUNCE", "soon")
	t.Setenv("NEPTUNE_BACKUP_CORRUPT", "maybe")
	t.Setenv("NEPTUNE_SCHEDULER_BUFFER", "-3")
	base := DefaultRuntimeConfig()
	cfg := RuntimeConfigFromEnv(base)
	if cfg != base {
		t.Fatalf("expected invalid values to leave config untouched, got %+v", cfg)
	}
}

func TestRuntimeConfigFromFile(t *testing.T) {
	setupTestHome(t)
	path := writeConfig(t, `
default-file = "/data/main.todo"
state-dir = "/var/lib/neptune"
reload-debounce = "0s"
backup-corrupt = false
show-completed = true

[log]
level = "warn"
format = "logfmt"
`)
	cfg, err := RuntimeConfigFromFile(DefaultRuntimeConfig(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultFile != "/data/main.todo" || cfg.StateDir != "/var/lib/neptune" {
		t.Fatalf("unexpected paths: %+v", cfg)
	}
	if cfg.JournalPath != "/var/lib/neptune/journal.db" {
		t.Fatalf("expected journal under configured state dir, got %s", cfg.JournalPath)
	}
	if cfg.ReloadDebounce != 0 || cfg.BackupCorrupt || !cfg.ShowCompleted {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || cfg.LogFormat != "logfmt" {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
}

func TestRuntimeConfigFromFileKeepsUndefinedKeys(t *testing.T) {
	setupTestHome(t)
	path := writeConfig(t, `show-completed = true`)
	base := DefaultRuntimeConfig()
	cfg, err := RuntimeConfigFromFile(base, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.BackupCorrupt || cfg.ReloadDebounce != base.ReloadDebounce {
		t.Fatalf("expected undefined keys to keep defaults, got %+v", cfg)
	}
}

func TestRuntimeConfigFromFileErrors(t *testing.T) {
	setupTestHome(t)
	cases := map[string]string{
		"syntax":       `default-file = `,
		"unknown key":  `colour = "blue"`,
		"bad debounce": `reload-debounce = "later"`,
	}
	for name, content := range cases {
		if _, err := RuntimeConfigFromFile(DefaultRuntimeConfig(), writeConfig(t, content)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadUsesConfigEnvAndPrecedence(t *testing.T) {
	setupTestHome(t)
	path := writeConfig(t, "[log]\nlevel = \"warn\"\n")
	t.Setenv("NEPTUNE_CONFIG", path)
	t.Setenv("NEPTUNE_LOG_LEVEL", "error")

	if ConfigPath() != path {
		t.Fatalf("expected NEPTUNE_CONFIG to select the file, got %s", ConfigPath())
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("expected env to win over file, got %s", cfg.LogLevel)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := setupTestHome(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.HasPrefix(cfg.DefaultFile, home) {
		t.Fatalf("expected default file under home, got %s", cfg.DefaultFile)
	}
}
