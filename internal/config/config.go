// Package config resolves runtime settings from defaults, an optional TOML
// file and NEPTUNE_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	appName         = "neptune"
	defaultFileName = "Neptune.todo"
	journalOff      = "off"
)

type RuntimeConfig struct {
	DefaultFile     string
	StateDir        string
	JournalPath     string
	ReloadDebounce  time.Duration
	BackupCorrupt   bool
	ShowCompleted   bool
	LogLevel        string
	LogFormat       string
	SchedulerBuffer int
}

// JournalEnabled reports whether lifecycle changes should be recorded.
func (c RuntimeConfig) JournalEnabled() bool {
	return c.JournalPath != ""
}

// LogPath is where the terminal UI sends its log output.
func (c RuntimeConfig) LogPath() string {
	return filepath.Join(c.StateDir, appName+".log")
}

// File mirrors config.toml.
type File struct {
	DefaultFile    string  `toml:"default-file"`
	StateDir       string  `toml:"state-dir"`
	Journal        string  `toml:"journal"`
	ReloadDebounce string  `toml:"reload-debounce"`
	BackupCorrupt  bool    `toml:"backup-corrupt"`
	ShowCompleted  bool    `toml:"show-completed"`
	Log            FileLog `toml:"log"`
}

type FileLog struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	stateDir := defaultStateDir()
	return RuntimeConfig{
		DefaultFile:     filepath.Join(defaultConfigDir(), defaultFileName),
		StateDir:        stateDir,
		JournalPath:     filepath.Join(stateDir, "journal.db"),
		ReloadDebounce:  100 * time.Millisecond,
		BackupCorrupt:   true,
		ShowCompleted:   false,
		LogLevel:        "info",
		LogFormat:       "text",
		SchedulerBuffer: 4,
	}
}

// Load layers the config file and the environment over the defaults.
func Load() (RuntimeConfig, error) {
	cfg, err := RuntimeConfigFromFile(DefaultRuntimeConfig(), ConfigPath())
	if err != nil {
		return RuntimeConfig{}, err
	}
	return RuntimeConfigFromEnv(cfg), nil
}

// ConfigPath is NEPTUNE_CONFIG when set, else config.toml in the user config
// directory.
func ConfigPath() string {
	if v := strings.TrimSpace(os.Getenv("NEPTUNE_CONFIG")); v != "" {
		return v
	}
	return filepath.Join(defaultConfigDir(), "config.toml")
}

// RuntimeConfigFromFile applies the keys defined in the TOML file at path. A
// missing file leaves base untouched.
func RuntimeConfigFromFile(base RuntimeConfig, path string) (RuntimeConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return base, nil
	}
	if err != nil {
		return base, fmt.Errorf("read config file %s: %w", path, err)
	}

	var file File
	meta, err := toml.Decode(string(data), &file)
	if err != nil {
		return base, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg := base
	stateDirChanged := false
	if meta.IsDefined("state-dir") {
		cfg.StateDir = expandHome(file.StateDir)
		stateDirChanged = true
	}
	if meta.IsDefined("default-file") {
		cfg.DefaultFile = expandHome(file.DefaultFile)
	}
	if meta.IsDefined("journal") {
		cfg.JournalPath = journalPath(file.Journal)
	} else if stateDirChanged {
		cfg.JournalPath = filepath.Join(cfg.StateDir, "journal.db")
	}
	if meta.IsDefined("reload-debounce") {
		d, err := time.ParseDuration(strings.TrimSpace(file.ReloadDebounce))
		if err != nil || d < 0 {
			return base, fmt.Errorf("parse config file %s: invalid reload-debounce %q", path, file.ReloadDebounce)
		}
		cfg.ReloadDebounce = d
	}
	if meta.IsDefined("backup-corrupt") {
		cfg.BackupCorrupt = file.BackupCorrupt
	}
	if meta.IsDefined("show-completed") {
		cfg.ShowCompleted = file.ShowCompleted
	}
	if meta.IsDefined("log", "level") {
		cfg.LogLevel = strings.TrimSpace(file.Log.Level)
	}
	if meta.IsDefined("log", "format") {
		cfg.LogFormat = strings.TrimSpace(file.Log.Format)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parse config file %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("NEPTUNE_STATE_DIR"); ok {
		cfg.StateDir = v
		if _, journalSet := getEnvString("NEPTUNE_JOURNAL"); !journalSet && base.JournalPath == filepath.Join(base.StateDir, "journal.db") {
			cfg.JournalPath = filepath.Join(v, "journal.db")
		}
	}
	if v, ok := getEnvString("NEPTUNE_FILE"); ok {
		cfg.DefaultFile = v
	}
	if v, ok := getEnvString("NEPTUNE_JOURNAL"); ok {
		cfg.JournalPath = journalPath(v)
	}
	if v, ok := getEnvDuration("NEPTUNE_RELOAD_DEBOUNCE"); ok && v >= 0 {
		cfg.ReloadDebounce = v
	}
	if v, ok := getEnvBool("NEPTUNE_BACKUP_CORRUPT"); ok {
		cfg.BackupCorrupt = v
	}
	if v, ok := getEnvBool("NEPTUNE_SHOW_COMPLETED"); ok {
		cfg.ShowCompleted = v
	}
	if v, ok := getEnvString("NEPTUNE_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvString("NEPTUNE_LOG_FORMAT"); ok {
		cfg.LogFormat = v
	}
	if v, ok := getEnvInt("NEPTUNE_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	return cfg
}

func journalPath(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, journalOff) {
		return ""
	}
	return expandHome(v)
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, appName)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", appName)
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return expandHome(raw), true
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, true
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
