// Package config loads tiersweep's TOML configuration from the global file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultDBFileName   = ".tiersweep.db"
	DefaultAuditDirName = "audit"
	DefaultScopeRole    = "OrganizationAccountAccessRole"
	DefaultRestoreDays  = 7
	DefaultLogLevel     = "info"

	configDirEnvKey = "TIERSWEEP_CONFIG_DIR"
	configFileName  = ".tiersweep.toml"
)

// Config defines runtime configuration for tiersweep. Account, container and
// the migration parameters usually arrive as flags or a plan file; the
// config file carries the stable operator defaults.
type Config struct {
	Profile     string `toml:"profile"`
	Account     string `toml:"account"`
	Container   string `toml:"container"`
	AuditDir    string `toml:"audit_dir"`
	DBPath      string `toml:"db_path"`
	LogLevel    string `toml:"log_level"`
	LogFile     string `toml:"log_file"`
	ScopeRole   string `toml:"scope_role"`
	RestoreDays int    `toml:"restore_days"`
	FetchTags   bool   `toml:"fetch_tags"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		LogLevel:    DefaultLogLevel,
		ScopeRole:   DefaultScopeRole,
		RestoreDays: DefaultRestoreDays,
	}
}

// Load reads config from the global file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	if err := loadFileIfExists(path, &cfg); err != nil {
		return nil, err
	}

	if profile := os.Getenv("TIERSWEEP_PROFILE"); profile != "" {
		cfg.Profile = profile
	}
	if account := os.Getenv("TIERSWEEP_ACCOUNT"); account != "" {
		cfg.Account = account
	}
	if dir := os.Getenv("TIERSWEEP_AUDIT_DIR"); dir != "" {
		cfg.AuditDir = dir
	}
	if dbPath := os.Getenv("TIERSWEEP_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

func (c *Config) normalizeDefaults() {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(cwd, DefaultDBFileName)
	}
	if c.AuditDir == "" {
		c.AuditDir = filepath.Join(cwd, DefaultAuditDirName)
	}
	if c.ScopeRole == "" {
		c.ScopeRole = DefaultScopeRole
	}
	if c.RestoreDays <= 0 {
		c.RestoreDays = DefaultRestoreDays
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
}

func loadFileIfExists(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

var allowedKeys = []string{
	"profile",
	"account",
	"container",
	"audit_dir",
	"db_path",
	"log_level",
	"log_file",
	"scope_role",
	"restore_days",
	"fetch_tags",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "profile":
		return c.Profile, nil
	case "account":
		return c.Account, nil
	case "container":
		return c.Container, nil
	case "audit_dir":
		return c.AuditDir, nil
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_file":
		return c.LogFile, nil
	case "scope_role":
		return c.ScopeRole, nil
	case "restore_days":
		return strconv.Itoa(c.RestoreDays), nil
	case "fetch_tags":
		return strconv.FormatBool(c.FetchTags), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	data[key] = parsedValue

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "restore_days":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "fetch_tags":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	default:
		return value, nil
	}
}
