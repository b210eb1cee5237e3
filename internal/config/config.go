package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/sqlmeta/internal/audit"
	"github.com/sadopc/sqlmeta/internal/metadata"
)

// KeyringService is the OS keyring service passwords are stored under.
const KeyringService = "sqlmeta"

// Output formats accepted by output.format.
var OutputFormats = []string{"text", "json", "csv", "table"}

var (
	ErrConnectionNotFound = errors.New("saved connection not found")
	ErrInvalidConfig      = errors.New("invalid config")
)

// Config holds all application configuration.
type Config struct {
	Theme       string            `yaml:"theme"`
	LogLevel    string            `yaml:"log_level"`
	Timeout     time.Duration     `yaml:"timeout"`
	Output      OutputConfig      `yaml:"output"`
	History     HistoryConfig     `yaml:"history"`
	Audit       AuditConfig       `yaml:"audit"`
	Connections []SavedConnection `yaml:"connections"`
}

// OutputConfig holds result rendering settings.
type OutputConfig struct {
	Format string `yaml:"format"`
	// FuzzyLimit caps the number of tables kept by --filter. Zero keeps all matches.
	FuzzyLimit int `yaml:"fuzzy_limit"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// AuditConfig controls the JSONL audit log.
type AuditConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// SavedConnection holds parameters for a saved database connection.
type SavedConnection struct {
	Name     string `yaml:"name"`
	Adapter  string `yaml:"adapter"`
	DSN      string `yaml:"dsn,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`
	File     string `yaml:"file,omitempty"`
	Schema   string `yaml:"schema,omitempty"`
	// Keyring reads the password from the OS keyring when Password is empty.
	Keyring bool `yaml:"keyring,omitempty"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Theme:    "default",
		LogLevel: "warn",
		Timeout:  30 * time.Second,
		Output: OutputConfig{
			Format: "text",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Audit: AuditConfig{
			MaxSizeMB: 10,
		},
	}
}

// ConfigDir returns the sqlmeta configuration directory path, typically
// ~/.config/sqlmeta/.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, "sqlmeta"), nil
}

// DefaultPath returns ConfigDir()/config.yaml.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads a Config from the YAML file at path. If the file does not exist,
// it returns DefaultConfig without error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads configuration from DefaultPath.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the Config to the YAML file at path, creating any necessary
// parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks adapters, the output format, the log level and
// connection name uniqueness.
func (c *Config) Validate() error {
	var errs []error

	if !validFormat(c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format %q: want one of %s",
			c.Output.Format, strings.Join(OutputFormats, ", ")))
	}
	if c.Output.FuzzyLimit < 0 {
		errs = append(errs, fmt.Errorf("output.fuzzy_limit must not be negative"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative"))
	}

	seen := make(map[string]bool, len(c.Connections))
	for i, sc := range c.Connections {
		if sc.Name == "" {
			errs = append(errs, fmt.Errorf("connections[%d]: name is required", i))
		} else if seen[sc.Name] {
			errs = append(errs, fmt.Errorf("connections[%d]: duplicate name %q", i, sc.Name))
		}
		seen[sc.Name] = true

		if _, err := metadata.ParseProvider(sc.Adapter); err != nil {
			errs = append(errs, fmt.Errorf("connections[%d] %q: adapter %q: %w", i, sc.Name, sc.Adapter, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// SlogLevel parses LogLevel. An empty level means warn.
func (c *Config) SlogLevel() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// Find returns the saved connection with the given name.
func (c *Config) Find(name string) (*SavedConnection, error) {
	for i := range c.Connections {
		if c.Connections[i].Name == name {
			return &c.Connections[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, name)
}

func validFormat(f string) bool {
	for _, v := range OutputFormats {
		if v == f {
			return true
		}
	}
	return false
}

// ResolvePassword fills Password from the OS keyring when Keyring is set
// and no password is stored in the file.
func (sc *SavedConnection) ResolvePassword() error {
	if !sc.Keyring || sc.Password != "" {
		return nil
	}
	pw, err := keyring.Get(KeyringService, sc.Name)
	if err != nil {
		return fmt.Errorf("keyring lookup for %q: %w", sc.Name, err)
	}
	sc.Password = pw
	return nil
}

// StorePassword saves password in the OS keyring for this connection.
func (sc *SavedConnection) StorePassword(password string) error {
	if err := keyring.Set(KeyringService, sc.Name, password); err != nil {
		return fmt.Errorf("keyring store for %q: %w", sc.Name, err)
	}
	return nil
}

// AdapterName returns the canonical adapter name, resolving aliases such
// as "pg" or "sqlserver".
func (sc *SavedConnection) AdapterName() string {
	if p, err := metadata.ParseProvider(sc.Adapter); err == nil {
		return string(p)
	}
	return strings.ToLower(sc.Adapter)
}

func isFileAdapter(adapter string) bool {
	return adapter == "sqlite" || adapter == "duckdb"
}

// BuildDSN constructs a connection string from the individual fields of a
// SavedConnection. If DSN is already set, it is returned as-is. For
// file-based adapters (sqlite, duckdb) it returns the File field. For
// network adapters it builds the URL form the adapter accepts.
func (sc *SavedConnection) BuildDSN() string {
	if sc.DSN != "" {
		return sc.DSN
	}

	adapter := sc.AdapterName()
	if isFileAdapter(adapter) {
		return sc.File
	}

	host := sc.Host
	if host == "" {
		host = "localhost"
	}
	if sc.Port > 0 {
		host += ":" + strconv.Itoa(sc.Port)
	}

	u := url.URL{Scheme: adapter, Host: host}
	if sc.User != "" {
		if sc.Password != "" {
			u.User = url.UserPassword(sc.User, sc.Password)
		} else {
			u.User = url.User(sc.User)
		}
	}

	switch adapter {
	case "mssql":
		u.Scheme = "sqlserver"
		if sc.Database != "" {
			u.RawQuery = url.Values{"database": {sc.Database}}.Encode()
		}
	default:
		if sc.Database != "" {
			u.Path = "/" + sc.Database
		}
	}
	return u.String()
}

// DisplayString returns a human-readable representation of the connection,
// formatted as "adapter://host:port/database" for network adapters or
// "adapter://file" for file-based adapters. A connection given as a DSN
// shows the DSN's own target. Credentials are never shown.
func (sc *SavedConnection) DisplayString() string {
	if isFileAdapter(sc.AdapterName()) {
		file := sc.File
		if file == "" {
			file = sc.DSN
		}
		return fmt.Sprintf("%s://%s", sc.Adapter, file)
	}

	if sc.DSN != "" {
		return dsnTarget(sc.DSN)
	}

	host := sc.Host
	if host == "" {
		host = "localhost"
	}

	var location string
	if sc.Port > 0 {
		location = fmt.Sprintf("%s:%d", host, sc.Port)
	} else {
		location = host
	}

	db := sc.Database
	if db != "" {
		return fmt.Sprintf("%s://%s/%s", sc.Adapter, location, db)
	}
	return fmt.Sprintf("%s://%s", sc.Adapter, location)
}

// dsnTarget reduces a URL DSN to scheme, host and database. Other DSN
// forms are shown with their credentials masked.
func dsnTarget(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return audit.SanitizeDSN(dsn)
	}
	target := url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}
	if db := u.Query().Get("database"); db != "" && strings.Trim(u.Path, "/") == "" {
		target.Path = "/" + db
	}
	return target.String()
}
