package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g.
// TEXTEXTRACT_EXTRACTION_POLL_INTERVAL -> extraction.poll_interval.
const EnvPrefix = "TEXTEXTRACT_"

const maxConfigFileSize = 1024 * 1024

// Config holds all application configuration
type Config struct {
	Output     OutputConfig     `koanf:"output"`
	Logging    LoggingConfig    `koanf:"logging"`
	Database   DatabaseConfig   `koanf:"database"`
	Extraction ExtractionConfig `koanf:"extraction"`
	Parser     ParserConfig     `koanf:"parser"`
	History    HistoryConfig    `koanf:"history"`
	Serve      ServeConfig      `koanf:"serve"`
}

// OutputConfig controls where and how reports are written
type OutputConfig struct {
	Folder  string   `koanf:"folder"`
	Formats []string `koanf:"formats"`
}

// LoggingConfig controls the process logger and per-run processing logs
type LoggingConfig struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	Directory string `koanf:"directory"`
}

// DatabaseConfig holds keyword history storage configuration.
// A postgres:// DSN selects Postgres, anything else is a SQLite path.
type DatabaseConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxConns        int32         `koanf:"max_conns"`
	MinConns        int32         `koanf:"min_conns"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time"`
	DialTimeout     time.Duration `koanf:"dial_timeout"`
}

// ExtractionConfig holds extraction and job coordination settings
type ExtractionConfig struct {
	NumberFormat  string        `koanf:"number_format"`
	ProximityRule string        `koanf:"proximity_rule"`
	PollInterval  time.Duration `koanf:"poll_interval"`
	QueueSize     int           `koanf:"queue_size"`
	WaitTimeout   time.Duration `koanf:"wait_timeout"`
	MaxFileSizeMB int           `koanf:"max_file_size_mb"`
}

// ParserConfig holds document parser settings
type ParserConfig struct {
	AntiwordPath     string `koanf:"antiword_path"`
	WordsPerPage     int    `koanf:"words_per_page"`
	ScannedThreshold int    `koanf:"scanned_threshold"`
}

// HistoryConfig bounds the persisted keyword history
type HistoryConfig struct {
	MaxSize int `koanf:"max_size"`
}

// ServeConfig holds daemon settings
type ServeConfig struct {
	WatchDir string        `koanf:"watch_dir"`
	Keywords []string      `koanf:"keywords"`
	Debounce time.Duration `koanf:"debounce"`
	GRPCAddr string        `koanf:"grpc_addr"`
	HTTPAddr string        `koanf:"http_addr"`
}

// DefaultConfigPath returns ~/.config/textextract/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "textextract", "config.yaml")
}

// LoadConfig loads configuration from a YAML file, then overrides with
// TEXTEXTRACT_ environment variables. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		configPath = DefaultConfigPath()
	}

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if content != nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// envTransform maps TEXTEXTRACT_SECTION_FIELD_NAME to section.field_name.
// List-valued keys are split on commas.
func envTransform(key, value string) (string, interface{}) {
	lower := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower, value
	}
	path := parts[0] + "." + parts[1]

	switch path {
	case "serve.keywords", "output.formats":
		items := make([]string, 0)
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return path, items
	}
	return path, value
}

// ApplyDefaults sets default values for missing configuration fields.
func (c *Config) ApplyDefaults() {
	if c.Output.Folder == "" {
		c.Output.Folder = "."
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{"txt"}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = filepath.Join(os.TempDir(), "textextract", "logs")
	}

	if c.Database.DSN == "" {
		c.Database.DSN = defaultDatabasePath()
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 4
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = 1
	}
	if c.Database.MaxConnLifetime == 0 {
		c.Database.MaxConnLifetime = 30 * time.Minute
	}
	if c.Database.MaxConnIdleTime == 0 {
		c.Database.MaxConnIdleTime = 5 * time.Minute
	}
	if c.Database.DialTimeout == 0 {
		c.Database.DialTimeout = 3 * time.Second
	}

	if c.Extraction.NumberFormat == "" {
		c.Extraction.NumberFormat = "us_uk"
	}
	if c.Extraction.ProximityRule == "" {
		c.Extraction.ProximityRule = "next_number"
	}
	if c.Extraction.PollInterval == 0 {
		c.Extraction.PollInterval = 100 * time.Millisecond
	}
	if c.Extraction.QueueSize == 0 {
		c.Extraction.QueueSize = 64
	}
	if c.Extraction.WaitTimeout == 0 {
		c.Extraction.WaitTimeout = 5 * time.Second
	}
	if c.Extraction.MaxFileSizeMB == 0 {
		c.Extraction.MaxFileSizeMB = 50
	}

	if c.Parser.AntiwordPath == "" {
		c.Parser.AntiwordPath = "antiword"
	}
	if c.Parser.WordsPerPage == 0 {
		c.Parser.WordsPerPage = 500
	}
	if c.Parser.ScannedThreshold == 0 {
		c.Parser.ScannedThreshold = 10
	}

	if c.History.MaxSize == 0 {
		c.History.MaxSize = 1000
	}

	if c.Serve.Debounce == 0 {
		c.Serve.Debounce = 500 * time.Millisecond
	}
	if c.Serve.GRPCAddr == "" {
		c.Serve.GRPCAddr = ":8081"
	}
	if c.Serve.HTTPAddr == "" {
		c.Serve.HTTPAddr = ":8080"
	}
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "textextract", "textextract.db")
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("output.folder", c.Output.Folder, Required)
	for _, f := range c.Output.Formats {
		v.Field("output.formats", f, OneOf("txt", "xlsx", "json"))
	}
	v.Field("logging.level", c.Logging.Level, OneOf("debug", "info", "warn", "warning", "error"))
	v.Field("logging.format", c.Logging.Format, OneOf("text", "json"))
	v.Field("database.dsn", c.Database.DSN, Required)
	v.Field("extraction.number_format", c.Extraction.NumberFormat, OneOf("us_uk"))
	v.Field("extraction.proximity_rule", c.Extraction.ProximityRule, OneOf("next_number"))
	v.Field("extraction.poll_interval", c.Extraction.PollInterval, Positive)
	v.Field("extraction.queue_size", c.Extraction.QueueSize, Positive)
	v.Field("extraction.max_file_size_mb", c.Extraction.MaxFileSizeMB, Positive)
	v.Field("parser.words_per_page", c.Parser.WordsPerPage, Positive)
	v.Field("history.max_size", c.History.MaxSize, Positive)
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrValidation)
	}
	return nil
}

// IsPostgresDSN reports whether dsn selects the Postgres backend.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
