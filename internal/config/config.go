package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"vmx/internal/variant"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `mapstructure:"projectPath"`
	SuitePath   string `mapstructure:"suitePath"`

	// Output settings
	OutputJSONFile string `mapstructure:"outputJSONFile"`
	OutputJSONDir  string `mapstructure:"outputJSONDir"`
	JUnitFile      string `mapstructure:"junitFile"`
	MetricsFile    string `mapstructure:"metricsFile"`

	// Variant settings
	SupportedVariants []int  `mapstructure:"supportedVariants"`
	EnabledVariants   string `mapstructure:"-"`
	StrictEmpty       bool   `mapstructure:"strictEmpty"`

	// Execution settings
	Processors int  `mapstructure:"processors"`
	FailFast   bool `mapstructure:"failFast"`

	Database DatabaseConfig `mapstructure:"database"`
	LogLevel string         `mapstructure:"logLevel"`

	// Paths to ignore when scanning
	PathsToIgnore []string `mapstructure:"pathsToIgnore"`

	// Command flags
	Flags Flags `mapstructure:"-"`
}

// DatabaseConfig configures the per-context database bootstrapper
type DatabaseConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	DSN     string   `mapstructure:"dsn"`
	Prefix  string   `mapstructure:"prefix"`
	Setup   []string `mapstructure:"setup"`
}

// Flags holds command-line flags
type Flags struct {
	ProjectPath     string
	Processors      int
	Filter          string
	SuitePath       string
	EnabledVariants string
	FailFast        bool
	StrictEmpty     bool
	Shard           string
	JUnitFile       string
	MetricsFile     string
	Database        bool
	OnlyFailed      bool
	RerunFailures   bool
	OpenFailures    bool
	LogLevel        string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		SuitePath:      DefaultSuitePath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Processors:     DefaultProcessors,
		LogLevel:       DefaultLogLevel,
		Database:       DatabaseConfig{Prefix: DefaultDatabasePrefix},
	}
	cfg.SupportedVariants = append([]int(nil), DefaultSupportedVariants...)
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load builds the configuration from <project>/.env, an optional vmx.yaml in
// the project directory, VMX_* environment variables and finally flags.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if flags.ProjectPath != "" {
		cfg.ProjectPath = flags.ProjectPath
	}

	// .env file might not exist, that's okay - use environment variables
	_ = godotenv.Load(filepath.Join(cfg.ProjectPath, ".env"))

	v := newViper(cfg)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		log.WithField("file", v.ConfigFileUsed()).Debug("using config file")
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.EnabledVariants = v.GetString(variant.EnabledProperty)
	cfg.Flags = flags
	cfg.applyFlags()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cfg.ProjectPath)

	v.SetDefault("projectPath", cfg.ProjectPath)
	v.SetDefault("suitePath", cfg.SuitePath)
	v.SetDefault("outputJSONFile", cfg.OutputJSONFile)
	v.SetDefault("outputJSONDir", cfg.OutputJSONDir)
	v.SetDefault("junitFile", "")
	v.SetDefault("metricsFile", "")
	v.SetDefault("supportedVariants", cfg.SupportedVariants)
	v.SetDefault("strictEmpty", false)
	v.SetDefault("processors", cfg.Processors)
	v.SetDefault("failFast", false)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.prefix", cfg.Database.Prefix)
	v.SetDefault("database.setup", []string{})
	v.SetDefault("logLevel", cfg.LogLevel)
	v.SetDefault("pathsToIgnore", cfg.PathsToIgnore)

	// Environment names are spelled out so multi-word keys keep their underscores
	bind := map[string]string{
		"suitePath":             "SUITE_PATH",
		"outputJSONFile":        "OUTPUT_JSON_FILE",
		"outputJSONDir":         "OUTPUT_JSON_DIR",
		"junitFile":             "JUNIT_FILE",
		"metricsFile":           "METRICS_FILE",
		"supportedVariants":     "SUPPORTED_VARIANTS",
		variant.EnabledProperty: "ENABLED_VARIANTS",
		"strictEmpty":           "STRICT_EMPTY",
		"processors":            "PROCESSORS",
		"failFast":              "FAIL_FAST",
		"database.enabled":      "DATABASE",
		"database.dsn":          "DATABASE_DSN",
		"database.prefix":       "DATABASE_PREFIX",
		"database.setup":        "DATABASE_SETUP",
		"logLevel":              "LOG_LEVEL",
	}
	for key, env := range bind {
		_ = v.BindEnv(key, EnvPrefix+"_"+env)
	}
	return v
}

func (c *Config) applyFlags() {
	f := c.Flags
	if f.Processors > 0 {
		c.Processors = f.Processors
	}
	if f.SuitePath != "" {
		c.SuitePath = f.SuitePath
	}
	if f.EnabledVariants != "" {
		c.EnabledVariants = f.EnabledVariants
	}
	if f.JUnitFile != "" {
		c.JUnitFile = f.JUnitFile
	}
	if f.MetricsFile != "" {
		c.MetricsFile = f.MetricsFile
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	c.FailFast = c.FailFast || f.FailFast
	c.StrictEmpty = c.StrictEmpty || f.StrictEmpty
	c.Database.Enabled = c.Database.Enabled || f.Database
}

// Validate checks values that cannot be fixed up later.
func (c *Config) Validate() error {
	if _, err := variant.SupportedFromInts(c.SupportedVariants); err != nil {
		return fmt.Errorf("invalid supportedVariants: %w", err)
	}
	if _, err := variant.ParseEnabled(c.EnabledVariants); err != nil {
		return fmt.Errorf("invalid %s: %w", variant.EnabledProperty, err)
	}
	if c.Processors < 1 {
		return fmt.Errorf("processors must be at least 1, got %d", c.Processors)
	}
	if _, _, err := ParseShard(c.Flags.Shard); err != nil {
		return err
	}
	return nil
}

// Supported returns the configured variant catalog.
func (c *Config) Supported() (*variant.Supported, error) {
	return variant.SupportedFromInts(c.SupportedVariants)
}

// Enabled returns the enabled-variant override, nil when none is set.
func (c *Config) Enabled() (variant.Enabled, error) {
	return variant.ParseEnabled(c.EnabledVariants)
}

// GetSuitePath returns the suite path, relative to the project unless absolute
func (c *Config) GetSuitePath() string {
	if filepath.IsAbs(c.SuitePath) {
		return c.SuitePath
	}
	return filepath.Join(c.ProjectPath, c.SuitePath)
}

// GetOutputPath returns the full path to the output JSON file (under project so run and failures use the same file).
// Resolves to an absolute path so both commands always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetDatabaseDSN returns the configured DSN, or an empty string to fall back to DB_* variables
func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN
}

// ParseShard parses "i/n" with 1 <= i <= n. An empty value means no sharding
// and yields index 0 of 1. The returned index is zero-based.
func ParseShard(s string) (index, total int, err error) {
	if strings.TrimSpace(s) == "" {
		return 0, 1, nil
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid shard %q: expected i/n", s)
	}
	i, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid shard index %q: %w", parts[0], err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid shard count %q: %w", parts[1], err)
	}
	if n < 1 || i < 1 || i > n {
		return 0, 0, fmt.Errorf("invalid shard %q: index must be between 1 and %d", s, n)
	}
	return i - 1, n, nil
}
