package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type ReportConfig struct {
	ReferenceYear int `mapstructure:"reference_year"`
	PageSize      int `mapstructure:"page_size"`
}

type SeedConfig struct {
	SourceURL  string        `mapstructure:"source_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
	OnStartup  bool          `mapstructure:"on_startup"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Report   ReportConfig   `mapstructure:"report"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Log      LogConfig      `mapstructure:"log"`
}

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.backend", BackendSQLite)
	v.SetDefault("database.path", "./data/transactions.db")
	v.SetDefault("database.log_mode", false)

	// the default seed dataset is dated 2021
	v.SetDefault("report.reference_year", 2021)
	v.SetDefault("report.page_size", 10)

	v.SetDefault("seed.source_url", "https://s3.amazonaws.com/roxiler.com/product_transaction.json")
	v.SetDefault("seed.timeout", 30*time.Second)
	v.SetDefault("seed.retry_count", 2)
	v.SetDefault("seed.on_startup", false)

	v.SetDefault("log.level", "info")
}

// Load reads configuration from path (e.g. "config.yaml"), falling back to
// defaults when no file exists. A .env file in the working directory is
// loaded first; environment variables override both, e.g. TXR_SERVER_PORT=9000.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("TXR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Sprintf("invalid server mode '%s': must be one of debug, release, test", c.Server.Mode))
	}

	switch c.Database.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Database.Path == "" {
			errs = append(errs, "database path cannot be empty when using sqlite backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid database backend '%s': must be one of %s, %s", c.Database.Backend, BackendMemory, BackendSQLite))
	}

	if c.Report.ReferenceYear < 1970 || c.Report.ReferenceYear > 9999 {
		errs = append(errs, fmt.Sprintf("invalid reference year %d", c.Report.ReferenceYear))
	}
	if c.Report.PageSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid page size %d: must be at least 1", c.Report.PageSize))
	}

	if c.Seed.SourceURL == "" {
		errs = append(errs, "seed source URL cannot be empty")
	}
	if c.Seed.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("invalid seed timeout %v: must be positive", c.Seed.Timeout))
	}
	if c.Seed.RetryCount < 0 {
		errs = append(errs, fmt.Sprintf("invalid seed retry count %d: must not be negative", c.Seed.RetryCount))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s'", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
