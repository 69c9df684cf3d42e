package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"phone-shop/internal/logger"
	"phone-shop/internal/money"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
	Output     string `mapstructure:"output"`
}

type ToleranceConfig struct {
	USD float64 `mapstructure:"usd"`
	LC  float64 `mapstructure:"lc"`
}

type LedgerConfig struct {
	// DefaultRate is LC per USD, used until a rate is configured.
	DefaultRate float64 `mapstructure:"default_rate"`
	Tolerance   struct {
		Customer ToleranceConfig `mapstructure:"customer"`
		Company  ToleranceConfig `mapstructure:"company"`
		Personal ToleranceConfig `mapstructure:"personal"`
	} `mapstructure:"tolerance"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
}

var (
	appConfig *Config
	once      sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "data/shop.db")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "phone-shop")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.time_format", "2006-01-02T15:04:05Z07:00")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("ledger.default_rate", 1440)
	v.SetDefault("ledger.tolerance.customer.usd", 0.01)
	v.SetDefault("ledger.tolerance.customer.lc", 1)
	v.SetDefault("ledger.tolerance.company.usd", 0.01)
	v.SetDefault("ledger.tolerance.company.lc", 250)
	v.SetDefault("ledger.tolerance.personal.usd", 0.01)
	v.SetDefault("ledger.tolerance.personal.lc", 1)
}

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it looks for an optional config.yaml in the working
// directory and falls back to defaults when there is none.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()
		setDefaults(v)

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. PHONESHOP_SERVER_PORT=9000
		v.SetEnvPrefix("PHONESHOP")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		if err = v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if path != "" || !errors.As(err, &notFound) {
				err = fmt.Errorf("read config: %w", err)
				return
			}
			err = nil
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}
		if err = c.validate(); err != nil {
			err = fmt.Errorf("config validation failed: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return &c
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}

func (c *Config) validate() error {
	if c.Ledger.DefaultRate <= 0 {
		return fmt.Errorf("ledger.default_rate must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		TimeFormat: c.Log.TimeFormat,
		Output:     c.Log.Output,
	}
}

// DefaultRateDecimal returns the fallback LC-per-USD rate as a decimal.
func (l LedgerConfig) DefaultRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(l.DefaultRate)
}

// Tolerances converts the configured thresholds.
func (l LedgerConfig) Tolerances() (customer, company, personal money.Tolerance) {
	conv := func(t ToleranceConfig) money.Tolerance {
		return money.Tolerance{USD: decimal.NewFromFloat(t.USD), LC: decimal.NewFromFloat(t.LC)}
	}
	return conv(l.Tolerance.Customer), conv(l.Tolerance.Company), conv(l.Tolerance.Personal)
}
