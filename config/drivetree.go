package config

import (
	"fmt"
	"net"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Jumpaku/go-drivetree/auth"
	"github.com/Jumpaku/go-drivetree/logging"
)

// Config represents the configuration of the drivetree command.
type Config struct {
	Auth    auth.Config    `yaml:"auth"`
	Log     logging.Config `yaml:"log"`
	Local   LocalConfig    `yaml:"local"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Log.Format, validation.In("json", "console")),
	); err != nil {
		return err
	}
	return c.Metrics.Validate()
}

// LocalConfig holds the local side of transfers.
type LocalConfig struct {
	// BaseDir is the directory relative local paths start from. Empty means the home directory.
	BaseDir string `yaml:"base_dir"`
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	// Listen is the address metrics are served on. Empty disables the endpoint.
	Listen string `yaml:"listen"`
}

// Enabled reports whether metrics are served.
func (c *MetricsConfig) Enabled() bool {
	return c.Listen != ""
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Listen, validation.By(listenAddress)),
	)
}

func listenAddress(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(s); err != nil {
		return fmt.Errorf("must be host:port: %w", err)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Auth: auth.Config{
			Mode:           auth.ModeDefault,
			KeyringService: auth.DefaultKeyringService,
			KeyringUser:    auth.DefaultKeyringUser,
		},
		Log: logging.Config{
			Level:      "warn",
			Format:     "console",
			OutputPath: "stderr",
		},
	}
}
