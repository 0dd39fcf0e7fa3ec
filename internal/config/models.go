package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete ampwatch configuration.
// Field names double as viper keys (mapstructure) and YAML keys for `config init`.
type Config struct {
	Capture     CaptureConfig     `mapstructure:"capture" yaml:"capture"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	LineVoltage float64           `mapstructure:"lineVoltage" yaml:"lineVoltage"`
	Senders     map[string]string `mapstructure:"senders" yaml:"senders,omitempty"` // sender id -> display name
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Store       StoreConfig       `mapstructure:"store" yaml:"store"`
	MQTT        MQTTConfig        `mapstructure:"mqtt" yaml:"mqtt"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
}

// CaptureConfig bounds the nibble count of captures worth decoding
type CaptureConfig struct {
	MinLength int `mapstructure:"minLength" yaml:"minLength"`
	MaxLength int `mapstructure:"maxLength" yaml:"maxLength"`
}

// OutputConfig controls how readings are printed
type OutputConfig struct {
	Format    string `mapstructure:"format" yaml:"format"` // text, json or detailed
	ValidOnly bool   `mapstructure:"validOnly" yaml:"validOnly"`
	Color     string `mapstructure:"color" yaml:"color"` // auto, always or never
}

// LumberjackConfig configures log file rotation
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename" yaml:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize" yaml:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups" yaml:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge" yaml:"maxAge"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// LoggingConfig holds the log level and outputs
type LoggingConfig struct {
	Level  string           `mapstructure:"level" yaml:"level"`
	Format string           `mapstructure:"format" yaml:"format"`
	File   LumberjackConfig `mapstructure:"file" yaml:"file"`
}

// StoreConfig locates the SQLite reading history. An empty path disables it.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MQTTConfig configures reading publication. An empty broker disables it.
type MQTTConfig struct {
	Broker      string        `mapstructure:"broker" yaml:"broker"`
	ClientID    string        `mapstructure:"clientId" yaml:"clientId"`
	Username    string        `mapstructure:"username" yaml:"username"`
	Password    string        `mapstructure:"password" yaml:"password"`
	TopicPrefix string        `mapstructure:"topicPrefix" yaml:"topicPrefix"`
	QoS         int           `mapstructure:"qos" yaml:"qos"`
	Retain      bool          `mapstructure:"retain" yaml:"retain"`
	MinInterval time.Duration `mapstructure:"minInterval" yaml:"minInterval"`
}

// ServerConfig configures the HTTP API and live feed. An empty listen address
// disables it.
type ServerConfig struct {
	Listen          string        `mapstructure:"listen" yaml:"listen"`
	Advertise       bool          `mapstructure:"advertise" yaml:"advertise"`
	Instance        string        `mapstructure:"instance" yaml:"instance"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout" yaml:"readTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout" yaml:"shutdownTimeout"`
}

// Output formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatDetailed = "detailed"
)

// Colour modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default returns the configuration used when no file or override is present.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			MinLength: 191,
			MaxLength: 219,
		},
		Output: OutputConfig{
			Format: FormatText,
			Color:  ColorAuto,
		},
		LineVoltage: 239,
		Logging: LoggingConfig{
			Format: "console",
			File: LumberjackConfig{
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 30,
			},
		},
		MQTT: MQTTConfig{
			TopicPrefix: "ampwatch",
			QoS:         0,
			MinInterval: 10 * time.Second,
		},
		Server: ServerConfig{
			Instance:        "ampwatch",
			ReadTimeout:     5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if c.Capture.MinLength < 0 || c.Capture.MaxLength < c.Capture.MinLength {
		return fmt.Errorf("capture length bounds %d..%d are invalid", c.Capture.MinLength, c.Capture.MaxLength)
	}

	switch strings.ToLower(c.Output.Format) {
	case FormatText, FormatJSON, FormatDetailed:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or detailed)", c.Output.Format)
	}

	switch strings.ToLower(c.Output.Color) {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", c.Output.Color)
	}

	if c.LineVoltage <= 0 {
		return fmt.Errorf("lineVoltage must be positive, got %v", c.LineVoltage)
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	if c.MQTT.MinInterval < 0 {
		return fmt.Errorf("mqtt minInterval must not be negative")
	}

	return nil
}

// SenderName returns the configured display name for a sender id, or the id itself.
func (c *Config) SenderName(senderID string) string {
	if name, ok := c.Senders[strings.ToLower(senderID)]; ok && name != "" {
		return name
	}
	return senderID
}

// Redacted returns a copy safe to print, with credentials masked.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.MQTT.Password != "" {
		cp.MQTT.Password = "********"
	}
	return &cp
}
