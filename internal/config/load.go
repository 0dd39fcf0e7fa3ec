package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (capture.minLength -> AMPWATCH_CAPTURE_MINLENGTH)
const EnvPrefix = "AMPWATCH"

// Load reads configuration from defaults, the YAML file and AMPWATCH_* environment
// variables, in increasing order of precedence.
//
// If path is empty the default location from GetConfigPath is used, and a missing
// file is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if explicit || !missing {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("capture.minLength", d.Capture.MinLength)
	v.SetDefault("capture.maxLength", d.Capture.MaxLength)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.validOnly", d.Output.ValidOnly)
	v.SetDefault("output.color", d.Output.Color)

	v.SetDefault("lineVoltage", d.LineVoltage)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file.filename", d.Logging.File.Filename)
	v.SetDefault("logging.file.maxSize", d.Logging.File.MaxSizeMB)
	v.SetDefault("logging.file.maxBackups", d.Logging.File.MaxBackups)
	v.SetDefault("logging.file.maxAge", d.Logging.File.MaxAgeDays)
	v.SetDefault("logging.file.compress", d.Logging.File.Compress)

	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("mqtt.broker", d.MQTT.Broker)
	v.SetDefault("mqtt.clientId", d.MQTT.ClientID)
	v.SetDefault("mqtt.username", d.MQTT.Username)
	v.SetDefault("mqtt.password", d.MQTT.Password)
	v.SetDefault("mqtt.topicPrefix", d.MQTT.TopicPrefix)
	v.SetDefault("mqtt.qos", d.MQTT.QoS)
	v.SetDefault("mqtt.retain", d.MQTT.Retain)
	v.SetDefault("mqtt.minInterval", d.MQTT.MinInterval.String())

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.advertise", d.Server.Advertise)
	v.SetDefault("server.instance", d.Server.Instance)
	v.SetDefault("server.readTimeout", d.Server.ReadTimeout.String())
	v.SetDefault("server.shutdownTimeout", d.Server.ShutdownTimeout.String())
}
