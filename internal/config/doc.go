// Package config provides configuration loading for ampwatch.
//
// Settings come from three layers, each overriding the one before:
//  1. built-in defaults (Default)
//  2. a YAML file, by default in the OS configuration directory
//  3. AMPWATCH_* environment variables, with dots in keys replaced by underscores
//
// Command-line flags are applied on top by the CLI.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/ampwatch/config.yaml or $HOME/.config/ampwatch/config.yaml
//   - macOS: $HOME/.config/ampwatch/config.yaml
//   - Windows: %LOCALAPPDATA%\ampwatch\config.yaml
//
// A missing file at the default location is not an error; ampwatch runs on defaults.
// `ampwatch config init` writes the defaults out with WriteDefault.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Capture.MinLength, cfg.Capture.MaxLength) // 191 219
//
// # Keys
//
//	capture.minLength, capture.maxLength   plausible capture length, in nibbles
//	output.format                          text, json or detailed
//	output.validOnly                       print only readings whose CRC matched exactly
//	output.color                           auto, always or never
//	lineVoltage                            volts used for kWh and kW
//	senders.<id>                           display name for a sender id
//	logging.level, logging.format, logging.file.*
//	store.path                             SQLite reading history
//	mqtt.*                                 MQTT publication
//	server.*                               HTTP API, live feed and mDNS advertisement
//
// # Thread Safety
//
// Load returns an independent Config per call. Save serializes file writes with a mutex.
package config
