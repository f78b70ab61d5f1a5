package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Clamp limits for per-display communication settings. Values outside these
// ranges are pulled back to the nearest bound rather than rejected, so a
// misconfigured display still polls at a safe rate.
const (
	// MinCommandTimeout / MaxCommandTimeout bound the reply watchdog (ms).
	MinCommandTimeout = 1000
	MaxCommandTimeout = 30000

	// MinCooldownDelay / MaxCooldownDelay bound the inter-command spacing (ms).
	MinCooldownDelay = 500
	MaxCooldownDelay = 15000

	// DefaultDisplayPort is the LG RS-232C-over-TCP control port.
	DefaultDisplayPort = 9761
)

// Config is the root configuration structure for the signage daemon.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Displays  []DisplayConfig `yaml:"displays"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DisplayConfig describes one LG display under management.
type DisplayConfig struct {
	// ID is the stable identifier used in API paths and MQTT topics.
	ID string `yaml:"id"`

	// Host is the display's IP address or hostname.
	Host string `yaml:"host"`

	// Port is the RS-232C-over-TCP control port. Default: 9761.
	Port int `yaml:"port"`

	// MonitorID is the two-character set ID used in the wire protocol.
	// Default: "01".
	MonitorID string `yaml:"monitor_id"`

	// PollingInterval is the number of one-minute cycles over which the
	// full command list is spread. Minimum 1.
	PollingInterval int `yaml:"polling_interval"`

	// CachingLifetime is the number of consecutive failed polls after
	// which a cached property value is discarded (minutes). Never less
	// than PollingInterval.
	CachingLifetime int `yaml:"caching_lifetime"`

	// CommandTimeout is the reply watchdog limit in milliseconds,
	// clamped to [MinCommandTimeout, MaxCommandTimeout].
	CommandTimeout int `yaml:"command_timeout"`

	// CooldownDelay is the minimum spacing between consecutive commands
	// in milliseconds, clamped to [MinCooldownDelay, MaxCooldownDelay].
	CooldownDelay int `yaml:"cooldown_delay"`

	// ConfigManagement enables polling and exposure of controllable
	// properties. When false only monitored properties are read.
	ConfigManagement bool `yaml:"config_management"`

	// HistoricalProperties lists property keys written to InfluxDB
	// after each polling cycle (e.g. "temperature", "volume").
	HistoricalProperties []string `yaml:"historical_properties"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SIGNAGE_SECTION_KEY
// For example: SIGNAGE_MQTT_HOST, SIGNAGE_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	for i := range cfg.Displays {
		cfg.Displays[i].applyDefaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "site-001",
			Name:     "Signage Core",
			Timezone: "UTC",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "signage-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyDefaults fills zero values and clamps out-of-range settings for a
// single display entry.
func (d *DisplayConfig) applyDefaults() {
	if d.Port == 0 {
		d.Port = DefaultDisplayPort
	}
	if d.MonitorID == "" {
		d.MonitorID = "01"
	}
	if d.PollingInterval < 1 {
		d.PollingInterval = 1
	}
	if d.CachingLifetime < d.PollingInterval {
		d.CachingLifetime = d.PollingInterval
	}
	d.CommandTimeout = clamp(d.CommandTimeout, MinCommandTimeout, MaxCommandTimeout)
	d.CooldownDelay = clamp(d.CooldownDelay, MinCooldownDelay, MaxCooldownDelay)
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SIGNAGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("SIGNAGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SIGNAGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SIGNAGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("SIGNAGE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("SIGNAGE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("SIGNAGE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(c.Displays) == 0 {
		errs = append(errs, "at least one display must be configured")
	}

	seen := make(map[string]bool, len(c.Displays))
	for i, d := range c.Displays {
		if d.ID == "" {
			errs = append(errs, fmt.Sprintf("displays[%d].id is required", i))
		} else if seen[d.ID] {
			errs = append(errs, fmt.Sprintf("displays[%d].id %q is duplicated", i, d.ID))
		}
		seen[d.ID] = true

		if d.Host == "" {
			errs = append(errs, fmt.Sprintf("displays[%d].host is required", i))
		}
		if len(d.MonitorID) != 2 {
			errs = append(errs, fmt.Sprintf("displays[%d].monitor_id must be exactly two characters", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
