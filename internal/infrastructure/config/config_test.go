package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-site"
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
displays:
  - id: "lobby"
    host: "10.0.4.21"
    polling_interval: 2
    caching_lifetime: 5
    command_timeout: 4000
    cooldown_delay: 2000
    config_management: true
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}

	if len(cfg.Displays) != 1 {
		t.Fatalf("len(Displays) = %d, want 1", len(cfg.Displays))
	}

	d := cfg.Displays[0]
	if d.Host != "10.0.4.21" {
		t.Errorf("Displays[0].Host = %q, want %q", d.Host, "10.0.4.21")
	}
	if d.Port != DefaultDisplayPort {
		t.Errorf("Displays[0].Port = %d, want default %d", d.Port, DefaultDisplayPort)
	}
	if d.MonitorID != "01" {
		t.Errorf("Displays[0].MonitorID = %q, want %q", d.MonitorID, "01")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_NoDisplays(t *testing.T) {
	content := `
site:
  id: "test-site"
api:
  port: 8080
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected validation error for empty displays list, got nil")
	}
}

func TestDisplayConfig_ApplyDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   DisplayConfig
		want DisplayConfig
	}{
		{
			name: "zero values get defaults",
			in:   DisplayConfig{ID: "d1", Host: "10.0.0.1"},
			want: DisplayConfig{
				ID: "d1", Host: "10.0.0.1",
				Port: DefaultDisplayPort, MonitorID: "01",
				PollingInterval: 1, CachingLifetime: 1,
				CommandTimeout: MinCommandTimeout, CooldownDelay: MinCooldownDelay,
			},
		},
		{
			name: "timeout clamped to maximum",
			in: DisplayConfig{
				ID: "d1", Host: "10.0.0.1",
				CommandTimeout: 90000, CooldownDelay: 60000,
			},
			want: DisplayConfig{
				ID: "d1", Host: "10.0.0.1",
				Port: DefaultDisplayPort, MonitorID: "01",
				PollingInterval: 1, CachingLifetime: 1,
				CommandTimeout: MaxCommandTimeout, CooldownDelay: MaxCooldownDelay,
			},
		},
		{
			name: "caching lifetime raised to polling interval",
			in: DisplayConfig{
				ID: "d1", Host: "10.0.0.1",
				PollingInterval: 5, CachingLifetime: 2,
				CommandTimeout: 5000, CooldownDelay: 2000,
			},
			want: DisplayConfig{
				ID: "d1", Host: "10.0.0.1",
				Port: DefaultDisplayPort, MonitorID: "01",
				PollingInterval: 5, CachingLifetime: 5,
				CommandTimeout: 5000, CooldownDelay: 2000,
			},
		},
		{
			name: "in-range values untouched",
			in: DisplayConfig{
				ID: "d1", Host: "10.0.0.1", Port: 9762, MonitorID: "02",
				PollingInterval: 3, CachingLifetime: 10,
				CommandTimeout: 7000, CooldownDelay: 3000,
			},
			want: DisplayConfig{
				ID: "d1", Host: "10.0.0.1", Port: 9762, MonitorID: "02",
				PollingInterval: 3, CachingLifetime: 10,
				CommandTimeout: 7000, CooldownDelay: 3000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.applyDefaults()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("applyDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Site: SiteConfig{ID: "site-001"},
			MQTT: MQTTConfig{QoS: 1},
			API:  APIConfig{Port: 8080},
			Displays: []DisplayConfig{
				{ID: "lobby", Host: "10.0.0.1", MonitorID: "01"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing site id",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid api port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "display missing host",
			mutate:  func(c *Config) { c.Displays[0].Host = "" },
			wantErr: true,
		},
		{
			name:    "bad monitor id length",
			mutate:  func(c *Config) { c.Displays[0].MonitorID = "001" },
			wantErr: true,
		},
		{
			name: "duplicate display id",
			mutate: func(c *Config) {
				c.Displays = append(c.Displays, DisplayConfig{ID: "lobby", Host: "10.0.0.2", MonitorID: "01"})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SIGNAGE_MQTT_HOST", "broker.internal")
	t.Setenv("SIGNAGE_API_PORT", "9090")
	t.Setenv("SIGNAGE_INFLUXDB_TOKEN", "secret-token")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	if cfg.MQTT.Broker.Host != "broker.internal" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.internal")
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}
