// Signage Core - LG display fleet controller
//
// This is the main entry point for the signage daemon. It polls LG
// commercial displays over their RS-232C-over-TCP control protocol,
// publishes state to MQTT, records history to InfluxDB, and serves a REST
// and WebSocket API for dashboards.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/lumenbridge/signage-core/internal/api"
	"github.com/lumenbridge/signage-core/internal/bridges/lglcd"
	"github.com/lumenbridge/signage-core/internal/infrastructure/config"
	"github.com/lumenbridge/signage-core/internal/infrastructure/influxdb"
	"github.com/lumenbridge/signage-core/internal/infrastructure/logging"
	"github.com/lumenbridge/signage-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Signage Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "displays", len(cfg.Displays))

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start one bridge per configured display
	qos := byte(cfg.MQTT.QoS)
	bridges := make(map[string]*lglcd.Bridge, len(cfg.Displays))
	apiBridges := make([]api.DisplayBridge, 0, len(cfg.Displays))
	for _, dc := range cfg.Displays {
		bridge := lglcd.New(dc)
		bridge.SetLogger(log.With("display_id", dc.ID))
		wireBridge(bridge, dc, mqttClient, influxClient, qos, log)

		if startErr := bridge.Start(ctx); startErr != nil {
			return fmt.Errorf("starting bridge %s: %w", dc.ID, startErr)
		}
		defer func(b *lglcd.Bridge) {
			if closeErr := b.Close(); closeErr != nil {
				log.Error("error closing bridge", "display_id", b.DisplayID(), "error", closeErr)
			}
		}(bridge)

		bridges[dc.ID] = bridge
		apiBridges = append(apiBridges, bridge)
		log.Info("display bridge started", "display_id", dc.ID, "host", dc.Host)
	}

	// Dispatch MQTT control commands to bridges
	if err := subscribeCommands(ctx, mqttClient, bridges, qos, log); err != nil {
		return fmt.Errorf("subscribing to command topic: %w", err)
	}

	// Start the REST/WebSocket API
	server, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log,
		MQTT:    mqttClient,
		Bridges: apiBridges,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	topics := mqtt.Topics{}
	if err := mqttClient.PublishString(topics.SystemStatus(), "online", qos, true); err != nil {
		log.Warn("publishing system status", "error", err)
	}
	defer func() {
		if pubErr := mqttClient.PublishString(topics.SystemStatus(), "offline", qos, true); pubErr != nil {
			log.Warn("publishing system status", "error", pubErr)
		}
	}()

	log.Info("Signage Core running", "site", cfg.Site.ID)
	<-ctx.Done()
	log.Info("shutdown signal received")
	return nil
}

// wireBridge connects a bridge's state and statistics callbacks to MQTT and
// InfluxDB.
func wireBridge(bridge *lglcd.Bridge, dc config.DisplayConfig, mqttClient *mqtt.Client, influxClient *influxdb.Client, qos byte, log *logging.Logger) {
	topics := mqtt.Topics{}

	bridge.SetOnState(func(displayID string, snapshot map[string]string) {
		payload, err := json.Marshal(map[string]any{
			"display_id": displayID,
			"state":      snapshot,
		})
		if err != nil {
			log.Error("marshalling state payload", "display_id", displayID, "error", err)
			return
		}
		if err := mqttClient.Publish(topics.DisplayState(displayID), payload, qos, true); err != nil {
			log.Warn("publishing display state", "display_id", displayID, "error", err)
		}

		// Numeric history for the configured properties
		if influxClient != nil {
			for _, prop := range dc.HistoricalProperties {
				value, ok := snapshot[prop]
				if !ok || value == lglcd.ValueNA {
					continue
				}
				if f, parseErr := strconv.ParseFloat(value, 64); parseErr == nil {
					influxClient.WriteDisplayProperty(displayID, prop, f)
				}
			}
		}
	})

	bridge.SetOnStats(func(displayID string, stats lglcd.PollStats) {
		health := "online"
		if !stats.Available {
			health = "offline"
		}
		if err := mqttClient.PublishString(topics.DisplayHealth(displayID), health, qos, true); err != nil {
			log.Warn("publishing display health", "display_id", displayID, "error", err)
		}

		if influxClient != nil {
			influxClient.WritePollStats(displayID, int(stats.Succeeded), int(stats.Failed), stats.Reconnects)
		}
	})
}

// commandMessage is the payload accepted on the per-display command topic.
type commandMessage struct {
	Property string `json:"property"`
	Value    string `json:"value"`
	Action   string `json:"action,omitempty"`
}

// commandAck reports the outcome of an MQTT-dispatched command.
type commandAck struct {
	Property string `json:"property"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// subscribeCommands routes signage/command/{display_id} messages to the
// owning bridge and acknowledges each on the display's ack topic.
func subscribeCommands(ctx context.Context, mqttClient *mqtt.Client, bridges map[string]*lglcd.Bridge, qos byte, log *logging.Logger) error {
	topics := mqtt.Topics{}

	return mqttClient.Subscribe(topics.AllDisplayCommands(), qos, func(topic string, payload []byte) error {
		parts := strings.Split(topic, "/")
		displayID := parts[len(parts)-1]

		bridge, ok := bridges[displayID]
		if !ok {
			log.Warn("command for unknown display", "display_id", displayID)
			return nil
		}

		var msg commandMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Warn("invalid command payload", "display_id", displayID, "error", err)
			return nil
		}

		err := dispatchCommand(ctx, bridge, msg)
		ack := commandAck{Property: msg.Property, Status: "ok"}
		if err != nil {
			ack.Status = "error"
			ack.Error = err.Error()
			log.Warn("command failed", "display_id", displayID, "property", msg.Property, "error", err)
		}

		ackPayload, marshalErr := json.Marshal(ack)
		if marshalErr != nil {
			return nil
		}
		if pubErr := mqttClient.Publish(topics.DisplayAck(displayID), ackPayload, qos, false); pubErr != nil {
			log.Warn("publishing command ack", "display_id", displayID, "error", pubErr)
		}
		return nil
	})
}

// dispatchCommand maps a command message onto the bridge operation it names.
func dispatchCommand(ctx context.Context, bridge *lglcd.Bridge, msg commandMessage) error {
	switch {
	case msg.Property == lglcd.PropReboot:
		return bridge.Reboot(ctx)
	case msg.Property == lglcd.PropInputPriority && msg.Action == "move_up":
		return bridge.PriorityMoveUp(ctx, msg.Value)
	case msg.Property == lglcd.PropInputPriority && msg.Action == "move_down":
		return bridge.PriorityMoveDown(ctx, msg.Value)
	default:
		return bridge.Apply(ctx, msg.Property, msg.Value)
	}
}

// getConfigPath returns the configuration file path from the SIGNAGE_CONFIG
// environment variable, falling back to the default.
func getConfigPath() string {
	if path := os.Getenv("SIGNAGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
