// Package mqtt provides MQTT client connectivity for the signage daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The daemon publishes display snapshots and health updates to the broker
// and accepts control commands from it, so building-management systems can
// integrate without touching the HTTP API.
//
//	signaged ↔ MQTT Broker ↔ BMS / dashboards
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Accept control commands for every display
//	err = client.Subscribe(mqtt.Topics{}.AllDisplayCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        return dispatch(topic, payload)
//	    })
//
//	// Publish a snapshot
//	client.PublishRetained(mqtt.Topics{}.DisplayState("lobby"), snapshotJSON)
package mqtt
