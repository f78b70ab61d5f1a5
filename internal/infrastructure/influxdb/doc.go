// Package influxdb provides InfluxDB connectivity for the signage daemon.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, property writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series storage for:
//   - Historical display properties (temperature, lamp hours, volume)
//   - Per-interval polling statistics (success/failure counts, reconnects)
//
// Which properties are recorded is controlled per display via the
// historical_properties list in config.yaml.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteDisplayProperty("lobby", "temperature", 43)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb
