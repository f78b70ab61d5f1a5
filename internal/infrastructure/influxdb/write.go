package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDisplayProperty writes a single display property sample to InfluxDB.
//
// This is the primary method for recording polled telemetry such as panel
// temperature, lamp hours, or volume. The write is non-blocking; data is
// batched and sent asynchronously.
//
// Parameters:
//   - displayID: Identifier of the display (e.g., "lobby")
//   - property: The property key (e.g., "temperature", "volume")
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteDisplayProperty("lobby", "temperature", 43)
func (c *Client) WriteDisplayProperty(displayID string, property string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"display_properties",
		map[string]string{
			"display_id": displayID,
			"property":   property,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePollStats writes per-interval polling statistics for a display.
//
// Used for tracking link quality over time: how many commands succeeded
// and failed in the last polling interval, and how many reconnects the
// transport has performed.
func (c *Client) WritePollStats(displayID string, succeeded, failed int, reconnects uint64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"poll_stats",
		map[string]string{
			"display_id": displayID,
		},
		map[string]interface{}{
			"succeeded":  succeeded,
			"failed":     failed,
			"reconnects": int64(reconnects), // #nosec G115 -- counter, wraps far beyond device lifetime
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
