// Package lglcd implements the LG LCD display bridge for Lumen Bridge.
//
// This package drives LG commercial displays over their RS-232C control
// protocol carried on TCP port 9761. It polls display state on a spread
// schedule, caches property values with a failure-tolerant lifetime, and
// applies control writes with the panel's quirks accounted for.
//
// # Architecture
//
// The bridge sits between the core service and the display's serial bridge:
//
//	┌─────────────────┐          ┌─────────────────┐
//	│  Signage Core   │   MQTT   │   LCD Bridge    │   TCP 9761
//	│    / REST API   │◄────────►│   (this pkg)    │◄──────────► LG Display
//	└─────────────────┘          └─────────────────┘
//
// # Wire Protocol
//
// Requests are ASCII lines of the form "<opcode> <set-id> <payload>\r",
// e.g. "ka 01 FF" to read power status. The reply echoes the second opcode
// character, the set ID, an OK/NG acknowledgement, the payload, and a
// literal 'x' terminator: "a 01 OK01x".
//
// # Key Responsibilities
//
//   - Poll the command set once per configured interval, spread evenly
//     over one-minute slots
//   - Cache property values, tolerating transient failures for a
//     configurable lifetime before reporting N/A
//   - Track display availability and drop the cache when the link stays
//     dead past the caching lifetime
//   - Apply control writes (switches, sliders, dropdowns) with cooldown
//     spacing and a watchdog on stalled commands
//   - Manage the failover input priority order, including rank reordering
//
// # Polling
//
// One command is never fetched more than once per polling interval. With n
// commands and an interval of m minutes, minute i fetches commands
// [i*n/m, (i+1)*n/m). Controllable properties are only polled when
// configuration management is enabled for the display.
//
// # Thread Safety
//
// All exported types are safe for concurrent use from multiple goroutines.
package lglcd
