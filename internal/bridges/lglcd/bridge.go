package lglcd

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lumenbridge/signage-core/internal/infrastructure/config"
)

// AvailabilityProperty is the snapshot key reporting whether the control
// protocol is answering. The camel-case key is a published contract shared
// with the fleet dashboards, unlike the snake_case device properties.
const (
	AvailabilityProperty = "ControlProtocolStatus"
	ValueAvailable       = "Available"
	ValueUnavailable     = "Unavailable"
)

// watchdogTick is the granularity of the command watchdog. The command
// timeout is counted out in these steps so a stalled exchange is cut off
// close to the configured limit.
const watchdogTick = 100 * time.Millisecond

// defaultSlotInterval is the production cadence between poll slots.
const defaultSlotInterval = time.Minute

// PollStats summarises one completed poll slot.
type PollStats struct {
	Succeeded  uint64
	Failed     uint64
	Reconnects uint64
	Available  bool
}

// Bridge drives one display: it spreads the command set over the polling
// interval, maintains the property cache, applies control writes, and
// tracks availability.
//
// State flows out through the OnState callback after every poll slot;
// control writes come in through Apply and the priority reorder methods.
//
// Thread Safety: all exported methods are safe for concurrent use.
type Bridge struct {
	cfg       config.DisplayConfig
	transport Transport
	cache     *propertyCache
	schedule  *pollSchedule

	// controlMu is held across a control write. The poll watchdog skips
	// counting while it is held, so a slow user action never triggers a
	// force-close under an in-flight poll.
	controlMu sync.Mutex

	priorityMu sync.Mutex
	priority   *PriorityList

	callbackMu sync.RWMutex
	onState    func(displayID string, snapshot map[string]string)
	onStats    func(displayID string, stats PollStats)

	logger   Logger
	loggerMu sync.RWMutex

	// slotInterval is the cadence between poll slots; shortened in tests.
	slotInterval time.Duration

	pollsSucceeded atomic.Uint64
	pollsFailed    atomic.Uint64
	available      atomic.Bool

	// interval accounting, touched only from the run loop.
	slotsDone       int
	intervalSuccess int
	deadIntervals   int

	done    *closeOnce
	wg      sync.WaitGroup
	started atomic.Bool
}

// New creates a bridge for one configured display. No connection is made
// until Start.
func New(cfg config.DisplayConfig) *Bridge {
	transport := newDeviceConn(ConnConfig{
		Address: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		// The watchdog owns the command timeout; the read deadline sits
		// behind it as a backstop for control writes.
		ReadTimeout: time.Duration(cfg.CommandTimeout)*time.Millisecond + 5*time.Second,
		Cooldown:    time.Duration(cfg.CooldownDelay) * time.Millisecond,
	})
	return newBridge(cfg, transport)
}

// newBridge wires a bridge around an explicit transport. Tests inject a
// fake display here.
func newBridge(cfg config.DisplayConfig, transport Transport) *Bridge {
	b := &Bridge{
		cfg:          cfg,
		transport:    transport,
		cache:        newPropertyCache(cfg.CachingLifetime),
		schedule:     newPollSchedule(pollSet(cfg.ConfigManagement), cfg.PollingInterval),
		priority:     &PriorityList{},
		slotInterval: defaultSlotInterval,
		done:         newCloseOnce(),
	}
	b.available.Store(true)
	return b
}

// DisplayID returns the configured display identifier.
func (b *Bridge) DisplayID() string {
	return b.cfg.ID
}

// SetLogger sets the logger for the bridge and its transport.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
	if dc, ok := b.transport.(*deviceConn); ok {
		dc.SetLogger(logger)
	}
}

// SetOnState registers a callback invoked with a full property snapshot
// after every poll slot and every successful control write.
func (b *Bridge) SetOnState(fn func(displayID string, snapshot map[string]string)) {
	b.callbackMu.Lock()
	b.onState = fn
	b.callbackMu.Unlock()
}

// SetOnStats registers a callback invoked with poll statistics after every
// poll slot.
func (b *Bridge) SetOnStats(fn func(displayID string, stats PollStats)) {
	b.callbackMu.Lock()
	b.onStats = fn
	b.callbackMu.Unlock()
}

// Start launches the polling loop. The first slot runs immediately.
func (b *Bridge) Start(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return fmt.Errorf("lglcd: bridge %s already started", b.cfg.ID)
	}

	b.wg.Add(1)
	go b.run(ctx)

	b.logInfo("bridge started",
		"display_id", b.cfg.ID,
		"address", b.cfg.Host,
		"polling_interval", b.cfg.PollingInterval,
		"config_management", b.cfg.ConfigManagement)
	return nil
}

// run executes one poll slot per slot interval until shutdown.
func (b *Bridge) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.slotInterval)
	defer ticker.Stop()

	b.pollSlot(ctx)
	for {
		select {
		case <-ticker.C:
			b.pollSlot(ctx)
		case <-ctx.Done():
			return
		case <-b.done.Done():
			return
		}
	}
}

// pollSlot fetches the current slot's commands and, at the end of each full
// interval, settles availability.
func (b *Bridge) pollSlot(ctx context.Context) {
	batch := b.schedule.Next()

	var succeeded, failed uint64
	for _, cmd := range batch {
		if err := b.fetchCommand(ctx, cmd); err != nil {
			failed++
			b.logWarn("poll failed", "display_id", b.cfg.ID, "property", cmd.Property, "error", err)
			continue
		}
		succeeded++
	}

	b.pollsSucceeded.Add(succeeded)
	b.pollsFailed.Add(failed)
	b.intervalSuccess += int(succeeded)
	b.slotsDone++

	if b.slotsDone >= b.schedule.Slots() {
		b.settleInterval()
	}

	b.publishState()
	b.publishStats(PollStats{
		Succeeded:  succeeded,
		Failed:     failed,
		Reconnects: b.transport.Stats().Reconnects,
		Available:  b.available.Load(),
	})
}

// settleInterval closes out one full polling interval. An interval with no
// successful fetch at all marks the display unavailable; once the link has
// been dead longer than the caching lifetime the whole cache is dropped so
// stale values cannot outlive their trustworthiness.
func (b *Bridge) settleInterval() {
	if b.intervalSuccess == 0 {
		b.deadIntervals++
		if b.available.Swap(false) {
			b.logWarn("display unavailable", "display_id", b.cfg.ID)
		}
		if b.deadIntervals > b.cfg.CachingLifetime {
			b.cache.Clear()
		}
	} else {
		b.deadIntervals = 0
		if !b.available.Swap(true) {
			b.logInfo("display available", "display_id", b.cfg.ID)
		}
	}

	b.slotsDone = 0
	b.intervalSuccess = 0
}

// fetchCommand performs one status read and records the outcome in the
// cache.
func (b *Bridge) fetchCommand(ctx context.Context, cmd Command) error {
	values, err := b.exchangeCommand(ctx, cmd, cmd.Request, cmd.Property == PropFanStatus)
	if err != nil {
		b.cache.RecordFailure(cmd.Property)
		return err
	}

	b.cache.RecordSuccess(cmd.Property, values)
	if cmd.Property == PropInputPriority {
		b.adoptPriority(values[PropInputPriority])
	}
	return nil
}

// exchangeCommand sends one request and decodes the reply, under the
// command watchdog.
//
// The watchdog counts the command timeout in 100ms ticks and force-closes
// the connection when it expires, which unblocks the pending read. Ticks
// are not counted while a control write holds the gate.
func (b *Bridge) exchangeCommand(ctx context.Context, cmd Command, payload string, allowNG bool) (map[string]string, error) {
	request := EncodeRequest(cmd.Opcode, b.cfg.MonitorID, payload)

	type result struct {
		frame []byte
		err   error
	}
	resCh := make(chan result, 1)
	go func() {
		frame, err := b.transport.Exchange(ctx, request)
		resCh <- result{frame: frame, err: err}
	}()

	maxTicks := b.cfg.CommandTimeout / int(watchdogTick/time.Millisecond)
	if maxTicks < 1 {
		maxTicks = 1
	}

	ticker := time.NewTicker(watchdogTick)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case r := <-resCh:
			if r.err != nil {
				return nil, r.err
			}
			raw, ng, err := ParseReply(cmd.Opcode, r.frame, allowNG)
			if err != nil {
				return nil, err
			}
			return decodeReply(cmd, raw, b.cfg.MonitorID, ng)

		case <-ticker.C:
			if !b.controlMu.TryLock() {
				continue
			}
			b.controlMu.Unlock()
			ticks++
			if ticks < maxTicks {
				continue
			}
			b.transport.ForceClose()
			<-resCh
			return nil, fmt.Errorf("%w: %s after %dms", ErrTimeout, cmd.Property, b.cfg.CommandTimeout)

		case <-b.done.Done():
			return nil, ErrNotConnected
		}
	}
}

// adoptPriority replaces the working priority list from a freshly decoded
// report.
func (b *Bridge) adoptPriority(rendered string) {
	list, err := parsePriorityNames(rendered)
	if err != nil {
		b.logWarn("priority report not adopted", "display_id", b.cfg.ID, "error", err)
		return
	}
	b.priorityMu.Lock()
	b.priority = list
	b.priorityMu.Unlock()
}

// Apply performs one control write and refreshes the cache from the
// panel's echo.
//
// Side effects mirror panel behaviour: any volume write unmutes,
// switching failover to manual refetches the priority order, and turning
// tile mode off withdraws the tile-derived properties.
//
// Parameters:
//   - ctx: Context for cancellation
//   - property: Writable property key
//   - value: New value in presentation form (enum name, decimal, Kelvin);
//     empty for date/time syncs the host clock
//
// Returns:
//   - error: ErrUnknownProperty, ErrInvalidValue, ErrControlRejected, or a
//     transport failure
func (b *Bridge) Apply(ctx context.Context, property, value string) error {
	b.controlMu.Lock()
	defer b.controlMu.Unlock()

	if property == PropInput {
		return b.applyInput(ctx, value)
	}

	switch property {
	case PropDate:
		if value == "" {
			value = time.Now().Format("1/2/2006")
		}
	case PropTime:
		if value == "" {
			value = time.Now().Format("3:04 PM")
		}
	}

	payload, err := encodeControlPayload(property, value)
	if err != nil {
		return err
	}

	cmd, payload, err := b.writeCommand(property, payload)
	if err != nil {
		return err
	}

	values, err := b.exchangeCommand(ctx, cmd, payload, false)
	if err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrControlRejected, property, err)
	}
	b.cache.RecordSuccess(cmd.Property, values)

	b.applySideEffects(ctx, property, values)
	b.logInfo("control applied", "display_id", b.cfg.ID, "property", property, "value", value)
	b.publishState()
	return nil
}

// writeCommand resolves the command and final payload for a write. Tile
// geometry fields share one opcode, so the full frame is composed from the
// cached neighbours.
func (b *Bridge) writeCommand(property, payload string) (Command, string, error) {
	switch property {
	case PropTileColumns, PropTileRows, PropTileMode:
		composed, err := b.composeTilePayload(property, payload)
		if err != nil {
			return Command{}, "", err
		}
		return commandByProperty[PropTileSettings], composed, nil
	}

	cmd, ok := commandByProperty[property]
	if !ok {
		return Command{}, "", fmt.Errorf("%w: %q", ErrUnknownProperty, property)
	}
	return cmd, payload, nil
}

// composeTilePayload builds the mode/columns/rows frame for a tile write,
// taking the unchanged fields from the cache.
func (b *Bridge) composeTilePayload(property, encoded string) (string, error) {
	get := func(prop string, fallback int) (string, error) {
		if prop == property {
			return encoded, nil
		}
		v, ok := b.cache.Value(prop)
		if !ok || v == ValueNA {
			return fmt.Sprintf("%02x", fallback), nil
		}
		if prop == PropTileMode {
			code, ok := reverseLookup(tileModeValues, v)
			if !ok {
				return "", fmt.Errorf("%w: tile mode %q", ErrInvalidValue, v)
			}
			return code, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return "", fmt.Errorf("%w: %s %q", ErrInvalidValue, prop, v)
		}
		return fmt.Sprintf("%02x", n), nil
	}

	mode, err := get(PropTileMode, 0)
	if err != nil {
		return "", err
	}
	cols, err := get(PropTileColumns, 1)
	if err != nil {
		return "", err
	}
	rows, err := get(PropTileRows, 1)
	if err != nil {
		return "", err
	}
	return mode + cols + rows, nil
}

// applyInput switches the active input, retrying once with the source's
// alternate wire encoding before giving up.
func (b *Bridge) applyInput(ctx context.Context, name string) error {
	src, ok := inputByName[name]
	if !ok || src.Name == PlayViaURLName {
		return fmt.Errorf("%w: input %q", ErrInvalidValue, name)
	}

	cmd := commandByProperty[PropInput]
	values, err := b.exchangeCommand(ctx, cmd, src.Code, false)
	if err != nil && src.Alt != "" {
		values, err = b.exchangeCommand(ctx, cmd, src.Alt, false)
	}
	if err != nil {
		return fmt.Errorf("%w: input %q: %w", ErrControlRejected, name, err)
	}

	b.cache.RecordSuccess(cmd.Property, values)
	b.logInfo("control applied", "display_id", b.cfg.ID, "property", PropInput, "value", name)
	b.publishState()
	return nil
}

// applySideEffects propagates the knock-on state changes of a successful
// write.
func (b *Bridge) applySideEffects(ctx context.Context, property string, values map[string]string) {
	switch property {
	case PropVolume:
		// The panel drops mute on any volume write, including zero.
		b.cache.Set(PropMute, "Off")

	case PropFailoverMode:
		// Manual failover reorders by the stored priority list, which the
		// panel may have rewritten. Refetch before offering reorder controls.
		if values[PropFailoverMode] == "Manual" {
			if err := b.fetchCommand(ctx, commandByProperty[PropInputPriority]); err != nil {
				b.logWarn("priority refetch failed", "display_id", b.cfg.ID, "error", err)
			}
		}

	case PropTileMode:
		if values[PropTileMode] == "Off" {
			b.cache.Remove(PropTileID, PropNaturalMode, PropNaturalSize)
		}
	}
}

// PriorityMoveUp raises the named input one rank and writes the new order
// to the panel. Moving the top entry is a no-op.
func (b *Bridge) PriorityMoveUp(ctx context.Context, name string) error {
	return b.reorderPriority(ctx, name, true)
}

// PriorityMoveDown lowers the named input one rank and writes the new
// order to the panel. Moving the bottom entry is a no-op.
func (b *Bridge) PriorityMoveDown(ctx context.Context, name string) error {
	return b.reorderPriority(ctx, name, false)
}

func (b *Bridge) reorderPriority(ctx context.Context, name string, up bool) error {
	b.controlMu.Lock()
	defer b.controlMu.Unlock()

	b.priorityMu.Lock()
	working := b.priority.Clone()
	b.priorityMu.Unlock()

	if working.Len() == 0 {
		return fmt.Errorf("%w: no priority list reported yet", ErrControlUnavailable)
	}
	if name == PlayViaURLName {
		return fmt.Errorf("%w: input %q cannot be reordered", ErrInvalidValue, name)
	}
	if working.Rank(name) == 0 {
		return fmt.Errorf("%w: input %q is not in the priority list", ErrInvalidValue, name)
	}

	var moved bool
	if up {
		moved = working.MoveUp(name)
	} else {
		moved = working.MoveDown(name)
	}
	if !moved {
		return nil
	}

	cmd := commandByProperty[PropInputPriority]
	values, err := b.exchangeCommand(ctx, cmd, working.Serialize(), false)
	if err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrControlRejected, PropInputPriority, err)
	}

	b.priorityMu.Lock()
	b.priority = working
	b.priorityMu.Unlock()
	b.cache.RecordSuccess(cmd.Property, values)
	b.publishState()
	return nil
}

// Reboot restarts the panel. The fixed acknowledgement is verified before
// reporting success.
func (b *Bridge) Reboot(ctx context.Context) error {
	b.controlMu.Lock()
	defer b.controlMu.Unlock()

	if _, err := b.exchangeCommand(ctx, rebootCommand, rebootCommand.Request, false); err != nil {
		return fmt.Errorf("%w: reboot: %w", ErrControlRejected, err)
	}
	b.logInfo("reboot accepted", "display_id", b.cfg.ID)
	return nil
}

// Ping performs a single power status read to verify the display answers.
func (b *Bridge) Ping(ctx context.Context) error {
	b.controlMu.Lock()
	defer b.controlMu.Unlock()

	cmd := commandByProperty[PropPower]
	_, err := b.exchangeCommand(ctx, cmd, cmd.Request, false)
	return err
}

// PowerOn switches the display on.
func (b *Bridge) PowerOn(ctx context.Context) error {
	return b.Apply(ctx, PropPower, "On")
}

// PowerOff switches the display off.
func (b *Bridge) PowerOff(ctx context.Context) error {
	return b.Apply(ctx, PropPower, "Off")
}

// Snapshot returns all cached property values plus availability.
func (b *Bridge) Snapshot() map[string]string {
	snapshot := b.cache.Snapshot()
	if b.available.Load() {
		snapshot[AvailabilityProperty] = ValueAvailable
	} else {
		snapshot[AvailabilityProperty] = ValueUnavailable
	}
	return snapshot
}

// Controls returns the currently offered control descriptors. Properties
// without a live cached value offer no control.
func (b *Bridge) Controls() []Control {
	b.priorityMu.Lock()
	priority := b.priority.Clone()
	b.priorityMu.Unlock()
	return buildControls(b.cache, priority)
}

// Priority returns a copy of the current input priority list.
func (b *Bridge) Priority() *PriorityList {
	b.priorityMu.Lock()
	defer b.priorityMu.Unlock()
	return b.priority.Clone()
}

// Available reports whether the display answered at least once during the
// last full polling interval.
func (b *Bridge) Available() bool {
	return b.available.Load()
}

// Statistics returns poll and transport counters.
func (b *Bridge) Statistics() map[string]any {
	stats := b.transport.Stats()
	return map[string]any{
		"display_id":      b.cfg.ID,
		"available":       b.available.Load(),
		"polls_succeeded": b.pollsSucceeded.Load(),
		"polls_failed":    b.pollsFailed.Load(),
		"commands_tx":     stats.CommandsTx,
		"replies_rx":      stats.RepliesRx,
		"errors":          stats.ErrorsTotal,
		"reconnects":      stats.Reconnects,
		"forced_closes":   stats.ForcedCloses,
		"connected":       stats.Connected,
	}
}

// Close stops the polling loop and tears down the transport. Safe to call
// multiple times.
func (b *Bridge) Close() error {
	b.done.Close()
	b.wg.Wait()
	err := b.transport.Close()
	b.logInfo("bridge stopped", "display_id", b.cfg.ID)
	return err
}

// publishState invokes the state callback with a fresh snapshot.
func (b *Bridge) publishState() {
	b.callbackMu.RLock()
	fn := b.onState
	b.callbackMu.RUnlock()
	if fn != nil {
		fn(b.cfg.ID, b.Snapshot())
	}
}

// publishStats invokes the statistics callback.
func (b *Bridge) publishStats(stats PollStats) {
	b.callbackMu.RLock()
	fn := b.onStats
	b.callbackMu.RUnlock()
	if fn != nil {
		fn(b.cfg.ID, stats)
	}
}

// logInfo logs an info message if a logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()
	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning if a logger is set.
func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()
	if logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}
