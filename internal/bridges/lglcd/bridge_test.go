package lglcd

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lumenbridge/signage-core/internal/infrastructure/config"
)

// fakeTransport answers scripted requests. Unscripted requests fail the
// exchange, standing in for a display that does not answer.
type fakeTransport struct {
	mu          sync.Mutex
	replies     map[string]string
	requests    []string
	forceCloses int
	closed      bool
}

func newFakeTransport(replies map[string]string) *fakeTransport {
	return &fakeTransport{replies: replies}
}

func (f *fakeTransport) Exchange(_ context.Context, request []byte) ([]byte, error) {
	key := strings.TrimSuffix(string(request), "\r")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, key)

	reply, ok := f.replies[key]
	if !ok {
		return nil, errors.New("no reply")
	}
	return []byte(reply), nil
}

func (f *fakeTransport) ForceClose() {
	f.mu.Lock()
	f.forceCloses++
	f.mu.Unlock()
}

func (f *fakeTransport) IsConnected() bool { return !f.closed }
func (f *fakeTransport) Stats() ConnStats  { return ConnStats{} }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) requestCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == key {
			n++
		}
	}
	return n
}

// stallTransport blocks every exchange until ForceClose is called.
type stallTransport struct {
	mu       sync.Mutex
	released chan struct{}
	closes   int
}

func newStallTransport() *stallTransport {
	return &stallTransport{released: make(chan struct{})}
}

func (s *stallTransport) Exchange(ctx context.Context, _ []byte) ([]byte, error) {
	select {
	case <-s.released:
		return nil, errors.New("connection reset")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *stallTransport) ForceClose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	if s.closes == 1 {
		close(s.released)
	}
}

func (s *stallTransport) IsConnected() bool { return false }
func (s *stallTransport) Stats() ConnStats  { return ConnStats{} }
func (s *stallTransport) Close() error      { return nil }

func testDisplayConfig() config.DisplayConfig {
	return config.DisplayConfig{
		ID:              "lobby",
		Host:            "10.0.0.50",
		Port:            9761,
		MonitorID:       "01",
		PollingInterval: 1,
		CachingLifetime: 2,
		CommandTimeout:  1000,
		CooldownDelay:   500,
	}
}

// monitorReplies scripts a healthy display for every monitored command.
func monitorReplies() map[string]string {
	return map[string]string{
		"ka 01 FF":    "a 01 OK01x",
		"xb 01 FF":    "b 01 OK90x",
		"km 01 FF":    "m 01 OK00x",
		"dw 01 FF":    "w 01 NG01x",
		"dp 01 FF":    "p 01 OK01x",
		"dl 01 FF":    "l 01 OK0ax",
		"dn 01 FF":    "n 01 OK26x",
		"fy 01 FF":    "y 01 OK902MXCD0S692x",
		"fz 01 FF":    "z 01 OK030205x",
		"sn 01 85 FF": "n 01 OK8532x",
		"su 01 FF":    "u 01 OK0001x",
		"sn 01 82 FF": "n 01 OK84 172000001001 255255255000 172000001254 008008008008x",
		"fi 01 FF":    "i 01 OK03x",
		"cd 01 FF":    "d 01 OK00x",
	}
}

func TestBridge_PollSlotPopulatesCache(t *testing.T) {
	fake := newFakeTransport(monitorReplies())
	b := newBridge(testDisplayConfig(), fake)

	b.pollSlot(context.Background())

	snapshot := b.Snapshot()
	want := map[string]string{
		PropPower:            "On",
		PropInput:            "HDMI1",
		PropFanStatus:        ValueNotSupported,
		PropTemperature:      "38",
		PropSerialNumber:     "902MXCD0S692",
		PropSoftwareVersion:  "03.02.05",
		PropIPAddress:        "172.0.1.1",
		PropDNSServer:        "8.8.8.8",
		PropSyncStatus:       "Master",
		AvailabilityProperty: ValueAvailable,
	}
	for prop, expected := range want {
		if got := snapshot[prop]; got != expected {
			t.Errorf("%s = %q, want %q", prop, got, expected)
		}
	}

	// The dashboards key on this exact name.
	if got := snapshot["ControlProtocolStatus"]; got != "Available" {
		t.Errorf("ControlProtocolStatus = %q, want %q", got, "Available")
	}
}

func TestBridge_StateCallbackAfterSlot(t *testing.T) {
	fake := newFakeTransport(monitorReplies())
	b := newBridge(testDisplayConfig(), fake)

	var got map[string]string
	b.SetOnState(func(displayID string, snapshot map[string]string) {
		if displayID != "lobby" {
			t.Errorf("displayID = %q, want %q", displayID, "lobby")
		}
		got = snapshot
	})

	b.pollSlot(context.Background())

	if got == nil {
		t.Fatal("state callback not invoked")
	}
	if got[PropPower] != "On" {
		t.Errorf("callback snapshot power = %q, want %q", got[PropPower], "On")
	}
}

func TestBridge_DeadIntervalsMarkUnavailableThenClearCache(t *testing.T) {
	fake := newFakeTransport(monitorReplies())
	cfg := testDisplayConfig()
	cfg.CachingLifetime = 1
	b := newBridge(cfg, fake)

	b.pollSlot(context.Background())
	if !b.Available() {
		t.Fatal("display should be available after a good interval")
	}

	// The display stops answering.
	fake.mu.Lock()
	fake.replies = map[string]string{}
	fake.mu.Unlock()

	b.pollSlot(context.Background())
	if b.Available() {
		t.Fatal("display should be unavailable after an all-failed interval")
	}
	if got := b.Snapshot()[AvailabilityProperty]; got != ValueUnavailable {
		t.Errorf("availability = %q, want %q", got, ValueUnavailable)
	}

	// A second dead interval exceeds the caching lifetime: everything goes.
	b.pollSlot(context.Background())
	snapshot := b.Snapshot()
	if len(snapshot) != 1 {
		t.Errorf("cache not cleared after sustained outage: %v", snapshot)
	}
}

func TestBridge_RecoversAvailability(t *testing.T) {
	fake := newFakeTransport(map[string]string{})
	b := newBridge(testDisplayConfig(), fake)

	b.pollSlot(context.Background())
	if b.Available() {
		t.Fatal("display should be unavailable")
	}

	fake.mu.Lock()
	fake.replies = monitorReplies()
	fake.mu.Unlock()

	b.pollSlot(context.Background())
	if !b.Available() {
		t.Error("display should recover after a successful interval")
	}
}

func TestBridge_WatchdogForceClosesStalledCommand(t *testing.T) {
	stall := newStallTransport()
	cfg := testDisplayConfig()
	cfg.CommandTimeout = 200
	b := newBridge(cfg, stall)

	start := time.Now()
	err := b.fetchCommand(context.Background(), commandByProperty[PropPower])

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("fetchCommand() error = %v, want ErrTimeout", err)
	}
	if stall.closes == 0 {
		t.Error("watchdog did not force-close the connection")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("watchdog took %v, want roughly the command timeout", elapsed)
	}
}

func TestBridge_ApplyVolumeClearsMute(t *testing.T) {
	fake := newFakeTransport(map[string]string{
		"kf 01 1e": "f 01 OK1ex",
	})
	b := newBridge(testDisplayConfig(), fake)
	b.cache.Set(PropMute, "On")

	if err := b.Apply(context.Background(), PropVolume, "30"); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	snapshot := b.Snapshot()
	if snapshot[PropVolume] != "30" {
		t.Errorf("volume = %q, want %q", snapshot[PropVolume], "30")
	}
	if snapshot[PropMute] != "Off" {
		t.Errorf("mute = %q after raising volume, want %q", snapshot[PropMute], "Off")
	}
}

func TestBridge_ApplyVolumeZeroStillClearsMute(t *testing.T) {
	fake := newFakeTransport(map[string]string{
		"kf 01 00": "f 01 OK00x",
	})
	b := newBridge(testDisplayConfig(), fake)
	b.cache.Set(PropMute, "On")

	if err := b.Apply(context.Background(), PropVolume, "0"); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if v, _ := b.cache.Value(PropMute); v != "Off" {
		t.Errorf("mute = %q after writing volume zero, want %q", v, "Off")
	}
}

func TestBridge_ApplyFailureReportsControlRejected(t *testing.T) {
	// No scripted replies: every write fails at the transport.
	b := newBridge(testDisplayConfig(), newFakeTransport(nil))

	if err := b.Apply(context.Background(), PropVolume, "30"); !errors.Is(err, ErrControlRejected) {
		t.Errorf("Apply() error = %v, want ErrControlRejected", err)
	}
	if err := b.Reboot(context.Background()); !errors.Is(err, ErrControlRejected) {
		t.Errorf("Reboot() error = %v, want ErrControlRejected", err)
	}
}

func TestBridge_ApplyInputRetriesAlternateCode(t *testing.T) {
	// The panel rejects HDMI1's primary encoding; the alternate succeeds.
	fake := newFakeTransport(map[string]string{
		"xb 01 A0": "b 01 OKA0x",
	})
	b := newBridge(testDisplayConfig(), fake)

	if err := b.Apply(context.Background(), PropInput, "HDMI1"); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if got := fake.requestCount("xb 01 90"); got != 1 {
		t.Errorf("primary code tried %d times, want 1", got)
	}
	if v, _ := b.cache.Value(PropInput); v != "HDMI1" {
		t.Errorf("input = %q, want %q", v, "HDMI1")
	}
}

func TestBridge_ApplyInputBothEncodingsRejected(t *testing.T) {
	fake := newFakeTransport(map[string]string{})
	b := newBridge(testDisplayConfig(), fake)

	err := b.Apply(context.Background(), PropInput, "HDMI1")
	if !errors.Is(err, ErrControlRejected) {
		t.Fatalf("Apply() error = %v, want ErrControlRejected", err)
	}
	if got := fake.requestCount("xb 01 90") + fake.requestCount("xb 01 A0"); got != 2 {
		t.Errorf("tried %d encodings, want 2", got)
	}
}

func TestBridge_ApplyTileModeOffRemovesTileProperties(t *testing.T) {
	fake := newFakeTransport(map[string]string{
		"dd 01 000302": "d 01 OK000302x",
	})
	b := newBridge(testDisplayConfig(), fake)
	b.cache.RecordSuccess(PropTileSettings, map[string]string{
		PropTileColumns: "3",
		PropTileRows:    "2",
		PropTileMode:    "On",
		PropTileID:      "4",
		PropNaturalMode: "On",
		PropNaturalSize: "50",
	})

	if err := b.Apply(context.Background(), PropTileMode, "Off"); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	snapshot := b.Snapshot()
	for _, prop := range []string{PropTileID, PropNaturalMode, PropNaturalSize} {
		if _, ok := snapshot[prop]; ok {
			t.Errorf("%s still present after disabling tile mode", prop)
		}
	}
	if snapshot[PropTileMode] != "Off" {
		t.Errorf("tile_mode = %q, want %q", snapshot[PropTileMode], "Off")
	}
}

func TestBridge_ApplyRejectsInvalidValue(t *testing.T) {
	b := newBridge(testDisplayConfig(), newFakeTransport(nil))

	if err := b.Apply(context.Background(), PropVolume, "loud"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Apply() error = %v, want ErrInvalidValue", err)
	}
	if err := b.Apply(context.Background(), PropSerialNumber, "x"); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("Apply() error = %v, want ErrUnknownProperty", err)
	}
}

func TestBridge_PriorityReorder(t *testing.T) {
	fake := newFakeTransport(map[string]string{
		"my 01 80 90 C0": "y 01 OK8090C0x",
	})
	b := newBridge(testDisplayConfig(), fake)
	b.adoptPriority("HDMI1 > DVI-D > DisplayPort")

	if err := b.PriorityMoveUp(context.Background(), "DVI-D"); err != nil {
		t.Fatalf("PriorityMoveUp() error: %v", err)
	}

	if got := b.Priority().Rank("DVI-D"); got != 1 {
		t.Errorf("Rank(DVI-D) = %d, want 1", got)
	}
	if v, _ := b.cache.Value(PropInputPriority); v != "DVI-D > HDMI1 > DisplayPort" {
		t.Errorf("cached priority = %q", v)
	}
}

func TestBridge_PriorityReorderBoundaryNoOpSendsNothing(t *testing.T) {
	fake := newFakeTransport(map[string]string{})
	b := newBridge(testDisplayConfig(), fake)
	b.adoptPriority("HDMI1 > DVI-D")

	if err := b.PriorityMoveUp(context.Background(), "HDMI1"); err != nil {
		t.Fatalf("PriorityMoveUp() error: %v", err)
	}
	if len(fake.requests) != 0 {
		t.Errorf("boundary no-op sent %d requests", len(fake.requests))
	}
}

func TestBridge_PriorityReorderBeforeFirstReport(t *testing.T) {
	fake := newFakeTransport(map[string]string{})
	b := newBridge(testDisplayConfig(), fake)

	err := b.PriorityMoveUp(context.Background(), "HDMI1")
	if !errors.Is(err, ErrControlUnavailable) {
		t.Fatalf("PriorityMoveUp() error = %v, want ErrControlUnavailable", err)
	}
	if len(fake.requests) != 0 {
		t.Errorf("reorder without a reported list sent %d requests", len(fake.requests))
	}

	b.adoptPriority("HDMI1 > DVI-D")
	if err := b.PriorityMoveUp(context.Background(), "AV"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("PriorityMoveUp(AV) error = %v, want ErrInvalidValue", err)
	}
}

func TestBridge_Reboot(t *testing.T) {
	fake := newFakeTransport(map[string]string{
		"tn 01 01": "n 01 OK01x",
	})
	b := newBridge(testDisplayConfig(), fake)

	if err := b.Reboot(context.Background()); err != nil {
		t.Fatalf("Reboot() error: %v", err)
	}
}

func TestBridge_RebootUnexpectedAck(t *testing.T) {
	fake := newFakeTransport(map[string]string{
		"tn 01 01": "n 01 OK02x",
	})
	b := newBridge(testDisplayConfig(), fake)

	if err := b.Reboot(context.Background()); !errors.Is(err, ErrDecodingFailed) {
		t.Errorf("Reboot() error = %v, want ErrDecodingFailed", err)
	}
}

func TestBridge_PowerOnOff(t *testing.T) {
	fake := newFakeTransport(map[string]string{
		"ka 01 01": "a 01 OK01x",
		"ka 01 00": "a 01 OK00x",
	})
	b := newBridge(testDisplayConfig(), fake)

	if err := b.PowerOn(context.Background()); err != nil {
		t.Fatalf("PowerOn() error: %v", err)
	}
	if v, _ := b.cache.Value(PropPower); v != "On" {
		t.Errorf("power = %q after PowerOn, want %q", v, "On")
	}

	if err := b.PowerOff(context.Background()); err != nil {
		t.Fatalf("PowerOff() error: %v", err)
	}
	if v, _ := b.cache.Value(PropPower); v != "Off" {
		t.Errorf("power = %q after PowerOff, want %q", v, "Off")
	}
}

func TestBridge_Ping(t *testing.T) {
	fake := newFakeTransport(monitorReplies())
	b := newBridge(testDisplayConfig(), fake)

	if err := b.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}

	fake.mu.Lock()
	fake.replies = map[string]string{}
	fake.mu.Unlock()

	if err := b.Ping(context.Background()); err == nil {
		t.Error("Ping() should fail when the display does not answer")
	}
}

func TestBridge_StartAndClose(t *testing.T) {
	fake := newFakeTransport(monitorReplies())
	b := newBridge(testDisplayConfig(), fake)
	b.slotInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := b.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}

	// Let the first slot run.
	deadline := time.After(time.Second)
	for b.pollsSucceeded.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no poll completed before deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if fake.IsConnected() {
		t.Error("transport not closed")
	}
}
