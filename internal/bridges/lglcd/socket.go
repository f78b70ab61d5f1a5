package lglcd

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// closeOnce wraps a channel with sync.Once to prevent double-close panics.
type closeOnce struct {
	ch   chan struct{}
	once sync.Once
}

func newCloseOnce() *closeOnce {
	return &closeOnce{ch: make(chan struct{})}
}

func (c *closeOnce) Close() {
	c.once.Do(func() { close(c.ch) })
}

func (c *closeOnce) Done() <-chan struct{} {
	return c.ch
}

// Default timeouts for display communication.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 5 * time.Second
)

// ConnConfig holds display transport configuration.
type ConnConfig struct {
	// Address is the display's host:port.
	Address string

	// ConnectTimeout is the maximum time to wait for a dial. Default: 10s.
	ConnectTimeout time.Duration

	// ReadTimeout bounds a single reply read. Default: 10s.
	ReadTimeout time.Duration

	// Cooldown is the minimum spacing between consecutive sends. The panel's
	// serial bridge drops commands that arrive faster than it can ack them.
	Cooldown time.Duration
}

// ConnStats holds transport statistics.
type ConnStats struct {
	CommandsTx   uint64
	RepliesRx    uint64
	ErrorsTotal  uint64
	Reconnects   uint64
	ForcedCloses uint64
	LastActivity time.Time
	Connected    bool
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Transport is the request/reply exchange layer over the display socket.
// It exists as an interface so the bridge can be tested against a fake
// display without a TCP listener.
type Transport interface {
	Exchange(ctx context.Context, request []byte) ([]byte, error)
	ForceClose()
	IsConnected() bool
	Stats() ConnStats
	Close() error
}

// Ensure deviceConn implements Transport.
var _ Transport = (*deviceConn)(nil)

// deviceConn is the TCP transport to one display.
//
// The protocol is strictly request/reply: one command in flight at a time,
// serialised by an exchange mutex. Connections are opened lazily on the
// first exchange and reopened after any failure, so a rebooting panel costs
// one failed poll rather than a stuck session.
//
// Thread Safety: all methods are safe for concurrent use.
type deviceConn struct {
	cfg ConnConfig

	// exchangeMu serialises whole request/reply exchanges.
	exchangeMu sync.Mutex

	// connMu guards the connection pointer; held briefly so ForceClose can
	// slam the socket while an exchange is blocked in a read.
	connMu sync.Mutex
	conn   net.Conn
	reader *bufio.Reader

	// lastSend drives the cooldown window.
	lastSend time.Time

	done *closeOnce

	logger   Logger
	loggerMu sync.RWMutex

	commandsTx   atomic.Uint64
	repliesRx    atomic.Uint64
	errorsTotal  atomic.Uint64
	reconnects   atomic.Uint64
	forcedCloses atomic.Uint64
	lastActivity atomic.Int64
}

// newDeviceConn creates a transport for the given address. No connection is
// made until the first Exchange.
func newDeviceConn(cfg ConnConfig) *deviceConn {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	return &deviceConn{
		cfg:  cfg,
		done: newCloseOnce(),
	}
}

// Exchange sends one framed request and reads the terminated reply.
//
// The cooldown window since the previous send is waited out first. On any
// write or read failure the connection is torn down so the next exchange
// starts from a fresh dial.
//
// Parameters:
//   - ctx: Context for cancellation (checked before dial and send)
//   - request: Framed request bytes including the trailing carriage return
//
// Returns:
//   - []byte: The reply frame up to and including the 'x' terminator
//   - error: ErrNotConnected/ErrConnectionFailed wrapped dial errors, or
//     read/write failures
func (d *deviceConn) Exchange(ctx context.Context, request []byte) ([]byte, error) {
	d.exchangeMu.Lock()
	defer d.exchangeMu.Unlock()

	if d.isClosed() {
		return nil, ErrNotConnected
	}

	if err := d.waitCooldown(ctx); err != nil {
		return nil, err
	}

	conn, reader, err := d.ensureConnected(ctx)
	if err != nil {
		return nil, err
	}

	if err := conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout)); err != nil {
		d.teardown()
		return nil, fmt.Errorf("set write deadline: %w", err)
	}
	if _, err := conn.Write(request); err != nil {
		d.errorsTotal.Add(1)
		d.teardown()
		return nil, fmt.Errorf("write command: %w", err)
	}
	d.lastSend = time.Now()
	d.commandsTx.Add(1)

	if err := conn.SetReadDeadline(time.Now().Add(d.cfg.ReadTimeout)); err != nil {
		d.teardown()
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	frame, err := reader.ReadBytes(frameTerminator)
	if err != nil {
		d.errorsTotal.Add(1)
		d.teardown()
		return nil, fmt.Errorf("read reply: %w", err)
	}

	d.repliesRx.Add(1)
	d.lastActivity.Store(time.Now().Unix())
	return frame, nil
}

// waitCooldown sleeps off the remainder of the cooldown window since the
// last send. Returns early if the context is cancelled or the transport
// closed.
func (d *deviceConn) waitCooldown(ctx context.Context) error {
	if d.cfg.Cooldown <= 0 || d.lastSend.IsZero() {
		return nil
	}
	remaining := d.cfg.Cooldown - time.Since(d.lastSend)
	if remaining <= 0 {
		return nil
	}

	select {
	case <-time.After(remaining):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cooldown wait: %w", ctx.Err())
	case <-d.done.Done():
		return ErrNotConnected
	}
}

// ensureConnected returns the live connection, dialling if necessary.
func (d *deviceConn) ensureConnected(ctx context.Context) (net.Conn, *bufio.Reader, error) {
	d.connMu.Lock()
	if d.conn != nil {
		conn, reader := d.conn, d.reader
		d.connMu.Unlock()
		return conn, reader, nil
	}
	d.connMu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, d.cfg.ConnectTimeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", d.cfg.Address)
	if err != nil {
		d.errorsTotal.Add(1)
		return nil, nil, fmt.Errorf("%w: dial %s: %w", ErrConnectionFailed, d.cfg.Address, err)
	}

	d.connMu.Lock()
	d.conn = conn
	d.reader = bufio.NewReader(conn)
	reader := d.reader
	d.connMu.Unlock()

	d.reconnects.Add(1)
	d.lastActivity.Store(time.Now().Unix())
	d.logInfo("connected to display", "address", d.cfg.Address)
	return conn, reader, nil
}

// teardown closes and clears the current connection.
func (d *deviceConn) teardown() {
	d.connMu.Lock()
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
		d.reader = nil
	}
	d.connMu.Unlock()
}

// ForceClose slams the connection shut from outside the exchange path.
//
// The watchdog calls this when a command exceeds its timeout: closing the
// socket unblocks the pending read immediately, and the next exchange
// reconnects.
func (d *deviceConn) ForceClose() {
	d.forcedCloses.Add(1)
	d.logWarn("force-closing display connection")
	d.teardown()
}

// IsConnected reports whether a connection is currently open.
func (d *deviceConn) IsConnected() bool {
	d.connMu.Lock()
	defer d.connMu.Unlock()
	return d.conn != nil
}

// isClosed returns true if the transport has been closed.
func (d *deviceConn) isClosed() bool {
	select {
	case <-d.done.Done():
		return true
	default:
		return false
	}
}

// Close shuts the transport down permanently. Safe to call multiple times.
func (d *deviceConn) Close() error {
	d.done.Close()
	d.teardown()
	d.logInfo("display connection closed")
	return nil
}

// Stats returns current transport statistics.
func (d *deviceConn) Stats() ConnStats {
	return ConnStats{
		CommandsTx:   d.commandsTx.Load(),
		RepliesRx:    d.repliesRx.Load(),
		ErrorsTotal:  d.errorsTotal.Load(),
		Reconnects:   d.reconnects.Load(),
		ForcedCloses: d.forcedCloses.Load(),
		LastActivity: time.Unix(d.lastActivity.Load(), 0),
		Connected:    d.IsConnected(),
	}
}

// SetLogger sets the logger for this transport.
func (d *deviceConn) SetLogger(logger Logger) {
	d.loggerMu.Lock()
	d.logger = logger
	d.loggerMu.Unlock()
}

// logInfo logs an info message if a logger is set.
func (d *deviceConn) logInfo(msg string, keysAndValues ...any) {
	d.loggerMu.RLock()
	logger := d.logger
	d.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning if a logger is set.
func (d *deviceConn) logWarn(msg string, keysAndValues ...any) {
	d.loggerMu.RLock()
	logger := d.logger
	d.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}
