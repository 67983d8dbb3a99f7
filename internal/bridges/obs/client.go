package obs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
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

// Default timeouts and intervals for obs-websocket communication.
const (
	// defaultConnectTimeout bounds dial plus handshake.
	defaultConnectTimeout = 10 * time.Second

	// defaultRequestTimeout bounds a single request/response round trip.
	defaultRequestTimeout = 10 * time.Second

	// defaultWriteTimeout is the deadline for writing one frame.
	defaultWriteTimeout = 5 * time.Second

	// defaultReconnectInterval is the initial delay between reconnection attempts.
	defaultReconnectInterval = 2 * time.Second

	// maxReconnectInterval is the maximum delay between reconnection attempts.
	maxReconnectInterval = time.Minute

	// eventQueueSize is the buffer size for the event callback queue.
	eventQueueSize = 256
)

// Config holds obs-websocket connection configuration.
type Config struct {
	// URL is the server address, e.g. "ws://127.0.0.1:4455".
	URL string

	// ConnectTimeout bounds dial plus handshake.
	// Default: 10 seconds.
	ConnectTimeout time.Duration

	// RequestTimeout bounds each request when the caller's context has no
	// earlier deadline.
	// Default: 10 seconds.
	RequestTimeout time.Duration

	// ReconnectInterval is the initial delay between reconnection attempts.
	// Default: 2 seconds.
	ReconnectInterval time.Duration

	// EventSubscriptions is the event category bitmask sent in Identify.
	// Default: DefaultEventSubscriptions.
	EventSubscriptions uint32
}

// Stats holds operational statistics.
type Stats struct {
	RequestsTotal   uint64
	RequestErrors   uint64 // Requests rejected by the server or lost in transit
	EventsRx        uint64
	EventsDropped   uint64 // Events dropped due to a full callback queue
	ReconnectsTotal uint64
	ServerVersion   string
	LastActivity    time.Time
	Connected       bool
	Reconnecting    bool
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Connector interface for testability.
type Connector interface {
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
	SetOnEvent(callback func(Event))
	SetOnReconnect(callback func())
	IsConnected() bool
	Stats() Stats
	HealthCheck(ctx context.Context) error
	Close() error
}

// Ensure Client implements Connector.
var _ Connector = (*Client)(nil)

// callResult carries a response, or the reason none will arrive.
type callResult struct {
	resp requestResponse
	err  error
}

// Client is an obs-websocket v5 connection.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Event callbacks are invoked in order from a single goroutine.
//
// Auto-Reconnection:
//   - When the connection is lost, in-flight requests fail with ErrNotConnected
//     and the client reconnects with exponential backoff starting at
//     ReconnectInterval up to maxReconnectInterval.
//   - Reconnection stops only when Close() is called.
type Client struct {
	cfg Config

	// Connection state
	connMu        sync.RWMutex
	conn          *websocket.Conn
	connected     bool
	serverVersion string

	// Only one writer per connection
	writeMu sync.Mutex

	// In-flight requests by request ID
	pendingMu sync.Mutex
	pending   map[string]chan callResult

	reconnecting atomic.Bool

	// Callbacks
	callbackMu  sync.RWMutex
	onEvent     func(Event)
	onReconnect func()
	eventQueue  chan Event

	// Shutdown coordination
	done *closeOnce
	wg   sync.WaitGroup

	logger   Logger
	loggerMu sync.RWMutex

	// Statistics
	requestsTotal   atomic.Uint64
	requestErrors   atomic.Uint64
	eventsRx        atomic.Uint64
	eventsDropped   atomic.Uint64
	reconnectsTotal atomic.Uint64
	lastActivity    atomic.Int64
}

// Connect opens a WebSocket to obs-websocket and completes the handshake.
//
// Parameters:
//   - ctx: Context for cancellation (used for initial connection)
//   - cfg: Connection configuration
//
// Returns:
//   - *Client: Identified client ready for requests
//   - error: ErrAuthRequired for password-protected servers, or
//     ErrConnectionFailed wrapping the cause
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ReconnectInterval == 0 {
		cfg.ReconnectInterval = defaultReconnectInterval
	}
	if cfg.EventSubscriptions == 0 {
		cfg.EventSubscriptions = DefaultEventSubscriptions
	}

	c := &Client{
		cfg:        cfg,
		pending:    make(map[string]chan callResult),
		eventQueue: make(chan Event, eventQueueSize),
		done:       newCloseOnce(),
	}

	conn, version, err := c.open(ctx)
	if err != nil {
		return nil, err
	}

	c.connMu.Lock()
	c.conn = conn
	c.connected = true
	c.serverVersion = version
	c.connMu.Unlock()
	c.lastActivity.Store(time.Now().Unix())

	c.wg.Add(2)
	go c.eventWorker()
	go c.readLoop()

	return c, nil
}

// open dials the server and completes Hello/Identify within ConnectTimeout.
func (c *Client) open(ctx context.Context) (*websocket.Conn, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.cfg.ConnectTimeout,
		Subprotocols:     []string{subprotocol},
	}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: dial %s: %w", ErrConnectionFailed, c.cfg.URL, err)
	}

	version, err := c.handshake(ctx, conn)
	if err != nil {
		conn.Close()
		if errors.Is(err, ErrAuthRequired) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: handshake: %w", ErrConnectionFailed, err)
	}
	return conn, version, nil
}

// handshake reads Hello, sends Identify and waits for Identified.
func (c *Client) handshake(ctx context.Context, conn *websocket.Conn) (string, error) {
	deadline, _ := ctx.Deadline()
	if err := conn.SetReadDeadline(deadline); err != nil {
		return "", fmt.Errorf("set read deadline: %w", err)
	}

	var hello helloData
	if err := readOp(conn, OpHello, &hello); err != nil {
		return "", err
	}
	if len(hello.Authentication) > 0 && string(hello.Authentication) != "null" {
		return "", ErrAuthRequired
	}

	if err := conn.SetWriteDeadline(deadline); err != nil {
		return "", fmt.Errorf("set write deadline: %w", err)
	}
	identify := outgoing{Op: OpIdentify, D: identifyData{
		RPCVersion:         rpcVersion,
		EventSubscriptions: c.cfg.EventSubscriptions,
	}}
	if err := conn.WriteJSON(identify); err != nil {
		return "", fmt.Errorf("write identify: %w", err)
	}

	var identified identifiedData
	if err := readOp(conn, OpIdentified, &identified); err != nil {
		return "", err
	}

	// Clear handshake deadlines; the read loop runs without one.
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return "", fmt.Errorf("clear read deadline: %w", err)
	}
	return hello.ObsWebSocketVersion, nil
}

// readOp reads one message and requires it to carry op.
func readOp(conn *websocket.Conn, op int, into any) error {
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		return fmt.Errorf("read op %d: %w", op, err)
	}
	if env.Op != op {
		return fmt.Errorf("%w: expected op %d, got %d", ErrProtocol, op, env.Op)
	}
	if err := json.Unmarshal(env.D, into); err != nil {
		return fmt.Errorf("%w: decoding op %d: %w", ErrProtocol, op, err)
	}
	return nil
}

// readLoop dispatches incoming messages. On connection loss it fails
// in-flight requests and reconnects.
func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.isClosed() {
				return
			}
			c.logError("read failed", err)
			c.handleDisconnect()
			if !c.reconnect() {
				return
			}
			continue
		}

		c.lastActivity.Store(time.Now().Unix())
		c.dispatch(data)
	}
}

// dispatch routes one message by opcode.
func (c *Client) dispatch(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logError("malformed message", err)
		return
	}

	switch env.Op {
	case OpRequestResponse:
		var resp requestResponse
		if err := json.Unmarshal(env.D, &resp); err != nil {
			c.logError("malformed request response", err)
			return
		}
		c.pendingMu.Lock()
		ch, ok := c.pending[resp.RequestID]
		c.pendingMu.Unlock()
		if !ok {
			c.logDebug("response for unknown request", "request_id", resp.RequestID, "request_type", resp.RequestType)
			return
		}
		select {
		case ch <- callResult{resp: resp}:
		default:
		}

	case OpEvent:
		var ev Event
		if err := json.Unmarshal(env.D, &ev); err != nil {
			c.logError("malformed event", err)
			return
		}
		c.eventsRx.Add(1)

		c.callbackMu.RLock()
		hasCallback := c.onEvent != nil
		c.callbackMu.RUnlock()
		if !hasCallback {
			return
		}
		select {
		case c.eventQueue <- ev:
		default:
			c.eventsDropped.Add(1)
			c.logError("event queue full, dropping event", fmt.Errorf("event %s", ev.Type))
		}

	default:
		c.logDebug("ignoring message", "op", env.Op)
	}
}

// eventWorker delivers queued events in arrival order.
func (c *Client) eventWorker() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done.Done():
			return
		case ev := <-c.eventQueue:
			c.callbackMu.RLock()
			callback := c.onEvent
			c.callbackMu.RUnlock()

			if callback != nil {
				c.safeCallback(func() { callback(ev) })
			}
		}
	}
}

func (c *Client) safeCallback(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logError("callback panic", fmt.Errorf("%v", r))
		}
	}()
	fn()
}

// Call sends a request and waits for its response.
//
// The wait ends at the earlier of ctx's deadline and RequestTimeout.
//
// Parameters:
//   - ctx: Context for cancellation
//   - method: obs-websocket request type, e.g. "GetSceneList"
//   - params: Request data marshalled as JSON (may be nil)
//
// Returns:
//   - json.RawMessage: The response data (may be empty)
//   - error: *RequestError when the server rejects the request,
//     ErrNotConnected, ErrTimeout, ErrClosed, or ctx.Err()
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}

	id := uuid.New().String()
	ch := make(chan callResult, 1)

	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	c.requestsTotal.Add(1)

	msg := outgoing{Op: OpRequest, D: requestData{RequestType: method, RequestID: id, RequestData: params}}
	if err := c.write(msg); err != nil {
		c.requestErrors.Add(1)
		return nil, err
	}

	timer := time.NewTimer(c.cfg.RequestTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			c.requestErrors.Add(1)
			return nil, res.err
		}
		if !res.resp.RequestStatus.Result {
			c.requestErrors.Add(1)
			return nil, &RequestError{
				RequestType: method,
				Code:        res.resp.RequestStatus.Code,
				Comment:     res.resp.RequestStatus.Comment,
			}
		}
		return res.resp.ResponseData, nil
	case <-timer.C:
		c.requestErrors.Add(1)
		return nil, fmt.Errorf("%w: %s", ErrTimeout, method)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done.Done():
		return nil, ErrClosed
	}
}

// write sends one frame on the current connection.
func (c *Client) write(msg any) error {
	c.connMu.RLock()
	conn := c.conn
	connected := c.connected
	c.connMu.RUnlock()

	if conn == nil || !connected {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout)); err != nil {
		return fmt.Errorf("%w: set deadline: %w", ErrNotConnected, err)
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("%w: write: %w", ErrNotConnected, err)
	}
	return nil
}

// handleDisconnect marks the client disconnected and fails in-flight requests.
func (c *Client) handleDisconnect() {
	c.connMu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.connMu.Unlock()

	c.pendingMu.Lock()
	for _, ch := range c.pending {
		select {
		case ch <- callResult{err: ErrNotConnected}:
		default:
		}
	}
	c.pendingMu.Unlock()

	if wasConnected {
		c.logInfo("connection lost, will attempt reconnection")
	}
}

// reconnect re-establishes the connection with exponential backoff.
// Returns true if reconnection succeeded, false if shutdown was signalled.
func (c *Client) reconnect() bool {
	c.reconnecting.Store(true)
	defer c.reconnecting.Store(false)

	c.closeOldConnection()

	backoff := c.cfg.ReconnectInterval
	attempt := 0
	for {
		if c.isClosed() {
			return false
		}

		attempt++
		c.logInfo("attempting reconnection", "attempt", attempt, "backoff", backoff.String())

		conn, version, err := c.open(context.Background())
		if err != nil {
			c.logError("reconnect failed", err)

			select {
			case <-c.done.Done():
				return false
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * 1.5)
			if backoff > maxReconnectInterval {
				backoff = maxReconnectInterval
			}
			continue
		}

		c.connMu.Lock()
		if c.isClosed() {
			c.connMu.Unlock()
			conn.Close()
			return false
		}
		c.conn = conn
		c.connected = true
		c.serverVersion = version
		c.connMu.Unlock()

		c.reconnectsTotal.Add(1)
		c.lastActivity.Store(time.Now().Unix())
		c.logInfo("reconnection successful", "total_reconnects", c.reconnectsTotal.Load())

		c.callbackMu.RLock()
		callback := c.onReconnect
		c.callbackMu.RUnlock()
		if callback != nil {
			go c.safeCallback(callback)
		}
		return true
	}
}

func (c *Client) closeOldConnection() {
	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.connMu.Unlock()
}

// isClosed returns true if the client has been closed.
func (c *Client) isClosed() bool {
	select {
	case <-c.done.Done():
		return true
	default:
		return false
	}
}

// Close sends a close frame, closes the connection and waits for the
// background goroutines. Safe to call multiple times.
func (c *Client) Close() error {
	c.done.Close()

	c.connMu.Lock()
	c.connected = false
	conn := c.conn
	c.connMu.Unlock()

	if conn != nil {
		c.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		conn.Close()
	}

	c.wg.Wait()
	c.logInfo("connection closed")
	return nil
}

// SetOnEvent sets the callback for server events.
//
// Events are delivered in arrival order from one goroutine. Panics in the
// callback are recovered and logged.
func (c *Client) SetOnEvent(callback func(Event)) {
	c.callbackMu.Lock()
	c.onEvent = callback
	c.callbackMu.Unlock()
}

// SetOnReconnect sets a callback run after each successful reconnection.
func (c *Client) SetOnReconnect(callback func()) {
	c.callbackMu.Lock()
	c.onReconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets the logger for this client.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// IsConnected returns true if the client is identified with the server.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

// Stats returns current operational statistics.
func (c *Client) Stats() Stats {
	c.connMu.RLock()
	version := c.serverVersion
	connected := c.connected
	c.connMu.RUnlock()

	return Stats{
		RequestsTotal:   c.requestsTotal.Load(),
		RequestErrors:   c.requestErrors.Load(),
		EventsRx:        c.eventsRx.Load(),
		EventsDropped:   c.eventsDropped.Load(),
		ReconnectsTotal: c.reconnectsTotal.Load(),
		ServerVersion:   version,
		LastActivity:    time.Unix(c.lastActivity.Load(), 0),
		Connected:       connected,
		Reconnecting:    c.reconnecting.Load(),
	}
}

// HealthCheck verifies the server answers a GetVersion request.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	_, err := c.Call(ctx, "GetVersion", nil)
	return err
}

func (c *Client) currentLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

func (c *Client) logDebug(msg string, keysAndValues ...any) {
	if logger := c.currentLogger(); logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}

func (c *Client) logInfo(msg string, keysAndValues ...any) {
	if logger := c.currentLogger(); logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

func (c *Client) logError(msg string, err error) {
	if logger := c.currentLogger(); logger != nil {
		logger.Error(msg, "error", err)
	}
}
