package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/rickgao/comet-subscriber/internal/connection"
)

// eventBufferSize bounds the queue between transport goroutines and the loop.
const eventBufferSize = 256

type eventKind int

const (
	eventOpen eventKind = iota
	eventMessage
	eventClose
)

// event is a transport callback tagged with the connection generation that produced it.
type event struct {
	kind eventKind
	gen  uint64
	data []byte
	err  error
}

// Supervisor keeps one logical session alive over a sequence of connections.
type Supervisor struct {
	cfg       Config
	transport connection.Transport
	clock     clockwork.Clock
	logger    *slog.Logger

	events chan event
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Loop-owned state. Only run() and the handlers it calls touch these.
	state             State
	attemptsRemaining int
	policy            *delayPolicy
	gen               uint64
	conn              connection.Conn
	connID            string
	connLogger        *slog.Logger
	heartbeat         clockwork.Ticker
	retry             clockwork.Timer

	statsMu sync.RWMutex
	stats   Stats
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock that drives the heartbeat and retry timers.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Supervisor) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New validates cfg and starts the first connection attempt immediately.
func New(cfg Config, transport connection.Transport, opts ...Option) (*Supervisor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrInvalidConfig)
	}

	s := &Supervisor{
		cfg:               cfg,
		transport:         transport,
		clock:             clockwork.NewRealClock(),
		logger:            slog.Default(),
		events:            make(chan event, eventBufferSize),
		done:              make(chan struct{}),
		state:             StateIdle,
		attemptsRemaining: cfg.MaxAttempts,
		policy:            newDelayPolicy(cfg.InitialDelay, cfg.BackoffMultiplier, cfg.MaxDelay),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "supervisor", "address", cfg.Address)
	s.connLogger = s.logger
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.publishStats()

	go s.run()

	return s, nil
}

// Stop tears the session down without scheduling a retry and waits for the loop to exit.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.cancel()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.logger.Warn("shutdown timeout waiting for supervisor loop")
		return ctx.Err()
	}
}

// Done is closed once the supervisor has terminated, either exhausted or stopped.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// Stats returns current statistics.
func (s *Supervisor) Stats() Stats {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return s.stats
}

// run is the event loop. Every state transition happens here.
func (s *Supervisor) run() {
	defer close(s.done)
	defer s.teardown()

	s.connect()

	for s.state != StateTerminated {
		select {
		case <-s.ctx.Done():
			s.logger.Info("supervisor stopped")
			return

		case ev := <-s.events:
			s.handle(ev)

		case <-timerChan(s.retry):
			s.retry = nil
			s.setState(StateIdle)
			s.connect()

		case <-tickerChan(s.heartbeat):
			// A close already queued must win over this tick.
			s.drainEvents()
			s.sendHeartbeat()
		}
	}
}

// drainEvents handles every event that is already queued, without blocking.
func (s *Supervisor) drainEvents() {
	for s.state != StateTerminated {
		select {
		case ev := <-s.events:
			s.handle(ev)
		default:
			return
		}
	}
}

func (s *Supervisor) handle(ev event) {
	if ev.gen != s.gen || s.conn == nil {
		s.logger.Debug("dropping event from superseded connection", "gen", ev.gen, "current_gen", s.gen)
		return
	}

	switch ev.kind {
	case eventOpen:
		s.onOpen()
	case eventMessage:
		s.onMessage(ev.data)
	case eventClose:
		s.onClose(ev.err)
	}
}

// connect starts one attempt, or terminates when the budget is spent.
func (s *Supervisor) connect() {
	if s.attemptsRemaining == 0 {
		s.terminate()
		return
	}

	s.gen++
	s.connID = uuid.NewString()
	s.connLogger = s.logger.With("conn_id", s.connID, "gen", s.gen)
	s.setState(StateConnecting)

	s.connLogger.Info("connecting", "attempts_remaining", s.attemptsRemaining)

	s.conn = s.transport.Connect(s.ctx, s.cfg.Address, &connHandler{s: s, gen: s.gen})

	s.updateStats(func(st *Stats) { st.Connects++ })
}

func (s *Supervisor) onOpen() {
	s.setState(StateAuthenticating)

	if err := s.authenticate(); err != nil {
		s.connLogger.Warn("authentication failed, closing connection", "error", err)
		s.conn.Close()
		return
	}

	s.setState(StateLive)
	s.connLogger.Info("connection live")

	if s.cfg.HeartbeatInterval > 0 {
		s.heartbeat = s.clock.NewTicker(s.cfg.HeartbeatInterval)
	}
}

// authenticate sends the credential frame. No acknowledgement is awaited.
func (s *Supervisor) authenticate() error {
	if s.cfg.AuthPayload == nil {
		return nil
	}

	payload, err := s.cfg.AuthPayload()
	if err != nil {
		return fmt.Errorf("build auth payload: %w", err)
	}
	if err := s.conn.Send(payload); err != nil {
		return fmt.Errorf("send auth payload: %w", err)
	}
	return nil
}

func (s *Supervisor) onMessage(body []byte) {
	s.connLogger.Debug("message received", "bytes", len(body), "body", string(body))
	s.updateStats(func(st *Stats) { st.Messages++ })

	if s.cfg.OnMessage != nil {
		s.cfg.OnMessage(body)
	}
}

func (s *Supervisor) sendHeartbeat() {
	if s.state != StateLive || s.conn == nil {
		return
	}

	if err := s.conn.Send(s.cfg.HeartbeatPayload); err != nil {
		s.connLogger.Debug("failed to send heartbeat", "error", err)
		return
	}

	s.connLogger.Debug("heartbeat sent")
	s.updateStats(func(st *Stats) { st.Heartbeats++ })
}

// onClose handles the end of a connection, whatever the cause.
func (s *Supervisor) onClose(err error) {
	s.stopHeartbeat()
	s.conn = nil
	s.setState(StateClosed)

	s.attemptsRemaining--
	s.connLogger.Info("connection closed", "error", err, "attempts_remaining", s.attemptsRemaining)

	if s.attemptsRemaining <= 0 {
		s.attemptsRemaining = 0
		s.terminate()
		return
	}

	attempt := s.cfg.MaxAttempts - s.attemptsRemaining
	delay := s.policy.Advance()
	s.retry = s.clock.NewTimer(delay)
	s.publishStats()

	s.connLogger.Info("reconnect scheduled",
		"attempt", attempt,
		"delay", delay,
		"next_delay", s.policy.Current(),
	)
	s.updateStats(func(st *Stats) { st.Retries++ })

	if s.cfg.OnRetry != nil {
		s.cfg.OnRetry(attempt, delay)
	}
}

func (s *Supervisor) terminate() {
	s.setState(StateTerminated)
	s.logger.Warn("reconnect attempts exhausted, giving up",
		"max_attempts", s.cfg.MaxAttempts,
	)

	if s.cfg.OnExhausted != nil {
		s.cfg.OnExhausted()
	}
}

func (s *Supervisor) stopHeartbeat() {
	if s.heartbeat != nil {
		s.heartbeat.Stop()
		s.heartbeat = nil
	}
}

// teardown releases the timers and the live connection when the loop exits.
func (s *Supervisor) teardown() {
	s.cancel()
	s.stopHeartbeat()

	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}

	s.setState(StateTerminated)
}

func (s *Supervisor) setState(state State) {
	s.state = state
	s.publishStats()
}

// publishStats copies the loop-owned fields into the shared snapshot.
func (s *Supervisor) publishStats() {
	s.updateStats(func(st *Stats) {
		st.State = s.state
		st.StateName = s.state.String()
		st.ConnID = s.connID
		st.AttemptsRemaining = s.attemptsRemaining
		st.CurrentDelay = s.policy.Current()
	})
}

func (s *Supervisor) updateStats(fn func(*Stats)) {
	s.statsMu.Lock()
	fn(&s.stats)
	s.statsMu.Unlock()
}

func timerChan(t clockwork.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.Chan()
}

func tickerChan(t clockwork.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.Chan()
}

// connHandler adapts transport callbacks for one connection onto the event loop.
type connHandler struct {
	s   *Supervisor
	gen uint64
}

func (h *connHandler) OnOpen() {
	h.post(event{kind: eventOpen, gen: h.gen})
}

func (h *connHandler) OnMessage(data []byte) {
	h.post(event{kind: eventMessage, gen: h.gen, data: data})
}

func (h *connHandler) OnClose(err error) {
	h.post(event{kind: eventClose, gen: h.gen, err: err})
}

func (h *connHandler) post(ev event) {
	select {
	case h.s.events <- ev:
	case <-h.s.ctx.Done():
	}
}
