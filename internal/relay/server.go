// Package relay serves sessions over websockets so an external renderer can
// drive the player and draw the frames. Each connection owns one session.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Garsondee/Night-Watch/internal/config"
	"github.com/Garsondee/Night-Watch/internal/sim"
)

const maxMessageSize = 4096

// Option configures a Server.
type Option func(*Server)

// WithLogger injects a structured logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithSeed gives every session the same seed. By default each session is
// seeded from the time it starts.
func WithSeed(seed int64) Option {
	return func(s *Server) { s.seed = func() int64 { return seed } }
}

type Server struct {
	cfg    config.RelayConfig
	reg    *sim.Registry
	spawns sim.Spawns
	tun    sim.Tuning
	log    *zap.Logger
	seed   func() int64

	upgrader websocket.Upgrader
	active   atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc

	// mu orders session registration against Close.
	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// New builds a relay over a level registry, which is frozen here and shared
// read-only by every session.
func New(reg *sim.Registry, spawns sim.Spawns, tun sim.Tuning, cfg config.RelayConfig, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		reg:    reg,
		spawns: spawns,
		tun:    tun,
		log:    zap.NewNop(),
		seed:   func() int64 { return time.Now().UnixNano() },
	}
	for _, o := range opts {
		o(s)
	}
	reg.Freeze()
	s.ctx, s.cancel = context.WithCancel(context.Background())

	allowed := cfg.AllowedOrigins
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 16 * 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true // local development
			}
			origin := r.Header.Get("Origin")
			for _, o := range allowed {
				if o == origin {
					return true
				}
			}
			return false
		},
	}
	return s
}

// Handler routes the websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.serveWS)
	return mux
}

// Active returns the number of open sessions.
func (s *Server) Active() int { return int(s.active.Load()) }

// ListenAndServe serves until ctx is cancelled, then stops accepting,
// ends every session and waits for their goroutines.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("relay listening", zap.String("addr", s.cfg.Addr), zap.String("path", s.cfg.Path))

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}

// Close ends every session and waits for them to finish.
func (s *Server) Close() {
	s.mu.Lock()
	s.closing = true
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}

// track registers a connection with the wait group unless Close has begun.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	if n := s.active.Add(1); s.cfg.MaxSessions > 0 && int(n) > s.cfg.MaxSessions {
		s.active.Add(-1)
		s.log.Warn("session limit reached", zap.Int("max", s.cfg.MaxSessions))
		http.Error(w, "too many sessions", http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.active.Add(-1)
		s.log.Warn("ws upgrade failed", zap.Error(err), zap.String("origin", r.Header.Get("Origin")))
		return
	}
	if !s.track() {
		s.active.Add(-1)
		_ = conn.Close()
		return
	}
	go func() {
		defer s.wg.Done()
		defer s.active.Add(-1)
		s.runConn(s.ctx, conn)
	}()
}

// inputBox holds the latest input from the reader for the tick loop.
type inputBox struct {
	mu      sync.Mutex
	in      sim.Input
	restart bool
	dropped int
}

func (b *inputBox) put(in sim.Input) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.in = in
	b.restart = b.restart || in.Restart
}

func (b *inputBox) take() sim.Input {
	b.mu.Lock()
	defer b.mu.Unlock()
	in := b.in
	in.Restart = b.restart
	b.restart = false
	return in
}

func (b *inputBox) drop() {
	b.mu.Lock()
	b.dropped++
	b.mu.Unlock()
}

func (s *Server) runConn(ctx context.Context, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	id := uuid.NewString()
	seed := s.seed()
	remote := s.log.With(zap.String("remote", conn.RemoteAddr().String()))
	log := remote.With(zap.String("session", id))
	// The session tags its own lines with its id.
	sess := sim.NewSession(s.reg, s.spawns,
		sim.WithTuning(s.tun),
		sim.WithSeed(seed),
		sim.WithLogger(remote),
		sim.WithID(id))

	// Closing the connection unblocks the reader on shutdown.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if err := s.writeJSON(conn, WelcomeMsg{
		Type:       TypeWelcome,
		Session:    id,
		TickRateHz: s.tun.TickRateHz,
		Duration:   s.tun.DurationSeconds,
	}); err != nil {
		log.Debug("welcome failed", zap.Error(err))
		return
	}
	log.Info("relay session opened", zap.Int64("seed", seed), zap.Int("active", s.Active()))

	box := &inputBox{in: sim.Input{Yaw: sess.Player.Yaw}}
	go s.readLoop(ctx, cancel, conn, box)

	err := s.tickLoop(ctx, conn, sess, box)
	box.mu.Lock()
	dropped := box.dropped
	box.mu.Unlock()
	log.Info("relay session closed",
		zap.Int("ticks", sess.Ticks()),
		zap.Stringer("outcome", sess.Outcome()),
		zap.Int("dropped_inputs", dropped),
		zap.NamedError("cause", err))
}

func (s *Server) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, box *inputBox) {
	defer cancel()
	limit := rate.Limit(s.cfg.InputRate)
	if s.cfg.InputRate <= 0 {
		limit = rate.Inf
	}
	lim := rate.NewLimiter(limit, max(1, s.cfg.InputBurst))
	conn.SetReadLimit(maxMessageSize)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		if !lim.Allow() {
			box.drop()
			continue
		}
		var in InputMsg
		if err := json.Unmarshal(msg, &in); err != nil || in.Type != TypeInput {
			continue
		}
		box.put(in.Input)
	}
}

// tickLoop drives the session at its tick rate and feeds the survival
// clock the wall time between ticks.
func (s *Server) tickLoop(ctx context.Context, conn *websocket.Conn, sess *sim.Session, box *inputBox) error {
	hz := s.tun.TickRateHz
	if hz <= 0 {
		hz = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			f := sess.Tick(box.take())
			sess.Elapse(now.Sub(last))
			last = now
			if err := s.writeJSON(conn, FrameMsg{Type: TypeFrame, Frame: f}); err != nil {
				return err
			}
		}
	}
}

func (s *Server) writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	timeout := s.cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
