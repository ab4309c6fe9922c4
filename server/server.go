// Package server exposes a running simulation to external renderers: JSON
// snapshots over HTTP and a websocket stream with one snapshot per frame.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/parcel-sim/parcel-sim/sim"
)

var log = logrus.WithField("module", "server")

// Options configures the frame loop.
type Options struct {
	FrameInterval  time.Duration // wall-clock time between frames
	BroadcastEvery int           // broadcast one frame in N (1 = every frame)
}

// DefaultOptions runs at roughly 30 frames per second.
func DefaultOptions() Options {
	return Options{FrameInterval: 33 * time.Millisecond, BroadcastEvery: 1}
}

// Server drives one Simulator in real time. The simulator itself is not
// thread-safe, so every access goes through mu.
type Server struct {
	mu     sync.Mutex
	sim    *sim.Simulator
	frames int

	hub      *Hub
	opts     Options
	upgrader websocket.Upgrader
	router   chi.Router
}

// New wraps s. Zero option fields take their defaults.
func New(s *sim.Simulator, opts Options) *Server {
	def := DefaultOptions()
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = def.FrameInterval
	}
	if opts.BroadcastEvery <= 0 {
		opts.BroadcastEvery = def.BroadcastEvery
	}
	srv := &Server{
		sim:  s,
		hub:  NewHub(),
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// renderers run locally, usually from file:// or a dev server
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	srv.router = srv.routes()
	return srv
}

func (srv *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", srv.handleHealth)
	r.Get("/snapshot", srv.handleSnapshot)
	r.Get("/metrics", srv.handleMetrics)
	r.Post("/scene/{name}", srv.handleSwitchScene)
	r.Get("/ws", srv.handleWebSocket)
	return r
}

// Handler returns the HTTP handler.
func (srv *Server) Handler() http.Handler { return srv.router }

// Advance steps the simulator by elapsedMs and broadcasts the frame when it
// is due. It is what the frame loop calls on every tick.
func (srv *Server) Advance(elapsedMs float64) {
	srv.mu.Lock()
	srv.sim.Step(elapsedMs)
	srv.frames++
	due := srv.frames%srv.opts.BroadcastEvery == 0
	var snap sim.Snapshot
	if due {
		snap = srv.sim.Snapshot()
	}
	srv.mu.Unlock()

	if due {
		if err := srv.hub.Broadcast(snap); err != nil {
			log.Errorf("encoding frame: %v", err)
		}
	}
}

// Snapshot returns the current state under the lock.
func (srv *Server) Snapshot() sim.Snapshot {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.sim.Snapshot()
}

// RunFrames advances the simulation by measured wall-clock time on every
// frame tick until ctx is done. The hub runs alongside it.
func (srv *Server) RunFrames(ctx context.Context) {
	go srv.hub.Run(ctx)

	ticker := time.NewTicker(srv.opts.FrameInterval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			srv.Advance(float64(now.Sub(last)) / float64(time.Millisecond))
			last = now
		}
	}
}

// ListenAndServe serves HTTP on addr and runs the frame loop until ctx is
// done, then shuts the listener down gracefully.
func (srv *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go srv.RunFrames(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("serving on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
