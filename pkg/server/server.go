package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/minimax"
	"github.com/montplusa/tictactoe-evolve/pkg/ai/perceptron"
	"github.com/montplusa/tictactoe-evolve/pkg/game"
	"github.com/montplusa/tictactoe-evolve/pkg/logx"
	"github.com/montplusa/tictactoe-evolve/pkg/training"
)

// Config configures the HTTP service.
type Config struct {
	Addr              string
	Training          training.Config // Training.WeightsPath is also where the served network is read
	DefaultDifficulty minimax.Difficulty
	SessionTTL        time.Duration // 0 keeps sessions forever
	ShutdownTimeout   time.Duration
	Seed              int64
	RequestLog        bool
}

func DefaultConfig() Config {
	return Config{
		Addr:              ":5000",
		Training:          training.DefaultConfig(),
		DefaultDifficulty: minimax.Hard,
		SessionTTL:        time.Hour,
		ShutdownTimeout:   5 * time.Second,
		RequestLog:        true,
	}
}

// Server serves matches against the solver or the trained network and
// launches training runs.
type Server struct {
	cfg        Config
	router     chi.Router
	sessions   *Store
	legacy     *Session
	hub        *Hub
	supervisor *training.Supervisor
	network    atomic.Pointer[perceptron.Model]

	rngMu sync.Mutex
	rng   *rand.Rand

	done      chan struct{}
	closeOnce sync.Once
}

// New builds the service and loads the trained network if one exists.
func New(cfg Config) (*Server, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Server{
		cfg:      cfg,
		sessions: NewStore(),
		hub:      NewHub(),
		rng:      rand.New(rand.NewSource(seed)),
		done:     make(chan struct{}),
	}
	legacy, err := s.sessions.Create()
	if err != nil {
		return nil, err
	}
	s.legacy = legacy
	s.supervisor = training.NewSupervisor(s.onTrained, s.hub)
	if err := s.LoadNetwork(); err != nil {
		return nil, err
	}
	s.router = s.routes()
	go s.hub.Run(s.done)
	return s, nil
}

// LoadNetwork replaces the served network with the saved artifact. A missing
// artifact leaves the server untrained.
func (s *Server) LoadNetwork() error {
	path := s.cfg.Training.WeightsPath
	net, err := perceptron.Load(path)
	if errors.Is(err, perceptron.ErrNoArtifact) {
		logx.Printf(logx.SRV, "%s", logx.Warn(fmt.Sprintf("no trained network at %s", path)))
		s.network.Store(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load network: %w", err)
	}
	s.network.Store(perceptron.Compile(net))
	logx.Printf(logx.SRV, "loaded trained network from %s", path)
	return nil
}

func (s *Server) onTrained(res training.Result) {
	if err := s.LoadNetwork(); err != nil {
		logx.Printf(logx.SRV, "%s %v", logx.Error("reload after training:"), err)
		return
	}
	s.hub.Publish("done", map[string]any{
		"fitness":    res.Fitness,
		"generation": res.Generation,
		"reached":    res.Reached,
	})
}

// Trained reports whether a network is being served.
func (s *Server) Trained() bool { return s.network.Load() != nil }

func (s *Server) Handler() http.Handler { return s.router }

// Supervisor exposes the training supervisor.
func (s *Server) Supervisor() *training.Supervisor { return s.supervisor }

// engine returns the opponent for a move request.
func (s *Server) engine(mode string, d minimax.Difficulty) (game.AI, error) {
	switch mode {
	case "", "minimax":
		s.rngMu.Lock()
		seed := s.rng.Int63()
		s.rngMu.Unlock()
		return minimax.New(d, rand.New(rand.NewSource(seed))), nil
	case "neural":
		model := s.network.Load()
		if model == nil {
			return nil, errUntrained
		}
		return perceptron.NewAgent("neural", model), nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

var errUntrained = errors.New("neural network not trained")

// Close stops background work. Running training is cancelled.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.supervisor.Cancel()
	})
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()
	if s.cfg.SessionTTL > 0 {
		go s.pruneLoop()
	}

	server := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.router,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()
	logx.Printf(logx.SRV, "listening on %s", s.cfg.Addr)

	var runErr error
	select {
	case <-ctx.Done():
		logx.Printf(logx.SRV, "shutdown signal received: %v", ctx.Err())
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Printf(logx.SRV, "graceful shutdown failed: %v", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			logx.Printf(logx.SRV, "forced close failed: %v", closeErr)
		}
	}
	return runErr
}

func (s *Server) pruneLoop() {
	ticker := time.NewTicker(s.cfg.SessionTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			if n := s.sessions.Prune(now.Add(-s.cfg.SessionTTL), s.legacy); n > 0 {
				logx.Printf(logx.SRV, "pruned %d idle sessions, %d live", n, s.sessions.Len())
			}
		}
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.cfg.RequestLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.withSession(s.handleGetSession))
			r.Post("/move", s.withSession(s.handleMove))
			r.Post("/reset", s.withSession(s.handleReset))
		})
	})

	r.Post("/move", func(w http.ResponseWriter, r *http.Request) { s.handleMove(w, r, s.legacy) })
	r.Post("/reset", func(w http.ResponseWriter, r *http.Request) { s.handleReset(w, r, s.legacy) })

	r.Post("/train", s.handleStartTraining)
	r.Get("/train", s.handleTrainingStatus)
	r.Get("/ws/train", func(w http.ResponseWriter, r *http.Request) {
		serveTrainWS(s.hub, s.status(), w, r)
	})
	return r
}
