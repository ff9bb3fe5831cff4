// Package server provides the HTTP frontend for the activity board.
//
// Every browser gets its own board, keyed by a session cookie, so status
// messages and in-flight removals of one visitor never show up for another.
// All boards talk to the same activities backend.
//
// # Endpoints
//
//   - GET / - The board page (fetches activities on every load)
//   - POST /signup - Signs a student up, then redirects to /
//   - POST /participants/remove - Confirms and removes a participant
//   - GET /fragments/{activities,selector,message} - Single board regions
//   - GET /api/board - JSON snapshot of the session's board
//   - GET /debug/console - Captured log trace of the session
//   - GET /health - Simple health check, returns "ok"
//   - GET /version - Build and runtime properties
//   - GET /metrics - Prometheus scrape endpoint
//   - GET /config - Returns the current board configuration as YAML
//   - POST /reload - Reloads the board configuration from disk
//
// The form endpoints are CSRF protected. /reload is an operator endpoint and
// is expected to sit behind the deployment's own access control.
//
// # Architecture
//
// Server-level deps (the board config and the backend client) are swapped
// atomically on reload. Boards never hold a client of their own; they resolve
// the current one on every call, so a reload takes effect for all sessions
// on their next request.
//
// # Example
//
//	cfg, err := serverconfig.LoadConfig("/etc/activityboard/server.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := server.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/csrf"
	"github.com/nomis52/activityboard/activity"
	"github.com/nomis52/activityboard/board"
	"github.com/nomis52/activityboard/buildinfo"
	"github.com/nomis52/activityboard/clients/activityclient"
	"github.com/nomis52/activityboard/config"
	"github.com/nomis52/activityboard/logging"
	"github.com/nomis52/activityboard/metrics"
	serverconfig "github.com/nomis52/activityboard/server/config"
	"github.com/nomis52/activityboard/server/cron"
	"github.com/nomis52/activityboard/server/handlers"
	"github.com/nomis52/activityboard/server/sessions"
	"github.com/nomis52/activityboard/server/types"
	"github.com/prometheus/client_golang/prometheus"
)

//go:embed static
var staticFiles embed.FS

const (
	defaultReadTimeout = 10 * time.Second
	// Removals wait for the fade and then the backend, so writes get longer.
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// serverDeps holds config-derived dependencies that are swapped atomically on reload.
type serverDeps struct {
	config *config.Config
	client *activityclient.Client
}

// Server is the HTTP server for the activity board.
type Server struct {
	cfg       *serverconfig.ServerConfig
	logger    *slog.Logger
	logLevel  *slog.LevelVar
	deps      atomic.Pointer[serverDeps]
	startedAt time.Time
	hostname  string

	registry     *metrics.ScrapeRegistry
	boardMetrics *board.Metrics
	liveSessions metrics.Gauge
	pruned       metrics.Counter

	console      *logging.Console
	store        *sessions.Store
	sessions     *handlers.CookieSessions
	csrfKey      []byte
	pruneTrigger *cron.CronTrigger
	httpServer   *http.Server
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger replaces the default JSON logger on stderr. The configured log
// level is not applied to it.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// New creates a new Server from the server config. It loads the board
// configuration named by cfg.BoardConfig, or uses the defaults when none is
// named, and initializes all dependencies.
func New(cfg *serverconfig.ServerConfig, opts ...Option) (*Server, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logLevel := &slog.LevelVar{}
	logLevel.Set(level)

	hostname, _ := os.Hostname()

	s := &Server{
		cfg:       cfg,
		logLevel:  logLevel,
		startedAt: time.Now(),
		hostname:  hostname,
		console:   logging.NewConsole(logging.DefaultConsoleLines),
		logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		})),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	if err := s.initMetrics(); err != nil {
		return nil, err
	}

	s.store = sessions.NewStore(s.newBoard,
		sessions.WithMaxSessions(cfg.Sessions.MaxSessions),
		sessions.WithEvictHook(s.console.Remove),
		sessions.WithLenHook(func(n int) { s.liveSessions.Set(float64(n)) }),
	)
	s.sessions = handlers.NewCookieSessions(s.store, cfg.CSRF.Secure)

	trigger, err := cron.NewCronTrigger("prune-sessions", cfg.Sessions.PruneSchedule, s.pruneSessions, s.logger)
	if err != nil {
		return nil, fmt.Errorf("creating prune trigger: %w", err)
	}
	s.pruneTrigger = trigger

	key, err := cfg.CSRFKey()
	if err != nil {
		return nil, err
	}
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating csrf key: %w", err)
		}
	}
	s.csrfKey = key

	return s, nil
}

func (s *Server) initMetrics() error {
	registry, err := metrics.NewScrapeRegistry(s.Config().Monitoring.MetricsPrefix)
	if err != nil {
		return err
	}
	boardMetrics, err := board.NewMetrics(registry)
	if err != nil {
		return err
	}
	liveSessions, err := registry.NewGauge(prometheus.GaugeOpts{
		Name: "sessions",
		Help: "Number of live board sessions",
	})
	if err != nil {
		return err
	}
	pruned, err := registry.NewCounter(prometheus.CounterOpts{
		Name: "sessions_pruned_total",
		Help: "Sessions removed after being idle",
	})
	if err != nil {
		return err
	}

	s.registry = registry
	s.boardMetrics = boardMetrics
	s.liveSessions = liveSessions
	s.pruned = pruned
	return nil
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogLevel changes the server's log level at runtime.
func (s *Server) SetLogLevel(level slog.Level) {
	s.logLevel.Set(level)
}

// Reload reads the board config from disk and rebuilds the backend client.
// The previous deps stay in place when the new config is invalid.
func (s *Server) Reload() error {
	var cfg config.Config
	if path := s.cfg.BoardConfig; path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		// No file, but the environment still applies.
		cfg = config.Default()
		cfg.ApplyEnv(os.LookupEnv)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	client, err := activityclient.New(cfg.Backend.URL,
		activityclient.WithTimeout(cfg.Backend.Timeout),
		activityclient.WithUserAgent(cfg.Backend.UserAgent),
		activityclient.WithLogger(s.logger),
	)
	if err != nil {
		return fmt.Errorf("creating backend client: %w", err)
	}

	s.deps.Store(&serverDeps{
		config: &cfg,
		client: client,
	})

	s.logger.Info("configuration loaded",
		"config_path", s.cfg.BoardConfig,
		"backend", cfg.Backend.URL,
	)
	return nil
}

// Config returns the current board configuration.
func (s *Server) Config() *config.Config {
	return s.deps.Load().config
}

// Properties implements handlers.PropertiesProvider.
func (s *Server) Properties() types.ServerProperties {
	return types.ServerProperties{
		Build:     buildinfo.Get(),
		StartedAt: s.startedAt,
		Hostname:  s.hostname,
		Backend:   s.deps.Load().client.BaseURL(),
		Sessions:  s.store.Len(),
	}
}

// NextPrune returns when idle sessions are next pruned.
func (s *Server) NextPrune() time.Time {
	return s.pruneTrigger.NextRun()
}

// newBoard is the sessions.BoardFactory. Board timings are read from the
// config current at session creation.
func (s *Server) newBoard(sessionID string) *board.Board {
	cfg := s.Config()
	return board.New(liveBackend{s},
		board.WithLogger(s.console.LoggerForSession(s.logger, sessionID)),
		board.WithMetrics(s.boardMetrics),
		board.WithFadeDelay(cfg.Board.FadeDelay),
		board.WithMessageTTL(cfg.Board.MessageTTL),
	)
}

func (s *Server) pruneSessions(ctx context.Context) error {
	n := s.store.Prune(s.cfg.Sessions.IdleTimeout)
	s.pruned.Add(float64(n))
	if n > 0 {
		s.logger.Info("pruned idle sessions", "count", n, "remaining", s.store.Len())
	}
	return nil
}

// liveBackend sends every board call to the backend client current at the
// time of the call.
type liveBackend struct {
	s *Server
}

func (b liveBackend) List(ctx context.Context) (activity.Collection, error) {
	return b.s.deps.Load().client.List(ctx)
}

func (b liveBackend) Signup(ctx context.Context, activityName, email string) (string, error) {
	return b.s.deps.Load().client.Signup(ctx, activityName, email)
}

func (b liveBackend) Remove(ctx context.Context, activityName, email string) (string, error) {
	return b.s.deps.Load().client.Remove(ctx, activityName, email)
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return mux
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs a graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Listener.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	useTLS := s.cfg.Listener.TLSCert != ""
	if useTLS {
		loader, err := NewCertLoader(s.cfg.Listener.TLSCert, s.cfg.Listener.TLSKey, s.logger)
		if err != nil {
			return err
		}
		s.httpServer.TLSConfig = &tls.Config{
			GetCertificate: loader.GetCertificate,
			MinVersion:     tls.VersionTLS12,
		}
		certTrigger, err := cron.NewCronTrigger("reload-cert", certCheckSchedule, loader.Check, s.logger)
		if err != nil {
			return fmt.Errorf("creating cert trigger: %w", err)
		}
		certTrigger.Start(ctx)
	}

	s.logger.Info("starting prune trigger", "next_run", s.pruneTrigger.NextRun())
	s.pruneTrigger.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"addr", s.cfg.Listener.Addr,
			"tls", useTLS,
			"backend", s.Config().Backend.URL,
		)
		var err error
		if useTLS {
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	title := handlers.DefaultTitle

	// Browser forms, CSRF protected
	forms := http.NewServeMux()
	forms.Handle("GET /{$}", handlers.NewPageHandler(s.logger, s.sessions, title))
	forms.Handle("POST /signup", handlers.NewSignupHandler(s.logger, s.sessions))
	forms.Handle("POST /participants/remove", handlers.NewRemoveHandler(s.logger, s.sessions, title))
	forms.Handle("GET /fragments/activities", handlers.NewFragmentHandler(s.logger, s.sessions, handlers.ActivitiesFragment))
	forms.Handle("GET /fragments/selector", handlers.NewFragmentHandler(s.logger, s.sessions, handlers.SelectorFragment))
	forms.Handle("GET /fragments/message", handlers.NewFragmentHandler(s.logger, s.sessions, handlers.MessageFragment))

	protect := csrf.Protect(s.csrfKey,
		csrf.Secure(s.cfg.CSRF.Secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailure)),
	)

	// API endpoints
	mux.HandleFunc("GET /health", handlers.HandleHealth)
	mux.Handle("GET /version", handlers.NewVersionHandler(s))
	mux.Handle("GET /metrics", s.registry.Handler())
	mux.Handle("GET /config", handlers.NewConfigHandler(s))
	mux.Handle("POST /reload", handlers.NewReloadHandler(s.logger, s))
	mux.Handle("GET /api/board", handlers.NewBoardHandler(s.logger, s.sessions))
	mux.Handle("GET /debug/console", handlers.NewConsoleHandler(s.logger, s.sessions, s.console))

	mux.Handle("GET /static/", http.FileServerFS(staticFiles))
	mux.Handle("/", s.plaintext(protect(forms)))
}

// plaintext tells the CSRF middleware the request arrived over HTTP, which
// relaxes the Referer check it applies to HTTPS requests.
func (s *Server) plaintext(next http.Handler) http.Handler {
	if s.cfg.Listener.TLSCert != "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func (s *Server) csrfFailure(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("rejected form post", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	http.Error(w, "Forbidden - the form expired, reload the page and try again", http.StatusForbidden)
}
