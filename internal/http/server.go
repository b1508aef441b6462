package http

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"satisfaction/internal/core"
	"satisfaction/internal/log"
	"satisfaction/internal/middleware/ratelimit"
	"satisfaction/internal/middleware/security"
	appweb "satisfaction/web"
)

// Options tunes the server. Zero values pick defaults.
type Options struct {
	Logger            *log.Logger
	RequestsPerMinute int
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable it behind a proxy that overwrites them.
	TrustProxy        bool
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// Server serves the dashboard for one immutable table.
type Server struct {
	http.Server
	table     core.Table
	templates *template.Template
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	router    chi.Router
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, table core.Table, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	r := chi.NewRouter()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           r,
			ReadTimeout:       orDefault(opts.ReadTimeout, 10*time.Second),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      orDefault(opts.WriteTimeout, 10*time.Second),
			IdleTimeout:       orDefault(opts.IdleTimeout, 60*time.Second),
		},
		table:     table,
		templates: t,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		router:    r,
	}

	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(log.Middleware(logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(log.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.With(security.StaticAssetMiddleware(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(clientIP, s.onRateLimited))
		r.Get("/", s.handleIndex)
		r.Get("/_chart", s.handleChart)
	})

	return s, nil
}

// ListenAndServe is http.Server.ListenAndServe without the ErrServerClosed
// noise on graceful shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Starting HTTP server",
		log.FieldOperation, log.OpStartup,
		"addr", s.Addr,
		log.FieldRecords, s.table.Len())
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).
		Warn("Rate limit exceeded", log.FieldClientIP, clientIP(r), log.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// clientIP strips the port from RemoteAddr. Forwarding headers only count
// when Options.TrustProxy installed RealIP ahead of this.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
