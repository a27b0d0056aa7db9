package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mesh-intelligence/kroeg/internal/auth"
	"github.com/mesh-intelligence/kroeg/internal/jsonld"
	"github.com/mesh-intelligence/kroeg/internal/lease"
	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// ContextPath is where the server JSON-LD context is served.
const ContextPath = "/-/context"

// Server wires the handlers to leased connections.
type Server struct {
	Pool   lease.Connector
	Config types.ServerConfig
	Proc   jsonld.Processor
	Logger *slog.Logger
}

// Routes returns the handlers without connection management. Every
// request must already carry a Context.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get(ContextPath, ContextHandler)
	r.Method(http.MethodGet, "/*", GetHandler{Proc: s.Proc, Logger: s.Logger})
	r.Method(http.MethodPost, "/*", PostHandler{Proc: s.Proc, Logger: s.Logger})
	return r
}

// Handler returns the network handler: each request leases its own
// connection, authenticates its bearer token, and runs through Routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.withContext)
	r.Mount("/", s.Routes())
	return r
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Server) withContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := s.logger().With("request_id", middleware.GetReqID(ctx), "method", r.Method, "path", r.URL.Path)

		l, err := s.Pool.Connect(ctx)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		defer l.Close()

		entities, _ := l.Get()
		user := types.AnonymousUser()
		if raw := bearerToken(r); raw != "" {
			verified, err := auth.Verify(ctx, entities, raw)
			if err != nil {
				logger.Info("rejected bearer token", "err", err)
				writeError(w, logger, ErrUnauthorized)
				return
			}
			user = verified
		}

		c := types.NewContext(l, user, s.Config)
		next.ServeHTTP(w, r.WithContext(types.WithContext(ctx, c)))
		logger.Debug("handled request", "user", user.Subject)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
