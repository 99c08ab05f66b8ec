package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/storyspark-lab/storyspark/pkg/usecase"
	"github.com/storyspark-lab/storyspark/pkg/utils/logging"
)

type Server struct {
	router      *chi.Mux
	uc          *usecase.UseCases
	tokenSecret string
}

type Option func(*Server)

// WithTokenSecret enables session token checks: session endpoints require
// the bearer token issued at session creation.
func WithTokenSecret(secret string) Option {
	return func(s *Server) {
		s.tokenSecret = secret
	}
}

func New(uc *usecase.UseCases, opts ...Option) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/characters", func(r chi.Router) {
		r.Post("/", s.createCharacter)
		r.Get("/", s.listCharacters)
		r.Get("/search", s.searchCharacters)
		r.Route("/{characterID}", func(r chi.Router) {
			r.Get("/", s.getCharacter)
			r.Put("/", s.updateCharacter)
			r.Delete("/", s.deleteCharacter)
		})
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			if s.tokenSecret != "" {
				r.Use(sessionTokenMiddleware(s.tokenSecret))
			}
			r.Get("/", s.getSession)
			r.Delete("/", s.abandonSession)
			r.Post("/step", s.stepSession)
			r.Post("/decision", s.decideSession)
			r.Post("/assemble", s.assembleSession)
			r.Get("/document", s.getDocument)
		})
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
