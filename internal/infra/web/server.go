package web

import (
	"encoding/json"
	"net/http"
	"time"

	"sim-activation-portal/internal/infra/i18n"
	"sim-activation-portal/internal/infra/metrics"
	"sim-activation-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Server struct {
	activation usecase.ActivationUseCase
	offers     usecase.OfferUseCase
	users      usecase.UserUseCase
	auth       *AuthManager
	locales    *i18n.Catalog
	timeout    time.Duration
	log        *zerolog.Logger
}

func NewServer(
	activation usecase.ActivationUseCase,
	offers usecase.OfferUseCase,
	users usecase.UserUseCase,
	auth *AuthManager,
	timeout time.Duration,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		activation: activation,
		offers:     offers,
		users:      users,
		auth:       auth,
		locales:    i18n.MustCatalog(),
		timeout:    timeout,
		log:        &l,
	}
}

// Routes builds the full HTTP surface of the portal.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID, RequestLog(s.log), Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if s.timeout > 0 {
			r.Use(Timeout(s.timeout))
		}
		r.Use(s.auth.OptionalSession)

		r.Get(usecase.ActivationPath, s.handleActivationPage)
		r.Get("/api/activation", s.handleActivationJSON)

		r.Route("/api/subscriptions", func(r chi.Router) {
			r.Get("/", s.handleOfferList)
			r.Get("/{id}", s.handleOfferGet)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/", s.handleOfferCreate)
				r.Patch("/{id}", s.handleOfferUpdate)
				r.Delete("/{id}", s.handleOfferDelete)
			})
		})

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/me", s.handleUserMe)
			r.Patch("/me", s.handleUserUpdateMe)
			r.Delete("/me", s.handleUserDeleteMe)
			r.With(RequireAdmin).Put("/{id}/billing", s.handleUserBilling)
		})
		r.Post("/api/session/refresh", s.handleSessionRefresh)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
