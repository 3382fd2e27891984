package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig bundles the handler groups and router options.
type RouterConfig struct {
	OAuth        *OAuthHandlers
	Webhooks     *WebhookHandlers
	Integrations *IntegrationHandlers
	Requests     *RequestHandlers
	CORSOrigin   string

	// Healthz reports component health for the /health endpoint.
	Healthz func() map[string]interface{}
}

// NewRouter assembles the service's HTTP routes. Webhook and public routes
// skip user auth; everything under /api except the public listing requires an
// authenticated user.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		payload := map[string]interface{}{"status": "ok"}
		if cfg.Healthz != nil {
			for k, v := range cfg.Healthz() {
				payload[k] = v
			}
		}
		respondJSON(w, http.StatusOK, payload)
	})

	// Provider webhooks authenticate by signature, not user identity.
	r.Route("/webhooks", func(r chi.Router) {
		r.Get("/fitbit", cfg.Webhooks.FitbitVerify)
		r.Post("/fitbit", cfg.Webhooks.FitbitReceive)
		r.Get("/oura", cfg.Webhooks.OuraVerify)
		r.Post("/oura", cfg.Webhooks.OuraReceive)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/services/public", cfg.Integrations.PublicServices)

		r.Group(func(r chi.Router) {
			r.Use(userAuthMiddleware)

			r.Post("/oauth/initiate", cfg.OAuth.Initiate)
			r.Post("/oauth/exchange", cfg.OAuth.Exchange)

			r.Get("/integrations", cfg.Integrations.List)
			r.Delete("/integrations/{service}", cfg.Integrations.Delete)
			r.Post("/integrations/{service}/disconnect", cfg.Integrations.Disconnect)

			r.Get("/requests/{requestID}", cfg.Requests.Get)
			r.Post("/requests/{requestID}/cancel", cfg.Requests.Cancel)
		})
	})

	return r
}
