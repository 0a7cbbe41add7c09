package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"rms-sync-service/internal/config"
	"rms-sync-service/internal/http/handlers"
	"rms-sync-service/internal/middleware"
	"rms-sync-service/internal/ws"
)

func NewRouter(h *handlers.Handler, logger *zap.Logger, cfg config.Config, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.State)
		r.Get("/orders/{id}/eta", h.OrderETA)
		r.Post("/payments/authorize", h.AuthorizePayment)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticated(cfg.JWTSecret))
			r.Post("/menu/{id}/describe", h.DescribeMenuItem)
		})
	})

	if wsServer != nil {
		r.Get("/ws", wsServer.Handle)
	}

	return r
}
