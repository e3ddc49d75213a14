package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-heroes/internal/metrics"
	"go.uber.org/zap"
)

// RouterConfig holds the dependencies of the router.
type RouterConfig struct {
	Heroes         HeroService
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	Health         func(ctx context.Context) error
	MaxUploadBytes int64
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	heroes := NewHeroHandler(cfg.Heroes, cfg.MaxUploadBytes)
	var codeHandler CodeHandler

	r.Route("/api", func(r chi.Router) {
		r.Get("/Hero/GetAllHeroes", heroes.List)
		r.Post("/Hero", heroes.Create)
		r.Put("/Hero", heroes.Update)
		r.Delete("/Hero/{heroId}", heroes.Delete)
		r.Post("/Barcode/generateBarcode", codeHandler.Barcode)
		r.Post("/QRCode/generateQRCode", codeHandler.QRCode)
	})
	r.Get("/heroDetails", heroes.Details)
	r.Get("/heroImage", heroes.Image)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				log.Warn("health check failed", zap.Error(err))
				RespondWithError(w, r, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
