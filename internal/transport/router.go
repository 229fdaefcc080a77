package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amo-tech-ai/fashionos100-sub001/internal/config"
	"github.com/amo-tech-ai/fashionos100-sub001/internal/observability"
)

// Dependencies holds all injected dependencies for the HTTP transport layer.
type Dependencies struct {
	Config       *config.Config
	Authenticate func(http.Handler) http.Handler
	Wizard       *WizardHandler
	Health       *observability.HealthHandler
	Metrics      http.Handler
	HTTPMetrics  *HTTPMetrics
}

// NewRouter creates a chi.Router with the full middleware pipeline and all
// route registrations. Health, readiness, and metrics endpoints bypass the
// authentication middleware.
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(CORS(deps.Config.Server.CORS))
	r.Use(RequestID)
	r.Use(SecurityHeaders)

	// Public routes.
	r.Get("/health", deps.Health.Liveness)
	r.Get("/ready", deps.Health.Readiness)
	if deps.Metrics != nil {
		r.Handle(deps.Config.Observability.Metrics.Path, deps.Metrics)
	}

	auth := deps.Authenticate
	if auth == nil {
		auth = func(next http.Handler) http.Handler { return next }
	}

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(BuildRequestContext)
		r.Use(HandlerTimeout(deps.Config.Server.HandlerTimeout))
		r.Use(RequestLogging)
		r.Use(MetricsRecording(deps.HTTPMetrics))

		r.Post("/wizard", deps.Wizard.CreateSession)
		r.Get("/wizard/{sessionID}", deps.Wizard.GetSession)
		r.Patch("/wizard/{sessionID}/config", deps.Wizard.PatchConfig)
		r.Post("/wizard/{sessionID}/next", deps.Wizard.Next)
		r.Post("/wizard/{sessionID}/back", deps.Wizard.Back)
		r.Post("/wizard/{sessionID}/assist", deps.Wizard.Assist)
		r.Post("/wizard/{sessionID}/submit", deps.Wizard.Submit)
		r.Delete("/wizard/{sessionID}/draft", deps.Wizard.DiscardDraft)
	})

	return r
}
