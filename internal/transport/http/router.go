// Package httptransport assembles the HTTP surface: middleware chain,
// public reads, and the grantor-authenticated mutation routes.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	artifacthandler "pactum/internal/artifact/handler"
	ingesthandler "pactum/internal/ingest/handler"
	ledgerhandler "pactum/internal/ledger/handler"
	partyhandler "pactum/internal/party/handler"
	"pactum/internal/platform/config"
	"pactum/internal/platform/health"
	reciprocityhandler "pactum/internal/reciprocity/handler"
	reusehandler "pactum/internal/reuse/handler"
	"pactum/pkg/platform/middleware/auth"
	"pactum/pkg/platform/middleware/metadata"
	"pactum/pkg/platform/middleware/request"
	"pactum/pkg/platform/middleware/requesttime"
)

// Dependencies carries everything the router mounts. All handlers are
// required; RevocationChecker may be nil when token revocation is not
// deployed.
type Dependencies struct {
	Logger *slog.Logger
	HTTP   config.HTTPConfig

	RequestMetrics *request.Metrics

	JWTValidator      auth.JWTValidator
	RevocationChecker auth.TokenRevocationChecker

	Health      *health.Handler
	Parties     *partyhandler.Handler
	Ledger      *ledgerhandler.Handler
	Artifacts   *artifacthandler.Handler
	Ingests     *ingesthandler.Handler
	Reuses      *reusehandler.Handler
	Reciprocity *reciprocityhandler.Handler
}

// NewRouter wires the middleware chain and all endpoints.
//
// Reads stay public: receipts are tamper-evident and carry no secrets, and
// the reciprocity report is the system's public accountability surface.
// Every mutation goes through RequireAuth so the acting grantor is always
// known to the services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	clientMetadata := metadata.NewMiddleware(&metadata.Config{
		TrustedProxies: deps.HTTP.TrustedProxies,
	})

	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(clientMetadata.Handler)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(deps.Logger))
	r.Use(request.Timeout(deps.HTTP.RequestTimeout))
	r.Use(request.BodyLimit(deps.HTTP.MaxBodyBytes))
	r.Use(request.ContentTypeJSON)
	r.Use(request.LatencyMiddleware(deps.RequestMetrics))

	deps.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		deps.Parties.Register(api)
		deps.Ledger.Register(api)
		deps.Artifacts.Register(api)
		deps.Reciprocity.Register(api)

		api.Group(func(protected chi.Router) {
			protected.Use(auth.RequireAuth(deps.JWTValidator, deps.RevocationChecker, deps.Logger))
			deps.Ledger.RegisterProtected(protected)
			deps.Artifacts.RegisterProtected(protected)
			deps.Ingests.RegisterProtected(protected)
			deps.Reuses.RegisterProtected(protected)
		})
	})

	return r
}
