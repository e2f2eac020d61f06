package misc

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a backing service the health check probes (db pool, redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a func to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type Handler struct {
	versionInfo string
	deps        map[string]Pinger
}

func NewHandler(versionInfo string, deps map[string]Pinger) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		deps:        deps,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
	mainRouter.HandleFunc("/healthz", handler.handleHealth).Methods("GET").Name("healthz")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

type HealthResponse struct {
	Status string            `json:"status"`
	Deps   map[string]string `json:"deps"`
}

func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.health")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Deps: make(map[string]string, len(handler.deps))}
	for name, dep := range handler.deps {
		if err := dep.Ping(ctx); err != nil {
			log.Errorf("health check, %s: %s", name, err)
			resp.Status = "degraded"
			resp.Deps[name] = err.Error()
			continue
		}
		resp.Deps[name] = "ok"
	}
	span.SetAttributes(attribute.String("health.status", resp.Status))

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	pkg.WriteJSON(w, resp, status)
}
