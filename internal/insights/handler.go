package insights

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=insights_test

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/zenith/internal/auth"
	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/internal/training"
	"github.com/2beens/zenith/pkg"

	log "github.com/sirupsen/logrus"
)

type insightsService interface {
	Dashboard(ctx context.Context, identity string) (Dashboard, error)
	MuscleVolume(ctx context.Context, identity string, filter []training.MuscleGroup) (VolumeReport, error)
}

type Handler struct {
	service insightsService
}

func NewHandler(service insightsService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.insights.dashboard")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	dashboard, err := h.service.Dashboard(ctx, identity)
	if err != nil {
		writeError(w, "dashboard", err)
		return
	}
	pkg.WriteJSON(w, dashboard, http.StatusOK)
}

// HandleVolume serves muscle group volume; ?group=Chest&group=Legs (or group=Chest,Legs) filters.
func (h *Handler) HandleVolume(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.insights.volume")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	report, err := h.service.MuscleVolume(ctx, identity, ParseGroupFilter(r.URL.Query()["group"]))
	if err != nil {
		writeError(w, "volume", err)
		return
	}
	pkg.WriteJSON(w, report, http.StatusOK)
}

// ParseGroupFilter normalizes repeated and comma separated muscle group values.
func ParseGroupFilter(values []string) []training.MuscleGroup {
	var groups []training.MuscleGroup
	for _, v := range values {
		for _, g := range strings.Split(v, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, training.NormalizeMuscleGroup(g))
			}
		}
	}
	return groups
}

func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNoPlan), errors.Is(err, ErrNoProfile):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Errorf("insights %s: %s", op, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
