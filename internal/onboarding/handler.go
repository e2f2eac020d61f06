package onboarding

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=onboarding_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/zenith/internal/auth"
	"github.com/2beens/zenith/internal/profile"
	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/pkg"

	log "github.com/sirupsen/logrus"
)

type onboardingService interface {
	Complete(ctx context.Context, identity string, p profile.UserProfile) (State, error)
	Load(ctx context.Context, identity string) State
}

type Handler struct {
	service onboardingService
}

func NewHandler(service onboardingService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.onboarding.me")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteJSON(w, h.service.Load(ctx, identity), http.StatusOK)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.onboarding.complete")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "expected json body", http.StatusUnsupportedMediaType)
		return
	}

	var p profile.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid profile: "+err.Error(), http.StatusBadRequest)
		return
	}

	state, err := h.service.Complete(ctx, identity, p)
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrInvalidProfile):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrPlanGeneration):
			log.Errorf("onboarding [%s]: %s", identity, err)
			http.Error(w, "could not generate your plan, please try again", http.StatusBadGateway)
		default:
			log.Errorf("onboarding [%s]: %s", identity, err)
			http.Error(w, "could not save your plan", http.StatusInternalServerError)
		}
		return
	}

	pkg.WriteJSON(w, state, http.StatusCreated)
}
