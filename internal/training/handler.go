package training

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=training_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/zenith/internal/auth"
	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type planService interface {
	PlanView(ctx context.Context, identity string) (PlanView, error)
	StartDay(ctx context.Context, identity string, day int) (WorkoutSession, error)
	UpdateSet(ctx context.Context, identity string, day int, exerciseID string, index int, patch SetPatch) (WorkoutSession, error)
	FinishDay(ctx context.Context, identity string, day int) (FinishResult, error)
}

type Handler struct {
	service planService
}

func NewHandler(service planService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.plan")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := handler.service.PlanView(ctx, identity)
	if err != nil {
		writeError(w, "get plan", err)
		return
	}
	pkg.WriteJSON(w, view, http.StatusOK)
}

func (handler *Handler) HandleStartDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.start_day")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil {
		http.Error(w, "error, day NaN", http.StatusBadRequest)
		return
	}

	session, err := handler.service.StartDay(ctx, identity, day)
	if err != nil {
		writeError(w, "start day", err)
		return
	}
	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleUpdateSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.update_set")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	day, err := strconv.Atoi(vars["day"])
	if err != nil {
		http.Error(w, "error, day NaN", http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(vars["idx"])
	if err != nil {
		http.Error(w, "error, set index NaN", http.StatusBadRequest)
		return
	}
	exerciseID := vars["exid"]
	if exerciseID == "" {
		http.Error(w, "error, exercise id empty", http.StatusBadRequest)
		return
	}

	var patch SetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Errorf("update set, unmarshal json params: %s", err)
		http.Error(w, "update set failed", http.StatusBadRequest)
		return
	}
	if patch.Weight == nil && patch.Reps == nil && patch.Completed == nil {
		http.Error(w, "error, nothing to update", http.StatusBadRequest)
		return
	}

	session, err := handler.service.UpdateSet(ctx, identity, day, exerciseID, index, patch)
	if err != nil {
		writeError(w, "update set", err)
		return
	}
	pkg.WriteJSON(w, session, http.StatusOK)
}

func (handler *Handler) HandleFinishDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.finish_day")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil {
		http.Error(w, "error, day NaN", http.StatusBadRequest)
		return
	}

	result, err := handler.service.FinishDay(ctx, identity, day)
	if err != nil {
		writeError(w, "finish day", err)
		return
	}
	log.Debugf("training: %s finished day %d, %d history updates", identity, day, len(result.HistoryUpdates))
	pkg.WriteJSON(w, result, http.StatusOK)
}

func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrPlanNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrExerciseNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDayLocked):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrRestDay),
		errors.Is(err, ErrSessionCompleted),
		errors.Is(err, ErrNoActiveSession):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrSetIndexOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("training: %s: %s", op, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
