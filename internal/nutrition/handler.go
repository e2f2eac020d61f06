package nutrition

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=nutrition_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/zenith/internal/auth"
	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type nutritionService interface {
	Logs(ctx context.Context, identity string) ([]Log, error)
	Tally(ctx context.Context, identity, day string) (Totals, error)
	AddLog(ctx context.Context, identity string, in NewLog) (Log, error)
	Image(ctx context.Context, identity, id string) ([]byte, string, error)
}

type foodAnalyzer interface {
	AnalyzeFoodImage(ctx context.Context, mimeType string, image []byte) (Analysis, error)
}

type TallyResponse struct {
	Day    string `json:"day"`
	Totals Totals `json:"totals"`
}

type Handler struct {
	service  nutritionService
	analyzer foodAnalyzer
	now      func() time.Time
}

func NewHandler(service nutritionService, analyzer foodAnalyzer) *Handler {
	return &Handler{
		service:  service,
		analyzer: analyzer,
		now:      time.Now,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.list")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	logs, err := handler.service.Logs(ctx, identity)
	if err != nil {
		log.Errorf("list nutrition logs: %s", err)
		http.Error(w, "failed to get nutrition logs", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, logs, http.StatusOK)
}

func (handler *Handler) HandleTally(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.tally")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	day, err := ParseDay(mux.Vars(r)["day"], handler.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	totals, err := handler.service.Tally(ctx, identity, day)
	if err != nil {
		log.Errorf("nutrition tally for %s: %s", day, err)
		http.Error(w, "failed to compute tally", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, TallyResponse{Day: day, Totals: totals}, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.add")
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

	var in NewLog
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 2*maxImageSize)).Decode(&in); err != nil {
		log.Errorf("add nutrition log, unmarshal json params: %s", err)
		http.Error(w, "add nutrition log failed", http.StatusBadRequest)
		return
	}

	added, err := handler.service.AddLog(ctx, identity, in)
	if err != nil {
		if errors.Is(err, ErrInvalidImage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("add nutrition log [%s]: %s", in.MealName, err)
		http.Error(w, "add nutrition log failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("nutrition log added for %s: [%s] %.0f kcal", identity, added.MealName, added.Calories)
	pkg.WriteJSON(w, added, http.StatusCreated)
}

// HandleAnalyze accepts the photo either as multipart field "image" or as a raw image/* body.
func (handler *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.analyze")
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1<<20)

	var (
		mimeType string
		image    []byte
		err      error
	)
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		mimeType, image, err = readMultipartImage(r)
	case strings.HasPrefix(contentType, "image/"):
		mimeType = contentType
		image, err = io.ReadAll(r.Body)
	default:
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("analyze food image, read image: %s", err)
		http.Error(w, "failed to read image", http.StatusBadRequest)
		return
	}
	if len(image) == 0 {
		http.Error(w, "error, image empty", http.StatusBadRequest)
		return
	}

	analysis, err := handler.analyzer.AnalyzeFoodImage(ctx, mimeType, image)
	if err != nil {
		log.Errorf("analyze food image: %s", err)
		http.Error(w, "failed to analyze image", http.StatusBadGateway)
		return
	}
	pkg.WriteJSON(w, analysis, http.StatusOK)
}

func (handler *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.image")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	data, contentType, err := handler.service.Image(ctx, identity, mux.Vars(r)["id"])
	if err != nil {
		switch {
		case errors.Is(err, ErrImageMissing), errors.Is(err, ErrInvalidImage):
			http.Error(w, "image not found", http.StatusNotFound)
		default:
			log.Errorf("get meal image: %s", err)
			http.Error(w, "failed to get image", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=86400")
	pkg.WriteResponseBytes(w, contentType, data, http.StatusOK)
}

func readMultipartImage(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return "", nil, err
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return mimeType, data, nil
}
