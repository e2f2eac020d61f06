package nutrition

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/2beens/zenith/internal/persist"
	"github.com/2beens/zenith/internal/telemetry/metrics"
	"github.com/2beens/zenith/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type persister interface {
	Submit(ctx context.Context, identity, name string, fn persist.Job) <-chan error
}

type imageSynthesizer interface {
	// GenerateFoodImage returns a data URL, or "" when the model produced no image.
	GenerateFoodImage(ctx context.Context, mealName string) (string, error)
}

// NewLog is a meal as submitted by the client. Image is an optional data URL.
type NewLog struct {
	MealName string  `json:"mealName"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Image    string  `json:"image,omitempty"`
}

type Service struct {
	repo    *Repo
	queue   persister
	images  *ImageStore
	ai      imageSynthesizer
	metrics *metrics.Manager
	now     func() time.Time
	state   *persist.LocalState[[]Log]
}

func NewService(repo *Repo, queue persister, images *ImageStore, ai imageSynthesizer, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:    repo,
		queue:   queue,
		images:  images,
		ai:      ai,
		metrics: metricsManager,
		now:     time.Now,
		state:   persist.NewLocalState(repo.Load, slices.Clone[[]Log]),
	}
}

// Logs returns all logs of identity, newest first.
func (s *Service) Logs(ctx context.Context, identity string) (_ []Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.logs")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	logs, err := s.state.Get(ctx, identity)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []Log{}
	}
	return logs, nil
}

func (s *Service) Tally(ctx context.Context, identity, day string) (_ Totals, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.tally")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	logs, err := s.state.Get(ctx, identity)
	if err != nil {
		return Totals{}, err
	}
	return Tally(logs, day), nil
}

// AddLog stores the meal image (submitted or synthesised from the meal name),
// prepends the log and saves the list in the background.
// A failed image synthesis is logged and the log is kept without an image.
func (s *Service) AddLog(ctx context.Context, identity string, in NewLog) (_ Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.add_log")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	entry := normalize(Log{
		ID:       uuid.NewString(),
		Date:     s.now().UTC().Format(time.RFC3339),
		MealName: in.MealName,
		Calories: in.Calories,
		Protein:  in.Protein,
		Fat:      in.Fat,
		Carbs:    in.Carbs,
	})

	imageURL := in.Image
	if imageURL == "" && entry.MealName != UnnamedMeal && s.ai != nil {
		imageURL, err = s.ai.GenerateFoodImage(ctx, entry.MealName)
		if err != nil {
			log.Errorf("nutrition: generate image for [%s]: %s", entry.MealName, err)
			imageURL, err = "", nil
		}
	}
	if imageURL != "" {
		if stored, storeErr := s.storeImage(ctx, identity, entry.ID, imageURL); storeErr != nil {
			if in.Image != "" {
				return Log{}, storeErr
			}
			log.Errorf("nutrition: store generated image for [%s]: %s", entry.MealName, storeErr)
		} else {
			entry.Image = stored
		}
	}

	logs, err := s.state.Update(ctx, identity, func(logs *[]Log) error {
		*logs = append([]Log{entry}, *logs...)
		return nil
	})
	if err != nil {
		return Log{}, err
	}

	s.metrics.CounterNutritionLogs.Inc()
	s.queue.Submit(ctx, identity, "nutrition", func(ctx context.Context) error {
		return s.repo.Save(ctx, identity, logs)
	})
	return entry, nil
}

// Image returns a stored meal image of identity.
func (s *Service) Image(ctx context.Context, identity, id string) ([]byte, string, error) {
	return s.images.Open(ctx, identity, id)
}

func (s *Service) Forget(identity string) {
	s.state.Forget(identity)
}

func (s *Service) storeImage(ctx context.Context, identity, id, dataURL string) (string, error) {
	_, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	if err := s.images.Save(ctx, identity, id, data); err != nil {
		return "", err
	}
	return ImagePath(id), nil
}

// ImagePath is the API path a stored meal image is served from.
func ImagePath(id string) string {
	return fmt.Sprintf("/nutrition/image/%s", id)
}
