package coach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/zenith/internal/persist"
	"github.com/2beens/zenith/internal/profile"
	"github.com/2beens/zenith/internal/telemetry/metrics"
	"github.com/2beens/zenith/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type persister interface {
	Submit(ctx context.Context, identity, name string, fn persist.Job) <-chan error
}

type profileSource interface {
	Get(ctx context.Context, identity string) (profile.UserProfile, bool, error)
}

type replyStreamer interface {
	// StreamCoachReply sends reply text to chunks in order and returns when the
	// reply is complete. It never closes chunks.
	StreamCoachReply(ctx context.Context, prompt Prompt, chunks chan<- string) error
}

// Chunk is one piece of an in-flight model reply.
type Chunk struct {
	SessionID string `json:"sessionId"`
	MessageID string `json:"messageId"`
	Text      string `json:"text"`
}

type TurnResult struct {
	SessionID    string      `json:"sessionId"`
	Title        string      `json:"title"`
	UserMessage  ChatMessage `json:"userMessage"`
	ModelMessage ChatMessage `json:"modelMessage"`
	Fallback     bool        `json:"fallback"`
}

const (
	turnOutcomeOK       = "ok"
	turnOutcomeFallback = "fallback"
	turnOutcomeAborted  = "aborted"
)

type Service struct {
	repo     *Repo
	queue    persister
	profiles profileSource
	ai       replyStreamer
	metrics  *metrics.Manager
	now      func() time.Time
	state    *persist.LocalState[[]ChatSession]
}

func NewService(repo *Repo, queue persister, profiles profileSource, ai replyStreamer, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:     repo,
		queue:    queue,
		profiles: profiles,
		ai:       ai,
		metrics:  metricsManager,
		now:      time.Now,
		state:    persist.NewLocalState(repo.Load, cloneSessions),
	}
}

// Sessions lists the chat sessions of identity, newest first.
func (s *Service) Sessions(ctx context.Context, identity string) (_ []ChatSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.coach.sessions")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	sessions, err := s.state.Get(ctx, identity)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []ChatSession{}
	}
	SortByLastModified(sessions)
	return sessions, nil
}

func (s *Service) CreateSession(ctx context.Context, identity string) (_ ChatSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.coach.create_session")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	session := NewSession(s.now())
	if _, err := s.state.Update(ctx, identity, func(sessions *[]ChatSession) error {
		*sessions = append([]ChatSession{session}, *sessions...)
		return nil
	}); err != nil {
		return ChatSession{}, err
	}

	s.queue.Submit(ctx, identity, "chat_session", func(ctx context.Context) error {
		return s.repo.Create(ctx, identity, session)
	})
	return session.Clone(), nil
}

// Send runs one chat turn. Reply chunks are read by this call alone, in arrival
// order, and handed to onChunk; only the accumulated reply is stored. If the model
// fails the fallback reply is stored instead. If the caller goes away (ctx done or
// onChunk fails) nothing is stored and ErrTurnAborted is returned.
func (s *Service) Send(ctx context.Context, identity, sessionID, text string, onChunk func(Chunk) error) (_ TurnResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.coach.send")
	span.SetAttributes(attribute.String("session.id", sessionID))
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, ErrEmptyMessage
	}

	sessions, err := s.state.Get(ctx, identity)
	if err != nil {
		return TurnResult{}, err
	}
	session, ok := findSession(sessions, sessionID)
	if !ok {
		return TurnResult{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	p, _, err := s.profiles.Get(ctx, identity)
	if err != nil {
		log.Errorf("coach: load profile of %s: %s", identity, err)
	}

	userMsg := ChatMessage{ID: uuid.NewString(), Role: RoleUser, Text: text, Timestamp: s.now().UTC()}
	modelMsg := ChatMessage{ID: uuid.NewString(), Role: RoleModel}

	reply, outcome, err := s.streamReply(ctx, buildPrompt(p, session, text), sessionID, modelMsg.ID, onChunk)
	s.metrics.CounterCoachTurns.WithLabelValues(outcome).Inc()
	if outcome == turnOutcomeAborted {
		return TurnResult{}, fmt.Errorf("%w: %w", ErrTurnAborted, err)
	}
	modelMsg.Text = reply
	modelMsg.Timestamp = s.now().UTC()

	var title string
	var lastModified time.Time
	if _, err = s.state.Update(ctx, identity, func(sessions *[]ChatSession) error {
		for i := range *sessions {
			if (*sessions)[i].ID != sessionID {
				continue
			}
			target := &(*sessions)[i]
			target.AppendTurn(userMsg, modelMsg, s.now())
			title, lastModified = target.Title, target.LastModified
			return nil
		}
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}); err != nil {
		return TurnResult{}, err
	}

	s.queue.Submit(ctx, identity, "chat_turn", func(ctx context.Context) error {
		return s.repo.AppendTurn(ctx, identity, sessionID, title, lastModified, userMsg, modelMsg)
	})

	return TurnResult{
		SessionID:    sessionID,
		Title:        title,
		UserMessage:  userMsg,
		ModelMessage: modelMsg,
		Fallback:     outcome != turnOutcomeOK,
	}, nil
}

func (s *Service) Forget(identity string) {
	s.state.Forget(identity)
}

// streamReply returns the reply text and the turn outcome. The error is set only
// for aborted turns.
func (s *Service) streamReply(ctx context.Context, prompt Prompt, sessionID, messageID string, onChunk func(Chunk) error) (string, string, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks := make(chan string)
	streamErr := make(chan error, 1)
	go func() {
		defer close(chunks)
		streamErr <- s.ai.StreamCoachReply(streamCtx, prompt, chunks)
	}()

	var (
		reply      strings.Builder
		forwardErr error
	)
	for text := range chunks {
		reply.WriteString(text)
		if forwardErr != nil || onChunk == nil {
			continue
		}
		if err := onChunk(Chunk{SessionID: sessionID, MessageID: messageID, Text: text}); err != nil {
			forwardErr = err
			cancel()
		}
	}
	err := <-streamErr

	if forwardErr != nil {
		log.Warnf("coach: forward reply of session %s: %s", sessionID, forwardErr)
		return "", turnOutcomeAborted, forwardErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Debugf("coach: reply of session %s abandoned: %s", sessionID, ctxErr)
		return "", turnOutcomeAborted, ctxErr
	}
	if err != nil {
		log.Errorf("coach: reply for session %s: %s", sessionID, err)
		s.metrics.CounterAIErrors.WithLabelValues("coach_reply").Inc()
		return FallbackReply, turnOutcomeFallback, nil
	}
	if strings.TrimSpace(reply.String()) == "" {
		return FallbackReply, turnOutcomeFallback, nil
	}
	return reply.String(), turnOutcomeOK, nil
}

func findSession(sessions []ChatSession, id string) (ChatSession, bool) {
	for _, session := range sessions {
		if session.ID == id {
			return session, true
		}
	}
	return ChatSession{}, false
}
