package coach

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=coach_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/zenith/internal/auth"
	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type chatService interface {
	Sessions(ctx context.Context, identity string) ([]ChatSession, error)
	CreateSession(ctx context.Context, identity string) (ChatSession, error)
	Send(ctx context.Context, identity, sessionID, text string, onChunk func(Chunk) error) (TurnResult, error)
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type Handler struct {
	service chatService
}

func NewHandler(service chatService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.coach.list_sessions")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sessions, err := handler.service.Sessions(ctx, identity)
	if err != nil {
		log.Errorf("list chat sessions: %s", err)
		http.Error(w, "failed to get chat sessions", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, sessions, http.StatusOK)
}

func (handler *Handler) HandleNewSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.coach.new_session")
	defer span.End()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	session, err := handler.service.CreateSession(ctx, identity)
	if err != nil {
		log.Errorf("create chat session: %s", err)
		http.Error(w, "failed to create chat session", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, session, http.StatusCreated)
}

// HandleSendMessage streams the reply as server-sent events: one "chunk" event
// per reply piece, then a single "done" event with the stored turn.
func (handler *Handler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.coach.send_message")
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
	sessionID := mux.Vars(r)["id"]
	if sessionID == "" {
		http.Error(w, "error, session id empty", http.StatusBadRequest)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("send chat message, unmarshal json params: %s", err)
		http.Error(w, "send message failed", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// the server write timeout must not cut a long reply, the request context bounds it
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Debugf("chat turn for session %s, clear write deadline: %s", sessionID, err)
	}

	headersSent := false
	startStream := func() {
		if headersSent {
			return
		}
		headersSent = true
		w.Header().Set("Content-Type", pkg.ContentType.SSE)
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
	}

	result, err := handler.service.Send(ctx, identity, sessionID, req.Text, func(chunk Chunk) error {
		startStream()
		if err := writeEvent(w, "chunk", chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTurnAborted) {
			log.Debugf("chat turn for session %s aborted: %s", sessionID, err)
			return
		}
		if headersSent {
			log.Errorf("chat turn for session %s failed mid-stream: %s", sessionID, err)
			return
		}
		switch {
		case errors.Is(err, ErrSessionNotFound):
			http.Error(w, "chat session not found", http.StatusNotFound)
		case errors.Is(err, ErrEmptyMessage):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("chat turn for session %s: %s", sessionID, err)
			http.Error(w, "send message failed", http.StatusInternalServerError)
		}
		return
	}

	startStream()
	if err := writeEvent(w, "done", result); err != nil {
		log.Debugf("chat turn for session %s, write done event: %s", sessionID, err)
		return
	}
	flusher.Flush()
}

func writeEvent(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
