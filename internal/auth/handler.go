package auth

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/zenith/internal/telemetry/tracing"
	"github.com/2beens/zenith/pkg"

	log "github.com/sirupsen/logrus"
)

type authService interface {
	Register(ctx context.Context, creds Credentials) error
	Login(ctx context.Context, creds Credentials, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (string, bool, error)
}

// stateResetter drops the in-memory state kept for an identity.
type stateResetter interface {
	Reset(identity string)
}

type Handler struct {
	service  authService
	resetter stateResetter
}

type TokenResponse struct {
	Token string `json:"token"`
}

func NewHandler(service authService, resetter stateResetter) *Handler {
	return &Handler{
		service:  service,
		resetter: resetter,
	}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (Credentials, bool) {
	var creds Credentials
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			log.Errorf("auth, unmarshal json params: %s", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return Credentials{}, false
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("auth, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusBadRequest)
			return Credentials{}, false
		}
		creds = Credentials{
			Email:    r.Form.Get("email"),
			Password: r.Form.Get("password"),
		}
	}

	if creds.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return Credentials{}, false
	}
	if creds.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return Credentials{}, false
	}
	return creds, true
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.register")
	defer span.End()

	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := h.service.Register(ctx, creds); err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrUserExists):
			http.Error(w, "user already exists", http.StatusConflict)
		default:
			log.Errorf("register user: %s", err)
			http.Error(w, "register failed", http.StatusInternalServerError)
		}
		return
	}

	token, err := h.service.Login(ctx, creds, time.Now())
	if err != nil {
		log.Errorf("login after register: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	log.Trace("new user registered")
	pkg.WriteJSON(w, TokenResponse{Token: token}, http.StatusCreated)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.service.Login(ctx, creds, time.Now())
	if err != nil {
		if errors.Is(err, ErrWrongCredentials) {
			log.Tracef("failed login attempt for user: %s", creds.Email)
			http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
			return
		}
		log.Errorf("login failed: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	log.Trace("new login success")
	pkg.WriteJSON(w, TokenResponse{Token: token}, http.StatusOK)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	token := TokenFromRequest(r)
	if token == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	identity, loggedOut, err := h.service.Logout(ctx, token)
	if err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	h.resetter.Reset(identity)
	log.Debugf("logout for [%s] success", identity)
	pkg.WriteTextResponseOK(w, "logged-out")
}
