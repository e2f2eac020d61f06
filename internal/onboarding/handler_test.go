package onboarding_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/2beens/zenith/internal/auth"
	"github.com/2beens/zenith/internal/onboarding"
	"github.com/2beens/zenith/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const identity = "ana@zenith.app"

const profileJSON = `{
	"name": "Ana", "age": 30, "weight": 80, "height": 180,
	"goal": "Strength", "level": "Beginner", "dietGoal": "Maintain",
	"daysPerWeek": 3, "equipment": "Dumbbells", "constraints": "", "currentFormat": "Full Body"
}`

func authed(req *http.Request) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), identity))
}

func TestHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	serviceMock := NewMockonboardingService(ctrl)
	handler := onboarding.NewHandler(serviceMock)

	rr := httptest.NewRecorder()
	handler.HandleMe(rr, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	serviceMock.EXPECT().Load(gomock.Any(), identity).Return(onboarding.State{View: onboarding.ViewOnboarding})
	rr = httptest.NewRecorder()
	handler.HandleMe(rr, authed(httptest.NewRequest(http.MethodGet, "/me", nil)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"view":"onboarding"}`, rr.Body.String())
}

func TestHandler_Complete(t *testing.T) {
	ctrl := gomock.NewController(t)
	serviceMock := NewMockonboardingService(ctrl)
	handler := onboarding.NewHandler(serviceMock)

	serviceMock.EXPECT().
		Complete(gomock.Any(), identity, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, p profile.UserProfile) (onboarding.State, error) {
			assert.Equal(t, profile.GoalStrength, p.Goal)
			assert.Equal(t, 3, p.DaysPerWeek)
			p.HasPlan = true
			return onboarding.State{View: onboarding.ViewDashboard, Profile: &p}, nil
		})

	req := authed(httptest.NewRequest(http.MethodPost, "/onboarding", strings.NewReader(profileJSON)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleComplete(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"view":"dashboard"`)
	assert.Contains(t, rr.Body.String(), `"hasPlan":true`)
}

func TestHandler_CompleteErrors(t *testing.T) {
	testCases := []struct {
		name        string
		body        string
		contentType string
		serviceErr  error
		wantStatus  int
	}{
		{name: "not json", body: profileJSON, contentType: "text/plain", wantStatus: http.StatusUnsupportedMediaType},
		{name: "unknown goal", body: `{"goal":"Flying"}`, contentType: "application/json", wantStatus: http.StatusBadRequest},
		{name: "invalid profile", body: profileJSON, contentType: "application/json",
			serviceErr: fmt.Errorf("%w: name is required", profile.ErrInvalidProfile), wantStatus: http.StatusBadRequest},
		{name: "ai failure", body: profileJSON, contentType: "application/json",
			serviceErr: fmt.Errorf("%w: quota", onboarding.ErrPlanGeneration), wantStatus: http.StatusBadGateway},
		{name: "storage failure", body: profileJSON, contentType: "application/json",
			serviceErr: fmt.Errorf("%w: %w", onboarding.ErrStorage, errors.New("db down")), wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			serviceMock := NewMockonboardingService(ctrl)
			if tc.serviceErr != nil {
				serviceMock.EXPECT().Complete(gomock.Any(), identity, gomock.Any()).Return(onboarding.State{}, tc.serviceErr)
			}

			req := authed(httptest.NewRequest(http.MethodPost, "/onboarding", strings.NewReader(tc.body)))
			req.Header.Set("Content-Type", tc.contentType)
			rr := httptest.NewRecorder()
			onboarding.NewHandler(serviceMock).HandleComplete(rr, req)
			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}
