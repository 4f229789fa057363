package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/service"
)

var errBoom = errors.New("boom")

type tokenAuth struct {
	users map[string]*domain.User
}

func (a *tokenAuth) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if user, ok := a.users[token]; ok {
		return user, nil
	}
	return nil, service.ErrUnauthorized
}

func newTokenAuth() (*tokenAuth, *domain.User, *domain.User) {
	vendor := &domain.User{ID: uuid.New(), Email: "vendor@example.com", Roles: []domain.Role{{Name: domain.RoleVendor}}}
	admin := &domain.User{ID: uuid.New(), Email: "admin@example.com", Roles: []domain.Role{{Name: domain.RoleAdmin}}}
	return &tokenAuth{users: map[string]*domain.User{
		"vendor-token": vendor,
		"admin-token":  admin,
	}}, vendor, admin
}

type stubLiveSessions struct {
	startResult *domain.LiveSessionStart
	startErr    error
	startInput  domain.StartLiveSessionInput
	startUser   uuid.UUID
	startCalls  int

	current    *domain.LiveSession
	currentErr error
	endErr     error
}

func (s *stubLiveSessions) Start(ctx context.Context, userID uuid.UUID, input domain.StartLiveSessionInput) (*domain.LiveSessionStart, error) {
	s.startCalls++
	s.startUser = userID
	s.startInput = input
	return s.startResult, s.startErr
}

func (s *stubLiveSessions) End(ctx context.Context, userID uuid.UUID) (*domain.LiveSession, error) {
	if s.endErr != nil {
		return nil, s.endErr
	}
	return s.current, nil
}

func (s *stubLiveSessions) Current(ctx context.Context, userID uuid.UUID) (*domain.LiveSession, error) {
	return s.current, s.currentErr
}

func (s *stubLiveSessions) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.LiveSession, int, int, error) {
	return nil, limit, offset, nil
}

func (s *stubLiveSessions) Describe(session *domain.LiveSession) service.LiveSessionStatus {
	return service.LiveSessionStatus{Session: session, MapStatus: domain.MapStatusOpen, DetailStatus: domain.DetailStatusLive}
}

type stubMap struct {
	markers []domain.MapMarker
	err     error
	bounds  *domain.Bounds
	calls   int
}

func (s *stubMap) LiveMarkers(ctx context.Context, bounds *domain.Bounds) ([]domain.MapMarker, error) {
	s.calls++
	s.bounds = bounds
	return s.markers, s.err
}

type stubSweeper struct {
	result service.SweepResult
	err    error
	calls  int
}

func (s *stubSweeper) Sweep(ctx context.Context) (service.SweepResult, error) {
	s.calls++
	return s.result, s.err
}

func quietEcho() *echo.Echo {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRouter([]string{"*"}, logger)
}

func doRequest(t *testing.T, e http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}


func newCronRequest(secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/internal/live-sessions/sweep", nil)
	if secret != "" {
		req.Header.Set(headerCronSecret, secret)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
