package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/service"
	"github.com/aqui-app/aqui-api/internal/util"
)

type liveSessions interface {
	Start(ctx context.Context, userID uuid.UUID, input domain.StartLiveSessionInput) (*domain.LiveSessionStart, error)
	End(ctx context.Context, userID uuid.UUID) (*domain.LiveSession, error)
	Current(ctx context.Context, userID uuid.UUID) (*domain.LiveSession, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.LiveSession, int, int, error)
	Describe(session *domain.LiveSession) service.LiveSessionStatus
}

type LiveSessionHandler struct {
	sessions liveSessions
}

// startLiveSessionRequest keeps the numeric fields raw so a malformed value
// can be reported by field name.
type startLiveSessionRequest struct {
	Latitude           json.RawMessage `json:"latitude"`
	Longitude          json.RawMessage `json:"longitude"`
	Address            *string         `json:"address"`
	DurationMinutes    json.RawMessage `json:"duration_minutes"`
	EstimatedCustomers json.RawMessage `json:"estimated_customers"`
}

func (r startLiveSessionRequest) toInput() (domain.StartLiveSessionInput, error) {
	input := domain.StartLiveSessionInput{Address: r.Address}
	var err error
	if input.Latitude, err = floatField("latitude", r.Latitude); err != nil {
		return input, err
	}
	if input.Longitude, err = floatField("longitude", r.Longitude); err != nil {
		return input, err
	}
	if input.DurationMinutes, err = intField("duration_minutes", r.DurationMinutes); err != nil {
		return input, err
	}
	if input.EstimatedCustomers, err = intField("estimated_customers", r.EstimatedCustomers); err != nil {
		return input, err
	}
	return input, nil
}

func floatField(name string, raw json.RawMessage) (*float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var f *flexFloat
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f.ptr(), nil
}

func intField(name string, raw json.RawMessage) (*int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var i *flexInt
	if err := json.Unmarshal(raw, &i); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return i.ptr(), nil
}

// bindMessage extracts echo's client-facing message from a Bind failure.
func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok && msg != "" {
			return msg
		}
	}
	return "request body must be a JSON object"
}

func RegisterLiveSessions(e *echo.Echo, auth authenticator, sessions liveSessions) {
	h := &LiveSessionHandler{sessions: sessions}

	g := e.Group("/api/v1/vendors/me/live-session", RequireAuth(auth))
	g.POST("", h.start)
	g.DELETE("", h.end)
	g.GET("", h.current)
	g.GET("/history", h.history)
}

func (h *LiveSessionHandler) start(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req startLiveSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(bindMessage(err)))
	}
	input, err := req.toInput()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	result, err := h.sessions.Start(c.Request().Context(), user.ID, input)
	if err != nil {
		return liveSessionError(c, err)
	}

	body := util.Envelope{"session": h.sessions.Describe(result.Session)}
	if result.Replaced != nil {
		body["replaced_session_id"] = result.Replaced.ID
	}
	return c.JSON(http.StatusCreated, body)
}

func (h *LiveSessionHandler) end(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	ended, err := h.sessions.End(c.Request().Context(), user.ID)
	if err != nil {
		return liveSessionError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("session", h.sessions.Describe(ended)))
}

func (h *LiveSessionHandler) current(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	session, err := h.sessions.Current(c.Request().Context(), user.ID)
	if err != nil {
		return liveSessionError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("session", h.sessions.Describe(session)))
}

func (h *LiveSessionHandler) history(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	limit, offset := parsePagination(c, 20, 0)
	sessions, limit, offset, err := h.sessions.History(c.Request().Context(), user.ID, limit, offset)
	if err != nil {
		return liveSessionError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"sessions": sessions,
		"limit":    limit,
		"offset":   offset,
		"count":    len(sessions),
	})
}

func liveSessionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrLiveSessionValidation):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrLiveSessionForbidden):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, service.ErrLiveSessionNotFound), errors.Is(err, service.ErrVendorNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrLiveSessionConflict):
		return c.JSON(http.StatusConflict, util.Error("live session changed concurrently, retry"))
	default:
		c.Logger().Errorf("live session: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	*f = flexFloat(v)
	return nil
}

func (f *flexFloat) ptr() *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// flexInt accepts a JSON integer or an integer string.
type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "null" {
		return nil
	}
	v, err := json.Number(strings.TrimSpace(raw)).Int64()
	if err != nil {
		return fmt.Errorf("not an integer: %s", data)
	}
	*i = flexInt(v)
	return nil
}

func (i *flexInt) ptr() *int {
	if i == nil {
		return nil
	}
	v := int(*i)
	return &v
}
