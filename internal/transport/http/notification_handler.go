package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/service"
	"github.com/aqui-app/aqui-api/internal/util"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func RegisterNotifications(e *echo.Echo, auth authenticator, notifications *service.NotificationService) {
	h := &NotificationHandler{notifications: notifications}

	g := e.Group("/api/v1/users/me/notifications", RequireAuth(auth))
	g.GET("", h.list)
	g.POST("/read-all", h.markAllRead)
	g.POST("/:id/read", h.markRead)
}

func (h *NotificationHandler) list(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	limit, offset := parsePagination(c, 20, 0)
	result, err := h.notifications.List(c.Request().Context(), user.ID, domain.NotificationFilter{
		UnreadOnly: parseBoolQuery(c, "unread"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		c.Logger().Errorf("list notifications: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"notifications": result.Items,
		"unread":        result.Unread,
		"limit":         result.Limit,
		"offset":        result.Offset,
	})
}

func (h *NotificationHandler) markRead(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, util.Error("invalid notification id"))
	}
	if err := h.notifications.MarkRead(c.Request().Context(), user.ID, id); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		}
		c.Logger().Errorf("mark notification read: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *NotificationHandler) markAllRead(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	n, err := h.notifications.MarkAllRead(c.Request().Context(), user.ID)
	if err != nil {
		c.Logger().Errorf("mark all notifications read: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"updated": n})
}
