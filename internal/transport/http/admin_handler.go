package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/service"
	"github.com/aqui-app/aqui-api/internal/util"
)

type AdminHandler struct {
	vendors  *service.VendorService
	sessions *service.LiveSessionService
	settings *service.PlatformSettingsService
}

func RegisterAdmin(e *echo.Echo, auth authenticator, vendors *service.VendorService, sessions *service.LiveSessionService, settings *service.PlatformSettingsService) {
	h := &AdminHandler{vendors: vendors, sessions: sessions, settings: settings}

	g := e.Group("/api/v1/admin", RequireAuth(auth), RequireAdmin())
	g.GET("/vendors", h.listVendors)
	g.POST("/vendors/:id/approve", h.vendorAction(vendors.Approve))
	g.POST("/vendors/:id/reject", h.vendorAction(vendors.Reject))
	g.POST("/vendors/:id/suspend", h.vendorAction(vendors.Suspend))
	g.POST("/vendors/:id/reinstate", h.vendorAction(vendors.Reinstate))
	g.DELETE("/vendors/:id/live-session", h.forceEnd)
	g.GET("/platform-settings", h.getSettings)
	g.PUT("/platform-settings", h.updateSettings)
}

func (h *AdminHandler) listVendors(c echo.Context) error {
	filter := domain.VendorAdminFilter{}
	filter.Limit, filter.Offset = parsePagination(c, 50, 0)
	if raw := strings.ToLower(strings.TrimSpace(c.QueryParam("status"))); raw != "" {
		status := domain.VendorStatus(raw)
		filter.Status = &status
	}
	vendors, limit, offset, err := h.vendors.ListForAdmin(c.Request().Context(), filter)
	if err != nil {
		return vendorError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"vendors": vendors,
		"limit":   limit,
		"offset":  offset,
		"count":   len(vendors),
	})
}

func (h *AdminHandler) vendorAction(action func(context.Context, uuid.UUID) (*domain.Vendor, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return c.JSON(http.StatusBadRequest, util.Error("invalid vendor id"))
		}
		vendor, err := action(c.Request().Context(), id)
		if err != nil {
			return vendorError(c, err)
		}
		return c.JSON(http.StatusOK, util.Data("vendor", vendor))
	}
}

func (h *AdminHandler) forceEnd(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, util.Error("invalid vendor id"))
	}
	ended, err := h.sessions.ForceEnd(c.Request().Context(), id)
	if err != nil {
		return liveSessionError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("session", h.sessions.Describe(ended)))
}

func (h *AdminHandler) getSettings(c echo.Context) error {
	settings, err := h.settings.Get(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("load platform settings: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
	return c.JSON(http.StatusOK, util.Data("settings", settings))
}

func (h *AdminHandler) updateSettings(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	var update domain.PlatformSettingsUpdate
	if err := c.Bind(&update); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if update.RequireVendorApproval == nil && update.AllowAutoVendorApproval == nil {
		return c.JSON(http.StatusBadRequest, util.Error("no settings to update"))
	}
	settings, err := h.settings.Update(c.Request().Context(), user.ID, update)
	if err != nil {
		c.Logger().Errorf("update platform settings: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
	return c.JSON(http.StatusOK, util.Data("settings", settings))
}
