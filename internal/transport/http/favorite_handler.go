package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/service"
	"github.com/aqui-app/aqui-api/internal/util"
)

type FavoriteHandler struct {
	favorites *service.FavoriteService
}

type FavoriteItemResponse struct {
	ID       uuid.UUID              `json:"id"`
	VendorID uuid.UUID              `json:"vendor_id"`
	SavedAt  string                 `json:"saved_at"`
	Vendor   FavoriteVendorResponse `json:"vendor"`
}

type FavoriteVendorResponse struct {
	BusinessName    string  `json:"business_name"`
	Category        *string `json:"category,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
	IsLive          bool    `json:"is_live"`
}

func RegisterFavorites(e *echo.Echo, auth authenticator, favorites *service.FavoriteService) {
	h := &FavoriteHandler{favorites: favorites}

	protected := e.Group("/api/v1/users/me/favorites", RequireAuth(auth))
	protected.POST("", h.saveFavorite)
	protected.DELETE("/:vendor_id", h.removeFavorite)
	protected.GET("", h.listFavorites)

	e.GET("/api/v1/vendors/:id/favorites/count", h.countFavorites)
}

func (h *FavoriteHandler) saveFavorite(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		VendorID string `json:"vendor_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if strings.TrimSpace(req.VendorID) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("vendor_id is required"))
	}
	vendorID, err := uuid.Parse(strings.TrimSpace(req.VendorID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("vendor_id must be a valid UUID"))
	}

	favorite, err := h.favorites.Save(c.Request().Context(), user.ID, vendorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVendorNotFound):
			return c.JSON(http.StatusNotFound, util.Error("vendor not found"))
		case errors.Is(err, service.ErrFavoriteAlreadyExists):
			return c.JSON(http.StatusConflict, util.Error("vendor already saved"))
		default:
			c.Logger().Errorf("save favorite: %v", err)
			return c.JSON(http.StatusInternalServerError, util.Error("could not update favorites"))
		}
	}

	return c.JSON(http.StatusCreated, util.Envelope{
		"favorite": util.Envelope{
			"id":        favorite.ID,
			"vendor_id": favorite.VendorID,
			"saved_at":  favorite.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (h *FavoriteHandler) removeFavorite(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	vendorID, ok := parseUUIDParam(c, "vendor_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, util.Error("vendor_id must be a valid UUID"))
	}

	if err := h.favorites.Remove(c.Request().Context(), user.ID, vendorID); err != nil {
		if errors.Is(err, service.ErrFavoriteNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("vendor is not in your favorites"))
		}
		c.Logger().Errorf("remove favorite: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("could not update favorites"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"vendor_id": vendorID})
}

func (h *FavoriteHandler) listFavorites(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	limit, offset := parsePagination(c, 20, 0)
	result, err := h.favorites.List(c.Request().Context(), user.ID, limit, offset)
	if err != nil {
		c.Logger().Errorf("list favorites: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load favorites"))
	}

	items := make([]FavoriteItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, toFavoriteItemResponse(item))
	}
	return c.JSON(http.StatusOK, util.Page("items", items, result.Total, result.Limit, result.Offset))
}

func (h *FavoriteHandler) countFavorites(c echo.Context) error {
	vendorID, ok := parseUUIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, util.Error("invalid vendor id"))
	}

	count, err := h.favorites.Count(c.Request().Context(), vendorID)
	if err != nil {
		if errors.Is(err, service.ErrVendorNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("vendor not found"))
		}
		c.Logger().Errorf("count favorites: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("unable to fetch favorites count"))
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"vendor_id":       vendorID,
		"favorites_count": count,
	})
}

func toFavoriteItemResponse(item domain.FavoriteListItem) FavoriteItemResponse {
	return FavoriteItemResponse{
		ID:       item.ID,
		VendorID: item.VendorID,
		SavedAt:  item.CreatedAt.UTC().Format(time.RFC3339),
		Vendor: FavoriteVendorResponse{
			BusinessName:    item.BusinessName,
			Category:        item.Category,
			ProfileImageURL: item.ProfileImageURL,
			IsLive:          item.IsLive,
		},
	}
}
