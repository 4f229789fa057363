package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/media"
	"github.com/aqui-app/aqui-api/internal/service"
	"github.com/aqui-app/aqui-api/internal/util"
)

type VendorHandler struct {
	vendors *service.VendorService
}

func RegisterVendors(e *echo.Echo, auth authenticator, vendors *service.VendorService) {
	h := &VendorHandler{vendors: vendors}

	public := e.Group("/api/v1/vendors")
	public.GET("", h.search)

	owner := e.Group("/api/v1/vendors", RequireAuth(auth))
	owner.POST("", h.create)
	owner.GET("/me", h.mine)
	owner.PUT("/me", h.updateMine)
	owner.POST("/me/image", h.uploadImage)

	// Registered after /me so the static segment wins.
	public.GET("/:id", h.detail)
}

func (h *VendorHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	var fields domain.VendorFields
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	vendor, err := h.vendors.Create(c.Request().Context(), user.ID, fields)
	if err != nil {
		return vendorError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Data("vendor", vendor))
}

func (h *VendorHandler) mine(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	vendor, err := h.vendors.Mine(c.Request().Context(), user.ID)
	if err != nil {
		return vendorError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("vendor", vendor))
}

func (h *VendorHandler) updateMine(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	var fields domain.VendorFields
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	vendor, err := h.vendors.UpdateMine(c.Request().Context(), user.ID, fields)
	if err != nil {
		return vendorError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("vendor", vendor))
}

func (h *VendorHandler) uploadImage(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("image file is required"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read image"))
	}
	defer file.Close()

	vendor, err := h.vendors.UploadImage(c.Request().Context(), user.ID, media.Upload{
		Reader:      file,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
	})
	if err != nil {
		return vendorError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("vendor", vendor))
}

func (h *VendorHandler) search(c echo.Context) error {
	filter := parseVendorSearchFilter(c)
	items, limit, offset, err := h.vendors.Search(c.Request().Context(), filter)
	if err != nil {
		return vendorError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"vendors": items,
		"limit":   limit,
		"offset":  offset,
		"count":   len(items),
	})
}

func (h *VendorHandler) detail(c echo.Context) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, util.Error("invalid vendor id"))
	}
	detail, err := h.vendors.Detail(c.Request().Context(), id)
	if err != nil {
		return vendorError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func parseVendorSearchFilter(c echo.Context) domain.VendorSearchFilter {
	limit, offset := parsePagination(c, 20, 0)
	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		query = strings.TrimSpace(c.QueryParam("q"))
	}
	return domain.VendorSearchFilter{
		Query:    query,
		Category: strings.ToLower(strings.TrimSpace(c.QueryParam("category"))),
		LiveOnly: parseBoolQuery(c, "live"),
		Limit:    limit,
		Offset:   offset,
	}
}

func vendorError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrVendorValidation), errors.Is(err, service.ErrVendorImage):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrVendorNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrVendorAlreadyExists):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	case errors.Is(err, service.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, util.Error(err.Error()))
	default:
		c.Logger().Errorf("vendor: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
}
