package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/service"
	"github.com/aqui-app/aqui-api/internal/util"
)

type mapReader interface {
	LiveMarkers(ctx context.Context, bounds *domain.Bounds) ([]domain.MapMarker, error)
}

type MapHandler struct {
	markers mapReader
}

func RegisterMap(e *echo.Echo, markers mapReader) {
	h := &MapHandler{markers: markers}
	e.GET("/api/v1/map/vendors", h.liveVendors)
}

func (h *MapHandler) liveVendors(c echo.Context) error {
	bounds, err := parseBounds(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	markers, err := h.markers.LiveMarkers(c.Request().Context(), bounds)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBounds) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		c.Logger().Errorf("map markers: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"markers": markers,
		"count":   len(markers),
	})
}

// parseBounds reads north/south/east/west. All four or none must be given.
func parseBounds(c echo.Context) (*domain.Bounds, error) {
	names := [4]string{"north", "south", "east", "west"}
	var values [4]float64
	present := 0
	for i, name := range names {
		raw := strings.TrimSpace(c.QueryParam(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", name)
		}
		values[i] = v
		present++
	}
	switch present {
	case 0:
		return nil, nil
	case len(names):
		return &domain.Bounds{North: values[0], South: values[1], East: values[2], West: values[3]}, nil
	default:
		return nil, errors.New("north, south, east and west must be given together")
	}
}
