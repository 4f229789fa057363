package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/service"
	"github.com/aqui-app/aqui-api/internal/util"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

type ReviewAuthorResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

type ReviewResponse struct {
	ID        uuid.UUID            `json:"id"`
	VendorID  uuid.UUID            `json:"vendor_id"`
	Rating    int                  `json:"rating"`
	Comment   *string              `json:"comment,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Reviewer  ReviewAuthorResponse `json:"reviewer"`
}

type ReviewAggregateResponse struct {
	AverageRating float64        `json:"average_rating"`
	TotalReviews  int            `json:"total_reviews"`
	RatingCounts  map[string]int `json:"rating_counts"`
}

type ReviewListResponse struct {
	VendorID uuid.UUID `json:"vendor_id"`
	ReviewAggregateResponse
	Reviews []ReviewResponse `json:"reviews"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

type createReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

func RegisterReviews(e *echo.Echo, auth authenticator, reviews *service.ReviewService) {
	h := &ReviewHandler{reviews: reviews}

	e.GET("/api/v1/vendors/:id/reviews", h.listReviews)

	protected := e.Group("/api/v1", RequireAuth(auth))
	protected.POST("/vendors/:id/reviews", h.createReview)
	protected.DELETE("/reviews/:id", h.deleteReview)
}

func (h *ReviewHandler) createReview(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	vendorID, ok := parseUUIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, util.Error("invalid vendor id"))
	}
	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	review, aggregate, err := h.reviews.CreateReview(c.Request().Context(), user.ID, vendorID, service.ReviewCreateInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Envelope{
		"review":    toReviewResponse(*review),
		"aggregate": toAggregateResponse(aggregate),
	})
}

func (h *ReviewHandler) listReviews(c echo.Context) error {
	vendorID, ok := parseUUIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, util.Error("invalid vendor id"))
	}
	filter, err := parseReviewFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	result, err := h.reviews.ListVendorReviews(c.Request().Context(), vendorID, filter)
	if err != nil {
		return reviewError(c, err)
	}

	reviews := make([]ReviewResponse, 0, len(result.Reviews))
	for _, review := range result.Reviews {
		reviews = append(reviews, toReviewResponse(review))
	}
	return c.JSON(http.StatusOK, ReviewListResponse{
		VendorID:                result.VendorID,
		ReviewAggregateResponse: toAggregateResponse(&result.Aggregate),
		Reviews:                 reviews,
		Limit:                   result.Limit,
		Offset:                  result.Offset,
	})
}

func (h *ReviewHandler) deleteReview(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	reviewID, ok := parseUUIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, util.Error("invalid review id"))
	}
	if err := h.reviews.DeleteReview(c.Request().Context(), reviewID, user.ID, user.IsAdmin()); err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func reviewError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrReviewValidation):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrReviewOwnVendor), errors.Is(err, service.ErrReviewForbidden):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, service.ErrReviewNotFound), errors.Is(err, service.ErrVendorNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrReviewAlreadyExist):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	default:
		c.Logger().Errorf("review: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
}

func parseReviewFilter(c echo.Context) (domain.ReviewListFilter, error) {
	filter := domain.ReviewListFilter{}
	filter.Limit, filter.Offset = parsePagination(c, 0, 0)

	intParam := func(name string) (*int, error) {
		raw := strings.TrimSpace(c.QueryParam(name))
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New(name + " must be an integer")
		}
		return &v, nil
	}

	var err error
	if filter.MinRating, err = intParam("min_rating"); err != nil {
		return domain.ReviewListFilter{}, err
	}
	if filter.MaxRating, err = intParam("max_rating"); err != nil {
		return domain.ReviewListFilter{}, err
	}
	exact, err := intParam("rating")
	if err != nil {
		return domain.ReviewListFilter{}, err
	}
	if exact != nil {
		filter.MinRating, filter.MaxRating = exact, exact
	}

	if strings.EqualFold(strings.TrimSpace(c.QueryParam("sort")), "rating") {
		filter.SortField = domain.ReviewSortRating
	} else {
		filter.SortField = domain.ReviewSortCreatedAt
	}
	if strings.EqualFold(strings.TrimSpace(c.QueryParam("order")), "asc") {
		filter.SortOrder = domain.SortOrderAsc
	} else {
		filter.SortOrder = domain.SortOrderDesc
	}
	return filter, nil
}

func toReviewResponse(review domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		VendorID:  review.VendorID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
		Reviewer: ReviewAuthorResponse{
			ID:          review.UserID,
			DisplayName: reviewerDisplayName(review),
		},
	}
}

func toAggregateResponse(aggregate *domain.ReviewAggregate) ReviewAggregateResponse {
	resp := ReviewAggregateResponse{RatingCounts: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}}
	if aggregate == nil {
		return resp
	}
	resp.AverageRating = aggregate.AverageRating
	resp.TotalReviews = aggregate.TotalReviews
	for rating, count := range aggregate.RatingCounts {
		resp.RatingCounts[strconv.Itoa(rating)] = count
	}
	return resp
}

func reviewerDisplayName(review domain.Review) string {
	if review.ReviewerName != nil {
		if trimmed := strings.TrimSpace(*review.ReviewerName); trimmed != "" {
			return trimmed
		}
	}
	if review.ReviewerEmail != nil {
		email := strings.TrimSpace(*review.ReviewerEmail)
		if idx := strings.Index(email, "@"); idx > 0 {
			return email[:idx]
		}
	}
	return "Anonymous"
}
