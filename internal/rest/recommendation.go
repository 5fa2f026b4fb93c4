package rest

import (
	"context"
	"errors"
	"net/http"

	"aiVisibility/domain"
	"aiVisibility/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		recommendationService RecommendationService
	}

	RecommendationService interface {
		ListByScan(ctx context.Context, scanID uint) ([]domain.Recommendation, error)
		Complete(ctx context.Context, id uint) error
		Skip(ctx context.Context, id uint) error
	}
)

func NewRecommendationHandler(svc RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationService: svc,
	}
}

// GET /api/v1/scans/:id/recommendations
func (h *RecommendationHandler) ListByScan(c echo.Context) error {
	scanID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid scan id"})
	}

	recs, err := h.recommendationService.ListByScan(c.Request().Context(), scanID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// POST /api/v1/recommendations/:id/complete
func (h *RecommendationHandler) Complete(c echo.Context) error {
	metrics.RecommendationStateRequests.WithLabelValues("complete").Inc()
	return h.advance(c, h.recommendationService.Complete)
}

// POST /api/v1/recommendations/:id/skip
func (h *RecommendationHandler) Skip(c echo.Context) error {
	metrics.RecommendationStateRequests.WithLabelValues("skip").Inc()
	return h.advance(c, h.recommendationService.Skip)
}

func (h *RecommendationHandler) advance(c echo.Context, fn func(context.Context, uint) error) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid recommendation id"})
	}

	if err := fn(c.Request().Context(), id); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			if verr.Field == "recommendation_id" {
				return c.JSON(http.StatusNotFound, ResponseError{Message: verr.Error()})
			}
			// Illegal state transitions are conflicts, not bad requests: the
			// row exists but something else advanced it first.
			return c.JSON(http.StatusConflict, ResponseError{Message: verr.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("state updated"))
}
