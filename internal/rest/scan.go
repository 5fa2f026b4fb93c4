package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"aiVisibility/business/pipeline"
	"aiVisibility/business/reccontext"
	"aiVisibility/domain"
	"aiVisibility/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	ScanHandler struct {
		validate *validator.Validate
		scans    ScanReader
		accounts AccountReader
		resolver ContextResolver
		saga     CompletionSaga
	}

	ScanReader interface {
		GetByID(ctx context.Context, id uint) (*domain.Scan, error)
	}

	AccountReader interface {
		GetProfile(ctx context.Context, accountID uint) (domain.AccountProfile, error)
	}

	ContextResolver interface {
		Resolve(ctx context.Context, accountID uint, domainName string, pageSet []string, isCompetitorProbe bool) (reccontext.Resolution, error)
		Create(ctx context.Context, accountID, scanID uint, domainName string, pageSet []string, initialScore float64, planTier string) (*domain.RecommendationContext, reccontext.UpsertOutcome, error)
	}

	CompletionSaga interface {
		OnScanComplete(ctx context.Context, accountID, scanID, contextID uint, pillarScores []float64, totalScore float64) (*pipeline.Report, error)
	}

	CompleteScanRequest struct {
		PillarScores []float64 `json:"pillar_scores" validate:"required,len=8,dive,gte=0,lte=10"`
		TotalScore   float64   `json:"total_score" validate:"gte=0,lte=1000"`
	}

	CompleteScanResponse struct {
		Report         *pipeline.Report              `json:"report"`
		Context        *domain.RecommendationContext `json:"context,omitempty"`
		ContextOutcome string                        `json:"context_outcome,omitempty"`
		CycleRefreshed bool                          `json:"cycle_refreshed,omitempty"`
	}
)

func NewScanHandler(scans ScanReader, accounts AccountReader, resolver ContextResolver, saga CompletionSaga) *ScanHandler {
	return &ScanHandler{
		validate: validator.New(),
		scans:    scans,
		accounts: accounts,
		resolver: resolver,
		saga:     saga,
	}
}

// POST /api/v1/scans/:id/complete
func (h *ScanHandler) Complete(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.ScanCompleteLatency)
	defer timer.ObserveDuration()
	metrics.ScanCompleteRequests.Inc()

	accountID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	scanID, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid scan id"})
	}

	var req CompleteScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx := c.Request().Context()

	scan, err := h.scans.GetByID(ctx, scanID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if scan == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "scan not found"})
	}
	if scan.AccountID != accountID {
		return c.JSON(http.StatusForbidden, ResponseError{Message: "scan belongs to a different account"})
	}

	resp := CompleteScanResponse{}

	if !scan.IsCompetitorProbe {
		resolution, err := h.resolver.Resolve(ctx, accountID, scan.Domain, scan.PageSet, scan.IsCompetitorProbe)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}
		resp.CycleRefreshed = resolution.CycleRefreshed

		if resolution.Reuse {
			resp.Context = resolution.Context
		} else {
			profile, err := h.accounts.GetProfile(ctx, accountID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
			}
			rctx, outcome, err := h.resolver.Create(ctx, accountID, scanID, scan.Domain, scan.PageSet, req.TotalScore, profile.PlanTier)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
			}
			resp.Context = rctx
			resp.ContextOutcome = string(outcome)
		}
	}

	var contextID uint
	if resp.Context != nil {
		contextID = resp.Context.ID
	}

	report, err := h.saga.OnScanComplete(ctx, accountID, scanID, contextID, req.PillarScores, req.TotalScore)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusConflict, ResponseError{Message: verr.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	resp.Report = report

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
