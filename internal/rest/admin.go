package rest

import (
	"context"
	"net/http"

	"aiVisibility/business/pipeline"
	"aiVisibility/business/refresh"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	AdminHandler struct {
		sweeper SweepRunner
		cycles  CycleAdmin
	}

	SweepRunner interface {
		Sweep(ctx context.Context) (pipeline.SweepResult, error)
	}

	CycleAdmin interface {
		IsDue(ctx context.Context, accountID, scanID uint) (refresh.DueStatus, error)
		Process(ctx context.Context, accountID, scanID uint) (refresh.ProcessResult, error)
	}
)

func NewAdminHandler(sweeper SweepRunner, cycles CycleAdmin) *AdminHandler {
	return &AdminHandler{
		sweeper: sweeper,
		cycles:  cycles,
	}
}

// POST /api/v1/admin/sweep
func (h *AdminHandler) RunSweep(c echo.Context) error {
	res, err := h.sweeper.Sweep(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}

// GET /api/v1/admin/cycles/:accountID/:scanID/due
func (h *AdminHandler) CycleDue(c echo.Context) error {
	accountID, err := parseUintParam(c, "accountID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid account id"})
	}
	scanID, err := parseUintParam(c, "scanID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid scan id"})
	}

	status, err := h.cycles.IsDue(c.Request().Context(), accountID, scanID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(status))
}

// POST /api/v1/admin/cycles/:accountID/:scanID/process
func (h *AdminHandler) CycleProcess(c echo.Context) error {
	accountID, err := parseUintParam(c, "accountID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid account id"})
	}
	scanID, err := parseUintParam(c, "scanID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid scan id"})
	}

	res, err := h.cycles.Process(c.Request().Context(), accountID, scanID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}
