package rest

import (
	"context"
	"net/http"
	"strconv"

	"aiVisibility/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	ModeHandler struct {
		modeService ModeService
		history     ModeHistory
	}

	ModeService interface {
		CurrentMode(ctx context.Context, accountID uint) (string, error)
	}

	ModeHistory interface {
		ListTransitions(ctx context.Context, accountID uint, limit int) ([]domain.ModeTransition, error)
	}

	ModeResponse struct {
		AccountID uint   `json:"account_id"`
		Mode      string `json:"mode"`
	}
)

func NewModeHandler(svc ModeService, history ModeHistory) *ModeHandler {
	return &ModeHandler{
		modeService: svc,
		history:     history,
	}
}

// GET /api/v1/mode
func (h *ModeHandler) Current(c echo.Context) error {
	accountID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	mode, err := h.modeService.CurrentMode(c.Request().Context(), accountID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ModeResponse{
		AccountID: accountID,
		Mode:      mode,
	}))
}

// GET /api/v1/mode/history?limit=20
func (h *ModeHandler) History(c echo.Context) error {
	accountID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	transitions, err := h.history.ListTransitions(c.Request().Context(), accountID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(transitions))
}
