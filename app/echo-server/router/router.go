package router

import (
	"aiVisibility/internal/middleware"
	"aiVisibility/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetScanRoutes(api *echo.Group, handler *rest.ScanHandler) {
	scans := api.Group("/scans", middleware.AuthMiddleware())
	scans.POST("/:id/complete", handler.Complete)
}

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	api.GET("/scans/:id/recommendations", handler.ListByScan, middleware.AuthMiddleware())

	recs := api.Group("/recommendations", middleware.AuthMiddleware())
	recs.POST("/:id/complete", handler.Complete)
	recs.POST("/:id/skip", handler.Skip)
}

func SetModeRoutes(api *echo.Group, handler *rest.ModeHandler) {
	mode := api.Group("/mode", middleware.AuthMiddleware())
	mode.GET("", handler.Current)
	mode.GET("/history", handler.History)
}

func SetAdminRoutes(api *echo.Group, handler *rest.AdminHandler) {
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())

	admin.POST("/sweep", handler.RunSweep)
	admin.GET("/cycles/:accountID/:scanID/due", handler.CycleDue)
	admin.POST("/cycles/:accountID/:scanID/process", handler.CycleProcess)
}
