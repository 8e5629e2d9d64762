package routes

import (
	"tts-guard-backend/dashboard/controllers"
	"tts-guard-backend/dashboard/services"

	"github.com/gofiber/fiber/v2"
)

func DashboardRouterInit(router fiber.Router, aggregator *services.Aggregator) {
	dashboardController := &controllers.DashboardController{Aggregator: aggregator}

	dashboard := router.Group("/dashboard")
	dashboard.Get("/overview", dashboardController.GetOverviewController)
	dashboard.Get("/metrics", dashboardController.GetMetricsController)
	dashboard.Get("/financial-summary", dashboardController.GetFinancialSummaryController)
	dashboard.Get("/overdue-inspections", dashboardController.GetOverdueInspectionsController)
	dashboard.Get("/upcoming-inspections", dashboardController.GetUpcomingInspectionsController)
	dashboard.Get("/recent-complaints", dashboardController.GetRecentComplaintsController)
	dashboard.Get("/client-financials", dashboardController.GetClientFinancialsController)
}
