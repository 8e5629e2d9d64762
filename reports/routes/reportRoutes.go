package routes

import (
	"tts-guard-backend/reports/controllers"
	"tts-guard-backend/reports/services"

	"github.com/gofiber/fiber/v2"
)

func ReportRouterInit(router fiber.Router, reports *services.ReportService) {
	reportController := &controllers.ReportController{Reports: reports}

	router.Get("/reports/compliance", reportController.GetComplianceReportController)
	router.Get("/reports/compliance/export", reportController.ExportComplianceReportController)
}
