package controllers

import (
	"path/filepath"

	"tts-guard-backend/reports/services"
	"tts-guard-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	Reports *services.ReportService
}

// period reads year and month, defaulting to the current month.
func period(c *fiber.Ctx) (int, int) {
	today := utils.Today()
	return c.QueryInt("year", today.Year()), c.QueryInt("month", int(today.Month()))
}

func (rc *ReportController) GetComplianceReportController(c *fiber.Ctx) error {
	year, month := period(c)
	report, err := rc.Reports.MonthlyComplianceReport(c.UserContext(), year, month)
	if err != nil {
		return utils.RespondError(c, "Failed to build compliance report", err)
	}
	return c.JSON(fiber.Map{
		"message": "Compliance report generated successfully",
		"data":    report,
	})
}

func (rc *ReportController) ExportComplianceReportController(c *fiber.Ctx) error {
	year, month := period(c)
	path, err := rc.Reports.ExportMonthlyComplianceReport(c.UserContext(), year, month)
	if err != nil {
		return utils.RespondError(c, "Failed to export compliance report", err)
	}

	if c.Query("download") == "true" {
		return c.Download(path, filepath.Base(path))
	}
	return c.JSON(fiber.Map{
		"message": "Compliance report exported successfully",
		"data": fiber.Map{
			"file": "/public/files/" + filepath.Base(path),
			"url":  utils.GetDownloadURL(c, path),
		},
	})
}
