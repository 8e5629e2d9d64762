package controllers

import (
	"tts-guard-backend/dashboard/services"
	"tts-guard-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type DashboardController struct {
	Aggregator *services.Aggregator
}

func (dc *DashboardController) GetOverviewController(c *fiber.Ctx) error {
	overview, err := dc.Aggregator.Overview(c.UserContext())
	if err != nil {
		return utils.RespondError(c, "Failed to load dashboard", err)
	}
	return c.JSON(fiber.Map{
		"message": "Dashboard fetched successfully",
		"data":    overview,
	})
}

func (dc *DashboardController) GetMetricsController(c *fiber.Ctx) error {
	ctx := c.UserContext()
	activeClients, err := dc.Aggregator.CountActiveClients(ctx)
	if err != nil {
		return utils.RespondError(c, "Failed to load metrics", err)
	}
	buildings, err := dc.Aggregator.CountBuildings(ctx)
	if err != nil {
		return utils.RespondError(c, "Failed to load metrics", err)
	}
	activeContracts, err := dc.Aggregator.CountActiveContracts(ctx)
	if err != nil {
		return utils.RespondError(c, "Failed to load metrics", err)
	}
	inspections, err := dc.Aggregator.InspectionMetrics(ctx)
	if err != nil {
		return utils.RespondError(c, "Failed to load metrics", err)
	}

	return c.JSON(fiber.Map{
		"message": "Metrics fetched successfully",
		"data": fiber.Map{
			"active_clients":   activeClients,
			"buildings":        buildings,
			"active_contracts": activeContracts,
			"inspections":      inspections,
		},
	})
}

func (dc *DashboardController) GetFinancialSummaryController(c *fiber.Ctx) error {
	summary, err := dc.Aggregator.GetFinancialSummary(c.UserContext())
	if err != nil {
		return utils.RespondError(c, "Failed to load financial summary", err)
	}
	return c.JSON(fiber.Map{
		"message": "Financial summary fetched successfully",
		"data":    summary,
	})
}

func (dc *DashboardController) GetOverdueInspectionsController(c *fiber.Ctx) error {
	inspections, err := dc.Aggregator.ListOverdueInspections(c.UserContext())
	if err != nil {
		return utils.RespondError(c, "Failed to load overdue inspections", err)
	}
	return c.JSON(fiber.Map{
		"message": "Overdue inspections fetched successfully",
		"data":    inspections,
	})
}

func (dc *DashboardController) GetUpcomingInspectionsController(c *fiber.Ctx) error {
	// Without ?days the policy window applies.
	days := -1
	if c.Query("days") != "" {
		days = c.QueryInt("days", -1)
		if days < 0 || days > 90 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid days",
				"error":   "days must be between 0 and 90",
			})
		}
	}
	inspections, err := dc.Aggregator.ListUpcomingInspections(c.UserContext(), days)
	if err != nil {
		return utils.RespondError(c, "Failed to load upcoming inspections", err)
	}
	return c.JSON(fiber.Map{
		"message": "Upcoming inspections fetched successfully",
		"data":    inspections,
	})
}

func (dc *DashboardController) GetRecentComplaintsController(c *fiber.Ctx) error {
	complaints, err := dc.Aggregator.ListRecentComplaints(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		return utils.RespondError(c, "Failed to load complaints", err)
	}
	return c.JSON(fiber.Map{
		"message": "Recent complaints fetched successfully",
		"data":    complaints,
	})
}

func (dc *DashboardController) GetClientFinancialsController(c *fiber.Ctx) error {
	rows, err := dc.Aggregator.ClientFinancials(c.UserContext())
	if err != nil {
		return utils.RespondError(c, "Failed to load client financials", err)
	}
	return c.JSON(fiber.Map{
		"message": "Client financials fetched successfully",
		"data":    rows,
	})
}
