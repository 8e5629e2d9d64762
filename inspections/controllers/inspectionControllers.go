package controllers

import (
	"tts-guard-backend/db/models"
	"tts-guard-backend/inspections/services"
	"tts-guard-backend/utils"
	"tts-guard-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InspectionController struct {
	Inspections *services.InspectionService
}

type scheduleInspectionRequest struct {
	BuildingID    uuid.UUID      `json:"building_id"`
	ScheduledDate utils.DateOnly `json:"scheduled_date"`
	Technician    string         `json:"technician"`
	Notes         string         `json:"notes"`
}

type rescheduleRequest struct {
	ScheduledDate utils.DateOnly `json:"scheduled_date"`
	Technician    string         `json:"technician"`
}

type submitResultRequest struct {
	Checks []models.EquipmentCheck `json:"checks"`
	Notes  string                  `json:"notes"`
}

func (ic *InspectionController) ScheduleInspectionController(c *fiber.Ctx) error {
	var req scheduleInspectionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request", err)
	}

	inspection, err := ic.Inspections.ScheduleInspection(c.UserContext(), services.ScheduleRequest{
		BuildingID:    req.BuildingID,
		ScheduledDate: req.ScheduledDate.Time(),
		Technician:    req.Technician,
		Notes:         req.Notes,
	}, utils.ActorFromLocals(c.Locals("user")))
	if err != nil {
		return utils.RespondError(c, "Failed to schedule inspection", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Inspection scheduled successfully",
		"data":    inspection,
	})
}

func (ic *InspectionController) RescheduleInspectionController(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam("inspection id", c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid inspection id", err)
	}
	var req rescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request", err)
	}

	inspection, err := ic.Inspections.RescheduleInspection(c.UserContext(), id, req.ScheduledDate.Time(), req.Technician)
	if err != nil {
		return utils.RespondError(c, "Failed to reschedule inspection", err)
	}

	return c.JSON(fiber.Map{
		"message": "Inspection rescheduled successfully",
		"data":    inspection,
	})
}

func (ic *InspectionController) SubmitInspectionResultController(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam("inspection id", c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid inspection id", err)
	}
	var req submitResultRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request", err)
	}

	result, err := ic.Inspections.SubmitInspectionResult(c.UserContext(), id, req.Checks, req.Notes, utils.ActorFromLocals(c.Locals("user")))
	if err != nil {
		return utils.RespondError(c, "Failed to submit inspection result", err)
	}

	return c.JSON(fiber.Map{
		"message": "Inspection result recorded",
		"data":    result,
	})
}

func (ic *InspectionController) GetInspectionController(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam("inspection id", c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid inspection id", err)
	}

	inspection, err := ic.Inspections.GetInspection(c.UserContext(), id)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch inspection", err)
	}

	return c.JSON(fiber.Map{
		"message": "Inspection fetched successfully",
		"data":    inspection,
	})
}

func (ic *InspectionController) GetFilteredInspectionsController(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return utils.BadRequest(c, "Invalid pagination parameters", err)
	}

	inspections, total, err := ic.Inspections.ListInspections(params.PageSize, params.Offset(), params.Filters)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch inspections", err)
	}

	return c.JSON(pagination.NewPaginatedResponse(c, inspections, total, params))
}

func (ic *InspectionController) SweepOverdueController(c *fiber.Ctx) error {
	result, err := ic.Inspections.SweepOverdue(c.UserContext())
	if err != nil {
		return utils.RespondError(c, "Failed to refresh overdue inspections", err)
	}
	return c.JSON(fiber.Map{
		"message": "Overdue sweep completed",
		"data":    result,
	})
}
