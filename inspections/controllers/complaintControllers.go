package controllers

import (
	"tts-guard-backend/inspections/services"
	"tts-guard-backend/utils"
	"tts-guard-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
)

type createComplaintRequest struct {
	BuildingID   string `json:"building_id"`
	InspectionID string `json:"inspection_id"`
	EquipmentID  string `json:"equipment_id"`
	Description  string `json:"description"`
}

type closeComplaintRequest struct {
	Resolution string `json:"resolution"`
}

func (ic *InspectionController) CreateComplaintController(c *fiber.Ctx) error {
	var req createComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request", err)
	}
	buildingID, err := utils.ParseUUIDParam("building_id", req.BuildingID)
	if err != nil {
		return utils.BadRequest(c, "Invalid building id", err)
	}

	complaint, err := ic.Inspections.CreateComplaint(c.UserContext(), services.ComplaintRequest{
		BuildingID:   buildingID,
		InspectionID: utils.StringToUUIDPtr(req.InspectionID),
		EquipmentID:  utils.StringToUUIDPtr(req.EquipmentID),
		Description:  req.Description,
	}, utils.ActorFromLocals(c.Locals("user")))
	if err != nil {
		return utils.RespondError(c, "Failed to create complaint", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Complaint created successfully",
		"data":    complaint,
	})
}

func (ic *InspectionController) CloseComplaintController(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam("complaint id", c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid complaint id", err)
	}
	var req closeComplaintRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.BadRequest(c, "Invalid request", err)
		}
	}

	complaint, err := ic.Inspections.CloseComplaint(c.UserContext(), id, req.Resolution)
	if err != nil {
		return utils.RespondError(c, "Failed to close complaint", err)
	}

	return c.JSON(fiber.Map{
		"message": "Complaint closed successfully",
		"data":    complaint,
	})
}

func (ic *InspectionController) GetFilteredComplaintsController(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return utils.BadRequest(c, "Invalid pagination parameters", err)
	}

	complaints, total, err := ic.Inspections.ListComplaints(params.PageSize, params.Offset(), params.Filters)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch complaints", err)
	}

	return c.JSON(pagination.NewPaginatedResponse(c, complaints, total, params))
}
