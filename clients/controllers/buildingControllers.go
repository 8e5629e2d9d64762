package controllers

import (
	"tts-guard-backend/db/models"
	"tts-guard-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func (cc *ClientController) CreateBuildingController(c *fiber.Ctx) error {
	var building models.Building
	if err := c.BodyParser(&building); err != nil {
		return utils.BadRequest(c, "Invalid request", err)
	}

	created, err := cc.Directory.CreateBuilding(c.UserContext(), &building, utils.ActorFromLocals(c.Locals("user")))
	if err != nil {
		return utils.RespondError(c, "Failed to create building", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Building created successfully",
		"data":    created,
	})
}

type addEquipmentRequest struct {
	EquipmentType models.EquipmentType `json:"equipment_type"`
	Location      string               `json:"location"`
	SerialNumber  *string              `json:"serial_number"`
	LastServiced  *utils.DateOnly      `json:"last_serviced"`
}

func (cc *ClientController) AddEquipmentController(c *fiber.Ctx) error {
	buildingID, err := utils.ParseUUIDParam("building id", c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid building id", err)
	}

	var req addEquipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request", err)
	}

	equipment := models.Equipment{
		EquipmentType: req.EquipmentType,
		Location:      req.Location,
		SerialNumber:  req.SerialNumber,
	}
	if req.LastServiced != nil && !req.LastServiced.IsZero() {
		serviced := req.LastServiced.Time()
		equipment.LastServiced = &serviced
	}

	created, err := cc.Directory.AddEquipment(c.UserContext(), buildingID, &equipment)
	if err != nil {
		return utils.RespondError(c, "Failed to add equipment", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Equipment added successfully",
		"data":    created,
	})
}

func (cc *ClientController) ListEquipmentController(c *fiber.Ctx) error {
	buildingID, err := utils.ParseUUIDParam("building id", c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid building id", err)
	}

	equipment, err := cc.Directory.ListEquipment(c.UserContext(), buildingID)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch equipment", err)
	}

	return c.JSON(fiber.Map{
		"message": "Equipment retrieved successfully",
		"data":    equipment,
	})
}
