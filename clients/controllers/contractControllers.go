package controllers

import (
	"tts-guard-backend/db/models"
	"tts-guard-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type createContractRequest struct {
	BuildingID     uuid.UUID       `json:"building_id"`
	ContractNumber string          `json:"contract_number"`
	AnnualValue    decimal.Decimal `json:"annual_value"`
	StartDate      utils.DateOnly  `json:"start_date"`
	EndDate        utils.DateOnly  `json:"end_date"`
}

func (cc *ClientController) CreateContractController(c *fiber.Ctx) error {
	var req createContractRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request", err)
	}

	contract := models.Contract{
		BuildingID:     req.BuildingID,
		ContractNumber: req.ContractNumber,
		AnnualValue:    req.AnnualValue,
		StartDate:      req.StartDate.Time(),
		EndDate:        req.EndDate.Time(),
	}

	created, err := cc.Directory.CreateContract(c.UserContext(), &contract, utils.ActorFromLocals(c.Locals("user")))
	if err != nil {
		return utils.RespondError(c, "Failed to create contract", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Contract created successfully",
		"data":    created,
	})
}

func (cc *ClientController) ExpireContractController(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam("contract id", c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid contract id", err)
	}

	contract, err := cc.Directory.ExpireContract(c.UserContext(), id)
	if err != nil {
		return utils.RespondError(c, "Failed to expire contract", err)
	}

	return c.JSON(fiber.Map{
		"message": "Contract expired successfully",
		"data":    contract,
	})
}
