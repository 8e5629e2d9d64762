package controllers

import (
	"tts-guard-backend/db/models"
	"tts-guard-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func (cc *ClientController) CreateClientController(c *fiber.Ctx) error {
	var client models.Client
	if err := c.BodyParser(&client); err != nil {
		return utils.BadRequest(c, "Invalid request", err)
	}

	created, err := cc.Directory.CreateClient(c.UserContext(), &client, utils.ActorFromLocals(c.Locals("user")))
	if err != nil {
		return utils.RespondError(c, "Failed to create client", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Client created successfully",
		"data":    created,
	})
}

func (cc *ClientController) GetClientController(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam("client id", c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid client id", err)
	}

	client, err := cc.Directory.GetClient(c.UserContext(), id)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch client", err)
	}

	response := fiber.Map{
		"message": "Client retrieved successfully",
		"data":    client,
	}
	if cc.Financials != nil {
		financials, err := cc.Financials.ClientFinancialsFor(c.UserContext(), id)
		if err != nil {
			return utils.RespondError(c, "Failed to fetch client financials", err)
		}
		response["financials"] = financials
	}
	return c.JSON(response)
}
