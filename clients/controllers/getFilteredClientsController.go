package controllers

import (
	"tts-guard-backend/utils"
	"tts-guard-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
)

func (cc *ClientController) GetFilteredClientsController(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return utils.BadRequest(c, "Invalid pagination parameters", err)
	}

	clients, total, err := cc.Directory.ListClients(params.PageSize, params.Offset(), params.Filters)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch clients", err)
	}

	return c.JSON(pagination.NewPaginatedResponse(c, clients, total, params))
}

func (cc *ClientController) GetFilteredBuildingsController(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return utils.BadRequest(c, "Invalid pagination parameters", err)
	}

	buildings, total, err := cc.Directory.ListBuildings(params.PageSize, params.Offset(), params.Filters)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch buildings", err)
	}

	return c.JSON(pagination.NewPaginatedResponse(c, buildings, total, params))
}
