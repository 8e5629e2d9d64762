package controllers

import (
	"tts-guard-backend/bleve/models"
	"tts-guard-backend/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (c *SearchController) SearchClientsController(ctx *fiber.Ctx) error {
	results, err := c.repo.SearchClients(ctx.Query("q"), ctx.Query("city"))
	if err != nil {
		config.Logger.Error("Client search failed", zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Client search failed",
			"error":   "An internal server error occurred.",
		})
	}
	return ctx.JSON(models.FromResult(results))
}

func (c *SearchController) SearchBuildingsController(ctx *fiber.Ctx) error {
	results, err := c.repo.SearchBuildings(ctx.Query("q"), ctx.Query("area"), ctx.Query("building_type"))
	if err != nil {
		config.Logger.Error("Building search failed", zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Building search failed",
			"error":   "An internal server error occurred.",
		})
	}
	return ctx.JSON(models.FromResult(results))
}
