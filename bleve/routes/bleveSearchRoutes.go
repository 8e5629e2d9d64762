package routes

import (
	"tts-guard-backend/bleve/controllers"

	"github.com/gofiber/fiber/v2"
)

func InitBleveRoutes(router fiber.Router, controller *controllers.SearchController) {
	search := router.Group("/search")

	search.Get("/clients", controller.SearchClientsController)
	search.Get("/buildings", controller.SearchBuildingsController)
}
