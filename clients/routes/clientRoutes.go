package routes

import (
	"tts-guard-backend/clients/controllers"
	"tts-guard-backend/clients/services"

	"github.com/gofiber/fiber/v2"
)

func ClientRouterInit(
	router fiber.Router,
	directory *services.DirectoryService,
	financials controllers.ClientFinancialsReader,
) {
	clientController := &controllers.ClientController{
		Directory:  directory,
		Financials: financials,
	}

	router.Post("/clients", clientController.CreateClientController)
	router.Get("/clients", clientController.GetFilteredClientsController)
	router.Get("/clients/:id", clientController.GetClientController)

	router.Post("/buildings", clientController.CreateBuildingController)
	router.Get("/buildings", clientController.GetFilteredBuildingsController)
	router.Post("/buildings/:id/equipment", clientController.AddEquipmentController)
	router.Get("/buildings/:id/equipment", clientController.ListEquipmentController)

	router.Post("/contracts", clientController.CreateContractController)
	router.Post("/contracts/:id/expire", clientController.ExpireContractController)
}
