package routes

import (
	"tts-guard-backend/demo/controllers"
	"tts-guard-backend/demo/services"

	"github.com/gofiber/fiber/v2"
)

func DemoRouterInit(router fiber.Router, demo *services.DemoService, guards ...fiber.Handler) {
	controller := &controllers.DemoController{Demo: demo}
	handlers := append(guards, controller.ResetDemoData)
	router.Post("/demo/reset", handlers...)
}
