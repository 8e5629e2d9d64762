package controllers

import (
	"tts-guard-backend/demo/services"
	"tts-guard-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type DemoController struct {
	Demo *services.DemoService
}

func (dc *DemoController) ResetDemoData(c *fiber.Ctx) error {
	baseline, err := dc.Demo.Reset(c.UserContext(), utils.ActorFromLocals(c.Locals("user")))
	if err != nil {
		return utils.RespondError(c, "Failed to reset demo data", err)
	}
	return c.JSON(fiber.Map{
		"message": "Demo data restored",
		"data":    baseline,
	})
}
