package routes

import (
	"tts-guard-backend/inspections/controllers"
	"tts-guard-backend/inspections/services"

	"github.com/gofiber/fiber/v2"
)

func InspectionRouterInit(router fiber.Router, inspections *services.InspectionService) {
	inspectionController := &controllers.InspectionController{Inspections: inspections}

	router.Post("/inspections", inspectionController.ScheduleInspectionController)
	router.Get("/inspections", inspectionController.GetFilteredInspectionsController)
	router.Post("/inspections/sweep-overdue", inspectionController.SweepOverdueController)
	router.Get("/inspections/:id", inspectionController.GetInspectionController)
	router.Patch("/inspections/:id/schedule", inspectionController.RescheduleInspectionController)
	router.Post("/inspections/:id/submit", inspectionController.SubmitInspectionResultController)

	router.Post("/complaints", inspectionController.CreateComplaintController)
	router.Get("/complaints", inspectionController.GetFilteredComplaintsController)
	router.Post("/complaints/:id/close", inspectionController.CloseComplaintController)
}
