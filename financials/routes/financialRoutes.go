package routes

import (
	"tts-guard-backend/financials/controllers"
	"tts-guard-backend/financials/services"

	"github.com/gofiber/fiber/v2"
)

func FinancialRouterInit(router fiber.Router, financials *services.FinancialService) {
	financialController := &controllers.FinancialController{Financials: financials}

	router.Post("/invoices", financialController.CreateInvoiceController)
	router.Get("/invoices", financialController.GetFilteredInvoicesController)
	router.Get("/invoices/:id", financialController.GetInvoiceController)
	router.Post("/invoices/:id/payments", financialController.RecordPaymentController)
	router.Get("/payments", financialController.GetPaymentHistoryController)
}
