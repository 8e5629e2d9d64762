package controllers

import (
	"tts-guard-backend/db/models"
	"tts-guard-backend/financials/services"
	"tts-guard-backend/utils"
	"tts-guard-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FinancialController struct {
	Financials *services.FinancialService
}

type createInvoiceRequest struct {
	ClientID    uuid.UUID       `json:"client_id"`
	ContractID  string          `json:"contract_id"`
	Amount      decimal.Decimal `json:"amount"`
	IssueDate   utils.DateOnly  `json:"issue_date"`
	DueDate     utils.DateOnly  `json:"due_date"`
	Description string          `json:"description"`
}

type recordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	PaidOn        utils.DateOnly  `json:"paid_on"`
	Reference     string          `json:"reference"`
}

func (fc *FinancialController) CreateInvoiceController(c *fiber.Ctx) error {
	var req createInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request", err)
	}

	invoice, err := fc.Financials.CreateInvoice(c.UserContext(), services.InvoiceRequest{
		ClientID:    req.ClientID,
		ContractID:  utils.StringToUUIDPtr(req.ContractID),
		Amount:      req.Amount,
		IssueDate:   req.IssueDate.Time(),
		DueDate:     req.DueDate.Time(),
		Description: req.Description,
	}, utils.ActorFromLocals(c.Locals("user")))
	if err != nil {
		return utils.RespondError(c, "Failed to create invoice", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Invoice created successfully",
		"data":    invoice,
	})
}

func (fc *FinancialController) GetInvoiceController(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam("invoice id", c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid invoice id", err)
	}

	invoice, err := fc.Financials.GetInvoice(c.UserContext(), id)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch invoice", err)
	}

	return c.JSON(fiber.Map{
		"message": "Invoice fetched successfully",
		"data":    invoice,
	})
}

func (fc *FinancialController) RecordPaymentController(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam("invoice id", c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid invoice id", err)
	}
	var req recordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request", err)
	}

	receipt, err := fc.Financials.RecordPayment(c.UserContext(), id, services.PaymentRequest{
		Amount:    req.Amount,
		Method:    models.PaymentMethod(req.PaymentMethod),
		PaidOn:    req.PaidOn.Time(),
		Reference: req.Reference,
	}, utils.ActorFromLocals(c.Locals("user")))
	if err != nil {
		return utils.RespondError(c, "Failed to record payment", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"data":    receipt,
	})
}

func (fc *FinancialController) GetFilteredInvoicesController(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return utils.BadRequest(c, "Invalid pagination parameters", err)
	}

	invoices, total, err := fc.Financials.ListInvoices(params.PageSize, params.Offset(), params.Filters)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch invoices", err)
	}

	return c.JSON(pagination.NewPaginatedResponse(c, invoices, total, params))
}

func (fc *FinancialController) GetPaymentHistoryController(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return utils.BadRequest(c, "Invalid pagination parameters", err)
	}

	payments, total, err := fc.Financials.PaymentHistory(params.PageSize, params.Offset(), params.Filters)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch payments", err)
	}

	return c.JSON(pagination.NewPaginatedResponse(c, payments, total, params))
}
