package services

import (
	"context"
	"strings"
	"time"

	"tts-guard-backend/apperrors"
	"tts-guard-backend/config"
	"tts-guard-backend/db/models"
	"tts-guard-backend/financials/repositories"
	"tts-guard-backend/internal/events"
	"tts-guard-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InvoiceRequest struct {
	ClientID    uuid.UUID
	ContractID  *uuid.UUID
	Amount      decimal.Decimal
	IssueDate   time.Time
	DueDate     time.Time
	Description string
}

type PaymentRequest struct {
	Amount    decimal.Decimal
	Method    models.PaymentMethod
	PaidOn    time.Time
	Reference string
}

// PaymentReceipt is what RecordPayment hands back: the new payment and the
// invoice as it stands afterwards.
type PaymentReceipt struct {
	Payment *models.Payment `json:"payment"`
	Invoice *models.Invoice `json:"invoice"`
	Status  string          `json:"invoice_status"`
	Balance decimal.Decimal `json:"balance"`
}

type FinancialService struct {
	db        *gorm.DB
	repo      repositories.FinancialRepository
	cache     utils.Cache
	publisher events.Publisher
	today     func() time.Time
}

func NewFinancialService(db *gorm.DB, repo repositories.FinancialRepository, cache utils.Cache, publisher events.Publisher) *FinancialService {
	if cache == nil {
		cache = utils.NopCache{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &FinancialService{db: db, repo: repo, cache: cache, publisher: publisher, today: utils.Today}
}

func (s *FinancialService) WithClock(today func() time.Time) *FinancialService {
	s.today = today
	return s
}

func (s *FinancialService) changed(ctx context.Context, e events.Event) {
	utils.InvalidateQuietly(ctx, s.cache, utils.DashboardResource)
	s.publisher.Publish(e)
}

func (s *FinancialService) CreateInvoice(ctx context.Context, req InvoiceRequest, actor string) (*models.Invoice, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.InvalidInput("invoice amount must be greater than zero")
	}
	issue := req.IssueDate
	if issue.IsZero() {
		issue = s.today()
	}
	issue = utils.NormalizeDate(issue)
	if req.DueDate.IsZero() {
		return nil, apperrors.InvalidInput("due date is required")
	}
	due := utils.NormalizeDate(req.DueDate)
	if due.Before(issue) {
		return nil, apperrors.InvalidInput("due date %s is before issue date %s", utils.SQLDate(due), utils.SQLDate(issue))
	}

	db := s.db.WithContext(ctx)
	exists, err := s.repo.ClientExists(db, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("client %s", req.ClientID)
	}
	if req.ContractID != nil {
		contract, err := s.repo.GetContractByID(db, *req.ContractID)
		if err != nil {
			return nil, err
		}
		if contract == nil {
			return nil, apperrors.NotFound("contract %s", *req.ContractID)
		}
		if contract.Building == nil || contract.Building.ClientID != req.ClientID {
			return nil, apperrors.InvalidInput("contract %s does not belong to client %s", contract.ID, req.ClientID)
		}
	}

	invoice := &models.Invoice{
		ClientID:    req.ClientID,
		ContractID:  req.ContractID,
		Amount:      req.Amount.Round(2),
		PaidAmount:  decimal.Zero,
		IssueDate:   issue,
		DueDate:     due,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   actor,
	}
	if _, err := s.repo.CreateInvoice(db, invoice); err != nil {
		return nil, err
	}

	config.Logger.Info("Invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("amount", invoice.Amount.StringFixed(2)))
	s.changed(ctx, events.New(events.InvoiceCreated, invoice))
	return invoice, nil
}

// RecordPayment applies a payment to an invoice. The payment row and the
// paid_amount increase are written in one transaction; a payment larger than
// the remaining balance is rejected.
func (s *FinancialService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req PaymentRequest, actor string) (*PaymentReceipt, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.InvalidInput("payment amount must be greater than zero")
	}
	amount := req.Amount.Round(2)
	method := models.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(req.Method))))
	if method == "" {
		method = models.BankTransferPaymentMethod
	}
	if !method.Valid() {
		return nil, apperrors.InvalidInput("unknown payment method %q", req.Method)
	}
	paidOn := req.PaidOn
	if paidOn.IsZero() {
		paidOn = s.today()
	}
	paidOn = utils.NormalizeDate(paidOn)

	receipt := &PaymentReceipt{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.GetInvoiceByID(tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperrors.NotFound("invoice %s", invoiceID)
		}
		if invoice.Balance().LessThan(amount) {
			return apperrors.InvalidInput("payment %s exceeds the remaining balance %s", amount.StringFixed(2), invoice.Balance().StringFixed(2))
		}

		payment := &models.Payment{
			InvoiceID:     invoice.ID,
			Amount:        amount,
			PaymentMethod: method,
			PaidOn:        paidOn,
			Reference:     utils.StringPtr(strings.TrimSpace(req.Reference)),
			CreatedBy:     actor,
		}
		if err := s.repo.AddToPaidAmount(tx, invoice, payment); err != nil {
			if repositories.IsOverpaid(err) {
				return apperrors.InvalidInput("payment %s exceeds the remaining balance", amount.StringFixed(2))
			}
			return err
		}
		if err := s.repo.CreatePayment(tx, payment); err != nil {
			return err
		}

		receipt.Payment = payment
		receipt.Invoice = invoice
		receipt.Status = string(invoice.Status())
		receipt.Balance = invoice.Balance()
		return nil
	})
	if err != nil {
		return nil, err
	}

	config.Logger.Info("Payment recorded",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("receipt", receipt.Payment.ReceiptNumber))
	s.changed(ctx, events.New(events.PaymentRecorded, receipt))
	return receipt, nil
}

func (s *FinancialService) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.GetInvoiceByID(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperrors.NotFound("invoice %s", id)
	}
	return invoice, nil
}

// ListInvoices honours an "outstanding_only" filter alongside client_id and
// contract_id.
func (s *FinancialService) ListInvoices(pageSize, offset int, filters map[string]string) ([]models.Invoice, int64, error) {
	return s.repo.GetFilteredInvoices(pageSize, offset, filters)
}

// PaymentHistory lists payments newest first, optionally for one client.
func (s *FinancialService) PaymentHistory(pageSize, offset int, filters map[string]string) ([]models.Payment, int64, error) {
	return s.repo.GetFilteredPayments(pageSize, offset, filters)
}
