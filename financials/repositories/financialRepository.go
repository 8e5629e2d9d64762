package repositories

import (
	"errors"
	"fmt"

	"tts-guard-backend/config"
	"tts-guard-backend/db/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FinancialRepository interface {
	ClientExists(tx *gorm.DB, id uuid.UUID) (bool, error)
	GetContractByID(tx *gorm.DB, id uuid.UUID) (*models.Contract, error)

	CreateInvoice(tx *gorm.DB, invoice *models.Invoice) (*models.Invoice, error)
	GetInvoiceByID(tx *gorm.DB, id uuid.UUID) (*models.Invoice, error)
	GetFilteredInvoices(pageSize, offset int, filters map[string]string) ([]models.Invoice, int64, error)
	AddToPaidAmount(tx *gorm.DB, invoice *models.Invoice, payment *models.Payment) error

	CreatePayment(tx *gorm.DB, payment *models.Payment) error
	GetFilteredPayments(pageSize, offset int, filters map[string]string) ([]models.Payment, int64, error)
}

type financialRepository struct {
	db *gorm.DB
}

func NewFinancialRepository(db *gorm.DB) FinancialRepository {
	return &financialRepository{db: db}
}

func (r *financialRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *financialRepository) ClientExists(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.conn(tx).Model(&models.Client{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to look up client: %w", err)
	}
	return n > 0, nil
}

// GetContractByID preloads the building so callers can check ownership.
func (r *financialRepository) GetContractByID(tx *gorm.DB, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.conn(tx).Preload("Building").First(&contract, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch contract: %w", err)
	}
	return &contract, nil
}

func (r *financialRepository) CreateInvoice(tx *gorm.DB, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.conn(tx).Create(invoice).Error; err != nil {
		config.Logger.Error("Failed to create invoice",
			zap.String("client_id", invoice.ClientID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return invoice, nil
}

func (r *financialRepository) GetInvoiceByID(tx *gorm.DB, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.conn(tx).Preload("Client").First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch invoice: %w", err)
	}
	return &invoice, nil
}

func (r *financialRepository) GetFilteredInvoices(pageSize, offset int, filters map[string]string) ([]models.Invoice, int64, error) {
	var invoices []models.Invoice
	var total int64

	db := r.db.Model(&models.Invoice{})
	for key, value := range filters {
		switch key {
		case "client_id":
			db = db.Where("client_id = ?", value)
		case "contract_id":
			db = db.Where("contract_id = ?", value)
		case "outstanding_only":
			if value == "true" || value == "1" {
				db = db.Where("paid_amount < amount")
			}
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	if err := db.Preload("Client").
		Limit(pageSize).Offset(offset).
		Order("due_date ASC").Order("invoice_number ASC").
		Find(&invoices).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, total, nil
}

// AddToPaidAmount bumps paid_amount in SQL so concurrent payments cannot
// lose an update, then refreshes the in-memory invoice.
func (r *financialRepository) AddToPaidAmount(tx *gorm.DB, invoice *models.Invoice, payment *models.Payment) error {
	result := r.conn(tx).Model(&models.Invoice{}).
		Where("id = ? AND paid_amount + ? <= amount", invoice.ID, payment.Amount).
		UpdateColumn("paid_amount", gorm.Expr("paid_amount + ?", payment.Amount))
	if result.Error != nil {
		config.Logger.Error("Failed to update invoice paid amount",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errOverpaid
	}
	invoice.PaidAmount = invoice.PaidAmount.Add(payment.Amount)
	return nil
}

// errOverpaid reports that the guarded paid_amount update matched no row.
var errOverpaid = errors.New("payment exceeds invoice balance")

func IsOverpaid(err error) bool {
	return errors.Is(err, errOverpaid)
}

func (r *financialRepository) CreatePayment(tx *gorm.DB, payment *models.Payment) error {
	if err := r.conn(tx).Omit("Invoice").Create(payment).Error; err != nil {
		config.Logger.Error("Failed to create payment",
			zap.String("invoice_id", payment.InvoiceID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *financialRepository) GetFilteredPayments(pageSize, offset int, filters map[string]string) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.db.Model(&models.Payment{})
	for key, value := range filters {
		switch key {
		case "client_id":
			db = db.Where("invoice_id IN (?)",
				r.db.Model(&models.Invoice{}).Select("id").Where("client_id = ?", value))
		case "invoice_id":
			db = db.Where("invoice_id = ?", value)
		case "payment_method":
			db = db.Where("payment_method = ?", value)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}
	if err := db.Preload("Invoice").
		Limit(pageSize).Offset(offset).
		Order("paid_on DESC").Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}
