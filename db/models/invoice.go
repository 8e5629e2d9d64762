package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//
// ENUM DEFINITIONS
//

type PaymentMethod string

const (
	CashPaymentMethod         PaymentMethod = "CASH"
	BankTransferPaymentMethod PaymentMethod = "BANK_TRANSFER"
	ChequePaymentMethod       PaymentMethod = "CHEQUE"
	CardPaymentMethod         PaymentMethod = "CARD"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case CashPaymentMethod, BankTransferPaymentMethod, ChequePaymentMethod, CardPaymentMethod:
		return true
	}
	return false
}

type InvoiceStatus string

const (
	UnpaidInvoice  InvoiceStatus = "UNPAID"
	PartialInvoice InvoiceStatus = "PARTIAL"
	PaidInvoice    InvoiceStatus = "PAID"
)

//
// INVOICE MODEL
//

// Invoice bills a client, usually for an instalment of a contract.
// PaidAmount never exceeds Amount.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	ContractID    *uuid.UUID      `gorm:"type:uuid;index" json:"contract_id,omitempty"`
	InvoiceNumber string          `gorm:"uniqueIndex;not null" json:"invoice_number"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"paid_amount"`
	IssueDate     time.Time       `gorm:"type:date;not null" json:"issue_date"`
	DueDate       time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Description   string          `json:"description,omitempty"`

	Client   *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Payments []Payment `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Invoice) Balance() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

func (i *Invoice) Status() InvoiceStatus {
	switch {
	case i.PaidAmount.GreaterThanOrEqual(i.Amount):
		return PaidInvoice
	case i.PaidAmount.IsPositive():
		return PartialInvoice
	default:
		return UnpaidInvoice
	}
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.InvoiceNumber == "" {
		i.InvoiceNumber = fmt.Sprintf("INV-%s", uuid.NewString()[0:8])
	}
	return nil
}

//
// PAYMENT MODEL
//

// Payment is money received against an invoice.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(30);not null" json:"payment_method"`
	PaidOn        time.Time       `gorm:"type:date;not null;index" json:"paid_on"`
	ReceiptNumber string          `gorm:"uniqueIndex;not null" json:"receipt_number"`
	Reference     *string         `json:"reference,omitempty"` // bank txn, cheque number

	Invoice *Invoice `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Automatically generate UUID and ReceiptNumber before saving
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ReceiptNumber == "" {
		p.ReceiptNumber = fmt.Sprintf("RCT-%s", uuid.NewString()[0:8])
	}
	if p.PaidOn.IsZero() {
		p.PaidOn = time.Now()
	}
	return nil
}
