package testutil

import (
	"fmt"
	"testing"
	"time"

	"tts-guard-backend/db/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func SeedClient(tb testing.TB, db *gorm.DB, name string) *models.Client {
	tb.Helper()
	c := &models.Client{
		Name:        name,
		Email:       "ops@" + uuid.NewString()[0:6] + ".ae",
		PhoneNumber: "+971500000000",
		City:        "Abu Dhabi",
		CreatedBy:   "test",
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed client: %v", err)
	}
	return c
}

func SeedBuilding(tb testing.TB, db *gorm.DB, clientID uuid.UUID, name string) *models.Building {
	tb.Helper()
	b := &models.Building{
		ClientID:     clientID,
		Name:         name,
		Address:      name + ", Abu Dhabi",
		BuildingType: models.CommercialBuilding,
		Floors:       10,
		CreatedBy:    "test",
	}
	if err := db.Create(b).Error; err != nil {
		tb.Fatalf("seed building: %v", err)
	}
	return b
}

func SeedContract(tb testing.TB, db *gorm.DB, buildingID uuid.UUID, value string, status models.ContractStatus, start time.Time) *models.Contract {
	tb.Helper()
	c := &models.Contract{
		BuildingID:     buildingID,
		ContractNumber: fmt.Sprintf("AMC-%s", uuid.NewString()[0:8]),
		AnnualValue:    decimal.RequireFromString(value),
		StartDate:      start,
		EndDate:        start.AddDate(1, 0, -1),
		Status:         status,
		CreatedBy:      "test",
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed contract: %v", err)
	}
	return c
}

func SeedEquipment(tb testing.TB, db *gorm.DB, buildingID uuid.UUID, kind models.EquipmentType) *models.Equipment {
	tb.Helper()
	e := &models.Equipment{
		BuildingID:    buildingID,
		EquipmentType: kind,
		Location:      "Ground floor lobby",
	}
	if err := db.Create(e).Error; err != nil {
		tb.Fatalf("seed equipment: %v", err)
	}
	if err := db.Model(&models.Building{}).Where("id = ?", buildingID).
		UpdateColumn("equipment_count", gorm.Expr("equipment_count + 1")).Error; err != nil {
		tb.Fatalf("bump equipment count: %v", err)
	}
	return e
}

func SeedInspection(tb testing.TB, db *gorm.DB, buildingID uuid.UUID, scheduled time.Time, status models.InspectionStatus) *models.Inspection {
	tb.Helper()
	in := &models.Inspection{
		BuildingID:    buildingID,
		ScheduledDate: scheduled,
		Technician:    "Test Technician",
		Status:        status,
		CreatedBy:     "test",
	}
	if status == models.CompletedInspection {
		done := scheduled
		in.CompletedDate = &done
	}
	if err := db.Create(in).Error; err != nil {
		tb.Fatalf("seed inspection: %v", err)
	}
	return in
}

func SeedComplaint(tb testing.TB, db *gorm.DB, buildingID uuid.UUID, description string) *models.Complaint {
	tb.Helper()
	c := &models.Complaint{
		BuildingID:  buildingID,
		Description: description,
		CreatedBy:   "test",
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed complaint: %v", err)
	}
	return c
}

func SeedInvoice(tb testing.TB, db *gorm.DB, clientID uuid.UUID, amount, paid string, due time.Time) *models.Invoice {
	tb.Helper()
	inv := &models.Invoice{
		ClientID:   clientID,
		Amount:     decimal.RequireFromString(amount),
		PaidAmount: decimal.RequireFromString(paid),
		IssueDate:  due.AddDate(0, 0, -30),
		DueDate:    due,
		CreatedBy:  "test",
	}
	if err := db.Create(inv).Error; err != nil {
		tb.Fatalf("seed invoice: %v", err)
	}
	return inv
}

func SeedPayment(tb testing.TB, db *gorm.DB, invoiceID uuid.UUID, amount string, paidOn time.Time) *models.Payment {
	tb.Helper()
	p := &models.Payment{
		InvoiceID:     invoiceID,
		Amount:        decimal.RequireFromString(amount),
		PaymentMethod: models.BankTransferPaymentMethod,
		PaidOn:        paidOn,
		CreatedBy:     "test",
	}
	if err := db.Create(p).Error; err != nil {
		tb.Fatalf("seed payment: %v", err)
	}
	return p
}
