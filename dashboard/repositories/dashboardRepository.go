package repositories

import (
	"context"
	"fmt"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/db/models"
	"tts-guard-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClientTotals is the raw per-client money picture before rates are derived.
type ClientTotals struct {
	ClientID      uuid.UUID
	ClientName    string
	ContractValue decimal.Decimal
	Invoiced      decimal.Decimal
	Collected     decimal.Decimal
}

// DashboardRepository holds the read-only aggregate queries behind the
// dashboard. Every query runs against the live tables; nothing is
// denormalized.
type DashboardRepository interface {
	CountClients(ctx context.Context) (int64, error)
	CountActiveClients(ctx context.Context) (int64, error)
	CountBuildings(ctx context.Context) (int64, error)
	CountActiveContracts(ctx context.Context) (int64, error)

	SumActiveContractValue(ctx context.Context) (decimal.Decimal, error)
	InvoiceTotals(ctx context.Context) (invoiced, collected decimal.Decimal, err error)
	ClientTotals(ctx context.Context, clientID *uuid.UUID) ([]ClientTotals, error)

	ListOverdueInspections(ctx context.Context, cutoff time.Time) ([]models.Inspection, error)
	ListUpcomingInspections(ctx context.Context, from, to time.Time) ([]models.Inspection, error)
	ListRecentComplaints(ctx context.Context, limit int) ([]models.Complaint, error)

	CountOverdueInspections(ctx context.Context, cutoff time.Time) (int64, error)
	CountOpenInspections(ctx context.Context) (int64, error)
	CountInspectionsDue(ctx context.Context, from, to time.Time) (int64, error)
	CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountComplaintsByStatus(ctx context.Context, status models.ComplaintStatus) (int64, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) count(ctx context.Context, what string, q *gorm.DB) (int64, error) {
	var n int64
	if err := q.WithContext(ctx).Count(&n).Error; err != nil {
		config.Logger.Error("Dashboard count failed", zap.String("what", what), zap.Error(err))
		return 0, fmt.Errorf("count %s: %w", what, err)
	}
	return n, nil
}

// sum scans a single COALESCE(SUM(col),0) into a decimal.
func (r *dashboardRepository) sum(ctx context.Context, what string, q *gorm.DB, column string) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := q.WithContext(ctx).Select(fmt.Sprintf("COALESCE(SUM(%s), 0)", column)).Row()
	if err := row.Scan(&total); err != nil {
		config.Logger.Error("Dashboard sum failed", zap.String("what", what), zap.Error(err))
		return decimal.Zero, fmt.Errorf("sum %s: %w", what, err)
	}
	return total, nil
}

func (r *dashboardRepository) activeBuildingIDs() *gorm.DB {
	return r.db.Model(&models.Contract{}).Select("building_id").Where("status = ?", models.ActiveContract)
}

func (r *dashboardRepository) CountClients(ctx context.Context) (int64, error) {
	return r.count(ctx, "clients", r.db.Model(&models.Client{}))
}

// CountActiveClients counts clients owning at least one building under an
// active contract.
func (r *dashboardRepository) CountActiveClients(ctx context.Context) (int64, error) {
	buildingsUnderContract := r.db.Model(&models.Building{}).
		Select("client_id").
		Where("id IN (?)", r.activeBuildingIDs())
	return r.count(ctx, "active clients", r.db.Model(&models.Client{}).Where("id IN (?)", buildingsUnderContract))
}

func (r *dashboardRepository) CountBuildings(ctx context.Context) (int64, error) {
	return r.count(ctx, "buildings", r.db.Model(&models.Building{}))
}

func (r *dashboardRepository) CountActiveContracts(ctx context.Context) (int64, error) {
	return r.count(ctx, "active contracts", r.db.Model(&models.Contract{}).Where("status = ?", models.ActiveContract))
}

func (r *dashboardRepository) SumActiveContractValue(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(ctx, "active contract value",
		r.db.Model(&models.Contract{}).Where("status = ?", models.ActiveContract), "annual_value")
}

func (r *dashboardRepository) InvoiceTotals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	invoiced, err := r.sum(ctx, "invoiced", r.db.Model(&models.Invoice{}), "amount")
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	collected, err := r.sum(ctx, "collected", r.db.Model(&models.Invoice{}), "paid_amount")
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return invoiced, collected, nil
}

type clientSumRow struct {
	ClientID uuid.UUID
	Total    decimal.Decimal
	Paid     decimal.Decimal
}

// ClientTotals returns one row per client, ordered by name. Pass a client id
// to restrict it to that client.
func (r *dashboardRepository) ClientTotals(ctx context.Context, clientID *uuid.UUID) ([]ClientTotals, error) {
	db := r.db.WithContext(ctx)

	var clients []models.Client
	q := db.Model(&models.Client{}).Order("name ASC")
	if clientID != nil {
		q = q.Where("id = ?", *clientID)
	}
	if err := q.Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	var contractRows []clientSumRow
	cq := db.Table("contracts").
		Select("buildings.client_id AS client_id, COALESCE(SUM(contracts.annual_value), 0) AS total").
		Joins("JOIN buildings ON buildings.id = contracts.building_id").
		Where("contracts.status = ?", models.ActiveContract).
		Group("buildings.client_id")
	if clientID != nil {
		cq = cq.Where("buildings.client_id = ?", *clientID)
	}
	if err := cq.Scan(&contractRows).Error; err != nil {
		return nil, fmt.Errorf("sum contract value per client: %w", err)
	}

	var invoiceRows []clientSumRow
	iq := db.Table("invoices").
		Select("client_id, COALESCE(SUM(amount), 0) AS total, COALESCE(SUM(paid_amount), 0) AS paid").
		Group("client_id")
	if clientID != nil {
		iq = iq.Where("client_id = ?", *clientID)
	}
	if err := iq.Scan(&invoiceRows).Error; err != nil {
		return nil, fmt.Errorf("sum invoices per client: %w", err)
	}

	contractByClient := make(map[uuid.UUID]decimal.Decimal, len(contractRows))
	for _, row := range contractRows {
		contractByClient[row.ClientID] = row.Total
	}
	invoiceByClient := make(map[uuid.UUID]clientSumRow, len(invoiceRows))
	for _, row := range invoiceRows {
		invoiceByClient[row.ClientID] = row
	}

	out := make([]ClientTotals, 0, len(clients))
	for _, c := range clients {
		inv := invoiceByClient[c.ID]
		out = append(out, ClientTotals{
			ClientID:      c.ID,
			ClientName:    c.Name,
			ContractValue: contractByClient[c.ID],
			Invoiced:      inv.Total,
			Collected:     inv.Paid,
		})
	}
	return out, nil
}

// openInspections excludes completed visits whatever their stored status.
func (r *dashboardRepository) openInspections(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Inspection{}).
		Where("completed_date IS NULL AND status <> ?", models.CompletedInspection)
}

// ListOverdueInspections returns open inspections scheduled before cutoff,
// oldest first, ties broken by building id.
func (r *dashboardRepository) ListOverdueInspections(ctx context.Context, cutoff time.Time) ([]models.Inspection, error) {
	var inspections []models.Inspection
	err := r.openInspections(ctx).
		Where("scheduled_date < ?", utils.SQLDate(cutoff)).
		Preload("Building").
		Preload("Building.Client").
		Order("scheduled_date ASC").
		Order("building_id ASC").
		Find(&inspections).Error
	if err != nil {
		config.Logger.Error("Failed to list overdue inspections", zap.Error(err))
		return nil, fmt.Errorf("list overdue inspections: %w", err)
	}
	return inspections, nil
}

// ListUpcomingInspections returns open inspections with from <= date < to.
func (r *dashboardRepository) ListUpcomingInspections(ctx context.Context, from, to time.Time) ([]models.Inspection, error) {
	var inspections []models.Inspection
	err := r.openInspections(ctx).
		Where("scheduled_date >= ? AND scheduled_date < ?", utils.SQLDate(from), utils.SQLDate(to)).
		Preload("Building").
		Order("scheduled_date ASC").
		Order("building_id ASC").
		Find(&inspections).Error
	if err != nil {
		return nil, fmt.Errorf("list upcoming inspections: %w", err)
	}
	return inspections, nil
}

func (r *dashboardRepository) ListRecentComplaints(ctx context.Context, limit int) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := r.db.WithContext(ctx).
		Preload("Building").
		Order("created_at DESC").
		Order("id ASC").
		Limit(limit).
		Find(&complaints).Error
	if err != nil {
		return nil, fmt.Errorf("list recent complaints: %w", err)
	}
	return complaints, nil
}

func (r *dashboardRepository) CountOverdueInspections(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.count(ctx, "overdue inspections",
		r.openInspections(ctx).Where("scheduled_date < ?", utils.SQLDate(cutoff)))
}

func (r *dashboardRepository) CountOpenInspections(ctx context.Context) (int64, error) {
	return r.count(ctx, "open inspections", r.openInspections(ctx))
}

func (r *dashboardRepository) CountInspectionsDue(ctx context.Context, from, to time.Time) (int64, error) {
	return r.count(ctx, "inspections due",
		r.openInspections(ctx).Where("scheduled_date >= ? AND scheduled_date < ?", utils.SQLDate(from), utils.SQLDate(to)))
}

func (r *dashboardRepository) CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.count(ctx, "completed inspections",
		r.db.Model(&models.Inspection{}).
			Where("completed_date >= ? AND completed_date < ?", utils.SQLDate(from), utils.SQLDate(to)))
}

func (r *dashboardRepository) CountComplaintsByStatus(ctx context.Context, status models.ComplaintStatus) (int64, error) {
	return r.count(ctx, "complaints", r.db.Model(&models.Complaint{}).Where("status = ?", status))
}
