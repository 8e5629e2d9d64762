package repositories

import (
	"context"
	"fmt"
	"time"

	"tts-guard-backend/db/models"
	"tts-guard-backend/utils"

	"gorm.io/gorm"
)

type ReportRepository interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	InspectionsScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Inspection, error)
	ComplaintsRaisedBetween(ctx context.Context, from, to time.Time) ([]models.Complaint, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// InspectionsScheduledBetween returns inspections with from <= scheduled_date
// < to, with their building loaded.
func (r *reportRepository) InspectionsScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Inspection, error) {
	var inspections []models.Inspection
	err := r.db.WithContext(ctx).
		Preload("Building").
		Where("scheduled_date >= ? AND scheduled_date < ?", utils.SQLDate(from), utils.SQLDate(to)).
		Order("scheduled_date ASC").
		Find(&inspections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections for report: %w", err)
	}
	return inspections, nil
}

// ComplaintsRaisedBetween compares in UTC; sqlite stores timestamps as text
// and compares them without regard to offset.
func (r *reportRepository) ComplaintsRaisedBetween(ctx context.Context, from, to time.Time) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := r.db.WithContext(ctx).
		Preload("Building").
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Find(&complaints).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints for report: %w", err)
	}
	return complaints, nil
}
