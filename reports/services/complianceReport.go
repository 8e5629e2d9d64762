package services

import (
	"context"
	"fmt"
	"time"

	"tts-guard-backend/apperrors"
	"tts-guard-backend/config"
	"tts-guard-backend/db/models"
	"tts-guard-backend/reports/repositories"
	"tts-guard-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ClientCompliance struct {
	ClientID         uuid.UUID `json:"client_id"`
	ClientName       string    `json:"client_name"`
	Scheduled        int       `json:"scheduled"`
	Completed        int       `json:"completed"`
	Overdue          int       `json:"overdue"`
	ComplianceRate   float64   `json:"compliance_rate"`
	OpenComplaints   int       `json:"open_complaints"`
	ClosedComplaints int       `json:"closed_complaints"`
}

type ComplianceTotals struct {
	Scheduled        int     `json:"scheduled"`
	Completed        int     `json:"completed"`
	Overdue          int     `json:"overdue"`
	ComplianceRate   float64 `json:"compliance_rate"`
	OpenComplaints   int     `json:"open_complaints"`
	ClosedComplaints int     `json:"closed_complaints"`
}

type ComplianceReport struct {
	Year    int                `json:"year"`
	Month   int                `json:"month"`
	From    string             `json:"from"`
	To      string             `json:"to"`
	Clients []ClientCompliance `json:"clients"`
	Totals  ComplianceTotals   `json:"totals"`
}

type ReportService struct {
	repo      repositories.ReportRepository
	policy    config.Policy
	exportDir string
	today     func() time.Time
}

func NewReportService(repo repositories.ReportRepository, policy config.Policy, exportDir string) *ReportService {
	if exportDir == "" {
		exportDir = utils.ExportDir
	}
	return &ReportService{repo: repo, policy: policy, exportDir: exportDir, today: utils.Today}
}

func (s *ReportService) WithClock(today func() time.Time) *ReportService {
	s.today = today
	return s
}

func rate(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(int(float64(done)/float64(total)*10000+0.5)) / 10000
}

// MonthlyComplianceReport summarises, per client, the inspections scheduled
// in the month and the complaints raised in it.
func (s *ReportService) MonthlyComplianceReport(ctx context.Context, year, month int) (*ComplianceReport, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.InvalidInput("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, apperrors.InvalidInput("year %d is out of range", year)
	}

	from, to := utils.MonthRange(year, time.Month(month))
	cutoff := utils.AddDays(s.today(), -s.policy.OverdueGraceDays)

	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	inspections, err := s.repo.InspectionsScheduledBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	complaints, err := s.repo.ComplaintsRaisedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	rows := make(map[uuid.UUID]*ClientCompliance, len(clients))
	order := make([]uuid.UUID, 0, len(clients))
	for _, c := range clients {
		rows[c.ID] = &ClientCompliance{ClientID: c.ID, ClientName: c.Name}
		order = append(order, c.ID)
	}

	for _, in := range inspections {
		if in.Building == nil {
			continue
		}
		row, ok := rows[in.Building.ClientID]
		if !ok {
			continue
		}
		row.Scheduled++
		switch {
		case in.IsCompleted():
			row.Completed++
		case in.ScheduledDate.Before(cutoff):
			row.Overdue++
		}
	}
	for _, c := range complaints {
		if c.Building == nil {
			continue
		}
		row, ok := rows[c.Building.ClientID]
		if !ok {
			continue
		}
		if c.Status == models.ClosedComplaint {
			row.ClosedComplaints++
		} else {
			row.OpenComplaints++
		}
	}

	report := &ComplianceReport{
		Year:    year,
		Month:   month,
		From:    utils.SQLDate(from),
		To:      utils.SQLDate(utils.AddDays(to, -1)),
		Clients: make([]ClientCompliance, 0, len(order)),
	}
	for _, id := range order {
		row := rows[id]
		row.ComplianceRate = rate(row.Completed, row.Scheduled)
		report.Clients = append(report.Clients, *row)

		report.Totals.Scheduled += row.Scheduled
		report.Totals.Completed += row.Completed
		report.Totals.Overdue += row.Overdue
		report.Totals.OpenComplaints += row.OpenComplaints
		report.Totals.ClosedComplaints += row.ClosedComplaints
	}
	report.Totals.ComplianceRate = rate(report.Totals.Completed, report.Totals.Scheduled)
	return report, nil
}

// ExportMonthlyComplianceReport writes the report as a workbook and returns
// its path.
func (s *ReportService) ExportMonthlyComplianceReport(ctx context.Context, year, month int) (string, error) {
	report, err := s.MonthlyComplianceReport(ctx, year, month)
	if err != nil {
		return "", err
	}

	summary := utils.Sheet{
		Name:    "Compliance",
		Headers: []string{"Client", "Scheduled", "Completed", "Overdue", "Compliance Rate", "Open Complaints", "Closed Complaints"},
	}
	for _, c := range report.Clients {
		summary.Rows = append(summary.Rows, []interface{}{
			c.ClientName, c.Scheduled, c.Completed, c.Overdue, c.ComplianceRate, c.OpenComplaints, c.ClosedComplaints,
		})
	}
	t := report.Totals
	summary.Rows = append(summary.Rows, []interface{}{
		"TOTAL", t.Scheduled, t.Completed, t.Overdue, t.ComplianceRate, t.OpenComplaints, t.ClosedComplaints,
	})

	period := utils.Sheet{
		Name:    "Period",
		Headers: []string{"From", "To", "Generated"},
		Rows:    [][]interface{}{{report.From, report.To, time.Now().Format(time.RFC3339)}},
	}

	path, err := utils.GenerateExcel(s.exportDir, fmt.Sprintf("compliance_%04d_%02d", year, month), time.Now(), summary, period)
	if err != nil {
		config.Logger.Error("Failed to export compliance report",
			zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return "", fmt.Errorf("export compliance report: %w", err)
	}
	return path, nil
}
