package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tts-guard-backend/apperrors"
	"tts-guard-backend/config"
	"tts-guard-backend/db/models"
	"tts-guard-backend/internal/testutil"
	"tts-guard-backend/reports/repositories"
	"tts-guard-backend/reports/services"
	"tts-guard-backend/utils"

	"github.com/xuri/excelize/v2"
)

func TestMonthlyComplianceReport(t *testing.T) {
	db := testutil.DB(t)
	today := utils.Today()
	monthStart, _ := utils.MonthRange(today.Year(), today.Month())
	svc := services.NewReportService(repositories.NewReportRepository(db), config.DefaultPolicy(), t.TempDir()).
		WithClock(func() time.Time { return utils.AddDays(monthStart, 20) })

	reem := testutil.SeedClient(t, db, "Al Reem Properties")
	marina := testutil.SeedClient(t, db, "Marina Towers Management")
	testutil.SeedClient(t, db, "Quiet Client")
	sky := testutil.SeedBuilding(t, db, reem.ID, "Sky Tower")
	plaza := testutil.SeedBuilding(t, db, marina.ID, "Marina Plaza")

	testutil.SeedInspection(t, db, sky.ID, utils.AddDays(monthStart, 1), models.CompletedInspection)
	testutil.SeedInspection(t, db, sky.ID, utils.AddDays(monthStart, 3), models.ScheduledInspection)
	testutil.SeedInspection(t, db, sky.ID, utils.AddDays(monthStart, 25), models.ScheduledInspection)
	testutil.SeedInspection(t, db, plaza.ID, utils.AddDays(monthStart, 2), models.CompletedInspection)
	// Previous month, excluded.
	testutil.SeedInspection(t, db, plaza.ID, utils.AddDays(monthStart, -3), models.ScheduledInspection)

	testutil.SeedComplaint(t, db, sky.ID, "Extinguisher pressure low")
	closed := testutil.SeedComplaint(t, db, plaza.ID, "Alarm bell silent")
	if err := db.Model(closed).Update("status", models.ClosedComplaint).Error; err != nil {
		t.Fatalf("close complaint: %v", err)
	}

	report, err := svc.MonthlyComplianceReport(context.Background(), today.Year(), int(today.Month()))
	if err != nil {
		t.Fatalf("MonthlyComplianceReport: %v", err)
	}
	if len(report.Clients) != 3 {
		t.Fatalf("got %d client rows, want 3", len(report.Clients))
	}

	byName := map[string]services.ClientCompliance{}
	for _, c := range report.Clients {
		byName[c.ClientName] = c
	}
	r := byName["Al Reem Properties"]
	if r.Scheduled != 3 || r.Completed != 1 || r.Overdue != 1 || r.OpenComplaints != 1 {
		t.Fatalf("Al Reem row: %+v", r)
	}
	if r.ComplianceRate != 0.3333 {
		t.Fatalf("Al Reem compliance rate: got %v", r.ComplianceRate)
	}
	m := byName["Marina Towers Management"]
	if m.Scheduled != 1 || m.ComplianceRate != 1 || m.ClosedComplaints != 1 {
		t.Fatalf("Marina row: %+v", m)
	}
	if q := byName["Quiet Client"]; q.Scheduled != 0 || q.ComplianceRate != 0 {
		t.Fatalf("client without inspections: %+v", q)
	}
	if report.Totals.Scheduled != 4 || report.Totals.Completed != 2 || report.Totals.ComplianceRate != 0.5 {
		t.Fatalf("totals: %+v", report.Totals)
	}
}

func TestComplianceReportRejectsBadPeriod(t *testing.T) {
	db := testutil.DB(t)
	svc := services.NewReportService(repositories.NewReportRepository(db), config.DefaultPolicy(), t.TempDir())

	for _, p := range [][2]int{{2026, 0}, {2026, 13}, {1999, 5}} {
		if _, err := svc.MonthlyComplianceReport(context.Background(), p[0], p[1]); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%d-%d: expected InvalidInput, got %v", p[0], p[1], err)
		}
	}
}

func TestExportMonthlyComplianceReport(t *testing.T) {
	db := testutil.DB(t)
	dir := t.TempDir()
	svc := services.NewReportService(repositories.NewReportRepository(db), config.DefaultPolicy(), dir)

	c := testutil.SeedClient(t, db, "Yas Business Park")
	b := testutil.SeedBuilding(t, db, c.ID, "Yas Office Park A")
	testutil.SeedInspection(t, db, b.ID, time.Date(2026, time.February, 10, 0, 0, 0, 0, utils.DateLocation), models.CompletedInspection)

	path, err := svc.ExportMonthlyComplianceReport(context.Background(), 2026, 2)
	if err != nil {
		t.Fatalf("ExportMonthlyComplianceReport: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("workbook written to %s, want under %s", path, dir)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("workbook missing: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Compliance")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "Yas Business Park" || rows[2][0] != "TOTAL" {
		t.Fatalf("unexpected sheet contents: %v", rows)
	}
	if rows[1][2] != "1" {
		t.Fatalf("completed cell: got %q, want 1", rows[1][2])
	}
}

func TestComplaintsCountInTheirLocalMonth(t *testing.T) {
	dubai, err := time.LoadLocation("Asia/Dubai")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	prev := utils.DateLocation
	utils.DateLocation = dubai
	t.Cleanup(func() { utils.DateLocation = prev })

	db := testutil.DB(t)
	svc := services.NewReportService(repositories.NewReportRepository(db), config.DefaultPolicy(), t.TempDir())

	c := testutil.SeedClient(t, db, "Corniche Residences")
	b := testutil.SeedBuilding(t, db, c.ID, "Corniche Tower 2")

	// 23:00 on 31 October in Dubai.
	october := testutil.SeedComplaint(t, db, b.ID, "Exit sign dark")
	// 02:00 on 1 November in Dubai, still 31 October in UTC.
	november := testutil.SeedComplaint(t, db, b.ID, "Sprinkler head leaking")

	if err := db.Model(october).Updates(map[string]interface{}{
		"created_at": time.Date(2026, time.October, 31, 19, 0, 0, 0, time.UTC),
		"status":     models.ClosedComplaint,
	}).Error; err != nil {
		t.Fatalf("backdate october complaint: %v", err)
	}
	if err := db.Model(november).Update("created_at", time.Date(2026, time.October, 31, 22, 0, 0, 0, time.UTC)).Error; err != nil {
		t.Fatalf("backdate november complaint: %v", err)
	}

	tests := []struct {
		month        int
		open, closed int
	}{
		{month: 10, open: 0, closed: 1},
		{month: 11, open: 1, closed: 0},
	}
	for _, tt := range tests {
		report, err := svc.MonthlyComplianceReport(context.Background(), 2026, tt.month)
		if err != nil {
			t.Fatalf("month %d: %v", tt.month, err)
		}
		if report.Totals.OpenComplaints != tt.open || report.Totals.ClosedComplaints != tt.closed {
			t.Fatalf("month %d: got open=%d closed=%d, want open=%d closed=%d",
				tt.month, report.Totals.OpenComplaints, report.Totals.ClosedComplaints, tt.open, tt.closed)
		}
	}
}
