package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/dashboard/repositories"
	"tts-guard-backend/db/models"
	"tts-guard-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const overviewTTL = 5 * time.Minute

type FinancialSummary struct {
	TotalContractValue decimal.Decimal `json:"total_contract_value"`
	TotalInvoiced      decimal.Decimal `json:"total_invoiced"`
	Collected          decimal.Decimal `json:"collected"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	CollectionRate     float64         `json:"collection_rate"`
}

type ClientFinancialRow struct {
	ClientID       uuid.UUID       `json:"client_id"`
	ClientName     string          `json:"client_name"`
	ContractValue  decimal.Decimal `json:"contract_value"`
	Invoiced       decimal.Decimal `json:"invoiced"`
	Collected      decimal.Decimal `json:"collected"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	CollectionRate float64         `json:"collection_rate"`
}

type InspectionMetrics struct {
	Overdue            int64 `json:"overdue"`
	DueSoon            int64 `json:"due_soon"`
	Scheduled          int64 `json:"scheduled"`
	CompletedThisMonth int64 `json:"completed_this_month"`
	OpenComplaints     int64 `json:"open_complaints"`
}

type DashboardOverview struct {
	AsOf                string               `json:"as_of"`
	ActiveClients       int64                `json:"active_clients"`
	TotalClients        int64                `json:"total_clients"`
	Buildings           int64                `json:"buildings"`
	ActiveContracts     int64                `json:"active_contracts"`
	Financials          FinancialSummary     `json:"financials"`
	Inspections         InspectionMetrics    `json:"inspections"`
	OverdueInspections  []models.Inspection  `json:"overdue_inspections"`
	UpcomingInspections []models.Inspection  `json:"upcoming_inspections"`
	RecentComplaints    []models.Complaint   `json:"recent_complaints"`
	ClientFinancials    []ClientFinancialRow `json:"client_financials"`
}

// Aggregator derives the dashboard's read models from the store.
type Aggregator struct {
	repo   repositories.DashboardRepository
	cache  utils.Cache
	policy config.Policy
	today  func() time.Time
}

func NewAggregator(repo repositories.DashboardRepository, cache utils.Cache, policy config.Policy) *Aggregator {
	if cache == nil {
		cache = utils.NopCache{}
	}
	return &Aggregator{repo: repo, cache: cache, policy: policy, today: utils.Today}
}

// WithClock replaces the source of "today". Tests pin the date with it.
func (a *Aggregator) WithClock(today func() time.Time) *Aggregator {
	a.today = today
	return a
}

// collectionRate is collected/invoiced clamped to [0,1], and 0 when nothing
// has been invoiced. It is truncated so an open balance never reads as 1.
func collectionRate(invoiced, collected decimal.Decimal) float64 {
	if !invoiced.IsPositive() {
		return 0
	}
	rate, _ := collected.Div(invoiced).Truncate(4).Float64()
	switch {
	case rate < 0:
		return 0
	case rate > 1:
		return 1
	}
	return rate
}

// overdueCutoff is the first scheduled date that is NOT overdue.
func (a *Aggregator) overdueCutoff() time.Time {
	return utils.AddDays(a.today(), -a.policy.OverdueGraceDays)
}

func (a *Aggregator) CountActiveClients(ctx context.Context) (int64, error) {
	return a.repo.CountActiveClients(ctx)
}

func (a *Aggregator) CountClients(ctx context.Context) (int64, error) {
	return a.repo.CountClients(ctx)
}

func (a *Aggregator) CountBuildings(ctx context.Context) (int64, error) {
	return a.repo.CountBuildings(ctx)
}

func (a *Aggregator) CountActiveContracts(ctx context.Context) (int64, error) {
	return a.repo.CountActiveContracts(ctx)
}

func (a *Aggregator) GetFinancialSummary(ctx context.Context) (FinancialSummary, error) {
	contractValue, err := a.repo.SumActiveContractValue(ctx)
	if err != nil {
		return FinancialSummary{}, err
	}
	invoiced, collected, err := a.repo.InvoiceTotals(ctx)
	if err != nil {
		return FinancialSummary{}, err
	}

	outstanding := invoiced.Sub(collected)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return FinancialSummary{
		TotalContractValue: contractValue,
		TotalInvoiced:      invoiced,
		Collected:          collected,
		Outstanding:        outstanding,
		CollectionRate:     collectionRate(invoiced, collected),
	}, nil
}

func (a *Aggregator) ListOverdueInspections(ctx context.Context) ([]models.Inspection, error) {
	return a.repo.ListOverdueInspections(ctx, a.overdueCutoff())
}

// ListUpcomingInspections covers today through today+days inclusive. A
// negative days uses the policy window.
func (a *Aggregator) ListUpcomingInspections(ctx context.Context, days int) ([]models.Inspection, error) {
	if days < 0 {
		days = a.policy.DueSoonDays
	}
	today := a.today()
	return a.repo.ListUpcomingInspections(ctx, today, utils.AddDays(today, days+1))
}

func (a *Aggregator) ListRecentComplaints(ctx context.Context, limit int) ([]models.Complaint, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return a.repo.ListRecentComplaints(ctx, limit)
}

func toFinancialRow(t repositories.ClientTotals) ClientFinancialRow {
	outstanding := t.Invoiced.Sub(t.Collected)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return ClientFinancialRow{
		ClientID:       t.ClientID,
		ClientName:     t.ClientName,
		ContractValue:  t.ContractValue,
		Invoiced:       t.Invoiced,
		Collected:      t.Collected,
		Outstanding:    outstanding,
		CollectionRate: collectionRate(t.Invoiced, t.Collected),
	}
}

func (a *Aggregator) ClientFinancials(ctx context.Context) ([]ClientFinancialRow, error) {
	totals, err := a.repo.ClientTotals(ctx, nil)
	if err != nil {
		return nil, err
	}
	rows := make([]ClientFinancialRow, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, toFinancialRow(t))
	}
	return rows, nil
}

// ClientFinancialsFor returns the breakdown of a single client, or nil when
// the client does not exist.
func (a *Aggregator) ClientFinancialsFor(ctx context.Context, clientID uuid.UUID) (*ClientFinancialRow, error) {
	totals, err := a.repo.ClientTotals(ctx, &clientID)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, nil
	}
	row := toFinancialRow(totals[0])
	return &row, nil
}

func (a *Aggregator) InspectionMetrics(ctx context.Context) (InspectionMetrics, error) {
	var m InspectionMetrics
	var err error
	today := a.today()

	if m.Overdue, err = a.repo.CountOverdueInspections(ctx, a.overdueCutoff()); err != nil {
		return m, err
	}
	if m.DueSoon, err = a.repo.CountInspectionsDue(ctx, today, utils.AddDays(today, a.policy.DueSoonDays+1)); err != nil {
		return m, err
	}
	if m.Scheduled, err = a.repo.CountOpenInspections(ctx); err != nil {
		return m, err
	}
	monthStart, nextMonth := utils.MonthRange(today.Year(), today.Month())
	if m.CompletedThisMonth, err = a.repo.CountCompletedBetween(ctx, monthStart, nextMonth); err != nil {
		return m, err
	}
	if m.OpenComplaints, err = a.repo.CountComplaintsByStatus(ctx, models.OpenComplaint); err != nil {
		return m, err
	}
	return m, nil
}

// Overview assembles the whole dashboard. The result is cached per day until
// a mutation invalidates the dashboard keys.
func (a *Aggregator) Overview(ctx context.Context) (*DashboardOverview, error) {
	asOf := utils.SQLDate(a.today())
	key := utils.GenerateHash(utils.DashboardResource, map[string]string{
		"view":  "overview",
		"as_of": asOf,
	})

	if raw, ok, err := a.cache.Get(ctx, key); err != nil {
		config.Logger.Warn("Dashboard cache read failed", zap.Error(err))
	} else if ok {
		var cached DashboardOverview
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	overview, err := a.buildOverview(ctx, asOf)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(overview); err == nil {
		if err := a.cache.Set(ctx, key, raw, overviewTTL); err != nil {
			config.Logger.Warn("Dashboard cache write failed", zap.Error(err))
		}
	}
	return overview, nil
}

// buildOverview runs the independent reads concurrently. Each goroutine owns
// one field of o.
func (a *Aggregator) buildOverview(ctx context.Context, asOf string) (*DashboardOverview, error) {
	o := &DashboardOverview{AsOf: asOf}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { o.ActiveClients, err = a.CountActiveClients(gctx); return })
	g.Go(func() (err error) { o.TotalClients, err = a.CountClients(gctx); return })
	g.Go(func() (err error) { o.Buildings, err = a.CountBuildings(gctx); return })
	g.Go(func() (err error) { o.ActiveContracts, err = a.CountActiveContracts(gctx); return })
	g.Go(func() (err error) { o.Financials, err = a.GetFinancialSummary(gctx); return })
	g.Go(func() (err error) { o.Inspections, err = a.InspectionMetrics(gctx); return })
	g.Go(func() (err error) { o.OverdueInspections, err = a.ListOverdueInspections(gctx); return })
	g.Go(func() (err error) {
		o.UpcomingInspections, err = a.ListUpcomingInspections(gctx, a.policy.DueSoonDays)
		return
	})
	g.Go(func() (err error) { o.RecentComplaints, err = a.ListRecentComplaints(gctx, 5); return })
	g.Go(func() (err error) { o.ClientFinancials, err = a.ClientFinancials(gctx); return })

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	return o, nil
}
