package services_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/dashboard/repositories"
	"tts-guard-backend/dashboard/services"
	"tts-guard-backend/db/models"
	"tts-guard-backend/internal/testutil"
	"tts-guard-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var pinnedToday = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

type memCache struct {
	data map[string][]byte
	hits int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	if ok {
		m.hits++
	}
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) InvalidateCache(_ context.Context, resourceType string) error {
	for k := range m.data {
		if strings.HasPrefix(k, resourceType+":") {
			delete(m.data, k)
		}
	}
	return nil
}

func newAggregator(db *gorm.DB, policy config.Policy, cache utils.Cache) *services.Aggregator {
	return services.NewAggregator(repositories.NewDashboardRepository(db), cache, policy).
		WithClock(func() time.Time { return utils.NormalizeDate(pinnedToday) })
}

func TestEmptyStore(t *testing.T) {
	db := testutil.DB(t)
	agg := newAggregator(db, config.DefaultPolicy(), nil)
	ctx := context.Background()

	summary, err := agg.GetFinancialSummary(ctx)
	if err != nil {
		t.Fatalf("GetFinancialSummary: %v", err)
	}
	if summary.CollectionRate != 0 {
		t.Fatalf("collection rate with no invoices: got %v, want 0", summary.CollectionRate)
	}
	if !summary.TotalInvoiced.IsZero() || !summary.Outstanding.IsZero() {
		t.Fatalf("expected zero totals, got %+v", summary)
	}

	for name, fn := range map[string]func(context.Context) (int64, error){
		"active clients":   agg.CountActiveClients,
		"buildings":        agg.CountBuildings,
		"active contracts": agg.CountActiveContracts,
	} {
		n, err := fn(ctx)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if n != 0 {
			t.Fatalf("%s: got %d, want 0", name, n)
		}
	}

	overdue, err := agg.ListOverdueInspections(ctx)
	if err != nil {
		t.Fatalf("ListOverdueInspections: %v", err)
	}
	if len(overdue) != 0 {
		t.Fatalf("expected no overdue inspections, got %d", len(overdue))
	}
}

func TestCountsFollowContractStatus(t *testing.T) {
	db := testutil.DB(t)
	agg := newAggregator(db, config.DefaultPolicy(), nil)
	ctx := context.Background()
	start := pinnedToday.AddDate(0, -3, 0)

	// Two buildings under active contracts.
	reem := testutil.SeedClient(t, db, "Al Reem Properties")
	sky := testutil.SeedBuilding(t, db, reem.ID, "Sky Tower")
	sun := testutil.SeedBuilding(t, db, reem.ID, "Sun Tower")
	testutil.SeedContract(t, db, sky.ID, "96000.00", models.ActiveContract, start)
	testutil.SeedContract(t, db, sun.ID, "84000.00", models.ActiveContract, start)

	// Only an expired contract.
	marina := testutil.SeedClient(t, db, "Marina Towers")
	plaza := testutil.SeedBuilding(t, db, marina.ID, "Marina Plaza")
	testutil.SeedContract(t, db, plaza.ID, "30000.00", models.ExpiredContract, start.AddDate(-1, 0, 0))

	// A client with no buildings at all.
	testutil.SeedClient(t, db, "Prospect LLC")

	tests := []struct {
		name string
		fn   func(context.Context) (int64, error)
		want int64
	}{
		{"active clients", agg.CountActiveClients, 1},
		{"all clients", agg.CountClients, 3},
		{"buildings", agg.CountBuildings, 3},
		{"active contracts", agg.CountActiveContracts, 2},
	}
	for _, tt := range tests {
		got, err := tt.fn(ctx)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}

	var contracts []models.Contract
	if err := db.Find(&contracts).Error; err != nil {
		t.Fatalf("load contracts: %v", err)
	}
	var active int64
	for _, c := range contracts {
		if c.Status == models.ActiveContract {
			active++
		}
	}
	if got, _ := agg.CountActiveContracts(ctx); got != active {
		t.Fatalf("CountActiveContracts %d disagrees with filtering %d", got, active)
	}
}

func TestFinancialSummary(t *testing.T) {
	db := testutil.DB(t)
	agg := newAggregator(db, config.DefaultPolicy(), nil)
	ctx := context.Background()

	c := testutil.SeedClient(t, db, "Yas Business Park")
	b := testutil.SeedBuilding(t, db, c.ID, "Yas Office Park A")
	testutil.SeedContract(t, db, b.ID, "60000.00", models.ActiveContract, pinnedToday.AddDate(0, -1, 0))
	testutil.SeedContract(t, db, testutil.SeedBuilding(t, db, c.ID, "Old Site").ID, "5000.00", models.ExpiredContract, pinnedToday.AddDate(-2, 0, 0))
	testutil.SeedInvoice(t, db, c.ID, "30000.00", "30000.00", pinnedToday.AddDate(0, -1, 0))
	testutil.SeedInvoice(t, db, c.ID, "30000.00", "7500.00", pinnedToday)

	summary, err := agg.GetFinancialSummary(ctx)
	if err != nil {
		t.Fatalf("GetFinancialSummary: %v", err)
	}

	want := map[string]decimal.Decimal{
		"total_contract_value": decimal.RequireFromString("60000"),
		"total_invoiced":       decimal.RequireFromString("60000"),
		"collected":            decimal.RequireFromString("37500"),
		"outstanding":          decimal.RequireFromString("22500"),
	}
	got := map[string]decimal.Decimal{
		"total_contract_value": summary.TotalContractValue,
		"total_invoiced":       summary.TotalInvoiced,
		"collected":            summary.Collected,
		"outstanding":          summary.Outstanding,
	}
	for k, w := range want {
		if !got[k].Equal(w) {
			t.Fatalf("%s: got %s, want %s", k, got[k], w)
		}
	}
	if summary.CollectionRate != 0.625 {
		t.Fatalf("collection rate: got %v, want 0.625", summary.CollectionRate)
	}
	if summary.CollectionRate < 0 || summary.CollectionRate > 1 {
		t.Fatalf("collection rate out of range: %v", summary.CollectionRate)
	}

	rows, err := agg.ClientFinancials(ctx)
	if err != nil {
		t.Fatalf("ClientFinancials: %v", err)
	}
	if len(rows) != 1 || !rows[0].Outstanding.Equal(decimal.RequireFromString("22500")) {
		t.Fatalf("unexpected client financials: %+v", rows)
	}
}

func TestCollectionRateNeverRoundsUpToFull(t *testing.T) {
	db := testutil.DB(t)
	agg := newAggregator(db, config.DefaultPolicy(), nil)

	c := testutil.SeedClient(t, db, "Saadiyat Villas")
	testutil.SeedInvoice(t, db, c.ID, "100000.00", "99999.99", pinnedToday)

	summary, err := agg.GetFinancialSummary(context.Background())
	if err != nil {
		t.Fatalf("GetFinancialSummary: %v", err)
	}
	if !summary.Outstanding.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("outstanding: got %s, want 0.01", summary.Outstanding)
	}
	if summary.CollectionRate != 0.9999 {
		t.Fatalf("collection rate with an open balance: got %v, want 0.9999", summary.CollectionRate)
	}
}

func TestListUpcomingInspectionsWindow(t *testing.T) {
	db := testutil.DB(t)
	policy := config.DefaultPolicy()
	policy.DueSoonDays = 7
	agg := newAggregator(db, policy, nil)
	ctx := context.Background()

	c := testutil.SeedClient(t, db, "Khalifa Park Offices")
	b := testutil.SeedBuilding(t, db, c.ID, "Khalifa Park Block C")
	today := utils.NormalizeDate(pinnedToday)
	testutil.SeedInspection(t, db, b.ID, today, models.ScheduledInspection)
	testutil.SeedInspection(t, db, b.ID, utils.AddDays(today, 3), models.ScheduledInspection)
	testutil.SeedInspection(t, db, b.ID, utils.AddDays(today, 10), models.ScheduledInspection)

	tests := []struct {
		days int
		want int
	}{
		{days: 0, want: 1},
		{days: 3, want: 2},
		{days: -1, want: 2},
		{days: 30, want: 3},
	}
	for _, tt := range tests {
		got, err := agg.ListUpcomingInspections(ctx, tt.days)
		if err != nil {
			t.Fatalf("days=%d: %v", tt.days, err)
		}
		if len(got) != tt.want {
			t.Fatalf("days=%d: got %d inspections, want %d", tt.days, len(got), tt.want)
		}
	}
}

func TestListOverdueInspectionsOrdering(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	today := utils.NormalizeDate(pinnedToday)

	c := testutil.SeedClient(t, db, "KC Estates")
	a := testutil.SeedBuilding(t, db, c.ID, "KC Residences")
	b := testutil.SeedBuilding(t, db, c.ID, "KC Commercial")

	tenDays := utils.AddDays(today, -10)
	threeDays := utils.AddDays(today, -3)

	// Insert out of order so the query must sort.
	testutil.SeedInspection(t, db, a.ID, threeDays, models.ScheduledInspection)
	testutil.SeedInspection(t, db, b.ID, tenDays, models.ScheduledInspection)
	testutil.SeedInspection(t, db, a.ID, tenDays, models.OverdueInspection)
	testutil.SeedInspection(t, db, a.ID, utils.AddDays(today, -20), models.CompletedInspection)
	testutil.SeedInspection(t, db, b.ID, today, models.ScheduledInspection)
	testutil.SeedInspection(t, db, b.ID, utils.AddDays(today, 4), models.ScheduledInspection)

	overdue, err := newAggregator(db, config.DefaultPolicy(), nil).ListOverdueInspections(ctx)
	if err != nil {
		t.Fatalf("ListOverdueInspections: %v", err)
	}
	if len(overdue) != 3 {
		t.Fatalf("got %d overdue inspections, want 3", len(overdue))
	}

	firstTwo := []string{a.ID.String(), b.ID.String()}
	sort.Strings(firstTwo)
	wantBuildings := []string{firstTwo[0], firstTwo[1], a.ID.String()}
	wantDates := []string{utils.SQLDate(tenDays), utils.SQLDate(tenDays), utils.SQLDate(threeDays)}
	for i, in := range overdue {
		if in.BuildingID.String() != wantBuildings[i] || utils.SQLDate(utils.NormalizeDate(in.ScheduledDate)) != wantDates[i] {
			t.Fatalf("position %d: got building %s on %s, want %s on %s",
				i, in.BuildingID, utils.SQLDate(in.ScheduledDate), wantBuildings[i], wantDates[i])
		}
		if in.Building == nil || in.Building.Client == nil {
			t.Fatalf("position %d: building and client must be preloaded", i)
		}
	}

	// A grace period of 5 days drops the inspection 3 days late.
	policy := config.DefaultPolicy()
	policy.OverdueGraceDays = 5
	graced, err := newAggregator(db, policy, nil).ListOverdueInspections(ctx)
	if err != nil {
		t.Fatalf("ListOverdueInspections with grace: %v", err)
	}
	if len(graced) != 2 {
		t.Fatalf("with 5 grace days got %d overdue, want 2", len(graced))
	}

	metrics, err := newAggregator(db, config.DefaultPolicy(), nil).InspectionMetrics(ctx)
	if err != nil {
		t.Fatalf("InspectionMetrics: %v", err)
	}
	if metrics.Overdue != 3 || metrics.DueSoon != 2 || metrics.Scheduled != 5 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestOverviewIsCachedUntilInvalidated(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	cache := newMemCache()
	agg := newAggregator(db, config.DefaultPolicy(), cache)

	c := testutil.SeedClient(t, db, "Saadiyat Facilities")
	b := testutil.SeedBuilding(t, db, c.ID, "Villas Block A")
	testutil.SeedContract(t, db, b.ID, "24000.00", models.ActiveContract, pinnedToday.AddDate(0, -2, 0))

	first, err := agg.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if first.ActiveContracts != 1 || first.Buildings != 1 {
		t.Fatalf("unexpected overview: %+v", first)
	}

	testutil.SeedBuilding(t, db, c.ID, "Villas Block B")
	cached, err := agg.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview (cached): %v", err)
	}
	if cache.hits != 1 || cached.Buildings != 1 {
		t.Fatalf("expected a cache hit with stale count, hits=%d buildings=%d", cache.hits, cached.Buildings)
	}

	utils.InvalidateQuietly(ctx, cache, utils.DashboardResource)
	fresh, err := agg.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview (fresh): %v", err)
	}
	if fresh.Buildings != 2 {
		t.Fatalf("after invalidation buildings: got %d, want 2", fresh.Buildings)
	}
}
