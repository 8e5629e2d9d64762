package services_test

import (
	"context"
	"errors"
	"testing"

	"tts-guard-backend/apperrors"
	"tts-guard-backend/clients/repositories"
	"tts-guard-backend/clients/services"
	"tts-guard-backend/db/models"
	"tts-guard-backend/internal/events"
	"tts-guard-backend/internal/testutil"
	"tts-guard-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type recordingIndexer struct {
	clients   []string
	buildings []string
}

func (r *recordingIndexer) IndexSingleClient(c models.Client) error {
	r.clients = append(r.clients, c.Name)
	return nil
}

func (r *recordingIndexer) IndexSingleBuilding(b models.Building) error {
	r.buildings = append(r.buildings, b.Name)
	return nil
}

func newDirectory(t *testing.T) (*services.DirectoryService, *gorm.DB, *events.Recorder, *recordingIndexer) {
	t.Helper()
	db := testutil.DB(t)
	rec := &events.Recorder{}
	idx := &recordingIndexer{}
	return services.NewDirectoryService(db, repositories.NewClientRepository(db), nil, rec, idx), db, rec, idx
}

func TestCreateClientValidatesAndIndexes(t *testing.T) {
	dir, _, rec, idx := newDirectory(t)
	ctx := context.Background()

	if _, err := dir.CreateClient(ctx, &models.Client{Name: "  "}, "ops"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("blank name: expected InvalidInput, got %v", err)
	}
	if _, err := dir.CreateClient(ctx, &models.Client{Name: "X", Email: "not-an-email"}, "ops"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("bad email: expected InvalidInput, got %v", err)
	}

	created, err := dir.CreateClient(ctx, &models.Client{Name: "Al Reem Properties", Email: "fm@alreem.ae", PhoneNumber: "+971 2 555 0101"}, "ops@ttsguard.ae")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if created.ID == uuid.Nil || created.CreatedBy != "ops@ttsguard.ae" {
		t.Fatalf("unexpected client: %+v", created)
	}
	if len(idx.clients) != 1 || idx.clients[0] != "Al Reem Properties" {
		t.Fatalf("client not indexed: %v", idx.clients)
	}
	if len(rec.Events) != 1 || rec.Events[0].Type != events.DirectoryChanged {
		t.Fatalf("expected one directory event, got %v", rec.Types())
	}
}

func TestCreateBuildingRequiresExistingClient(t *testing.T) {
	dir, db, _, idx := newDirectory(t)
	ctx := context.Background()

	_, err := dir.CreateBuilding(ctx, &models.Building{ClientID: uuid.New(), Name: "Ghost", Address: "Nowhere"}, "ops")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	client := testutil.SeedClient(t, db, "Marina Towers")
	b, err := dir.CreateBuilding(ctx, &models.Building{ClientID: client.ID, Name: "Marina Heights", Address: "Corniche"}, "ops")
	if err != nil {
		t.Fatalf("CreateBuilding: %v", err)
	}
	if b.ClientID != client.ID || b.BuildingType != models.CommercialBuilding {
		t.Fatalf("unexpected building: %+v", b)
	}
	if len(idx.buildings) != 1 {
		t.Fatalf("building not indexed")
	}
}

func TestAddEquipmentIncrementsCount(t *testing.T) {
	dir, db, _, _ := newDirectory(t)
	ctx := context.Background()
	client := testutil.SeedClient(t, db, "Yas Business Park")
	b := testutil.SeedBuilding(t, db, client.ID, "Yas Office Park A")

	for _, kind := range []models.EquipmentType{models.FireExtinguisher, models.FirePump} {
		if _, err := dir.AddEquipment(ctx, b.ID, &models.Equipment{EquipmentType: kind, Location: "B1"}); err != nil {
			t.Fatalf("AddEquipment %s: %v", kind, err)
		}
	}

	var reloaded models.Building
	if err := db.First(&reloaded, "id = ?", b.ID).Error; err != nil {
		t.Fatalf("reload building: %v", err)
	}
	if reloaded.EquipmentCount != 2 {
		t.Fatalf("equipment_count: got %d, want 2", reloaded.EquipmentCount)
	}

	if _, err := dir.AddEquipment(ctx, uuid.New(), &models.Equipment{EquipmentType: models.FirePump}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown building: expected NotFound, got %v", err)
	}
	if _, err := dir.AddEquipment(ctx, b.ID, &models.Equipment{EquipmentType: "LASER"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("bad type: expected InvalidInput, got %v", err)
	}

	list, err := dir.ListEquipment(ctx, b.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListEquipment: %d items, err %v", len(list), err)
	}
}

func TestOneActiveContractPerBuilding(t *testing.T) {
	dir, db, _, _ := newDirectory(t)
	ctx := context.Background()
	client := testutil.SeedClient(t, db, "Khalifa City Estates")
	b := testutil.SeedBuilding(t, db, client.ID, "KC Residences")
	today := utils.Today()

	newContract := func(number string) *models.Contract {
		return &models.Contract{
			BuildingID:     b.ID,
			ContractNumber: number,
			AnnualValue:    decimal.RequireFromString("36000"),
			StartDate:      today,
			EndDate:        today.AddDate(1, 0, -1),
		}
	}

	first, err := dir.CreateContract(ctx, newContract("AMC-1"), "ops")
	if err != nil {
		t.Fatalf("first contract: %v", err)
	}
	if first.Status != models.ActiveContract {
		t.Fatalf("new contract status: %s", first.Status)
	}

	if _, err := dir.CreateContract(ctx, newContract("AMC-2"), "ops"); !errors.Is(err, apperrors.ErrStateConflict) {
		t.Fatalf("second active contract: expected StateConflict, got %v", err)
	}

	if _, err := dir.ExpireContract(ctx, first.ID); err != nil {
		t.Fatalf("ExpireContract: %v", err)
	}
	if _, err := dir.ExpireContract(ctx, first.ID); !errors.Is(err, apperrors.ErrStateConflict) {
		t.Fatalf("expire twice: expected StateConflict, got %v", err)
	}
	if _, err := dir.CreateContract(ctx, newContract("AMC-2"), "ops"); err != nil {
		t.Fatalf("contract after expiry: %v", err)
	}

	bad := newContract("AMC-3")
	bad.AnnualValue = decimal.RequireFromString("-1")
	if _, err := dir.CreateContract(ctx, bad, "ops"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("negative value: expected InvalidInput, got %v", err)
	}
}

func TestActiveContractIndexRejectsDirectDuplicates(t *testing.T) {
	db := testutil.DB(t)
	client := testutil.SeedClient(t, db, "Saadiyat Facilities")
	b := testutil.SeedBuilding(t, db, client.ID, "Villas Block A")
	testutil.SeedContract(t, db, b.ID, "1000", models.ActiveContract, utils.Today())

	dup := &models.Contract{
		BuildingID:     b.ID,
		ContractNumber: "AMC-DUP",
		AnnualValue:    decimal.RequireFromString("1000"),
		StartDate:      utils.Today(),
		EndDate:        utils.AddDays(utils.Today(), 364),
		Status:         models.ActiveContract,
	}
	if err := db.Create(dup).Error; err == nil {
		t.Fatal("partial unique index must reject a second active contract")
	}
}

func TestExpireEndedContracts(t *testing.T) {
	dir, db, rec, _ := newDirectory(t)
	ctx := context.Background()
	client := testutil.SeedClient(t, db, "Mussafah Industrial")
	today := utils.Today()

	ended := testutil.SeedContract(t, db, testutil.SeedBuilding(t, db, client.ID, "Workshop 7").ID, "18000", models.ActiveContract, today.AddDate(-1, 0, -5))
	running := testutil.SeedContract(t, db, testutil.SeedBuilding(t, db, client.ID, "Warehouse 12").ID, "18000", models.ActiveContract, today.AddDate(0, -1, 0))

	n, err := dir.ExpireEndedContracts(ctx, today)
	if err != nil {
		t.Fatalf("ExpireEndedContracts: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired %d contracts, want 1", n)
	}

	for _, tc := range []struct {
		id   uuid.UUID
		want models.ContractStatus
	}{{ended.ID, models.ExpiredContract}, {running.ID, models.ActiveContract}} {
		var c models.Contract
		if err := db.First(&c, "id = ?", tc.id).Error; err != nil {
			t.Fatalf("reload contract: %v", err)
		}
		if c.Status != tc.want {
			t.Fatalf("contract %s: got %s, want %s", c.ContractNumber, c.Status, tc.want)
		}
	}
	if got := rec.Types(); len(got) != 1 || got[0] != events.ContractExpired {
		t.Fatalf("events: %v", got)
	}
}
