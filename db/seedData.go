package db

import (
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

const seedActor = "seed"

// Baseline is the record counts the demo dataset produces. A reset always
// returns the store to exactly these numbers.
type Baseline struct {
	Clients            int64 `json:"clients"`
	ActiveClients      int64 `json:"active_clients"`
	Buildings          int64 `json:"buildings"`
	Contracts          int64 `json:"contracts"`
	ActiveContracts    int64 `json:"active_contracts"`
	Equipment          int64 `json:"equipment"`
	Inspections        int64 `json:"inspections"`
	OverdueInspections int64 `json:"overdue_inspections"`
	Complaints         int64 `json:"complaints"`
	Invoices           int64 `json:"invoices"`
	Payments           int64 `json:"payments"`
}

type seedBuilding struct {
	name      string
	area      string
	kind      models.BuildingType
	floors    int
	equipment []models.EquipmentType
	// "active", "expired" or "" for no contract
	contract    string
	annualValue string
	// instalment payments as a fraction of each half-year invoice
	firstPaid, secondPaid string
	// day offsets from today
	overdueAt  []int
	upcomingAt []int
	doneAt     []int
}

type seedClient struct {
	name, contact, email, phone, address string
	buildings                            []seedBuilding
}

var (
	standardKit   = []models.EquipmentType{models.FireExtinguisher, models.SmokeDetector, models.FireAlarmPanel}
	highRiseKit   = []models.EquipmentType{models.FireExtinguisher, models.FireAlarmPanel, models.SprinklerSystem, models.FireHoseReel, models.EmergencyLighting}
	industrialKit = []models.EquipmentType{models.FireExtinguisher, models.FirePump, models.SprinklerSystem, models.FireHoseReel}
)

var demoClients = []seedClient{
	{
		name: "Al Reem Properties", contact: "Fatima Al Mansoori", email: "fm@alreemproperties.ae",
		phone: "+971 2 555 0101", address: "Shams Boutik, Al Reem Island",
		buildings: []seedBuilding{
			{name: "Sky Tower", area: "Al Reem Island", kind: models.MixedUseBuilding, floors: 74, equipment: highRiseKit,
				contract: "active", annualValue: "96000.00", firstPaid: "1", secondPaid: "0.5",
				overdueAt: []int{-12}, doneAt: []int{-45}},
			{name: "Sun Tower", area: "Al Reem Island", kind: models.ResidentialBuilding, floors: 65, equipment: highRiseKit,
				contract: "active", annualValue: "84000.00", firstPaid: "1", secondPaid: "0",
				upcomingAt: []int{3}, doneAt: []int{-38}},
		},
	},
	{
		name: "Marina Towers Management", contact: "Rahul Menon", email: "rahul@marinatowers.ae",
		phone: "+971 2 555 0202", address: "Corniche Road West",
		buildings: []seedBuilding{
			{name: "Marina Heights", area: "Al Marina", kind: models.ResidentialBuilding, floors: 32, equipment: highRiseKit,
				contract: "active", annualValue: "54000.00", firstPaid: "1", secondPaid: "1",
				overdueAt: []int{-5}, doneAt: []int{-60}},
			{name: "Marina Plaza", area: "Al Marina", kind: models.CommercialBuilding, floors: 8, equipment: standardKit,
				contract: "expired", annualValue: "30000.00", firstPaid: "1", secondPaid: "1",
				doneAt: []int{-150}},
		},
	},
	{
		name: "Saadiyat Facilities", contact: "Omar Haddad", email: "omar@saadiyatfm.ae",
		phone: "+971 2 555 0303", address: "Saadiyat Cultural District",
		buildings: []seedBuilding{
			{name: "Saadiyat Villas Block A", area: "Saadiyat Island", kind: models.ResidentialBuilding, floors: 2, equipment: standardKit,
				contract: "active", annualValue: "24000.00", firstPaid: "0.5", secondPaid: "0",
				upcomingAt: []int{6}, doneAt: []int{-20}},
		},
	},
	{
		name: "Khalifa City Estates", contact: "Aisha Rahman", email: "aisha@kcestates.ae",
		phone: "+971 2 555 0404", address: "Khalifa City A, Street 12",
		buildings: []seedBuilding{
			{name: "KC Residences", area: "Khalifa City", kind: models.ResidentialBuilding, floors: 12, equipment: standardKit,
				contract: "active", annualValue: "36000.00", firstPaid: "1", secondPaid: "0.25",
				overdueAt: []int{-21}, upcomingAt: []int{14}},
			{name: "KC Commercial Centre", area: "Khalifa City", kind: models.CommercialBuilding, floors: 4, equipment: standardKit,
				contract: "active", annualValue: "28000.00", firstPaid: "0", secondPaid: "0",
				upcomingAt: []int{1}, doneAt: []int{-30}},
		},
	},
	{
		name: "Yas Business Park", contact: "Daniel Costa", email: "daniel@yasbp.ae",
		phone: "+971 2 555 0505", address: "Yas Island North",
		buildings: []seedBuilding{
			{name: "Yas Office Park A", area: "Yas Island", kind: models.CommercialBuilding, floors: 9, equipment: highRiseKit,
				contract: "active", annualValue: "60000.00", firstPaid: "1", secondPaid: "0",
				upcomingAt: []int{10}, doneAt: []int{-15}},
		},
	},
	{
		name: "Mussafah Industrial Holdings", contact: "Suresh Pillai", email: "suresh@mih.ae",
		phone: "+971 2 555 0606", address: "Mussafah Industrial Area, M-10",
		buildings: []seedBuilding{
			{name: "Mussafah Warehouse 12", area: "Mussafah", kind: models.IndustrialBuilding, floors: 1, equipment: industrialKit,
				overdueAt: []int{-9}},
			{name: "Mussafah Workshop 7", area: "Mussafah", kind: models.IndustrialBuilding, floors: 2, equipment: industrialKit,
				contract: "expired", annualValue: "18000.00", firstPaid: "1", secondPaid: "0.5",
				doneAt: []int{-200}},
		},
	},
}

// demoComplaints are keyed by building name.
var demoComplaints = []struct {
	building, description string
	closed                bool
}{
	{"Sky Tower", "Fire hose reel on level 42 leaking at the coupling", false},
	{"Marina Heights", "Emergency lighting in stairwell B not illuminating", false},
	{"KC Residences", "Smoke detector in flat 804 chirping after battery change", false},
	{"Yas Office Park A", "Alarm panel showing earth fault on loop 2", true},
}

// DemoBaseline derives the expected counts from the dataset definition.
// Overdue counts assume OVERDUE_GRACE_DAYS is below the smallest overdue
// offset in the dataset (5 days).
func DemoBaseline() Baseline {
	var b Baseline
	b.Complaints = int64(len(demoComplaints))
	for _, c := range demoClients {
		b.Clients++
		active := false
		for _, bl := range c.buildings {
			b.Buildings++
			b.Equipment += int64(len(bl.equipment))
			b.Inspections += int64(len(bl.overdueAt) + len(bl.upcomingAt) + len(bl.doneAt))
			b.OverdueInspections += int64(len(bl.overdueAt))
			if bl.contract == "" {
				continue
			}
			b.Contracts++
			b.Invoices += 2
			if bl.firstPaid != "0" {
				b.Payments++
			}
			if bl.secondPaid != "0" {
				b.Payments++
			}
			if bl.contract == "active" {
				b.ActiveContracts++
				active = true
			}
		}
		if active {
			b.ActiveClients++
		}
	}
	return b
}

// seedDemoData writes the fixed dataset with dates relative to today. It must
// run inside a transaction on an empty store.
func seedDemoData(tx *gorm.DB, today time.Time) error {
	contractSeq := 0
	invoiceSeq := 0
	buildingIDs := make(map[string]uuid.UUID)

	for _, sc := range demoClients {
		client := models.Client{
			Name:          sc.name,
			ContactPerson: utils.StringPtr(sc.contact),
			Email:         sc.email,
			PhoneNumber:   sc.phone,
			Address:       utils.StringPtr(sc.address),
			City:          "Abu Dhabi",
			CreatedBy:     seedActor,
		}
		if err := tx.Create(&client).Error; err != nil {
			return fmt.Errorf("seed client %s: %w", sc.name, err)
		}

		for _, sb := range sc.buildings {
			building := models.Building{
				ClientID:       client.ID,
				Name:           sb.name,
				Address:        fmt.Sprintf("%s, %s, Abu Dhabi", sb.name, sb.area),
				Area:           utils.StringPtr(sb.area),
				BuildingType:   sb.kind,
				Floors:         sb.floors,
				EquipmentCount: len(sb.equipment),
				CreatedBy:      seedActor,
			}
			if err := tx.Create(&building).Error; err != nil {
				return fmt.Errorf("seed building %s: %w", sb.name, err)
			}
			buildingIDs[sb.name] = building.ID

			equipment := make([]models.Equipment, 0, len(sb.equipment))
			for i, kind := range sb.equipment {
				serviced := utils.AddDays(today, -90-i*7)
				equipment = append(equipment, models.Equipment{
					BuildingID:    building.ID,
					EquipmentType: kind,
					Location:      fmt.Sprintf("Level %d", i%max(sb.floors, 1)),
					SerialNumber:  utils.StringPtr(fmt.Sprintf("TTS-%s-%02d", building.ID.String()[0:4], i+1)),
					LastServiced:  &serviced,
				})
			}
			if len(equipment) > 0 {
				if err := tx.Create(&equipment).Error; err != nil {
					return fmt.Errorf("seed equipment for %s: %w", sb.name, err)
				}
			}

			if err := seedInspections(tx, building.ID, sb, today); err != nil {
				return err
			}

			if sb.contract == "" {
				continue
			}
			contractSeq++
			contract := models.Contract{
				BuildingID:     building.ID,
				ContractNumber: fmt.Sprintf("AMC-%d-%03d", today.Year(), contractSeq),
				AnnualValue:    decimal.RequireFromString(sb.annualValue),
				Status:         models.ActiveContract,
				CreatedBy:      seedActor,
			}
			if sb.contract == "expired" {
				contract.StartDate = utils.AddDays(today, -500)
				contract.Status = models.ExpiredContract
			} else {
				contract.StartDate = utils.AddDays(today, -200)
			}
			contract.EndDate = contract.StartDate.AddDate(1, 0, -1)
			if err := tx.Create(&contract).Error; err != nil {
				return fmt.Errorf("seed contract for %s: %w", sb.name, err)
			}

			half := contract.AnnualValue.Div(decimal.NewFromInt(2)).Round(2)
			for n, paidShare := range []string{sb.firstPaid, sb.secondPaid} {
				invoiceSeq++
				issued := contract.StartDate.AddDate(0, 6*n, 0)
				paid := half.Mul(decimal.RequireFromString(paidShare)).Round(2)
				invoice := models.Invoice{
					ClientID:      client.ID,
					ContractID:    &contract.ID,
					InvoiceNumber: fmt.Sprintf("INV-%d-%04d", today.Year(), invoiceSeq),
					Amount:        half,
					PaidAmount:    paid,
					IssueDate:     issued,
					DueDate:       issued.AddDate(0, 0, 30),
					Description:   fmt.Sprintf("%s instalment %d of 2", contract.ContractNumber, n+1),
					CreatedBy:     seedActor,
				}
				if err := tx.Create(&invoice).Error; err != nil {
					return fmt.Errorf("seed invoice for %s: %w", sb.name, err)
				}
				if !paid.IsPositive() {
					continue
				}
				payment := models.Payment{
					InvoiceID:     invoice.ID,
					Amount:        paid,
					PaymentMethod: models.BankTransferPaymentMethod,
					PaidOn:        issued.AddDate(0, 0, 14),
					ReceiptNumber: fmt.Sprintf("RCT-%d-%04d", today.Year(), invoiceSeq),
					CreatedBy:     seedActor,
				}
				if err := tx.Create(&payment).Error; err != nil {
					return fmt.Errorf("seed payment for %s: %w", invoice.InvoiceNumber, err)
				}
			}
		}
	}

	for _, dc := range demoComplaints {
		buildingID, ok := buildingIDs[dc.building]
		if !ok {
			return fmt.Errorf("seed complaint: unknown building %s", dc.building)
		}
		complaint := models.Complaint{
			BuildingID:  buildingID,
			Description: dc.description,
			Status:      models.OpenComplaint,
			CreatedBy:   seedActor,
		}
		if dc.closed {
			closedAt := utils.AddDays(today, -2)
			complaint.Status = models.ClosedComplaint
			complaint.ClosedAt = &closedAt
			complaint.Resolution = utils.StringPtr("Faulty detector head replaced, loop tested clear")
		}
		if err := tx.Create(&complaint).Error; err != nil {
			return fmt.Errorf("seed complaint for %s: %w", dc.building, err)
		}
	}

	config.Logger.Info("Demo dataset seeded",
		zap.Int("clients", len(demoClients)),
		zap.Int("contracts", contractSeq),
		zap.Int("invoices", invoiceSeq))
	return nil
}

var demoTechnicians = []string{"Ahmed Khan", "Joseph Mathew", "Bilal Saeed"}

func seedInspections(tx *gorm.DB, buildingID uuid.UUID, sb seedBuilding, today time.Time) error {
	var inspections []models.Inspection
	n := 0
	next := func() string {
		n++
		return demoTechnicians[(len(sb.name)+n)%len(demoTechnicians)]
	}

	for _, off := range sb.overdueAt {
		inspections = append(inspections, models.Inspection{
			BuildingID:    buildingID,
			ScheduledDate: utils.AddDays(today, off),
			Technician:    next(),
			Status:        models.OverdueInspection,
			CreatedBy:     seedActor,
		})
	}
	for _, off := range sb.upcomingAt {
		inspections = append(inspections, models.Inspection{
			BuildingID:    buildingID,
			ScheduledDate: utils.AddDays(today, off),
			Technician:    next(),
			Status:        models.ScheduledInspection,
			CreatedBy:     seedActor,
		})
	}
	for _, off := range sb.doneAt {
		day := utils.AddDays(today, off)
		in := models.Inspection{
			BuildingID:    buildingID,
			ScheduledDate: day,
			CompletedDate: &day,
			Technician:    next(),
			Status:        models.CompletedInspection,
			Notes:         "Routine quarterly inspection",
			CreatedBy:     seedActor,
		}
		checks := make([]models.EquipmentCheck, 0, len(sb.equipment))
		for _, kind := range sb.equipment {
			checks = append(checks, models.EquipmentCheck{Item: string(kind), Passed: true})
		}
		if err := in.SetEquipmentChecks(checks); err != nil {
			return fmt.Errorf("encode seed checks: %w", err)
		}
		inspections = append(inspections, in)
	}

	if len(inspections) == 0 {
		return nil
	}
	if err := tx.Create(&inspections).Error; err != nil {
		return fmt.Errorf("seed inspections for %s: %w", sb.name, err)
	}
	return nil
}
