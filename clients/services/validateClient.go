package services

import (
	"net/mail"
	"regexp"
	"strings"

	"tts-guard-backend/db/models"
)

var phoneRegex = regexp.MustCompile(`^\+[\d ]{9,18}$`)

func ValidateClient(client *models.Client) string {
	if strings.TrimSpace(client.Name) == "" {
		return "Client name is required"
	}

	if client.Email != "" {
		if _, err := mail.ParseAddress(client.Email); err != nil {
			return "Email address is not valid"
		}
	}

	if client.PhoneNumber != "" && !phoneRegex.MatchString(client.PhoneNumber) {
		return "Phone number must start with '+' followed by 9 to 15 digits"
	}

	return ""
}

func ValidateBuilding(building *models.Building) string {
	if strings.TrimSpace(building.Name) == "" {
		return "Building name is required"
	}
	if strings.TrimSpace(building.Address) == "" {
		return "Building address is required"
	}
	if building.Floors < 0 {
		return "Floors cannot be negative"
	}

	switch building.BuildingType {
	case "", models.ResidentialBuilding, models.CommercialBuilding, models.MixedUseBuilding, models.IndustrialBuilding:
	default:
		return "Building type must be one of RESIDENTIAL, COMMERCIAL, MIXED_USE, INDUSTRIAL"
	}
	return ""
}

func ValidateEquipment(equipment *models.Equipment) string {
	switch equipment.EquipmentType {
	case models.FireExtinguisher, models.FireAlarmPanel, models.SmokeDetector, models.SprinklerSystem,
		models.FireHoseReel, models.EmergencyLighting, models.FirePump:
	case "":
		return "Equipment type is required"
	default:
		return "Unknown equipment type " + string(equipment.EquipmentType)
	}
	return ""
}

func ValidateContract(contract *models.Contract) string {
	if strings.TrimSpace(contract.ContractNumber) == "" {
		return "Contract number is required"
	}
	if contract.AnnualValue.IsNegative() {
		return "Annual value cannot be negative"
	}
	if contract.StartDate.IsZero() || contract.EndDate.IsZero() {
		return "Start and end dates are required"
	}
	if !contract.EndDate.After(contract.StartDate) {
		return "End date must be after the start date"
	}
	return ""
}
