package controllers

import (
	"context"

	"tts-guard-backend/clients/services"
	dashboard_services "tts-guard-backend/dashboard/services"

	"github.com/google/uuid"
)

// ClientFinancialsReader supplies the money breakdown shown on a client page.
type ClientFinancialsReader interface {
	ClientFinancialsFor(ctx context.Context, clientID uuid.UUID) (*dashboard_services.ClientFinancialRow, error)
}

type ClientController struct {
	Directory  *services.DirectoryService
	Financials ClientFinancialsReader
}
