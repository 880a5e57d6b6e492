package handlers

import (
	"stockroom/internal/services"
	"stockroom/internal/telemetry"
)

type Deps struct {
	InventoryHandler *InventoryHandler
	AdminHandler     *AdminHandler
	Metrics          *telemetry.Metrics
}

func NewDeps(inv *services.InventoryService, m *telemetry.Metrics) *Deps {
	return &Deps{
		InventoryHandler: &InventoryHandler{Inv: inv},
		AdminHandler:     &AdminHandler{Inv: inv},
		Metrics:          m,
	}
}
