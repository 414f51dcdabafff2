package service

import (
	"context"

	"github.com/labstack/gommon/log"

	"fertplan/entities"
	"fertplan/pkg/shipment"
)

// Service plans shipments. Every mutation runs in one transaction holding the
// shipment row lock, and rebuilds the formula rollup before it commits.
type Service interface {
	Create(ctx context.Context, in shipment.CreateInput) (*entities.Shipment, error)
	List(ctx context.Context) ([]entities.Shipment, error)
	Get(ctx context.Context, id uint) (*shipment.Detail, error)
	Delete(ctx context.Context, id uint) error

	// AddLine merges into an existing line for the same SKU. The merged
	// quantity must fit within max units at the time of the call.
	AddLine(ctx context.Context, id uint, in shipment.LineInput) (*shipment.Detail, error)
	SetQty(ctx context.Context, id, skuID uint, qty int64) (*shipment.Detail, error)
	RemoveLine(ctx context.Context, id, skuID uint) (*shipment.Detail, error)

	Transition(ctx context.Context, id uint, to entities.ShipmentStatus) (*entities.Shipment, error)

	Rollup(ctx context.Context, id uint, strict bool) (*shipment.RollupReport, error)
	// Audit re-checks every line against current stock without changing anything.
	Audit(ctx context.Context, id uint) (*shipment.AuditReport, error)

	// Reset clears every shipment and restarts ids at 1.
	Reset(ctx context.Context) error
}

// Reserver commits inventory when a shipment is released. It runs inside the
// transition's transaction; an error aborts the release.
type Reserver interface {
	Reserve(ctx context.Context, s *entities.Shipment, lines []shipment.LineView) error
}

// NopReserver only records the release.
type NopReserver struct{}

func (NopReserver) Reserve(_ context.Context, s *entities.Shipment, lines []shipment.LineView) error {
	log.Infof("[shipment] release %s (%d lines, %d units): no reservation configured", s.ShipmentNumber, len(lines), s.TotalUnits)
	return nil
}
