package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"fertplan/entities"
	"fertplan/pkg/shipment"
)

type Repository interface {
	// Create fails with KindDuplicateShipmentNumber on a taken number.
	Create(ctx context.Context, s *entities.Shipment) error
	NumberExists(ctx context.Context, number string) (bool, error)
	List(ctx context.Context) ([]entities.Shipment, error)
	FindByID(ctx context.Context, id uint) (*entities.Shipment, error)
	// LockByID reads the shipment under a write lock held until the
	// surrounding transaction ends.
	LockByID(ctx context.Context, id uint) (*entities.Shipment, error)
	UpdateStatus(ctx context.Context, id uint, status entities.ShipmentStatus) error
	UpdateTotals(ctx context.Context, id uint, units int64, lines int) error
	// Delete removes the shipment with its lines and rollups.
	Delete(ctx context.Context, id uint) error

	Lines(ctx context.Context, shipmentID uint) ([]shipment.LineView, error)
	FindLine(ctx context.Context, shipmentID, skuID uint) (*entities.ShipmentLine, error)
	SaveLine(ctx context.Context, l *entities.ShipmentLine) error
	DeleteLine(ctx context.Context, shipmentID, skuID uint) error

	ReplaceRollup(ctx context.Context, shipmentID uint, gallons map[string]decimal.Decimal) error
	Rollups(ctx context.Context, shipmentID uint) ([]entities.ShipmentFormulaRollup, error)

	// Reset empties the three shipment tables and restarts their ids at 1.
	Reset(ctx context.Context) error
}
