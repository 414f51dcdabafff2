package service

import (
	"context"

	"fertplan/entities"
	"fertplan/pkg/inventory"
)

type Service interface {
	ListStock(ctx context.Context, kind inventory.Kind) ([]entities.ComponentStock, error)
	ListFormulas(ctx context.Context) ([]entities.FormulaInventory, error)
	// Upsert returns the stored row: *entities.ComponentStock or *entities.FormulaInventory.
	Upsert(ctx context.Context, kind inventory.Kind, name string, p inventory.Patch) (any, error)
	Adjust(ctx context.Context, kind inventory.Kind, name string, a inventory.Adjustment) (any, error)
}
