package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"fertplan/entities"
	"fertplan/pkg/inventory"
)

type Repository interface {
	ListStock(ctx context.Context, kind inventory.Kind) ([]entities.ComponentStock, error)
	ListFormulas(ctx context.Context) ([]entities.FormulaInventory, error)
	FindStock(ctx context.Context, kind inventory.Kind, name string) (*entities.ComponentStock, error)
	FindFormula(ctx context.Context, name string) (*entities.FormulaInventory, error)

	// UpsertStock and UpsertFormula insert the row or update only the
	// supplied fields of an existing one.
	UpsertStock(ctx context.Context, kind inventory.Kind, name string, p inventory.Patch) error
	UpsertFormula(ctx context.Context, name string, p inventory.Patch) error

	// Lock* read a row under a write lock; call inside a transaction.
	LockStock(ctx context.Context, kind inventory.Kind, name string) (*entities.ComponentStock, error)
	LockFormula(ctx context.Context, name string) (*entities.FormulaInventory, error)
	SetWarehouseQuantity(ctx context.Context, kind inventory.Kind, id uint, qty int64) error
	SetGallonsAvailable(ctx context.Context, id uint, gallons decimal.Decimal) error

	Exists(ctx context.Context, kind inventory.Kind, name string) (bool, error)
	FormulaGallons(ctx context.Context, names []string) (map[string]decimal.Decimal, error)
}
