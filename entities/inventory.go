package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComponentStock is the shared shape of the bottle, closure and label tables.
type ComponentStock struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"uniqueIndex;not null" json:"name"`
	WarehouseQuantity int64     `gorm:"not null;default:0" json:"warehouse_quantity"`
	SupplierQuantity  int64     `gorm:"not null;default:0" json:"supplier_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type BottleInventory struct{ ComponentStock }

func (BottleInventory) TableName() string { return "bottle_inventory" }

type ClosureInventory struct{ ComponentStock }

func (ClosureInventory) TableName() string { return "closure_inventory" }

type LabelInventory struct{ ComponentStock }

func (LabelInventory) TableName() string { return "label_inventory" }

// FormulaInventory tracks bulk liquid. Only GallonsAvailable feeds feasibility.
type FormulaInventory struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	Name                string          `gorm:"uniqueIndex;not null" json:"name"`
	GallonsAvailable    decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"gallons_available"`
	GallonsInProduction decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"gallons_in_production"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (FormulaInventory) TableName() string { return "formula_inventory" }
