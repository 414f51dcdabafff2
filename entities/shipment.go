package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShipmentStatus string

const (
	StatusDraft    ShipmentStatus = "draft"
	StatusPlanned  ShipmentStatus = "planned"
	StatusReleased ShipmentStatus = "released"
	StatusArchived ShipmentStatus = "archived"
)

// Mutable reports whether lines may still be added, changed or removed.
func (s ShipmentStatus) Mutable() bool {
	return s == StatusDraft || s == StatusPlanned
}

func (s ShipmentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPlanned, StatusReleased, StatusArchived:
		return true
	}
	return false
}

type Shipment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ShipmentNumber string         `gorm:"uniqueIndex;not null" json:"shipment_number"`
	Date           string         `gorm:"index" json:"date"` // YYYY-MM-DD
	Status         ShipmentStatus `gorm:"index;not null;default:draft" json:"status"`
	TotalUnits     int64          `gorm:"not null;default:0" json:"total_units"`
	TotalLines     int            `gorm:"not null;default:0" json:"total_lines"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Lines   []ShipmentLine          `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE" json:"-"`
	Rollups []ShipmentFormulaRollup `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Shipment) TableName() string { return "shipment" }

// ShipmentLine is unique per (shipment, sku).
type ShipmentLine struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ShipmentID        uint      `gorm:"not null;uniqueIndex:idx_shipment_line_sku" json:"shipment_id"`
	SKUID             uint      `gorm:"column:sku_id;not null;uniqueIndex:idx_shipment_line_sku" json:"sku_id"`
	RequestedQuantity int64     `gorm:"not null" json:"requested_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (ShipmentLine) TableName() string { return "shipment_line" }

// ShipmentFormulaRollup materialises the per-formula demand of a shipment. It
// is rebuilt on every line change.
type ShipmentFormulaRollup struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ShipmentID      uint            `gorm:"not null;uniqueIndex:idx_rollup_formula" json:"shipment_id"`
	FormulaName     string          `gorm:"not null;uniqueIndex:idx_rollup_formula" json:"formula_name"`
	GallonsRequired decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"gallons_required"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (ShipmentFormulaRollup) TableName() string { return "shipment_formula_rollup" }
