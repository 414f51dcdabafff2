package entities

import "time"

// SKU is one catalog row. The four component references are nullable; a nil
// reference makes the SKU unproducible.
type SKU struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProductName   string    `gorm:"not null;index" json:"product_name"`
	Brand         string    `json:"brand"`
	Size          string    `gorm:"not null" json:"size"`
	BottleName    *string   `json:"bottle_name"`
	ClosureName   *string   `json:"closure_name"`
	LabelLocation *string   `json:"label_location"`
	FormulaName   *string   `json:"formula_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (SKU) TableName() string { return "catalog" }
