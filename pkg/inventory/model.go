package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind names one of the four component inventories.
type Kind string

const (
	Bottles  Kind = "bottles"
	Closures Kind = "closures"
	Labels   Kind = "labels"
	Formulas Kind = "formulas"
)

var Kinds = []Kind{Bottles, Closures, Labels, Formulas}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Bottles, Closures, Labels, Formulas:
		return k, nil
	}
	return "", fmt.Errorf("unknown inventory kind %q (want bottles|closures|labels|formulas)", s)
}

func (k Kind) Table() string {
	switch k {
	case Bottles:
		return "bottle_inventory"
	case Closures:
		return "closure_inventory"
	case Labels:
		return "label_inventory"
	case Formulas:
		return "formula_inventory"
	}
	return ""
}

// IsStock is true for the integer-counted kinds.
func (k Kind) IsStock() bool { return k == Bottles || k == Closures || k == Labels }

// Patch carries the fields a caller supplied. Nil fields are preserved on
// update and default to zero on insert.
type Patch struct {
	WarehouseQuantity   *int64           `json:"warehouse_quantity"`
	SupplierQuantity    *int64           `json:"supplier_quantity"`
	GallonsAvailable    *decimal.Decimal `json:"gallons_available"`
	GallonsInProduction *decimal.Decimal `json:"gallons_in_production"`
}

func (p Patch) Validate(k Kind) error {
	if k.IsStock() {
		if p.GallonsAvailable != nil || p.GallonsInProduction != nil {
			return fmt.Errorf("%s take warehouse_quantity/supplier_quantity, not gallons", k)
		}
		if p.WarehouseQuantity != nil && *p.WarehouseQuantity < 0 {
			return fmt.Errorf("warehouse_quantity cannot be negative, got %d", *p.WarehouseQuantity)
		}
		if p.SupplierQuantity != nil && *p.SupplierQuantity < 0 {
			return fmt.Errorf("supplier_quantity cannot be negative, got %d", *p.SupplierQuantity)
		}
		return nil
	}
	if p.WarehouseQuantity != nil || p.SupplierQuantity != nil {
		return fmt.Errorf("formulas take gallons_available/gallons_in_production, not quantities")
	}
	if p.GallonsAvailable != nil && p.GallonsAvailable.IsNegative() {
		return fmt.Errorf("gallons_available cannot be negative, got %s", p.GallonsAvailable)
	}
	if p.GallonsInProduction != nil && p.GallonsInProduction.IsNegative() {
		return fmt.Errorf("gallons_in_production cannot be negative, got %s", p.GallonsInProduction)
	}
	return nil
}

// Adjustment moves on-hand stock (warehouse quantity or gallons available) by Delta.
type Adjustment struct {
	Delta decimal.Decimal `json:"delta"`
}
