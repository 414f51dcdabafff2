package production

import (
	"github.com/shopspring/decimal"

	"fertplan/pkg/feasibility"
)

// ResolvedSKU is a catalog row joined to the on-hand stock of its four
// components.
type ResolvedSKU struct {
	SKUID         uint
	ProductName   string
	Brand         string
	Size          string
	BottleName    *string
	ClosureName   *string
	LabelLocation *string
	FormulaName   *string
	BOM           feasibility.BOM
}

// ProductFeasibility is the wire shape of one row on the production dashboard.
type ProductFeasibility struct {
	SKUID          uint                `json:"sku_id"`
	ProductName    string              `json:"product_name"`
	Brand          string              `json:"brand"`
	Size           string              `json:"size"`
	BottleName     *string             `json:"bottle_name"`
	ClosureName    *string             `json:"closure_name"`
	LabelLocation  *string             `json:"label_location"`
	FormulaName    *string             `json:"formula_name"`
	GallonsPerUnit decimal.Decimal     `json:"gallons_per_unit"`
	BOM            feasibility.BOM     `json:"bom"`
	MaxUnits       int64               `json:"max_units"`
	Limiter        feasibility.Limiter `json:"limiter"`
}

// Project is the single place a resolved row becomes its wire form.
func Project(r ResolvedSKU, perUnit decimal.Decimal, res feasibility.Result) ProductFeasibility {
	return ProductFeasibility{
		SKUID:          r.SKUID,
		ProductName:    r.ProductName,
		Brand:          r.Brand,
		Size:           r.Size,
		BottleName:     r.BottleName,
		ClosureName:    r.ClosureName,
		LabelLocation:  r.LabelLocation,
		FormulaName:    r.FormulaName,
		GallonsPerUnit: perUnit,
		BOM:            r.BOM,
		MaxUnits:       res.Units,
		Limiter:        res.Limiter,
	}
}
