// Package feasibility holds the pure production arithmetic: max units per SKU
// and the per-formula demand of a shipment. Nothing here touches storage.
package feasibility

import (
	"github.com/shopspring/decimal"
)

type Limiter string

const (
	LimiterBottle  Limiter = "bottle"
	LimiterClosure Limiter = "closure"
	LimiterLabel   Limiter = "label"
	LimiterFormula Limiter = "formula"
	LimiterNone    Limiter = "none"
)

// BOM is the on-hand stock behind one SKU. Incomplete means at least one
// component reference on the SKU is null.
type BOM struct {
	Bottle         int64           `json:"bottle_on_hand"`
	Closure        int64           `json:"closure_on_hand"`
	Label          int64           `json:"label_on_hand"`
	FormulaGallons decimal.Decimal `json:"formula_gallons_on_hand"`
	Incomplete     bool            `json:"incomplete"`
}

type Result struct {
	Units   int64   `json:"max_units"`
	Limiter Limiter `json:"limiter"`
}

// FormulaUnits converts gallons on hand into whole units of a size. The floor
// is taken once, here.
func FormulaUnits(gallons, perUnit decimal.Decimal) int64 {
	if !perUnit.IsPositive() || !gallons.IsPositive() {
		return 0
	}
	return gallons.Div(perUnit).Floor().IntPart()
}

// MaxUnits is min(bottle, closure, label, floor(gallons/perUnit)). Ties go to
// the first component in bottle, closure, label, formula order.
func MaxUnits(bom BOM, perUnit decimal.Decimal) Result {
	if bom.Incomplete {
		return Result{Units: 0, Limiter: LimiterNone}
	}
	candidates := []struct {
		limiter Limiter
		units   int64
	}{
		{LimiterBottle, nonNegative(bom.Bottle)},
		{LimiterClosure, nonNegative(bom.Closure)},
		{LimiterLabel, nonNegative(bom.Label)},
		{LimiterFormula, FormulaUnits(bom.FormulaGallons, perUnit)},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.units < best.units {
			best = c
		}
	}
	return Result{Units: best.units, Limiter: best.limiter}
}

// Check reports whether requested fits within r and by how much it does not.
func Check(requested int64, r Result) (ok bool, shortfall int64) {
	if requested <= r.Units {
		return true, 0
	}
	return false, requested - r.Units
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
