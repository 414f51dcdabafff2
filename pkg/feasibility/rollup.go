package feasibility

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fertplan/pkg/apperr"
)

// LineDemand is the slice of a shipment line the rollup needs.
type LineDemand struct {
	SKUID       uint
	FormulaName *string
	Size        string
	Quantity    int64
}

// FormulaDemand compares what a shipment needs against what is on hand.
type FormulaDemand struct {
	Formula          string          `json:"formula"`
	GallonsRequired  decimal.Decimal `json:"gallons_required"`
	GallonsAvailable decimal.Decimal `json:"gallons_available"`
	Shortfall        decimal.Decimal `json:"shortfall"`
	Missing          bool            `json:"missing,omitempty"`
}

// GallonsFunc resolves a size label to gallons per unit.
type GallonsFunc func(size string) (decimal.Decimal, error)

// Rollup sums qty x gallons_per_unit(size) per formula. Lines without a
// formula are skipped.
func Rollup(lines []LineDemand, perUnit GallonsFunc) (map[string]decimal.Decimal, error) {
	total := map[string]decimal.Decimal{}
	for _, l := range lines {
		if l.FormulaName == nil {
			continue
		}
		g, err := perUnit(l.Size)
		if err != nil {
			return nil, err
		}
		f := *l.FormulaName
		total[f] = total[f].Add(decimal.NewFromInt(l.Quantity).Mul(g))
	}
	return total, nil
}

// Compare joins required gallons with available stock, sorted by formula.
// available holds only formulas that exist in inventory. In strict mode any
// formula absent from available fails with KindFormulaMissing; otherwise it is
// reported with zero available.
func Compare(required, available map[string]decimal.Decimal, strict bool) ([]FormulaDemand, error) {
	out := make([]FormulaDemand, 0, len(required))
	var missing []string
	for f, req := range required {
		avail, ok := available[f]
		if !ok {
			missing = append(missing, f)
		}
		short := req.Sub(avail)
		if short.IsNegative() {
			short = decimal.Zero
		}
		out = append(out, FormulaDemand{
			Formula:          f,
			GallonsRequired:  req,
			GallonsAvailable: avail,
			Shortfall:        short,
			Missing:          !ok,
		})
	}
	if strict && len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperr.New(apperr.KindFormulaMissing, "rollup", "formula not in inventory: %s", strings.Join(missing, ", "))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Formula < out[j].Formula })
	return out, nil
}
