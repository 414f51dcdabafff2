package catalog

import "github.com/shopspring/decimal"

// SKUInput is the writable part of a catalog row.
type SKUInput struct {
	ProductName   string  `json:"product_name"`
	Brand         string  `json:"brand"`
	Size          string  `json:"size"`
	BottleName    *string `json:"bottle_name"`
	ClosureName   *string `json:"closure_name"`
	LabelLocation *string `json:"label_location"`
	FormulaName   *string `json:"formula_name"`
}

// ReconcileRules are the catalog fix-ups, applied in a fixed order:
// formula backfill, dangling references, size->bottle, bottle->closure.
type ReconcileRules struct {
	// ClosureForBottle fills a null closure from the SKU's bottle.
	ClosureForBottle map[string]string `json:"closure_for_bottle"`
	// BottleForSize fills a null bottle from the SKU's size label.
	BottleForSize map[string]string `json:"bottle_for_size"`
	// FormulaBackfillGallons creates missing referenced formulas with this
	// many gallons. Test fixture only; leave nil in production.
	FormulaBackfillGallons *decimal.Decimal `json:"formula_backfill_gallons,omitempty"`
	DryRun                 bool             `json:"dry_run"`
}

// DefaultReconcileRules mirrors the packaging line's standard pairings.
func DefaultReconcileRules() ReconcileRules {
	return ReconcileRules{
		ClosureForBottle: map[string]string{
			"8 oz Standard":  "24/410",
			"16 oz Standard": "24/410",
			"32 oz Standard": "28/400",
			"Gallon Jug":     "38/400",
			"5 Gallon Pail":  "70mm Pail Lid",
		},
		BottleForSize: map[string]string{
			"8oz":      "8 oz Standard",
			"16oz":     "16 oz Standard",
			"Quart":    "32 oz Standard",
			"32oz":     "32 oz Standard",
			"Gallon":   "Gallon Jug",
			"5 Gallon": "5 Gallon Pail",
		},
	}
}

const (
	RuleDanglingReference = "dangling_reference"
	RuleSizeBottle        = "size_bottle"
	RuleBottleClosure     = "bottle_closure"
)

type ReconcileChange struct {
	SKUID uint    `json:"sku_id"`
	Field string  `json:"field"`
	From  *string `json:"from"`
	To    *string `json:"to"`
	Rule  string  `json:"rule"`
}

type ReconcileReport struct {
	Examined           int               `json:"examined"`
	Changes            []ReconcileChange `json:"changes"`
	BackfilledFormulas []string          `json:"backfilled_formulas,omitempty"`
	DryRun             bool              `json:"dry_run"`
}
