package shipment

import (
	"sort"

	"github.com/shopspring/decimal"

	"fertplan/entities"
	"fertplan/pkg/feasibility"
	"fertplan/pkg/sizes"
)

type CreateInput struct {
	ShipmentNumber string `json:"shipment_number"`
	Date           string `json:"date"`
}

type LineInput struct {
	SKUID uint  `json:"sku_id"`
	Qty   int64 `json:"qty"`
}

type QtyInput struct {
	Qty int64 `json:"qty"`
}

type TransitionInput struct {
	Status entities.ShipmentStatus `json:"status"`
}

// LineView is a shipment line joined to its catalog row.
type LineView struct {
	ID                uint    `json:"id"`
	ShipmentID        uint    `json:"shipment_id"`
	SKUID             uint    `gorm:"column:sku_id" json:"sku_id"`
	ProductName       string  `json:"product_name"`
	Brand             string  `json:"brand"`
	Size              string  `json:"size"`
	FormulaName       *string `json:"formula_name"`
	RequestedQuantity int64   `json:"requested_quantity"`
}

// Demand is the slice of the line the formula rollup consumes.
func (l LineView) Demand() feasibility.LineDemand {
	return feasibility.LineDemand{SKUID: l.SKUID, FormulaName: l.FormulaName, Size: l.Size, Quantity: l.RequestedQuantity}
}

type Detail struct {
	entities.Shipment
	Lines []LineView `json:"lines"`
}

type RollupReport struct {
	ShipmentID uint                        `json:"shipment_id"`
	Strict     bool                        `json:"strict"`
	Formulas   []feasibility.FormulaDemand `json:"formulas"`
	// TotalGallons sums gallons_required across formulas.
	TotalGallons decimal.Decimal `json:"total_gallons"`
}

type AuditLine struct {
	SKUID             uint                `json:"sku_id"`
	ProductName       string              `json:"product_name"`
	Size              string              `json:"size"`
	RequestedQuantity int64               `json:"requested_quantity"`
	MaxUnits          int64               `json:"max_units"`
	Limiter           feasibility.Limiter `json:"limiter"`
	Shortfall         int64               `json:"shortfall"`
}

type AuditReport struct {
	ShipmentID uint        `json:"shipment_id"`
	Checked    int         `json:"checked"`
	Infeasible []AuditLine `json:"infeasible"`
}

var transitions = map[entities.ShipmentStatus][]entities.ShipmentStatus{
	entities.StatusDraft:    {entities.StatusPlanned, entities.StatusArchived},
	entities.StatusPlanned:  {entities.StatusDraft, entities.StatusReleased},
	entities.StatusReleased: {entities.StatusArchived},
}

// CanTransition reports whether the lifecycle allows from -> to.
func CanTransition(from, to entities.ShipmentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Deletable is true for draft and archived shipments.
func Deletable(s entities.ShipmentStatus) bool {
	return s == entities.StatusDraft || s == entities.StatusArchived
}

// SortLines orders lines by product name, size ordinal, then sku id.
func SortLines(lines []LineView) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		if oa, ob := sizes.Ordinal(a.Size), sizes.Ordinal(b.Size); oa != ob {
			return oa < ob
		}
		return a.SKUID < b.SKUID
	})
}
