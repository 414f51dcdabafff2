package repositoryImp

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fertplan/database"
	"fertplan/pkg/apperr"
	"fertplan/pkg/feasibility"
	"fertplan/pkg/production"
	"fertplan/pkg/production/repository"
)

const resolveSQL = `
SELECT c.id, c.product_name, c.brand, c.size,
       c.bottle_name, c.closure_name, c.label_location, c.formula_name,
       COALESCE(b.warehouse_quantity, 0)  AS bottle_on_hand,
       COALESCE(cl.warehouse_quantity, 0) AS closure_on_hand,
       COALESCE(l.warehouse_quantity, 0)  AS label_on_hand,
       COALESCE(f.gallons_available, 0)  AS formula_gallons
FROM catalog c
LEFT JOIN bottle_inventory  b  ON b.name  = c.bottle_name
LEFT JOIN closure_inventory cl ON cl.name = c.closure_name
LEFT JOIN label_inventory   l  ON l.name  = c.label_location
LEFT JOIN formula_inventory f  ON f.name  = c.formula_name`

type resolvedRow struct {
	ID             uint
	ProductName    string
	Brand          string
	Size           string
	BottleName     *string
	ClosureName    *string
	LabelLocation  *string
	FormulaName    *string
	BottleOnHand   int64
	ClosureOnHand  int64
	LabelOnHand    int64
	FormulaGallons decimal.Decimal
}

type resolver struct{ db *gorm.DB }

func New(db *gorm.DB) repository.InventoryResolver { return &resolver{db: db} }

func (r *resolver) Resolve(ctx context.Context, skuID uint) (*production.ResolvedSKU, error) {
	q := resolveSQL + ` WHERE c.id = ?`
	if database.TxFromCtx(ctx) != nil && r.db.Dialector.Name() == "postgres" {
		// holds the catalog row against a concurrent delete until commit
		q += ` FOR SHARE OF c`
	}
	out, err := r.query(ctx, "production.resolve", q, skuID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperr.NotFound("production.resolve", "sku %d not found", skuID)
	}
	return &out[0], nil
}

func (r *resolver) ResolveAll(ctx context.Context) ([]production.ResolvedSKU, error) {
	return r.query(ctx, "production.resolve_all", resolveSQL+` ORDER BY c.id`)
}

func (r *resolver) ResolveMany(ctx context.Context, skuIDs []uint) ([]production.ResolvedSKU, error) {
	if len(skuIDs) == 0 {
		return []production.ResolvedSKU{}, nil
	}
	return r.query(ctx, "production.resolve_many", resolveSQL+` WHERE c.id IN ? ORDER BY c.id`, skuIDs)
}

func (r *resolver) query(ctx context.Context, op, q string, args ...any) ([]production.ResolvedSKU, error) {
	var rows []resolvedRow
	if err := database.Conn(ctx, r.db).Raw(q, args...).Scan(&rows).Error; err != nil {
		return nil, database.Classify(op, err)
	}
	out := make([]production.ResolvedSKU, 0, len(rows))
	for _, row := range rows {
		out = append(out, toResolved(row))
	}
	return out, nil
}

func toResolved(row resolvedRow) production.ResolvedSKU {
	return production.ResolvedSKU{
		SKUID:         row.ID,
		ProductName:   row.ProductName,
		Brand:         row.Brand,
		Size:          row.Size,
		BottleName:    row.BottleName,
		ClosureName:   row.ClosureName,
		LabelLocation: row.LabelLocation,
		FormulaName:   row.FormulaName,
		BOM: feasibility.BOM{
			Bottle:         row.BottleOnHand,
			Closure:        row.ClosureOnHand,
			Label:          row.LabelOnHand,
			FormulaGallons: row.FormulaGallons,
			Incomplete: row.BottleName == nil || row.ClosureName == nil ||
				row.LabelLocation == nil || row.FormulaName == nil,
		},
	}
}
