// Package importer loads catalog and inventory rows from an xlsx sheet.
// Headers are matched loosely so sheets exported from different tools load
// without editing.
package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"fertplan/database"
	"fertplan/entities"
	"fertplan/pkg/apperr"
	"fertplan/pkg/catalog"
	csvc "fertplan/pkg/catalog/service"
	"fertplan/pkg/inventory"
	isvc "fertplan/pkg/inventory/service"
)

// TargetCatalog imports SKUs; any inventory.Kind imports stock.
const TargetCatalog = "catalog"

type Importer struct {
	inv     isvc.Service
	catalog csvc.Service
	tx      database.Transactor
}

func New(inv isvc.Service, catalog csvc.Service, tx database.Transactor) *Importer {
	return &Importer{inv: inv, catalog: catalog, tx: tx}
}

type Report struct {
	Target   string   `json:"target"`
	Sheet    string   `json:"sheet"`
	Rows     int      `json:"rows"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

func (r *Report) skip(row int, format string, args ...any) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf("row %d: %s", row, fmt.Sprintf(format, args...)))
}

// ImportFile reads sheet (the first sheet when empty) from path and upserts
// every row into target. Bad rows are skipped and reported.
func (im *Importer) ImportFile(ctx context.Context, path, sheet, target string) (*Report, error) {
	rows, name, err := ReadSheet(path, sheet)
	if err != nil {
		return nil, err
	}
	report, err := im.ImportRows(ctx, rows, target)
	if err != nil {
		return nil, err
	}
	report.Sheet = name
	log.Infof("[import] %s!%s -> %s: %d rows, %d imported, %d skipped",
		path, name, target, report.Rows, report.Imported, report.Skipped)
	return report, nil
}

// ReadSheet returns every row of sheet and the sheet's name.
func ReadSheet(path, sheet string) ([][]string, string, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", apperr.Validation("import.open", "open %s: %v", path, err)
	}
	defer x.Close()
	if sheet == "" {
		sheet = x.GetSheetName(0)
	}
	rows, err := x.GetRows(sheet)
	if err != nil {
		return nil, "", apperr.Validation("import.read", "read sheet %q: %v", sheet, err)
	}
	return rows, sheet, nil
}

// ImportRows treats rows[0] as the header. The sheet loads in one
// transaction: a row with bad values is skipped and reported, while a storage
// failure rolls back every row and nothing is imported.
func (im *Importer) ImportRows(ctx context.Context, rows [][]string, target string) (*Report, error) {
	if len(rows) == 0 {
		return nil, apperr.Validation("import", "sheet is empty")
	}
	var report *Report
	err := im.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		report, err = im.importRows(ctx, rows, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (im *Importer) importRows(ctx context.Context, rows [][]string, target string) (*Report, error) {
	report := &Report{Target: target}
	h := newHeader(rows[0])

	var load func(ctx context.Context, get func(int) string) error
	switch target {
	case TargetCatalog:
		l, err := im.catalogLoader(ctx, h)
		if err != nil {
			return nil, err
		}
		load = l
	default:
		kind, err := inventory.ParseKind(target)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "import", err)
		}
		l, err := im.inventoryLoader(kind, h)
		if err != nil {
			return nil, err
		}
		load = l
	}

	for i, rec := range rows[1:] {
		n := i + 2 // 1-based, after the header
		if blank(rec) {
			continue
		}
		report.Rows++
		get := func(idx int) string {
			if idx < 0 || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		if err := load(ctx, get); err != nil {
			if apperr.Is(err, apperr.KindStorageUnavailable) || apperr.Is(err, apperr.KindInternal) {
				log.Errorf("[import] row %d: %v; rolling back", n, err)
				return nil, err
			}
			report.skip(n, "%s", apperr.As(err).Message())
			continue
		}
		report.Imported++
	}
	return report, nil
}

func (im *Importer) inventoryLoader(kind inventory.Kind, h header) (func(context.Context, func(int) string) error, error) {
	if kind.IsStock() {
		cName := h.find("name", "component", string(kind), strings.TrimSuffix(string(kind), "s"), "bottlename", "closurename", "labellocation", "location")
		cWare := h.find("warehouse_quantity", "warehouse", "on_hand", "quantity", "qty")
		cSupp := h.find("supplier_quantity", "supplier", "at_supplier")
		if cName < 0 || (cWare < 0 && cSupp < 0) {
			return nil, h.missing("name", "warehouse_quantity or supplier_quantity")
		}
		return func(ctx context.Context, get func(int) string) error {
			name := get(cName)
			if name == "" {
				return apperr.Validation("import", "name is empty")
			}
			var p inventory.Patch
			var err error
			if p.WarehouseQuantity, err = quantity(get(cWare)); err != nil {
				return err
			}
			if p.SupplierQuantity, err = quantity(get(cSupp)); err != nil {
				return err
			}
			_, err = im.inv.Upsert(ctx, kind, name, p)
			return err
		}, nil
	}

	cName := h.find("name", "formula", "formula_name")
	cAvail := h.find("gallons_available", "gallons", "available")
	cProd := h.find("gallons_in_production", "in_production")
	if cName < 0 || (cAvail < 0 && cProd < 0) {
		return nil, h.missing("name", "gallons_available or gallons_in_production")
	}
	return func(ctx context.Context, get func(int) string) error {
		name := get(cName)
		if name == "" {
			return apperr.Validation("import", "name is empty")
		}
		var p inventory.Patch
		var err error
		if p.GallonsAvailable, err = gallons(get(cAvail)); err != nil {
			return err
		}
		if p.GallonsInProduction, err = gallons(get(cProd)); err != nil {
			return err
		}
		_, err = im.inv.Upsert(ctx, inventory.Formulas, name, p)
		return err
	}, nil
}

type skuKey struct{ product, brand, size string }

// catalogLoader updates a SKU with the same product, brand and size, and
// creates one otherwise, so a sheet can be imported twice.
func (im *Importer) catalogLoader(ctx context.Context, h header) (func(context.Context, func(int) string) error, error) {
	cProduct := h.find("product_name", "product", "name")
	cBrand := h.find("brand")
	cSize := h.find("size", "size_label")
	cBottle := h.find("bottle_name", "bottle")
	cClosure := h.find("closure_name", "closure", "cap")
	cLabel := h.find("label_location", "label")
	cFormula := h.find("formula_name", "formula")
	if cProduct < 0 || cSize < 0 {
		return nil, h.missing("product_name", "size")
	}

	existing, err := im.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[skuKey]uint, len(existing))
	for _, s := range existing {
		ids[skuKey{s.ProductName, s.Brand, s.Size}] = s.ID
	}

	ref := func(get func(int) string, idx int) *string {
		if v := get(idx); v != "" {
			return &v
		}
		return nil
	}
	return func(ctx context.Context, get func(int) string) error {
		in := catalog.SKUInput{
			ProductName:   get(cProduct),
			Brand:         get(cBrand),
			Size:          get(cSize),
			BottleName:    ref(get, cBottle),
			ClosureName:   ref(get, cClosure),
			LabelLocation: ref(get, cLabel),
			FormulaName:   ref(get, cFormula),
		}
		key := skuKey{in.ProductName, in.Brand, in.Size}
		var (
			sku *entities.SKU
			err error
		)
		if id, ok := ids[key]; ok {
			sku, err = im.catalog.Update(ctx, id, in)
		} else {
			sku, err = im.catalog.Create(ctx, in)
		}
		if err != nil {
			return err
		}
		ids[key] = sku.ID
		return nil
	}, nil
}

type header struct {
	raw []string
	idx map[string]int
}

func norm(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\uFEFF") // BOM
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

func newHeader(row []string) header {
	h := header{raw: row, idx: map[string]int{}}
	for i, c := range row {
		if k := norm(c); k != "" {
			if _, dup := h.idx[k]; !dup {
				h.idx[k] = i
			}
		}
	}
	return h
}

// find returns the column of the first alias present, or -1.
func (h header) find(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := h.idx[norm(a)]; ok {
			return i
		}
	}
	return -1
}

func (h header) missing(need ...string) error {
	return apperr.Validation("import", "missing required columns %s; found %v", strings.Join(need, ", "), h.raw)
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cleanNumber drops thousands separators and stray spaces.
func cleanNumber(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, " ", "")
}

// quantity parses a whole, non-negative count. Empty cells return nil so the
// existing value is kept.
func quantity(s string) (*int64, error) {
	s = cleanNumber(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() || d.IsNegative() {
		return nil, apperr.Validation("import", "quantity %q is not a whole non-negative number", s)
	}
	n := d.IntPart()
	return &n, nil
}

func gallons(s string) (*decimal.Decimal, error) {
	s = cleanNumber(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil, apperr.Validation("import", "gallons %q is not a non-negative number", s)
	}
	return &d, nil
}
