package serviceImp

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fertplan/database"
	"fertplan/entities"
	"fertplan/pkg/apperr"
	"fertplan/pkg/feasibility"
	invRepoImp "fertplan/pkg/inventory/repositoryImp"
	prodRepoImp "fertplan/pkg/production/repositoryImp"
	prodSvcImp "fertplan/pkg/production/serviceImp"
	"fertplan/pkg/shipment"
	"fertplan/pkg/shipment/repositoryImp"
	svc "fertplan/pkg/shipment/service"
	"fertplan/pkg/sizes"
	"fertplan/pkg/testing/dbtest"
)

func newPlanner(t *testing.T, opts ...Option) (svc.Service, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t)
	prod := prodSvcImp.New(prodRepoImp.New(db), sizes.Table{})
	return New(repositoryImp.New(db), invRepoImp.New(db), prod, database.NewTransactor(db), sizes.Table{}, opts...), db
}

func draft(t *testing.T, s svc.Service, number string) *entities.Shipment {
	t.Helper()
	sh, err := s.Create(context.Background(), shipment.CreateInput{ShipmentNumber: number, Date: "2026-03-01"})
	require.NoError(t, err)
	return sh
}

func lineQty(t *testing.T, db *gorm.DB, shipmentID, skuID uint) int64 {
	t.Helper()
	var l entities.ShipmentLine
	require.NoError(t, db.Where("shipment_id = ? AND sku_id = ?", shipmentID, skuID).First(&l).Error)
	return l.RequestedQuantity
}

func TestCreate(t *testing.T) {
	s, _ := newPlanner(t)
	ctx := context.Background()

	sh := draft(t, s, "SHP-001")
	assert.Equal(t, entities.StatusDraft, sh.Status)
	assert.NotZero(t, sh.ID)

	_, err := s.Create(ctx, shipment.CreateInput{ShipmentNumber: " SHP-001 ", Date: "2026-03-02"})
	assert.True(t, apperr.Is(err, apperr.KindDuplicateShipmentNumber))

	_, err = s.Create(ctx, shipment.CreateInput{ShipmentNumber: "SHP-002", Date: "03/01/2026"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = s.Create(ctx, shipment.CreateInput{Date: "2026-03-01"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddLineMergeAndShortfall(t *testing.T) {
	s, db := newPlanner(t)
	ctx := context.Background()
	sku := dbtest.CherryTree(t, db)
	sh := draft(t, s, "SHP-001")

	d, err := s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 400})
	require.NoError(t, err)
	assert.Equal(t, int64(400), d.TotalUnits)
	assert.Equal(t, 1, d.TotalLines)

	_, err = s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 101})
	require.Error(t, err)
	ae := apperr.As(err)
	assert.Equal(t, apperr.KindInsufficientInventory, ae.Kind)
	assert.Equal(t, string(feasibility.LimiterLabel), ae.Limiter)
	assert.Equal(t, int64(1), ae.Shortfall)
	assert.Equal(t, int64(400), lineQty(t, db, sh.ID, sku.ID), "rejected merge leaves the line alone")

	d, err = s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 100})
	require.NoError(t, err)
	require.Len(t, d.Lines, 1, "same sku merges into one line")
	assert.Equal(t, int64(500), d.Lines[0].RequestedQuantity)
	assert.Equal(t, int64(500), d.TotalUnits)
}

func TestAddLineMergeEquivalence(t *testing.T) {
	s, db := newPlanner(t)
	ctx := context.Background()
	sku := dbtest.CherryTree(t, db)

	split := draft(t, s, "SPLIT")
	_, err := s.AddLine(ctx, split.ID, shipment.LineInput{SKUID: sku.ID, Qty: 120})
	require.NoError(t, err)
	a, err := s.AddLine(ctx, split.ID, shipment.LineInput{SKUID: sku.ID, Qty: 80})
	require.NoError(t, err)

	whole := draft(t, s, "WHOLE")
	b, err := s.AddLine(ctx, whole.ID, shipment.LineInput{SKUID: sku.ID, Qty: 200})
	require.NoError(t, err)

	assert.Equal(t, b.TotalUnits, a.TotalUnits)
	assert.Equal(t, b.TotalLines, a.TotalLines)
	require.Len(t, a.Lines, 1)
	assert.Equal(t, b.Lines[0].RequestedQuantity, a.Lines[0].RequestedQuantity)

	ra, err := s.Rollup(ctx, split.ID, false)
	require.NoError(t, err)
	rb, err := s.Rollup(ctx, whole.ID, false)
	require.NoError(t, err)
	assert.Equal(t, rb.Formulas, ra.Formulas)
}

func TestAddLineValidation(t *testing.T) {
	s, db := newPlanner(t)
	ctx := context.Background()
	sku := dbtest.CherryTree(t, db)
	sh := draft(t, s, "SHP-001")

	_, err := s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 0})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: -3})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: 999, Qty: 1})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = s.AddLine(ctx, 999, shipment.LineInput{SKUID: sku.ID, Qty: 1})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	incomplete := dbtest.SKU(t, db, entities.SKU{ProductName: "Bare", Size: "8oz"})
	_, err = s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: incomplete.ID, Qty: 1})
	ae := apperr.As(err)
	assert.Equal(t, apperr.KindInsufficientInventory, ae.Kind)
	assert.Equal(t, string(feasibility.LimiterNone), ae.Limiter)
}

func TestSetQtyAndRemoveLine(t *testing.T) {
	s, db := newPlanner(t)
	ctx := context.Background()
	sku := dbtest.CherryTree(t, db)
	sh := draft(t, s, "SHP-001")
	_, err := s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 10})
	require.NoError(t, err)

	d, err := s.SetQty(ctx, sh.ID, sku.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(250), d.TotalUnits)

	_, err = s.SetQty(ctx, sh.ID, sku.ID, 501)
	assert.True(t, apperr.Is(err, apperr.KindInsufficientInventory))
	assert.Equal(t, int64(250), lineQty(t, db, sh.ID, sku.ID))

	_, err = s.SetQty(ctx, sh.ID, sku.ID, 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = s.SetQty(ctx, sh.ID, 999, 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	d, err = s.RemoveLine(ctx, sh.ID, sku.ID)
	require.NoError(t, err)
	assert.Empty(t, d.Lines)
	assert.Equal(t, int64(0), d.TotalUnits)
	assert.Equal(t, 0, d.TotalLines)

	_, err = s.RemoveLine(ctx, sh.ID, sku.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	var n int64
	require.NoError(t, db.Model(&entities.ShipmentFormulaRollup{}).Where("shipment_id = ?", sh.ID).Count(&n).Error)
	assert.Zero(t, n, "rollup follows the line set")
}

func seedGallonSKU(t *testing.T, db *gorm.DB) entities.SKU {
	t.Helper()
	dbtest.Bottle(t, db, "Gallon Jug", 100)
	dbtest.Closure(t, db, "38/400", 100)
	dbtest.Label(t, db, "Cherry-G", 100)
	return dbtest.SKU(t, db, entities.SKU{
		ProductName:   "Cherry Tree",
		Size:          "Gallon",
		BottleName:    dbtest.Ptr("Gallon Jug"),
		ClosureName:   dbtest.Ptr("38/400"),
		LabelLocation: dbtest.Ptr("Cherry-G"),
		FormulaName:   dbtest.Ptr("CHRY-01"),
	})
}

func TestRollupSharedFormula(t *testing.T) {
	s, db := newPlanner(t)
	ctx := context.Background()
	small := dbtest.CherryTree(t, db)
	gallon := seedGallonSKU(t, db)
	sh := draft(t, s, "SHP-001")

	_, err := s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: gallon.ID, Qty: 10})
	require.NoError(t, err)
	d, err := s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: small.ID, Qty: 100})
	require.NoError(t, err)
	require.Len(t, d.Lines, 2)
	assert.Equal(t, "8oz", d.Lines[0].Size, "8oz sorts before Gallon")
	assert.Equal(t, "Gallon", d.Lines[1].Size)

	var rows []entities.ShipmentFormulaRollup
	require.NoError(t, db.Where("shipment_id = ?", sh.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].GallonsRequired.Equal(decimal.RequireFromString("16.25")))

	require.NoError(t, db.Model(&entities.FormulaInventory{}).Where("name = ?", "CHRY-01").Update("gallons_available", 10).Error)

	r, err := s.Rollup(ctx, sh.ID, false)
	require.NoError(t, err)
	require.Len(t, r.Formulas, 1)
	f := r.Formulas[0]
	assert.Equal(t, "CHRY-01", f.Formula)
	assert.True(t, f.GallonsRequired.Equal(decimal.RequireFromString("16.25")))
	assert.True(t, f.GallonsAvailable.Equal(decimal.NewFromInt(10)))
	assert.True(t, f.Shortfall.Equal(decimal.RequireFromString("6.25")))
	assert.True(t, r.TotalGallons.Equal(decimal.RequireFromString("16.25")))
}

func TestRollupStrictMissingFormula(t *testing.T) {
	s, db := newPlanner(t)
	ctx := context.Background()
	sku := dbtest.CherryTree(t, db)
	sh := draft(t, s, "SHP-001")
	_, err := s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 16})
	require.NoError(t, err)
	require.NoError(t, db.Where("name = ?", "CHRY-01").Delete(&entities.FormulaInventory{}).Error)

	_, err = s.Rollup(ctx, sh.ID, true)
	assert.True(t, apperr.Is(err, apperr.KindFormulaMissing))

	r, err := s.Rollup(ctx, sh.ID, false)
	require.NoError(t, err)
	require.Len(t, r.Formulas, 1)
	assert.True(t, r.Formulas[0].Missing)
	assert.True(t, r.Formulas[0].GallonsAvailable.IsZero())
	assert.True(t, r.Formulas[0].Shortfall.Equal(decimal.NewFromInt(1)))

	_, err = s.Rollup(ctx, 999, false)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRollupFollowsCatalogEdits(t *testing.T) {
	s, db := newPlanner(t)
	ctx := context.Background()
	sku := dbtest.CherryTree(t, db)
	sh := draft(t, s, "SHP-001")
	_, err := s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 100})
	require.NoError(t, err)

	stored := func() []entities.ShipmentFormulaRollup {
		var rows []entities.ShipmentFormulaRollup
		require.NoError(t, db.Where("shipment_id = ?", sh.ID).Find(&rows).Error)
		return rows
	}
	require.Len(t, stored(), 1)
	assert.True(t, stored()[0].GallonsRequired.Equal(decimal.RequireFromString("6.25")))

	require.NoError(t, db.Model(&entities.SKU{}).Where("id = ?", sku.ID).Update("size", "16oz").Error)

	r, err := s.Rollup(ctx, sh.ID, false)
	require.NoError(t, err)
	require.Len(t, r.Formulas, 1)
	assert.True(t, r.Formulas[0].GallonsRequired.Equal(decimal.RequireFromString("12.5")), r.Formulas[0].GallonsRequired.String())
	assert.True(t, r.TotalGallons.Equal(decimal.RequireFromString("12.5")))
	rows := stored()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].GallonsRequired.Equal(decimal.RequireFromString("12.5")), "stale rows are rebuilt")

	require.NoError(t, db.Model(&entities.SKU{}).Where("id = ?", sku.ID).Update("formula_name", nil).Error)

	r, err = s.Rollup(ctx, sh.ID, true)
	require.NoError(t, err)
	assert.Empty(t, r.Formulas)
	assert.True(t, r.TotalGallons.IsZero())
	assert.Empty(t, stored())
}

func TestConcurrentAddLineSerializes(t *testing.T) {
	s, db := newPlanner(t)
	ctx := context.Background()
	sku := dbtest.CherryTree(t, db)
	sh := draft(t, s, "SHP-001")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 300})
		}(i)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.Is(err, apperr.KindInsufficientInventory):
			short++
			assert.Equal(t, int64(100), apperr.As(err).Shortfall)
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)

	d, err := s.Get(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), d.TotalUnits)
	assert.Equal(t, int64(300), lineQty(t, db, sh.ID, sku.ID))
}

type recordingReserver struct{ released []string }

func (r *recordingReserver) Reserve(_ context.Context, s *entities.Shipment, lines []shipment.LineView) error {
	r.released = append(r.released, s.ShipmentNumber)
	return nil
}

func TestTransitions(t *testing.T) {
	res := &recordingReserver{}
	s, db := newPlanner(t, WithReserver(res))
	ctx := context.Background()
	sku := dbtest.CherryTree(t, db)
	sh := draft(t, s, "SHP-001")

	_, err := s.Transition(ctx, sh.ID, entities.StatusReleased)
	assert.True(t, apperr.Is(err, apperr.KindIllegalTransition), "draft cannot skip to released")
	got, err := s.Get(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusDraft, got.Status)

	_, err = s.Transition(ctx, sh.ID, "shipped")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	out, err := s.Transition(ctx, sh.ID, entities.StatusPlanned)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusPlanned, out.Status)

	_, err = s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 5})
	require.NoError(t, err, "planned shipments stay mutable")

	_, err = s.Transition(ctx, sh.ID, entities.StatusReleased)
	require.NoError(t, err)
	assert.Equal(t, []string{"SHP-001"}, res.released)

	_, err = s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 5})
	assert.True(t, apperr.Is(err, apperr.KindIllegalTransition))
	_, err = s.RemoveLine(ctx, sh.ID, sku.ID)
	assert.True(t, apperr.Is(err, apperr.KindIllegalTransition))
	assert.Equal(t, int64(5), lineQty(t, db, sh.ID, sku.ID))

	_, err = s.Transition(ctx, sh.ID, entities.StatusDraft)
	assert.True(t, apperr.Is(err, apperr.KindIllegalTransition), "released cannot go back to draft")
	got, err = s.Get(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusReleased, got.Status)

	assert.True(t, apperr.Is(s.Delete(ctx, sh.ID), apperr.KindIllegalTransition))

	_, err = s.Transition(ctx, sh.ID, entities.StatusArchived)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, sh.ID))
}

func TestDeleteLeavesNoOrphans(t *testing.T) {
	s, db := newPlanner(t)
	ctx := context.Background()
	sku := dbtest.CherryTree(t, db)
	keep := draft(t, s, "KEEP")
	gone := draft(t, s, "GONE")
	for _, id := range []uint{keep.ID, gone.ID} {
		_, err := s.AddLine(ctx, id, shipment.LineInput{SKUID: sku.ID, Qty: 10})
		require.NoError(t, err)
	}

	require.NoError(t, s.Delete(ctx, gone.ID))

	count := func(model any, id uint) int64 {
		var n int64
		require.NoError(t, db.Model(model).Where("shipment_id = ?", id).Count(&n).Error)
		return n
	}
	assert.Zero(t, count(&entities.ShipmentLine{}, gone.ID))
	assert.Zero(t, count(&entities.ShipmentFormulaRollup{}, gone.ID))
	assert.Equal(t, int64(1), count(&entities.ShipmentLine{}, keep.ID))
	assert.Equal(t, int64(1), count(&entities.ShipmentFormulaRollup{}, keep.ID))

	_, err := s.Get(ctx, gone.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(s.Delete(ctx, gone.ID), apperr.KindNotFound))

	_, err = s.Transition(ctx, keep.ID, entities.StatusPlanned)
	require.NoError(t, err)
	assert.True(t, apperr.Is(s.Delete(ctx, keep.ID), apperr.KindIllegalTransition))
}

func TestAuditReportsDrift(t *testing.T) {
	s, db := newPlanner(t)
	ctx := context.Background()
	sku := dbtest.CherryTree(t, db)
	sh := draft(t, s, "SHP-001")
	_, err := s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 400})
	require.NoError(t, err)

	r, err := s.Audit(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Checked)
	assert.Empty(t, r.Infeasible)

	require.NoError(t, db.Model(&entities.LabelInventory{}).Where("name = ?", "Cherry-8").Update("warehouse_quantity", 300).Error)

	r, err = s.Audit(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, r.Infeasible, 1)
	l := r.Infeasible[0]
	assert.Equal(t, sku.ID, l.SKUID)
	assert.Equal(t, int64(300), l.MaxUnits)
	assert.Equal(t, feasibility.LimiterLabel, l.Limiter)
	assert.Equal(t, int64(100), l.Shortfall)
	assert.Equal(t, int64(400), lineQty(t, db, sh.ID, sku.ID), "audit never mutates")
}

func TestResetRestartsIDs(t *testing.T) {
	s, db := newPlanner(t)
	ctx := context.Background()
	sku := dbtest.CherryTree(t, db)
	for _, n := range []string{"A", "B", "C"} {
		sh := draft(t, s, n)
		_, err := s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 1})
		require.NoError(t, err)
	}

	require.NoError(t, s.Reset(ctx))
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	sh := draft(t, s, "A")
	assert.Equal(t, uint(1), sh.ID)
	d, err := s.AddLine(ctx, sh.ID, shipment.LineInput{SKUID: sku.ID, Qty: 1})
	require.NoError(t, err)
	assert.Equal(t, uint(1), d.Lines[0].ID)
}
