package serviceImp

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fertplan/database"
	"fertplan/entities"
	"fertplan/pkg/apperr"
	"fertplan/pkg/inventory"
	"fertplan/pkg/inventory/repositoryImp"
	"fertplan/pkg/testing/dbtest"
)

func newService(t *testing.T) (*service, context.Context) {
	db := dbtest.New(t)
	return New(repositoryImp.New(db), database.NewTransactor(db)).(*service), context.Background()
}

func TestUpsertInsertsThenPreservesOmittedFields(t *testing.T) {
	s, ctx := newService(t)

	out, err := s.Upsert(ctx, inventory.Bottles, "8 oz Standard", inventory.Patch{
		WarehouseQuantity: dbtest.Ptr(int64(1000)),
		SupplierQuantity:  dbtest.Ptr(int64(250)),
	})
	require.NoError(t, err)
	row := out.(*entities.ComponentStock)
	assert.EqualValues(t, 1000, row.WarehouseQuantity)
	assert.EqualValues(t, 250, row.SupplierQuantity)

	out, err = s.Upsert(ctx, inventory.Bottles, "8 oz Standard", inventory.Patch{
		WarehouseQuantity: dbtest.Ptr(int64(900)),
	})
	require.NoError(t, err)
	row = out.(*entities.ComponentStock)
	assert.EqualValues(t, 900, row.WarehouseQuantity)
	assert.EqualValues(t, 250, row.SupplierQuantity, "omitted field must be preserved")

	list, err := s.ListStock(ctx, inventory.Bottles)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpsertFormula(t *testing.T) {
	s, ctx := newService(t)

	g := decimal.RequireFromString("40.5")
	_, err := s.Upsert(ctx, inventory.Formulas, "CHRY-01", inventory.Patch{GallonsAvailable: &g})
	require.NoError(t, err)

	inProd := decimal.NewFromInt(12)
	out, err := s.Upsert(ctx, inventory.Formulas, "CHRY-01", inventory.Patch{GallonsInProduction: &inProd})
	require.NoError(t, err)
	row := out.(*entities.FormulaInventory)
	assert.True(t, row.GallonsAvailable.Equal(g), "got %s", row.GallonsAvailable)
	assert.True(t, row.GallonsInProduction.Equal(inProd))
}

func TestUpsertValidation(t *testing.T) {
	s, ctx := newService(t)

	_, err := s.Upsert(ctx, inventory.Labels, "", inventory.Patch{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.Upsert(ctx, inventory.Labels, "Cherry-8", inventory.Patch{WarehouseQuantity: dbtest.Ptr(int64(-1))})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	g := decimal.NewFromInt(1)
	_, err = s.Upsert(ctx, inventory.Closures, "24/410", inventory.Patch{GallonsAvailable: &g})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAdjust(t *testing.T) {
	s, ctx := newService(t)
	_, err := s.Upsert(ctx, inventory.Closures, "24/410", inventory.Patch{WarehouseQuantity: dbtest.Ptr(int64(800))})
	require.NoError(t, err)

	out, err := s.Adjust(ctx, inventory.Closures, "24/410", inventory.Adjustment{Delta: decimal.NewFromInt(-300)})
	require.NoError(t, err)
	assert.EqualValues(t, 500, out.(*entities.ComponentStock).WarehouseQuantity)

	_, err = s.Adjust(ctx, inventory.Closures, "24/410", inventory.Adjustment{Delta: decimal.NewFromInt(-501)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.Adjust(ctx, inventory.Closures, "24/410", inventory.Adjustment{Delta: decimal.RequireFromString("1.5")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.Adjust(ctx, inventory.Closures, "missing", inventory.Adjustment{Delta: decimal.NewFromInt(1)})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAdjustFormula(t *testing.T) {
	s, ctx := newService(t)
	g := decimal.NewFromInt(10)
	_, err := s.Upsert(ctx, inventory.Formulas, "CHRY-01", inventory.Patch{GallonsAvailable: &g})
	require.NoError(t, err)

	out, err := s.Adjust(ctx, inventory.Formulas, "CHRY-01", inventory.Adjustment{Delta: decimal.RequireFromString("-2.25")})
	require.NoError(t, err)
	assert.True(t, out.(*entities.FormulaInventory).GallonsAvailable.Equal(decimal.RequireFromString("7.75")))
}
