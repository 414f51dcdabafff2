// Package dbtest provides an ephemeral SQLite store and fixture helpers.
package dbtest

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fertplan/database"
	"fertplan/entities"
)

// New opens a migrated in-memory store that lives as long as the test.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", 1)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Factory adapts New to database.Factory.
func Factory(t testing.TB) database.Factory {
	return func() (*gorm.DB, error) { return New(t), nil }
}

func Ptr[T any](v T) *T { return &v }

func Bottle(t testing.TB, db *gorm.DB, name string, qty int64) {
	t.Helper()
	must(t, db.Create(&entities.BottleInventory{ComponentStock: entities.ComponentStock{Name: name, WarehouseQuantity: qty}}).Error)
}

func Closure(t testing.TB, db *gorm.DB, name string, qty int64) {
	t.Helper()
	must(t, db.Create(&entities.ClosureInventory{ComponentStock: entities.ComponentStock{Name: name, WarehouseQuantity: qty}}).Error)
}

func Label(t testing.TB, db *gorm.DB, name string, qty int64) {
	t.Helper()
	must(t, db.Create(&entities.LabelInventory{ComponentStock: entities.ComponentStock{Name: name, WarehouseQuantity: qty}}).Error)
}

func Formula(t testing.TB, db *gorm.DB, name, gallons string) {
	t.Helper()
	must(t, db.Create(&entities.FormulaInventory{Name: name, GallonsAvailable: decimal.RequireFromString(gallons)}).Error)
}

func SKU(t testing.TB, db *gorm.DB, s entities.SKU) entities.SKU {
	t.Helper()
	must(t, db.Create(&s).Error)
	return s
}

// CherryTree seeds the reference scenario: bottle 1000, closure 800,
// label 500, 40 gallons of CHRY-01, and an 8oz SKU wired to all four.
func CherryTree(t testing.TB, db *gorm.DB) entities.SKU {
	t.Helper()
	Bottle(t, db, "8 oz Standard", 1000)
	Closure(t, db, "24/410", 800)
	Label(t, db, "Cherry-8", 500)
	Formula(t, db, "CHRY-01", "40")
	return SKU(t, db, entities.SKU{
		ProductName:   "Cherry Tree",
		Brand:         "Grow Co",
		Size:          "8oz",
		BottleName:    Ptr("8 oz Standard"),
		ClosureName:   Ptr("24/410"),
		LabelLocation: Ptr("Cherry-8"),
		FormulaName:   Ptr("CHRY-01"),
	})
}

func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}
