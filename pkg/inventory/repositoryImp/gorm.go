package repositoryImp

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fertplan/database"
	"fertplan/entities"
	"fertplan/pkg/apperr"
	"fertplan/pkg/inventory"
	"fertplan/pkg/inventory/repository"
)

type gormRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.Repository { return &gormRepo{db: db} }

func (r *gormRepo) ListStock(ctx context.Context, kind inventory.Kind) ([]entities.ComponentStock, error) {
	var out []entities.ComponentStock
	err := database.Conn(ctx, r.db).Table(kind.Table()).Order("name ASC").Find(&out).Error
	return out, database.Classify("inventory.list", err)
}

func (r *gormRepo) ListFormulas(ctx context.Context) ([]entities.FormulaInventory, error) {
	var out []entities.FormulaInventory
	err := database.Conn(ctx, r.db).Order("name ASC").Find(&out).Error
	return out, database.Classify("inventory.list", err)
}

func (r *gormRepo) FindStock(ctx context.Context, kind inventory.Kind, name string) (*entities.ComponentStock, error) {
	return r.findStock(database.Conn(ctx, r.db), kind, name)
}

func (r *gormRepo) LockStock(ctx context.Context, kind inventory.Kind, name string) (*entities.ComponentStock, error) {
	return r.findStock(database.ForUpdate(database.Conn(ctx, r.db)), kind, name)
}

func (r *gormRepo) findStock(q *gorm.DB, kind inventory.Kind, name string) (*entities.ComponentStock, error) {
	var out entities.ComponentStock
	if err := q.Table(kind.Table()).Where("name = ?", name).First(&out).Error; err != nil {
		return nil, notFound(err, kind, name)
	}
	return &out, nil
}

func (r *gormRepo) FindFormula(ctx context.Context, name string) (*entities.FormulaInventory, error) {
	return r.findFormula(database.Conn(ctx, r.db), name)
}

func (r *gormRepo) LockFormula(ctx context.Context, name string) (*entities.FormulaInventory, error) {
	return r.findFormula(database.ForUpdate(database.Conn(ctx, r.db)), name)
}

func (r *gormRepo) findFormula(q *gorm.DB, name string) (*entities.FormulaInventory, error) {
	var out entities.FormulaInventory
	if err := q.Where("name = ?", name).First(&out).Error; err != nil {
		return nil, notFound(err, inventory.Formulas, name)
	}
	return &out, nil
}

func (r *gormRepo) UpsertStock(ctx context.Context, kind inventory.Kind, name string, p inventory.Patch) error {
	row := entities.ComponentStock{Name: name}
	cols := []string{"updated_at"}
	if p.WarehouseQuantity != nil {
		row.WarehouseQuantity = *p.WarehouseQuantity
		cols = append(cols, "warehouse_quantity")
	}
	if p.SupplierQuantity != nil {
		row.SupplierQuantity = *p.SupplierQuantity
		cols = append(cols, "supplier_quantity")
	}
	err := database.Conn(ctx, r.db).Table(kind.Table()).
		Clauses(onName(cols)).
		Create(&row).Error
	return database.Classify("inventory.upsert", err)
}

func (r *gormRepo) UpsertFormula(ctx context.Context, name string, p inventory.Patch) error {
	row := entities.FormulaInventory{Name: name}
	cols := []string{"updated_at"}
	if p.GallonsAvailable != nil {
		row.GallonsAvailable = *p.GallonsAvailable
		cols = append(cols, "gallons_available")
	}
	if p.GallonsInProduction != nil {
		row.GallonsInProduction = *p.GallonsInProduction
		cols = append(cols, "gallons_in_production")
	}
	err := database.Conn(ctx, r.db).Clauses(onName(cols)).Create(&row).Error
	return database.Classify("inventory.upsert", err)
}

func onName(cols []string) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}
}

func (r *gormRepo) SetWarehouseQuantity(ctx context.Context, kind inventory.Kind, id uint, qty int64) error {
	err := database.Conn(ctx, r.db).Table(kind.Table()).Where("id = ?", id).
		Updates(map[string]any{"warehouse_quantity": qty, "updated_at": time.Now()}).Error
	return database.Classify("inventory.adjust", err)
}

func (r *gormRepo) SetGallonsAvailable(ctx context.Context, id uint, gallons decimal.Decimal) error {
	err := database.Conn(ctx, r.db).Model(&entities.FormulaInventory{}).Where("id = ?", id).
		Updates(map[string]any{"gallons_available": gallons, "updated_at": time.Now()}).Error
	return database.Classify("inventory.adjust", err)
}

func (r *gormRepo) Exists(ctx context.Context, kind inventory.Kind, name string) (bool, error) {
	var n int64
	err := database.Conn(ctx, r.db).Table(kind.Table()).Where("name = ?", name).Count(&n).Error
	return n > 0, database.Classify("inventory.exists", err)
}

func (r *gormRepo) FormulaGallons(ctx context.Context, names []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(names))
	if len(names) == 0 {
		return out, nil
	}
	var rows []entities.FormulaInventory
	if err := database.Conn(ctx, r.db).Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, database.Classify("inventory.formula_gallons", err)
	}
	for _, f := range rows {
		out[f.Name] = f.GallonsAvailable
	}
	return out, nil
}

func notFound(err error, kind inventory.Kind, name string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("inventory.find", "%s %q not found", kind, name)
	}
	return database.Classify("inventory.find", err)
}
