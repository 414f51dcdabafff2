package repositoryImp

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fertplan/database"
	"fertplan/entities"
	"fertplan/pkg/apperr"
	"fertplan/pkg/shipment"
	"fertplan/pkg/shipment/repository"
)

type shipmentRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.Repository { return &shipmentRepo{db: db} }

func (r *shipmentRepo) Create(ctx context.Context, s *entities.Shipment) error {
	err := database.Conn(ctx, r.db).Create(s).Error
	if database.IsUniqueViolation(err) {
		return apperr.New(apperr.KindDuplicateShipmentNumber, "shipment.create", "shipment number %q already exists", s.ShipmentNumber)
	}
	return database.Classify("shipment.create", err)
}

func (r *shipmentRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&entities.Shipment{}).Where("shipment_number = ?", number).Count(&n).Error
	return n > 0, database.Classify("shipment.number_exists", err)
}

func (r *shipmentRepo) List(ctx context.Context) ([]entities.Shipment, error) {
	var out []entities.Shipment
	err := database.Conn(ctx, r.db).Order("date ASC, id ASC").Find(&out).Error
	return out, database.Classify("shipment.list", err)
}

func (r *shipmentRepo) FindByID(ctx context.Context, id uint) (*entities.Shipment, error) {
	return r.find(database.Conn(ctx, r.db), id)
}

func (r *shipmentRepo) LockByID(ctx context.Context, id uint) (*entities.Shipment, error) {
	q := database.Conn(ctx, r.db)
	if q.Dialector.Name() != "postgres" {
		// a write takes SQLite's database lock for the rest of the transaction
		res := q.Model(&entities.Shipment{}).Where("id = ?", id).UpdateColumn("updated_at", time.Now())
		if res.Error != nil {
			return nil, database.Classify("shipment.lock", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.NotFound("shipment.lock", "shipment %d not found", id)
		}
	}
	return r.find(database.ForUpdate(q), id)
}

func (r *shipmentRepo) find(q *gorm.DB, id uint) (*entities.Shipment, error) {
	var s entities.Shipment
	if err := q.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("shipment.get", "shipment %d not found", id)
		}
		return nil, database.Classify("shipment.get", err)
	}
	return &s, nil
}

func (r *shipmentRepo) UpdateStatus(ctx context.Context, id uint, status entities.ShipmentStatus) error {
	err := database.Conn(ctx, r.db).Model(&entities.Shipment{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
	return database.Classify("shipment.update_status", err)
}

func (r *shipmentRepo) UpdateTotals(ctx context.Context, id uint, units int64, lines int) error {
	err := database.Conn(ctx, r.db).Model(&entities.Shipment{}).Where("id = ?", id).
		Updates(map[string]any{"total_units": units, "total_lines": lines, "updated_at": time.Now()}).Error
	return database.Classify("shipment.update_totals", err)
}

func (r *shipmentRepo) Delete(ctx context.Context, id uint) error {
	q := database.Conn(ctx, r.db)
	if err := q.Where("shipment_id = ?", id).Delete(&entities.ShipmentFormulaRollup{}).Error; err != nil {
		return database.Classify("shipment.delete", err)
	}
	if err := q.Where("shipment_id = ?", id).Delete(&entities.ShipmentLine{}).Error; err != nil {
		return database.Classify("shipment.delete", err)
	}
	res := q.Delete(&entities.Shipment{}, id)
	if res.Error != nil {
		return database.Classify("shipment.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("shipment.delete", "shipment %d not found", id)
	}
	return nil
}

const linesSQL = `
SELECT sl.id, sl.shipment_id, sl.sku_id, sl.requested_quantity,
       COALESCE(c.product_name, '') AS product_name,
       COALESCE(c.brand, '') AS brand,
       COALESCE(c.size, '') AS size,
       c.formula_name
FROM shipment_line sl
LEFT JOIN catalog c ON c.id = sl.sku_id
WHERE sl.shipment_id = ?`

func (r *shipmentRepo) Lines(ctx context.Context, shipmentID uint) ([]shipment.LineView, error) {
	out := []shipment.LineView{}
	if err := database.Conn(ctx, r.db).Raw(linesSQL, shipmentID).Scan(&out).Error; err != nil {
		return nil, database.Classify("shipment.lines", err)
	}
	shipment.SortLines(out)
	return out, nil
}

func (r *shipmentRepo) FindLine(ctx context.Context, shipmentID, skuID uint) (*entities.ShipmentLine, error) {
	var l entities.ShipmentLine
	err := database.Conn(ctx, r.db).Where("shipment_id = ? AND sku_id = ?", shipmentID, skuID).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("shipment.line", "shipment %d has no line for sku %d", shipmentID, skuID)
		}
		return nil, database.Classify("shipment.line", err)
	}
	return &l, nil
}

func (r *shipmentRepo) SaveLine(ctx context.Context, l *entities.ShipmentLine) error {
	return database.Classify("shipment.save_line", database.Conn(ctx, r.db).Save(l).Error)
}

func (r *shipmentRepo) DeleteLine(ctx context.Context, shipmentID, skuID uint) error {
	res := database.Conn(ctx, r.db).Where("shipment_id = ? AND sku_id = ?", shipmentID, skuID).Delete(&entities.ShipmentLine{})
	if res.Error != nil {
		return database.Classify("shipment.delete_line", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("shipment.delete_line", "shipment %d has no line for sku %d", shipmentID, skuID)
	}
	return nil
}

func (r *shipmentRepo) ReplaceRollup(ctx context.Context, shipmentID uint, gallons map[string]decimal.Decimal) error {
	q := database.Conn(ctx, r.db)
	if err := q.Where("shipment_id = ?", shipmentID).Delete(&entities.ShipmentFormulaRollup{}).Error; err != nil {
		return database.Classify("shipment.rollup", err)
	}
	if len(gallons) == 0 {
		return nil
	}
	names := make([]string, 0, len(gallons))
	for f := range gallons {
		names = append(names, f)
	}
	sort.Strings(names)
	rows := make([]entities.ShipmentFormulaRollup, 0, len(names))
	for _, f := range names {
		rows = append(rows, entities.ShipmentFormulaRollup{ShipmentID: shipmentID, FormulaName: f, GallonsRequired: gallons[f]})
	}
	return database.Classify("shipment.rollup", q.Create(&rows).Error)
}

func (r *shipmentRepo) Rollups(ctx context.Context, shipmentID uint) ([]entities.ShipmentFormulaRollup, error) {
	var out []entities.ShipmentFormulaRollup
	err := database.Conn(ctx, r.db).Where("shipment_id = ?", shipmentID).Order("formula_name ASC").Find(&out).Error
	return out, database.Classify("shipment.rollups", err)
}

func (r *shipmentRepo) Reset(ctx context.Context) error {
	return database.ClearTables(ctx, r.db,
		entities.ShipmentFormulaRollup{}.TableName(),
		entities.ShipmentLine{}.TableName(),
		entities.Shipment{}.TableName(),
	)
}
