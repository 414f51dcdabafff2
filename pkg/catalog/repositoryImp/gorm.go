package repositoryImp

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fertplan/database"
	"fertplan/entities"
	"fertplan/pkg/apperr"
	"fertplan/pkg/catalog/repository"
)

type catalogRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.Repository { return &catalogRepo{db} }

func (r *catalogRepo) List(ctx context.Context) ([]entities.SKU, error) {
	var out []entities.SKU
	err := database.Conn(ctx, r.db).Order("product_name ASC, id ASC").Find(&out).Error
	return out, database.Classify("catalog.list", err)
}

func (r *catalogRepo) FindByID(ctx context.Context, id uint) (*entities.SKU, error) {
	return r.find(database.Conn(ctx, r.db), id)
}

func (r *catalogRepo) LockByID(ctx context.Context, id uint) (*entities.SKU, error) {
	q := database.Conn(ctx, r.db)
	if q.Dialector.Name() != "postgres" {
		res := q.Model(&entities.SKU{}).Where("id = ?", id).UpdateColumn("updated_at", time.Now())
		if res.Error != nil {
			return nil, database.Classify("catalog.lock", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.NotFound("catalog.lock", "sku %d not found", id)
		}
	}
	return r.find(database.ForUpdate(q), id)
}

func (r *catalogRepo) find(q *gorm.DB, id uint) (*entities.SKU, error) {
	var s entities.SKU
	if err := q.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("catalog.get", "sku %d not found", id)
		}
		return nil, database.Classify("catalog.get", err)
	}
	return &s, nil
}

func (r *catalogRepo) Create(ctx context.Context, s *entities.SKU) error {
	return database.Classify("catalog.create", database.Conn(ctx, r.db).Create(s).Error)
}

func (r *catalogRepo) Save(ctx context.Context, s *entities.SKU) error {
	return database.Classify("catalog.save", database.Conn(ctx, r.db).Save(s).Error)
}

func (r *catalogRepo) Delete(ctx context.Context, id uint) error {
	res := database.Conn(ctx, r.db).Delete(&entities.SKU{}, id)
	if res.Error != nil {
		return database.Classify("catalog.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("catalog.delete", "sku %d not found", id)
	}
	return nil
}

func (r *catalogRepo) LineCount(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&entities.ShipmentLine{}).Where("sku_id = ?", id).Count(&n).Error
	return n, database.Classify("catalog.line_count", err)
}
