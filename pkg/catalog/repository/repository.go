package repository

import (
	"context"

	"fertplan/entities"
)

type Repository interface {
	List(ctx context.Context) ([]entities.SKU, error)
	FindByID(ctx context.Context, id uint) (*entities.SKU, error)
	// LockByID reads the SKU under a write lock held until the surrounding
	// transaction ends.
	LockByID(ctx context.Context, id uint) (*entities.SKU, error)
	Create(ctx context.Context, s *entities.SKU) error
	Save(ctx context.Context, s *entities.SKU) error
	Delete(ctx context.Context, id uint) error
	// LineCount counts shipment lines that reference the SKU.
	LineCount(ctx context.Context, id uint) (int64, error)
}
