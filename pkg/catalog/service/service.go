package service

import (
	"context"

	"fertplan/entities"
	"fertplan/pkg/catalog"
)

type Service interface {
	List(ctx context.Context) ([]entities.SKU, error)
	Get(ctx context.Context, id uint) (*entities.SKU, error)
	// Create and Update null out references that do not resolve instead of
	// rejecting the row.
	Create(ctx context.Context, in catalog.SKUInput) (*entities.SKU, error)
	Update(ctx context.Context, id uint, in catalog.SKUInput) (*entities.SKU, error)
	Delete(ctx context.Context, id uint) error
	Reconcile(ctx context.Context, rules catalog.ReconcileRules) (*catalog.ReconcileReport, error)
}
