package repository

import (
	"context"

	"fertplan/pkg/production"
)

// InventoryResolver joins SKUs to component stock in one round trip. A null
// reference zeroes that field and marks the BOM incomplete; a reference with
// no inventory row only zeroes the field.
type InventoryResolver interface {
	// Resolve share-locks the catalog row when called inside a transaction
	// on postgres.
	Resolve(ctx context.Context, skuID uint) (*production.ResolvedSKU, error)
	ResolveAll(ctx context.Context) ([]production.ResolvedSKU, error)
	ResolveMany(ctx context.Context, skuIDs []uint) ([]production.ResolvedSKU, error)
}
