package service

import (
	"context"

	"fertplan/pkg/production"
)

type Service interface {
	// ProductInventory lists every SKU ordered by product name, then size
	// ordinal, then id.
	ProductInventory(ctx context.Context) ([]production.ProductFeasibility, error)
	// Product computes max units for one SKU at call time.
	Product(ctx context.Context, skuID uint) (*production.ProductFeasibility, error)
	// Products evaluates several SKUs in one resolver round trip. Unknown
	// ids are absent from the result.
	Products(ctx context.Context, skuIDs []uint) (map[uint]production.ProductFeasibility, error)
}
