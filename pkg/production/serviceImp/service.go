package serviceImp

import (
	"context"
	"sort"

	"fertplan/pkg/apperr"
	"fertplan/pkg/feasibility"
	"fertplan/pkg/production"
	"fertplan/pkg/production/repository"
	svc "fertplan/pkg/production/service"
	"fertplan/pkg/sizes"
)

type productionSvc struct {
	resolver repository.InventoryResolver
	sizes    sizes.Table
}

func New(r repository.InventoryResolver, t sizes.Table) svc.Service {
	return &productionSvc{resolver: r, sizes: t}
}

func (s *productionSvc) ProductInventory(ctx context.Context) ([]production.ProductFeasibility, error) {
	rows, err := s.resolver.ResolveAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]production.ProductFeasibility, 0, len(rows))
	for _, r := range rows {
		p, err := s.evaluate(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	Sort(out)
	return out, nil
}

func (s *productionSvc) Product(ctx context.Context, skuID uint) (*production.ProductFeasibility, error) {
	r, err := s.resolver.Resolve(ctx, skuID)
	if err != nil {
		return nil, err
	}
	p, err := s.evaluate(*r)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *productionSvc) Products(ctx context.Context, skuIDs []uint) (map[uint]production.ProductFeasibility, error) {
	rows, err := s.resolver.ResolveMany(ctx, skuIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]production.ProductFeasibility, len(rows))
	for _, r := range rows {
		p, err := s.evaluate(r)
		if err != nil {
			return nil, err
		}
		out[r.SKUID] = p
	}
	return out, nil
}

func (s *productionSvc) evaluate(r production.ResolvedSKU) (production.ProductFeasibility, error) {
	g, err := s.sizes.GallonsPerUnit(r.Size)
	if err != nil {
		return production.ProductFeasibility{}, apperr.Wrap(apperr.KindValidation, "production.max_units", err)
	}
	return production.Project(r, g, feasibility.MaxUnits(r.BOM, g)), nil
}

// Sort orders rows by product name, size ordinal, then id.
func Sort(rows []production.ProductFeasibility) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		if oa, ob := sizes.Ordinal(a.Size), sizes.Ordinal(b.Size); oa != ob {
			return oa < ob
		}
		return a.SKUID < b.SKUID
	})
}
