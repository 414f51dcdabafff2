package serviceImp

import (
	"context"
	"strings"

	"github.com/labstack/gommon/log"

	"fertplan/database"
	"fertplan/entities"
	"fertplan/pkg/apperr"
	"fertplan/pkg/catalog"
	"fertplan/pkg/catalog/repository"
	svc "fertplan/pkg/catalog/service"
	"fertplan/pkg/inventory"
	invrepo "fertplan/pkg/inventory/repository"
	"fertplan/pkg/sizes"
)

type catalogSvc struct {
	repo  repository.Repository
	inv   invrepo.Repository
	tx    database.Transactor
	sizes sizes.Table
}

func New(r repository.Repository, inv invrepo.Repository, tx database.Transactor, t sizes.Table) svc.Service {
	return &catalogSvc{repo: r, inv: inv, tx: tx, sizes: t}
}

func (s *catalogSvc) List(ctx context.Context) ([]entities.SKU, error) { return s.repo.List(ctx) }

func (s *catalogSvc) Get(ctx context.Context, id uint) (*entities.SKU, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *catalogSvc) Create(ctx context.Context, in catalog.SKUInput) (*entities.SKU, error) {
	var out *entities.SKU
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sku := &entities.SKU{}
		if err := s.apply(ctx, "catalog.create", sku, in); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, sku); err != nil {
			return err
		}
		out = sku
		return nil
	})
	return out, err
}

func (s *catalogSvc) Update(ctx context.Context, id uint, in catalog.SKUInput) (*entities.SKU, error) {
	var out *entities.SKU
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sku, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, "catalog.update", sku, in); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, sku); err != nil {
			return err
		}
		out = sku
		return nil
	})
	return out, err
}

func (s *catalogSvc) Delete(ctx context.Context, id uint) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// add_line share-locks the row, so no line can appear after the count
		if _, err := s.repo.LockByID(ctx, id); err != nil {
			return err
		}
		n, err := s.repo.LineCount(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.New(apperr.KindInUse, "catalog.delete", "sku %d is on %d shipment line(s)", id, n)
		}
		return s.repo.Delete(ctx, id)
	})
}

// apply validates in and copies it onto sku with references checked.
func (s *catalogSvc) apply(ctx context.Context, op string, sku *entities.SKU, in catalog.SKUInput) error {
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.Size = strings.TrimSpace(in.Size)
	if in.ProductName == "" {
		return apperr.Validation(op, "product_name is required")
	}
	if in.Size == "" {
		return apperr.Validation(op, "size is required")
	}
	if _, err := s.sizes.GallonsPerUnit(in.Size); err != nil {
		return apperr.Wrap(apperr.KindValidation, op, err)
	}

	sku.ProductName = in.ProductName
	sku.Brand = strings.TrimSpace(in.Brand)
	sku.Size = in.Size

	refs := []struct {
		kind inventory.Kind
		in   *string
		dst  **string
	}{
		{inventory.Bottles, in.BottleName, &sku.BottleName},
		{inventory.Closures, in.ClosureName, &sku.ClosureName},
		{inventory.Labels, in.LabelLocation, &sku.LabelLocation},
		{inventory.Formulas, in.FormulaName, &sku.FormulaName},
	}
	for _, ref := range refs {
		v, err := s.checkRef(ctx, ref.kind, ref.in)
		if err != nil {
			return err
		}
		if ref.in != nil && v == nil && strings.TrimSpace(*ref.in) != "" {
			log.Warnf("[catalog] %s: %s %q not in inventory, storing null for %q", op, ref.kind, *ref.in, sku.ProductName)
		}
		*ref.dst = v
	}
	return nil
}

// checkRef returns the trimmed reference if it resolves, nil otherwise.
func (s *catalogSvc) checkRef(ctx context.Context, kind inventory.Kind, name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*name)
	if v == "" {
		return nil, nil
	}
	ok, err := s.inv.Exists(ctx, kind, v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}
