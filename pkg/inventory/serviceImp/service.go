package serviceImp

import (
	"context"
	"strings"

	"github.com/labstack/gommon/log"

	"fertplan/database"
	"fertplan/entities"
	"fertplan/pkg/apperr"
	"fertplan/pkg/inventory"
	"fertplan/pkg/inventory/repository"
	svc "fertplan/pkg/inventory/service"
)

type service struct {
	repo repository.Repository
	tx   database.Transactor
}

func New(r repository.Repository, tx database.Transactor) svc.Service {
	return &service{repo: r, tx: tx}
}

func (s *service) ListStock(ctx context.Context, kind inventory.Kind) ([]entities.ComponentStock, error) {
	if !kind.IsStock() {
		return nil, apperr.Validation("inventory.list", "%s is not a stock inventory", kind)
	}
	return s.repo.ListStock(ctx, kind)
}

func (s *service) ListFormulas(ctx context.Context) ([]entities.FormulaInventory, error) {
	return s.repo.ListFormulas(ctx)
}

func (s *service) Upsert(ctx context.Context, kind inventory.Kind, name string, p inventory.Patch) (any, error) {
	const op = "inventory.upsert"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(op, "name is required")
	}
	if err := p.Validate(kind); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, op, err)
	}

	var out any
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if kind.IsStock() {
			if err := s.repo.UpsertStock(ctx, kind, name, p); err != nil {
				return err
			}
			row, err := s.repo.FindStock(ctx, kind, name)
			out = row
			return err
		}
		if err := s.repo.UpsertFormula(ctx, name, p); err != nil {
			return err
		}
		row, err := s.repo.FindFormula(ctx, name)
		out = row
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Adjust(ctx context.Context, kind inventory.Kind, name string, a inventory.Adjustment) (any, error) {
	const op = "inventory.adjust"
	if kind.IsStock() && !a.Delta.Equal(a.Delta.Truncate(0)) {
		return nil, apperr.Validation(op, "delta for %s must be a whole number, got %s", kind, a.Delta)
	}

	var out any
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if kind.IsStock() {
			row, err := s.repo.LockStock(ctx, kind, name)
			if err != nil {
				return err
			}
			next := row.WarehouseQuantity + a.Delta.IntPart()
			if next < 0 {
				return apperr.Validation(op, "%s %q would go negative (%d on hand, delta %s)", kind, name, row.WarehouseQuantity, a.Delta)
			}
			if err := s.repo.SetWarehouseQuantity(ctx, kind, row.ID, next); err != nil {
				return err
			}
			row.WarehouseQuantity = next
			out = row
			return nil
		}
		row, err := s.repo.LockFormula(ctx, name)
		if err != nil {
			return err
		}
		next := row.GallonsAvailable.Add(a.Delta)
		if next.IsNegative() {
			return apperr.Validation(op, "formula %q would go negative (%s gal on hand, delta %s)", name, row.GallonsAvailable, a.Delta)
		}
		if err := s.repo.SetGallonsAvailable(ctx, row.ID, next); err != nil {
			return err
		}
		row.GallonsAvailable = next
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infof("[inventory] adjusted %s %q by %s", kind, name, a.Delta)
	return out, nil
}
