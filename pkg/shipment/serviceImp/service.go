package serviceImp

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"fertplan/database"
	"fertplan/entities"
	"fertplan/pkg/apperr"
	"fertplan/pkg/feasibility"
	invrepo "fertplan/pkg/inventory/repository"
	prodsvc "fertplan/pkg/production/service"
	"fertplan/pkg/shipment"
	"fertplan/pkg/shipment/repository"
	svc "fertplan/pkg/shipment/service"
	"fertplan/pkg/sizes"
)

type planner struct {
	repo       repository.Repository
	inv        invrepo.Repository
	production prodsvc.Service
	tx         database.Transactor
	sizes      sizes.Table
	reserver   svc.Reserver
}

type Option func(*planner)

// WithReserver replaces the no-op release hook.
func WithReserver(r svc.Reserver) Option {
	return func(p *planner) { p.reserver = r }
}

func New(r repository.Repository, inv invrepo.Repository, production prodsvc.Service, tx database.Transactor, t sizes.Table, opts ...Option) svc.Service {
	p := &planner{repo: r, inv: inv, production: production, tx: tx, sizes: t, reserver: svc.NopReserver{}}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *planner) Create(ctx context.Context, in shipment.CreateInput) (*entities.Shipment, error) {
	const op = "shipment.create"
	number := strings.TrimSpace(in.ShipmentNumber)
	if number == "" {
		return nil, apperr.Validation(op, "shipment_number is required")
	}
	date := strings.TrimSpace(in.Date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperr.Validation(op, "date must be YYYY-MM-DD, got %q", in.Date)
	}

	s := &entities.Shipment{ShipmentNumber: number, Date: date, Status: entities.StatusDraft}
	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		taken, err := p.repo.NumberExists(ctx, number)
		if err != nil {
			return err
		}
		if taken {
			return apperr.New(apperr.KindDuplicateShipmentNumber, op, "shipment number %q already exists", number)
		}
		return p.repo.Create(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	log.Infof("[shipment] created %d (%s) for %s", s.ID, s.ShipmentNumber, s.Date)
	return s, nil
}

func (p *planner) List(ctx context.Context) ([]entities.Shipment, error) { return p.repo.List(ctx) }

func (p *planner) Get(ctx context.Context, id uint) (*shipment.Detail, error) {
	s, err := p.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.detail(ctx, s)
}

func (p *planner) detail(ctx context.Context, s *entities.Shipment) (*shipment.Detail, error) {
	lines, err := p.repo.Lines(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	return &shipment.Detail{Shipment: *s, Lines: lines}, nil
}

func (p *planner) Delete(ctx context.Context, id uint) error {
	return p.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := p.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if !shipment.Deletable(s.Status) {
			return apperr.IllegalTransition("shipment.delete", "shipment %d is %s; only draft or archived shipments can be deleted", id, s.Status)
		}
		if err := p.repo.Delete(ctx, id); err != nil {
			return err
		}
		log.Infof("[shipment] deleted %d (%s)", id, s.ShipmentNumber)
		return nil
	})
}

func (p *planner) AddLine(ctx context.Context, id uint, in shipment.LineInput) (*shipment.Detail, error) {
	const op = "shipment.add_line"
	if in.SKUID == 0 {
		return nil, apperr.Validation(op, "sku_id is required")
	}
	if in.Qty <= 0 {
		return nil, apperr.Validation(op, "qty must be positive, got %d", in.Qty)
	}
	return p.mutate(ctx, op, id, func(ctx context.Context, s *entities.Shipment) error {
		line, err := p.repo.FindLine(ctx, id, in.SKUID)
		if apperr.Is(err, apperr.KindNotFound) {
			line, err = &entities.ShipmentLine{ShipmentID: id, SKUID: in.SKUID}, nil
		}
		if err != nil {
			return err
		}
		merged := line.RequestedQuantity + in.Qty
		if err := p.checkFeasible(ctx, op, in.SKUID, merged); err != nil {
			return err
		}
		line.RequestedQuantity = merged
		return p.repo.SaveLine(ctx, line)
	})
}

func (p *planner) SetQty(ctx context.Context, id, skuID uint, qty int64) (*shipment.Detail, error) {
	const op = "shipment.set_qty"
	if qty <= 0 {
		return nil, apperr.Validation(op, "qty must be positive, got %d", qty)
	}
	return p.mutate(ctx, op, id, func(ctx context.Context, s *entities.Shipment) error {
		line, err := p.repo.FindLine(ctx, id, skuID)
		if err != nil {
			return err
		}
		if err := p.checkFeasible(ctx, op, skuID, qty); err != nil {
			return err
		}
		line.RequestedQuantity = qty
		return p.repo.SaveLine(ctx, line)
	})
}

func (p *planner) RemoveLine(ctx context.Context, id, skuID uint) (*shipment.Detail, error) {
	return p.mutate(ctx, "shipment.remove_line", id, func(ctx context.Context, s *entities.Shipment) error {
		return p.repo.DeleteLine(ctx, id, skuID)
	})
}

// mutate locks a mutable shipment, applies fn, then rebuilds the rollup and
// totals in the same transaction.
func (p *planner) mutate(ctx context.Context, op string, id uint, fn func(context.Context, *entities.Shipment) error) (*shipment.Detail, error) {
	var out *shipment.Detail
	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := p.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if !s.Status.Mutable() {
			return apperr.IllegalTransition(op, "shipment %d is %s; lines can only change while draft or planned", id, s.Status)
		}
		if err := fn(ctx, s); err != nil {
			return err
		}
		lines, err := p.refresh(ctx, s)
		if err != nil {
			return err
		}
		out = &shipment.Detail{Shipment: *s, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *planner) checkFeasible(ctx context.Context, op string, skuID uint, qty int64) error {
	pf, err := p.production.Product(ctx, skuID)
	if err != nil {
		return err
	}
	if ok, short := feasibility.Check(qty, feasibility.Result{Units: pf.MaxUnits, Limiter: pf.Limiter}); !ok {
		return apperr.Insufficient(op, string(pf.Limiter), short)
	}
	return nil
}

// refresh rebuilds the formula rollup and the derived totals, updating s.
func (p *planner) refresh(ctx context.Context, s *entities.Shipment) ([]shipment.LineView, error) {
	lines, err := p.repo.Lines(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	required, err := p.required(lines)
	if err != nil {
		return nil, err
	}
	if err := p.repo.ReplaceRollup(ctx, s.ID, required); err != nil {
		return nil, err
	}
	var units int64
	for _, l := range lines {
		units += l.RequestedQuantity
	}
	if err := p.repo.UpdateTotals(ctx, s.ID, units, len(lines)); err != nil {
		return nil, err
	}
	s.TotalUnits, s.TotalLines = units, len(lines)
	return lines, nil
}

func (p *planner) required(lines []shipment.LineView) (map[string]decimal.Decimal, error) {
	demands := make([]feasibility.LineDemand, 0, len(lines))
	for _, l := range lines {
		demands = append(demands, l.Demand())
	}
	out, err := feasibility.Rollup(demands, p.sizes.GallonsPerUnit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "shipment.rollup", err)
	}
	return out, nil
}

func (p *planner) Transition(ctx context.Context, id uint, to entities.ShipmentStatus) (*entities.Shipment, error) {
	const op = "shipment.transition"
	if !to.Valid() {
		return nil, apperr.Validation(op, "unknown status %q", to)
	}
	var out *entities.Shipment
	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := p.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		from := s.Status
		if !shipment.CanTransition(from, to) {
			return apperr.IllegalTransition(op, "shipment %d cannot move from %s to %s", id, from, to)
		}
		if to == entities.StatusReleased {
			lines, err := p.repo.Lines(ctx, id)
			if err != nil {
				return err
			}
			if err := p.reserver.Reserve(ctx, s, lines); err != nil {
				return err
			}
		}
		if err := p.repo.UpdateStatus(ctx, id, to); err != nil {
			return err
		}
		s.Status = to
		out = s
		log.Infof("[shipment] %d (%s) %s -> %s", id, s.ShipmentNumber, from, to)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Rollup recomputes demand from the current lines, so catalog edits made
// after a line was accepted show up. Stored rows that disagree are rebuilt.
func (p *planner) Rollup(ctx context.Context, id uint, strict bool) (*shipment.RollupReport, error) {
	if _, err := p.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	lines, err := p.repo.Lines(ctx, id)
	if err != nil {
		return nil, err
	}
	required, err := p.required(lines)
	if err != nil {
		return nil, err
	}
	if err := p.syncRollup(ctx, id, required); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(required))
	total := decimal.Zero
	for f, g := range required {
		names = append(names, f)
		total = total.Add(g)
	}
	available, err := p.inv.FormulaGallons(ctx, names)
	if err != nil {
		return nil, err
	}
	formulas, err := feasibility.Compare(required, available, strict)
	if err != nil {
		return nil, err
	}
	return &shipment.RollupReport{ShipmentID: id, Strict: strict, Formulas: formulas, TotalGallons: total}, nil
}

func (p *planner) syncRollup(ctx context.Context, id uint, required map[string]decimal.Decimal) error {
	stored, err := p.repo.Rollups(ctx, id)
	if err != nil {
		return err
	}
	if sameRollup(stored, required) {
		return nil
	}
	return p.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := p.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := p.refresh(ctx, s); err != nil {
			return err
		}
		log.Infof("[shipment] %d rollup was stale after a catalog change, rebuilt", id)
		return nil
	})
}

func sameRollup(stored []entities.ShipmentFormulaRollup, required map[string]decimal.Decimal) bool {
	if len(stored) != len(required) {
		return false
	}
	for _, r := range stored {
		g, ok := required[r.FormulaName]
		if !ok || !g.Equal(r.GallonsRequired) {
			return false
		}
	}
	return true
}

func (p *planner) Audit(ctx context.Context, id uint) (*shipment.AuditReport, error) {
	if _, err := p.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	lines, err := p.repo.Lines(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.SKUID)
	}
	products, err := p.production.Products(ctx, ids)
	if err != nil {
		return nil, err
	}

	report := &shipment.AuditReport{ShipmentID: id, Checked: len(lines), Infeasible: []shipment.AuditLine{}}
	for _, l := range lines {
		// a SKU removed from the catalog can produce nothing
		r := feasibility.Result{Units: 0, Limiter: feasibility.LimiterNone}
		if pf, ok := products[l.SKUID]; ok {
			r = feasibility.Result{Units: pf.MaxUnits, Limiter: pf.Limiter}
		}
		ok, short := feasibility.Check(l.RequestedQuantity, r)
		if ok {
			continue
		}
		report.Infeasible = append(report.Infeasible, shipment.AuditLine{
			SKUID:             l.SKUID,
			ProductName:       l.ProductName,
			Size:              l.Size,
			RequestedQuantity: l.RequestedQuantity,
			MaxUnits:          r.Units,
			Limiter:           r.Limiter,
			Shortfall:         short,
		})
	}
	if n := len(report.Infeasible); n > 0 {
		log.Warnf("[shipment] audit %d: %d of %d lines no longer feasible", id, n, len(lines))
	}
	return report, nil
}

func (p *planner) Reset(ctx context.Context) error {
	if err := p.repo.Reset(ctx); err != nil {
		return err
	}
	log.Warnf("[shipment] all shipments cleared, ids restart at 1")
	return nil
}
