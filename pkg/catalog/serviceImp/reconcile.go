package serviceImp

import (
	"context"

	"github.com/labstack/gommon/log"

	"fertplan/entities"
	"fertplan/pkg/catalog"
	"fertplan/pkg/inventory"
)

type refKey struct {
	kind inventory.Kind
	name string
}

// Reconcile applies rules to every catalog row inside one transaction. A
// second run over the same data makes no changes.
func (s *catalogSvc) Reconcile(ctx context.Context, rules catalog.ReconcileRules) (*catalog.ReconcileReport, error) {
	report := &catalog.ReconcileReport{DryRun: rules.DryRun, Changes: []catalog.ReconcileChange{}}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		skus, err := s.repo.List(ctx)
		if err != nil {
			return err
		}
		report.Examined = len(skus)

		known := map[refKey]bool{}
		exists := func(kind inventory.Kind, name string) (bool, error) {
			k := refKey{kind, name}
			if v, ok := known[k]; ok {
				return v, nil
			}
			v, err := s.inv.Exists(ctx, kind, name)
			if err != nil {
				return false, err
			}
			known[k] = v
			return v, nil
		}

		if rules.FormulaBackfillGallons != nil {
			for _, sku := range skus {
				if sku.FormulaName == nil {
					continue
				}
				ok, err := exists(inventory.Formulas, *sku.FormulaName)
				if err != nil {
					return err
				}
				if ok {
					continue
				}
				if !rules.DryRun {
					if err := s.inv.UpsertFormula(ctx, *sku.FormulaName, inventory.Patch{GallonsAvailable: rules.FormulaBackfillGallons}); err != nil {
						return err
					}
				}
				known[refKey{inventory.Formulas, *sku.FormulaName}] = true
				report.BackfilledFormulas = append(report.BackfilledFormulas, *sku.FormulaName)
			}
		}

		for i := range skus {
			sku := &skus[i]
			changes, err := reconcileSKU(sku, rules, exists)
			if err != nil {
				return err
			}
			if len(changes) == 0 {
				continue
			}
			report.Changes = append(report.Changes, changes...)
			if rules.DryRun {
				continue
			}
			if err := s.repo.Save(ctx, sku); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infof("[catalog] reconcile examined=%d changes=%d backfilled=%d dry_run=%t",
		report.Examined, len(report.Changes), len(report.BackfilledFormulas), report.DryRun)
	return report, nil
}

func reconcileSKU(sku *entities.SKU, rules catalog.ReconcileRules, exists func(inventory.Kind, string) (bool, error)) ([]catalog.ReconcileChange, error) {
	var changes []catalog.ReconcileChange
	set := func(field, rule string, dst **string, to *string) {
		changes = append(changes, catalog.ReconcileChange{SKUID: sku.ID, Field: field, From: *dst, To: to, Rule: rule})
		*dst = to
	}

	refs := []struct {
		field string
		kind  inventory.Kind
		dst   **string
	}{
		{"bottle_name", inventory.Bottles, &sku.BottleName},
		{"closure_name", inventory.Closures, &sku.ClosureName},
		{"label_location", inventory.Labels, &sku.LabelLocation},
		{"formula_name", inventory.Formulas, &sku.FormulaName},
	}
	for _, ref := range refs {
		if *ref.dst == nil {
			continue
		}
		ok, err := exists(ref.kind, **ref.dst)
		if err != nil {
			return nil, err
		}
		if !ok {
			set(ref.field, catalog.RuleDanglingReference, ref.dst, nil)
		}
	}

	if sku.BottleName == nil {
		if b, ok := rules.BottleForSize[sku.Size]; ok {
			found, err := exists(inventory.Bottles, b)
			if err != nil {
				return nil, err
			}
			if found {
				v := b
				set("bottle_name", catalog.RuleSizeBottle, &sku.BottleName, &v)
			}
		}
	}

	if sku.ClosureName == nil && sku.BottleName != nil {
		if c, ok := rules.ClosureForBottle[*sku.BottleName]; ok {
			found, err := exists(inventory.Closures, c)
			if err != nil {
				return nil, err
			}
			if found {
				v := c
				set("closure_name", catalog.RuleBottleClosure, &sku.ClosureName, &v)
			}
		}
	}
	return changes, nil
}
