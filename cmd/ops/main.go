// Command ops runs maintenance jobs against the configured database:
//
//	ops import -file stock.xlsx -target bottles [-sheet Bottles]
//	ops reconcile [-dry-run] [-rules rules.json] [-backfill-gallons 100]
//	ops reset-shipments -yes
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fertplan/config"
	"fertplan/database"
	"fertplan/pkg/catalog"
	catRepoImp "fertplan/pkg/catalog/repositoryImp"
	catSvcImp "fertplan/pkg/catalog/serviceImp"
	"fertplan/pkg/importer"
	invRepoImp "fertplan/pkg/inventory/repositoryImp"
	invSvcImp "fertplan/pkg/inventory/serviceImp"
	prodRepoImp "fertplan/pkg/production/repositoryImp"
	prodSvcImp "fertplan/pkg/production/serviceImp"
	shipRepoImp "fertplan/pkg/shipment/repositoryImp"
	shipSvcImp "fertplan/pkg/shipment/serviceImp"
	"fertplan/pkg/sizes"
)

const usage = `usage: ops <command> [flags]

commands:
  import           load an xlsx sheet into the catalog or an inventory
  reconcile        apply the catalog fix-up rules
  reset-shipments  delete every shipment and restart ids at 1
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var run func(ctx context.Context, cfg config.AppConfig, args []string) error
	switch os.Args[1] {
	case "import":
		run = runImport
	case "reconcile":
		run = runReconcile
	case "reset-shipments":
		run = runResetShipments
	case "-h", "-help", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	cfg := config.Load()
	log.SetLevel(cfg.Level())
	if err := run(context.Background(), cfg, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func open(cfg config.AppConfig) (*gorm.DB, error) {
	return database.NewFactory(cfg)()
}

func runImport(ctx context.Context, cfg config.AppConfig, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "Path to the xlsx workbook")
	sheet := fs.String("sheet", "", "Sheet name (default: first sheet)")
	target := fs.String("target", "", "catalog | bottles | closures | labels | formulas")
	_ = fs.Parse(args)
	if *file == "" || *target == "" {
		fs.Usage()
		return fmt.Errorf("-file and -target are required")
	}

	db, err := open(cfg)
	if err != nil {
		return err
	}
	tx := database.NewTransactor(db)
	invRepo := invRepoImp.New(db)
	im := importer.New(
		invSvcImp.New(invRepo, tx),
		catSvcImp.New(catRepoImp.New(db), invRepo, tx, sizes.Table{Diagnostic: cfg.SizeDiagnostic}),
		tx,
	)
	report, err := im.ImportFile(ctx, *file, *sheet, strings.ToLower(*target))
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runReconcile(ctx context.Context, cfg config.AppConfig, args []string) error {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "Report changes without writing them")
	rulesFile := fs.String("rules", "", "JSON file overriding the default rule tables")
	backfill := fs.String("backfill-gallons", "", "Create missing formulas with this many gallons (test fixtures only)")
	_ = fs.Parse(args)

	rules := catalog.DefaultReconcileRules()
	if *rulesFile != "" {
		raw, err := os.ReadFile(*rulesFile)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &rules); err != nil {
			return fmt.Errorf("parse %s: %w", *rulesFile, err)
		}
	}
	if *backfill != "" {
		g, err := decimal.NewFromString(*backfill)
		if err != nil || !g.IsPositive() {
			return fmt.Errorf("-backfill-gallons must be a positive number, got %q", *backfill)
		}
		log.Warnf("[ops] formula backfill at %s gallons is a test fixture", g)
		rules.FormulaBackfillGallons = &g
	}
	rules.DryRun = *dryRun

	db, err := open(cfg)
	if err != nil {
		return err
	}
	svc := catSvcImp.New(catRepoImp.New(db), invRepoImp.New(db), database.NewTransactor(db), sizes.Table{Diagnostic: cfg.SizeDiagnostic})
	report, err := svc.Reconcile(ctx, rules)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runResetShipments(ctx context.Context, cfg config.AppConfig, args []string) error {
	fs := flag.NewFlagSet("reset-shipments", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Confirm deleting every shipment")
	_ = fs.Parse(args)
	if !*yes {
		return fmt.Errorf("refusing to clear shipments without -yes")
	}

	db, err := open(cfg)
	if err != nil {
		return err
	}
	table := sizes.Table{Diagnostic: cfg.SizeDiagnostic}
	tx := database.NewTransactor(db)
	invRepo := invRepoImp.New(db)
	prod := prodSvcImp.New(prodRepoImp.New(db), table)
	svc := shipSvcImp.New(shipRepoImp.New(db), invRepo, prod, tx, table)
	if err := svc.Reset(ctx); err != nil {
		return err
	}
	fmt.Println("shipments cleared")
	return nil
}

func printJSON(v any) error {
	decimal.MarshalJSONWithoutQuotes = true
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
