package router

import (
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fertplan/config"
	"fertplan/database"
	"fertplan/pkg/sizes"

	catalogCtrlImp "fertplan/pkg/catalog/controllerImp"
	catalogRepoImp "fertplan/pkg/catalog/repositoryImp"
	catalogSvcImp "fertplan/pkg/catalog/serviceImp"

	invCtrlImp "fertplan/pkg/inventory/controllerImp"
	invRepoImp "fertplan/pkg/inventory/repositoryImp"
	invSvcImp "fertplan/pkg/inventory/serviceImp"

	prodCtrlImp "fertplan/pkg/production/controllerImp"
	prodRepoImp "fertplan/pkg/production/repositoryImp"
	prodSvcImp "fertplan/pkg/production/serviceImp"

	shipCtrlImp "fertplan/pkg/shipment/controllerImp"
	shipRepoImp "fertplan/pkg/shipment/repositoryImp"
	shipSvcImp "fertplan/pkg/shipment/serviceImp"

	healthCtrlImp "fertplan/pkg/health/controllerImp"
)

// NewServer wires repositories, services and controllers over db and
// returns a ready echo instance.
func NewServer(cfg config.AppConfig, db *gorm.DB, opts ...shipSvcImp.Option) *echo.Echo {
	// gallons go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	tx := database.NewTransactor(db)
	table := sizes.Table{Diagnostic: cfg.SizeDiagnostic}

	invRepo := invRepoImp.New(db)
	invSvc := invSvcImp.New(invRepo, tx)

	catSvc := catalogSvcImp.New(catalogRepoImp.New(db), invRepo, tx, table)

	prodSvc := prodSvcImp.New(prodRepoImp.New(db), table)

	shipSvc := shipSvcImp.New(shipRepoImp.New(db), invRepo, prodSvc, tx, table, opts...)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(cfg.Level())

	return New(e, Routes(Controllers{
		Catalog:    catalogCtrlImp.New(catSvc),
		Inventory:  invCtrlImp.New(invSvc),
		Production: prodCtrlImp.New(prodSvc),
		Shipment:   shipCtrlImp.New(shipSvc, cfg.FormulaStrict),
		Health:     healthCtrlImp.NewHealthCtrl(db),
	}))
}
