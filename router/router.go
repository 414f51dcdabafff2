package router

import (
	"github.com/labstack/echo/v4"

	"fertplan/pkg/middleware"
)

// Route is one row of the dispatch table. Paths use literal segments and
// :name parameters; controllers extract and type the parameters.
type Route struct {
	Method  string
	Path    string
	Handler echo.HandlerFunc
}

type Controllers struct {
	Catalog interface {
		List(echo.Context) error
		Get(echo.Context) error
		Create(echo.Context) error
		Update(echo.Context) error
		Delete(echo.Context) error
		Reconcile(echo.Context) error
	}
	Inventory interface {
		List(echo.Context) error
		Upsert(echo.Context) error
		Adjust(echo.Context) error
	}
	Production interface {
		Inventory(echo.Context) error
		Product(echo.Context) error
	}
	Shipment interface {
		List(echo.Context) error
		Create(echo.Context) error
		Get(echo.Context) error
		Delete(echo.Context) error
		AddLine(echo.Context) error
		SetQty(echo.Context) error
		RemoveLine(echo.Context) error
		Transition(echo.Context) error
		Formulas(echo.Context) error
		Audit(echo.Context) error
	}
	Health interface{ Health(echo.Context) error }
}

// Routes is the full HTTP surface, in registration order.
func Routes(c Controllers) []Route {
	return []Route{
		{echo.GET, "/health", c.Health.Health},

		{echo.GET, "/production/products/inventory", c.Production.Inventory},
		{echo.GET, "/production/products/:sku_id", c.Production.Product},

		{echo.GET, "/shipments", c.Shipment.List},
		{echo.POST, "/shipments", c.Shipment.Create},
		{echo.GET, "/shipments/:id", c.Shipment.Get},
		{echo.DELETE, "/shipments/:id", c.Shipment.Delete},
		{echo.POST, "/shipments/:id/transition", c.Shipment.Transition},
		{echo.POST, "/shipments/:id/lines", c.Shipment.AddLine},
		{echo.PATCH, "/shipments/:id/lines/:sku_id", c.Shipment.SetQty},
		{echo.DELETE, "/shipments/:id/lines/:sku_id", c.Shipment.RemoveLine},
		{echo.GET, "/shipments/:id/formulas", c.Shipment.Formulas},
		{echo.GET, "/shipments/:id/audit", c.Shipment.Audit},

		{echo.GET, "/catalog", c.Catalog.List},
		{echo.POST, "/catalog", c.Catalog.Create},
		{echo.POST, "/catalog/reconcile", c.Catalog.Reconcile},
		{echo.GET, "/catalog/:id", c.Catalog.Get},
		{echo.PUT, "/catalog/:id", c.Catalog.Update},
		{echo.DELETE, "/catalog/:id", c.Catalog.Delete},

		{echo.GET, "/inventory/:kind", c.Inventory.List},
		{echo.PUT, "/inventory/:kind/:name", c.Inventory.Upsert},
		{echo.POST, "/inventory/:kind/:name/adjust", c.Inventory.Adjust},
	}
}

// New installs the middleware stack, the error handler and routes on e.
func New(e *echo.Echo, routes []Route) *echo.Echo {
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(middleware.Defaults()...)
	for _, r := range routes {
		e.Add(r.Method, r.Path, r.Handler)
	}
	return e
}
