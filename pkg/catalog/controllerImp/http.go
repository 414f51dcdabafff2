package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fertplan/pkg/catalog"
	csvc "fertplan/pkg/catalog/service"
	"fertplan/pkg/params"
)

type CatalogCtrl struct{ s csvc.Service }

func New(s csvc.Service) *CatalogCtrl { return &CatalogCtrl{s: s} }

func (h *CatalogCtrl) List(c echo.Context) error {
	out, err := h.s.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogCtrl) Get(c echo.Context) error {
	id, err := params.Uint(c, "id")
	if err != nil {
		return err
	}
	out, err := h.s.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogCtrl) Create(c echo.Context) error {
	var in catalog.SKUInput
	if err := params.Bind(c, &in); err != nil {
		return err
	}
	out, err := h.s.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CatalogCtrl) Update(c echo.Context) error {
	id, err := params.Uint(c, "id")
	if err != nil {
		return err
	}
	var in catalog.SKUInput
	if err := params.Bind(c, &in); err != nil {
		return err
	}
	out, err := h.s.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogCtrl) Delete(c echo.Context) error {
	id, err := params.Uint(c, "id")
	if err != nil {
		return err
	}
	if err := h.s.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Reconcile runs the fix-up rules. An empty body uses the default rules;
// ?dry_run=1 reports without writing.
func (h *CatalogCtrl) Reconcile(c echo.Context) error {
	rules := catalog.DefaultReconcileRules()
	if c.Request().ContentLength > 0 {
		if err := params.Bind(c, &rules); err != nil {
			return err
		}
	}
	rules.DryRun = params.Bool(c, "dry_run", rules.DryRun)
	out, err := h.s.Reconcile(c.Request().Context(), rules)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
