package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fertplan/pkg/apperr"
	"fertplan/pkg/inventory"
	isvc "fertplan/pkg/inventory/service"
	"fertplan/pkg/params"
)

type InventoryCtrl struct{ s isvc.Service }

func New(s isvc.Service) *InventoryCtrl { return &InventoryCtrl{s: s} }

func (h *InventoryCtrl) List(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if kind == inventory.Formulas {
		out, err := h.s.ListFormulas(ctx)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, out)
	}
	out, err := h.s.ListStock(ctx, kind)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryCtrl) Upsert(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	name, err := params.String(c, "name")
	if err != nil {
		return err
	}
	var in inventory.Patch
	if err := params.Bind(c, &in); err != nil {
		return err
	}
	out, err := h.s.Upsert(c.Request().Context(), kind, name, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryCtrl) Adjust(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	name, err := params.String(c, "name")
	if err != nil {
		return err
	}
	var in inventory.Adjustment
	if err := params.Bind(c, &in); err != nil {
		return err
	}
	out, err := h.s.Adjust(c.Request().Context(), kind, name, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func kindParam(c echo.Context) (inventory.Kind, error) {
	k, err := inventory.ParseKind(c.Param("kind"))
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "params", err)
	}
	return k, nil
}
