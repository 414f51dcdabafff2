package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fertplan/pkg/params"
	psvc "fertplan/pkg/production/service"
)

type ProductionCtrl struct{ s psvc.Service }

func New(s psvc.Service) *ProductionCtrl { return &ProductionCtrl{s: s} }

func (h *ProductionCtrl) Inventory(c echo.Context) error {
	out, err := h.s.ProductInventory(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductionCtrl) Product(c echo.Context) error {
	id, err := params.Uint(c, "sku_id")
	if err != nil {
		return err
	}
	out, err := h.s.Product(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
