package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"fertplan/pkg/params"
	"fertplan/pkg/shipment"
	ssvc "fertplan/pkg/shipment/service"
)

type ShipmentCtrl struct {
	s ssvc.Service
	// strict is the rollup mode when ?strict is absent
	strict bool
}

func New(s ssvc.Service, strict bool) *ShipmentCtrl { return &ShipmentCtrl{s: s, strict: strict} }

func (h *ShipmentCtrl) List(c echo.Context) error {
	out, err := h.s.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShipmentCtrl) Create(c echo.Context) error {
	var in shipment.CreateInput
	if err := params.Bind(c, &in); err != nil {
		return err
	}
	out, err := h.s.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ShipmentCtrl) Get(c echo.Context) error {
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

func (h *ShipmentCtrl) Delete(c echo.Context) error {
	id, err := params.Uint(c, "id")
	if err != nil {
		return err
	}
	if err := h.s.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

func (h *ShipmentCtrl) AddLine(c echo.Context) error {
	id, err := params.Uint(c, "id")
	if err != nil {
		return err
	}
	var in shipment.LineInput
	if err := params.Bind(c, &in); err != nil {
		return err
	}
	out, err := h.s.AddLine(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShipmentCtrl) SetQty(c echo.Context) error {
	id, skuID, err := lineParams(c)
	if err != nil {
		return err
	}
	var in shipment.QtyInput
	if err := params.Bind(c, &in); err != nil {
		return err
	}
	out, err := h.s.SetQty(c.Request().Context(), id, skuID, in.Qty)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShipmentCtrl) RemoveLine(c echo.Context) error {
	id, skuID, err := lineParams(c)
	if err != nil {
		return err
	}
	out, err := h.s.RemoveLine(c.Request().Context(), id, skuID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShipmentCtrl) Transition(c echo.Context) error {
	id, err := params.Uint(c, "id")
	if err != nil {
		return err
	}
	var in shipment.TransitionInput
	if err := params.Bind(c, &in); err != nil {
		return err
	}
	out, err := h.s.Transition(c.Request().Context(), id, in.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShipmentCtrl) Formulas(c echo.Context) error {
	id, err := params.Uint(c, "id")
	if err != nil {
		return err
	}
	out, err := h.s.Rollup(c.Request().Context(), id, params.Bool(c, "strict", h.strict))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShipmentCtrl) Audit(c echo.Context) error {
	id, err := params.Uint(c, "id")
	if err != nil {
		return err
	}
	out, err := h.s.Audit(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func lineParams(c echo.Context) (uint, uint, error) {
	id, err := params.Uint(c, "id")
	if err != nil {
		return 0, 0, err
	}
	skuID, err := params.Uint(c, "sku_id")
	if err != nil {
		return 0, 0, err
	}
	return id, skuID, nil
}
