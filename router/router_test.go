package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fertplan/config"
	"fertplan/entities"
	"fertplan/pkg/apperr"
	"fertplan/pkg/testing/dbtest"
)

func newServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t)
	return NewServer(config.AppConfig{}, db), db
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	out := map[string]any{}
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestShipmentFlow(t *testing.T) {
	e, db := newServer(t)
	dbtest.CherryTree(t, db)

	rec, body := do(t, e, http.MethodPost, "/shipments", `{"shipment_number":"SHP-1","date":"2026-04-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "draft", body["status"])

	rec, _ = do(t, e, http.MethodPost, "/shipments", `{"shipment_number":"SHP-1","date":"2026-04-02"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = do(t, e, http.MethodPost, "/shipments/1/lines", `{"sku_id":1,"qty":400}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 400, body["total_units"])

	rec, body = do(t, e, http.MethodPost, "/shipments/1/lines", `{"sku_id":1,"qty":101}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(apperr.KindInsufficientInventory), body["kind"])
	assert.Equal(t, "label", body["limiter"])
	assert.EqualValues(t, 1, body["shortfall"])

	rec, _ = do(t, e, http.MethodPatch, "/shipments/1/lines/1", `{"qty":16}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, e, http.MethodGet, "/shipments/1/formulas", "")
	require.Equal(t, http.StatusOK, rec.Code)
	formulas := body["formulas"].([]any)
	require.Len(t, formulas, 1)
	f := formulas[0].(map[string]any)
	assert.Equal(t, "CHRY-01", f["formula"])
	assert.Equal(t, 1.0, f["gallons_required"], "16 x 0.0625 as a JSON number")
	assert.Equal(t, 40.0, f["gallons_available"])
	assert.Equal(t, 1.0, body["total_gallons"])

	rec, body = do(t, e, http.MethodGet, "/shipments/1/audit", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["infeasible"])

	rec, _ = do(t, e, http.MethodPost, "/shipments/1/transition", `{"status":"released"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, e, http.MethodDelete, "/shipments/1/lines/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, e, http.MethodDelete, "/shipments/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, e, http.MethodGet, "/shipments/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductionEndpoints(t *testing.T) {
	e, db := newServer(t)
	dbtest.CherryTree(t, db)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/production/products/inventory", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.EqualValues(t, 500, rows[0]["max_units"])
	assert.Equal(t, "label", rows[0]["limiter"])
	assert.Equal(t, 0.0625, rows[0]["gallons_per_unit"])

	rec, _ = do(t, e, http.MethodGet, "/production/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, e, http.MethodGet, "/production/products/77", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInventoryEncodedName(t *testing.T) {
	e, _ := newServer(t)

	rec, body := do(t, e, http.MethodPut, "/inventory/closures/24%2F410", `{"warehouse_quantity":800}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "24/410", body["name"])

	rec, body = do(t, e, http.MethodPost, "/inventory/closures/24%2F410/adjust", `{"delta":-900}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(apperr.KindValidation), body["kind"])

	rec, _ = do(t, e, http.MethodGet, "/inventory/widgets", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	e, _ := newServer(t)

	rec, body := do(t, e, http.MethodPost, "/catalog", `{"product_name":"Rose","size":"Gallon","bottle_name":"nope"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Nil(t, body["bottle_name"])

	rec, body = do(t, e, http.MethodPost, "/catalog/reconcile?dry_run=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["dry_run"])
	assert.EqualValues(t, 1, body["examined"])

	rec, _ = do(t, e, http.MethodPost, "/catalog", `{"product_name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogDeleteOfReferencedSKU(t *testing.T) {
	e, db := newServer(t)
	dbtest.CherryTree(t, db)
	rec, _ := do(t, e, http.MethodPost, "/shipments", `{"shipment_number":"SHP-1","date":"2026-04-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = do(t, e, http.MethodPost, "/shipments/1/lines", `{"sku_id":1,"qty":10}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, e, http.MethodDelete, "/catalog/1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(apperr.KindInUse), body["kind"])
}

func TestCatalogDeleteRacesAddLine(t *testing.T) {
	e, db := newServer(t)
	dbtest.CherryTree(t, db)
	rec, _ := do(t, e, http.MethodPost, "/shipments", `{"shipment_number":"SHP-1","date":"2026-04-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	serve := func(method, path, body string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	var wg sync.WaitGroup
	var delCode, addCode int
	wg.Add(2)
	go func() {
		defer wg.Done()
		delCode = serve(http.MethodDelete, "/catalog/1", "")
	}()
	go func() {
		defer wg.Done()
		addCode = serve(http.MethodPost, "/shipments/1/lines", `{"sku_id":1,"qty":10}`)
	}()
	wg.Wait()

	var skus, lines int64
	require.NoError(t, db.Model(&entities.SKU{}).Count(&skus).Error)
	require.NoError(t, db.Model(&entities.ShipmentLine{}).Count(&lines).Error)
	if addCode == http.StatusOK {
		assert.Equal(t, http.StatusConflict, delCode)
		assert.Equal(t, int64(1), skus)
		assert.Equal(t, int64(1), lines)
	} else {
		assert.Equal(t, http.StatusNotFound, addCode)
		assert.Equal(t, http.StatusOK, delCode)
		assert.Zero(t, skus)
		assert.Zero(t, lines, "no line may point at a deleted sku")
	}
}

func TestCORSAndHealth(t *testing.T) {
	e, _ := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderOrigin, "https://dashboard.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec, body := do(t, e, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(apperr.KindNotFound), body["kind"])
}

func TestInternalErrorCarriesCorrelationID(t *testing.T) {
	e := New(echo.New(), []Route{
		{echo.GET, "/boom", func(echo.Context) error { return errors.New("invariant broken") }},
		{echo.GET, "/down", func(echo.Context) error {
			return apperr.New(apperr.KindStorageUnavailable, "test", "connection refused")
		}},
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-123", body["correlation_id"])
	assert.Equal(t, "internal error", body["error"])

	rec, body = do(t, e, http.MethodGet, "/down", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, true, body["retryable"])
}
