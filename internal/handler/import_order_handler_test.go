package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-liquor-inventory/internal/lock"
	"go-liquor-inventory/internal/model"
	"go-liquor-inventory/internal/repository/memstore"
	"go-liquor-inventory/internal/sequence"
	"go-liquor-inventory/internal/service"
)

const managerID = "3f2b8a64-1c0d-4e8f-a3b5-7d9e0c1a2b4c"

type testApp struct {
	app      *fiber.App
	store    *memstore.Store
	supplier *model.Supplier
	product  *model.Product
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memstore.New()
	numbers := sequence.NewLocalNumberGenerator()
	orders := service.NewImportOrderService(store, lock.NewLocalLocker(time.Second), numbers, nil, log, time.Minute)
	inventory := service.NewInventoryService(store, numbers, nil, log)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", managerID)
		return c.Next()
	})
	oh := NewImportOrderHandler(orders)
	ih := NewInventoryHandler(inventory)
	app.Get("/import-orders", oh.GetImportOrders)
	app.Get("/import-orders/:id", oh.GetImportOrder)
	app.Post("/import-orders", oh.CreateImportOrder)
	app.Post("/import-orders/:id/approve", oh.ApproveImportOrder)
	app.Post("/import-orders/:id/complete", oh.CompleteImportOrder)
	app.Post("/import-orders/:id/cancel", oh.CancelImportOrder)
	app.Get("/inventory/:productId", ih.GetInventory)
	app.Post("/inventory/:productId/adjustments", ih.AdjustInventory)
	app.Get("/inventory-transactions", ih.GetTransactions)
	app.Get("/inventory-transactions/:id", ih.GetTransaction)

	ctx := context.Background()
	supplier := &model.Supplier{Name: "Highland Imports", IsActive: true}
	require.NoError(t, store.Suppliers().Create(ctx, supplier))
	product := &model.Product{SKU: "WHISKY-12", Name: "Single Malt 12", IsActive: true}
	require.NoError(t, store.Products().Create(ctx, product))
	inv := model.NewInventory(product.ID, time.Now())
	inv.Quantity = 10
	inv.AverageCost = decimal.NewFromInt(100)
	require.NoError(t, store.Inventories().Create(ctx, inv))

	return &testApp{app: app, store: store, supplier: supplier, product: product}
}

func (a *testApp) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (a *testApp) createOrder(t *testing.T) uint {
	t.Helper()
	status, body := a.do(t, http.MethodPost, "/import-orders", map[string]any{
		"supplier_id": a.supplier.ID,
		"import_order_details": []map[string]any{
			{"product_id": a.product.ID, "quantity": 5, "unit_price": "130"},
		},
	})
	require.Equal(t, http.StatusCreated, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, managerID, data["manager_id"])
	return uint(data["id"].(float64))
}

func path(format string, id uint) string {
	return fmt.Sprintf(format, id)
}

func TestImportOrderLifecycleOverHTTP(t *testing.T) {
	a := newTestApp(t)
	id := a.createOrder(t)

	status, body := a.do(t, http.MethodPost, path("/import-orders/%d/complete", id), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "InvalidStateTransition", body["kind"])
	assert.Contains(t, body["message"], "from Pending to Completed")

	status, body = a.do(t, http.MethodPost, path("/import-orders/%d/approve", id), nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Approved", body["data"].(map[string]any)["status"])

	status, body = a.do(t, http.MethodPost, path("/import-orders/%d/complete", id), nil)
	require.Equal(t, http.StatusOK, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Completed", data["status"])
	assert.NotEmpty(t, data["updated_at"])
	details := data["import_order_details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "Completed", details[0].(map[string]any)["status"])

	status, body = a.do(t, http.MethodGet, path("/inventory/%d", a.product.ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 15, body["quantity"])
	assert.Equal(t, "110", body["average_cost"])
	assert.Equal(t, "1650", body["total_value"])

	status, body = a.do(t, http.MethodPost, path("/import-orders/%d/cancel", id), map[string]string{"reason": "late"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "InvalidStateTransition", body["kind"])
}

func TestCancelImportOrderRequiresReason(t *testing.T) {
	a := newTestApp(t)
	id := a.createOrder(t)

	status, body := a.do(t, http.MethodPost, path("/import-orders/%d/cancel", id), map[string]string{"reason": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", body["kind"])

	status, body = a.do(t, http.MethodPost, path("/import-orders/%d/cancel", id), map[string]string{"reason": "wrong supplier"})
	require.Equal(t, http.StatusOK, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Cancelled", data["status"])
	assert.Equal(t, "wrong supplier", data["cancel_reason"])
}

func TestImportOrderErrors(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, http.MethodPost, "/import-orders/999/approve", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NotFound", body["kind"])

	status, body = a.do(t, http.MethodPost, "/import-orders/abc/complete", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", body["kind"])

	status, body = a.do(t, http.MethodPost, "/import-orders", map[string]any{
		"supplier_id": a.supplier.ID,
		"import_order_details": []map[string]any{
			{"product_id": a.product.ID, "quantity": 0, "unit_price": "10"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", body["kind"])
}

func TestLedgerEndpoints(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, http.MethodPost, path("/inventory/%d/adjustments", a.product.ID), map[string]any{
		"quantity": -4,
		"reason":   "breakage",
	})
	require.Equal(t, http.StatusCreated, status, body)
	tx := body["data"].(map[string]any)["transaction"].(map[string]any)
	assert.Equal(t, "Adjustment", tx["type"])
	txID := uint(tx["id"].(float64))

	status, body = a.do(t, http.MethodGet, path("/inventory-transactions/%d", txID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, -4, body["quantity"])

	status, _ = a.do(t, http.MethodGet, "/inventory-transactions?type=Adjustment&limit=5", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = a.do(t, http.MethodGet, "/inventory-transactions?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", body["kind"])

	status, body = a.do(t, http.MethodGet, "/inventory-transactions/777", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NotFound", body["kind"])
}
