package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-liquor-inventory/internal/lock"
	"go-liquor-inventory/internal/model"
	"go-liquor-inventory/internal/repository/memstore"
	"go-liquor-inventory/internal/sequence"
	"go-liquor-inventory/internal/ws"
)

const testUser = "8c1f5d0e-9a57-4bb5-9f0e-4a1d2c3b4e5f"

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(ev ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	ctx       context.Context
	store     *memstore.Store
	orders    *importOrderService
	inventory *inventoryService
	events    *recordingPublisher
	locker    lock.Locker
	supplier  *model.Supplier
	manager   uuid.UUID
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:     context.Background(),
		store:   memstore.New(),
		events:  &recordingPublisher{},
		locker:  lock.NewLocalLocker(2 * time.Second),
		manager: uuid.MustParse(testUser),
	}
	numbers := sequence.NewLocalNumberGenerator()
	f.orders = NewImportOrderService(f.store, f.locker, numbers, f.events, quietLogger(), 30*time.Second).(*importOrderService)
	f.inventory = NewInventoryService(f.store, numbers, f.events, quietLogger()).(*inventoryService)

	f.supplier = &model.Supplier{Name: "Highland Imports", IsActive: true}
	require.NoError(t, f.store.Suppliers().Create(f.ctx, f.supplier))
	return f
}

func (f *fixture) addProduct(t *testing.T, sku string) *model.Product {
	t.Helper()
	p := &model.Product{SKU: sku, Name: "Product " + sku, Category: model.CategorySpirits, IsActive: true}
	require.NoError(t, f.store.Products().Create(f.ctx, p))
	return p
}

func (f *fixture) seedInventory(t *testing.T, productID uint, qty int, avg string) {
	t.Helper()
	inv := model.NewInventory(productID, time.Now())
	inv.Quantity = qty
	inv.AverageCost = decimal.RequireFromString(avg)
	require.NoError(t, f.store.Inventories().Create(f.ctx, inv))
	require.NoError(t, f.store.Products().UpdateStock(f.ctx, productID, qty, "seed"))
}

func line(productID uint, qty int, price string) ImportOrderLineRequest {
	return ImportOrderLineRequest{ProductID: productID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func (f *fixture) createOrder(t *testing.T, lines ...ImportOrderLineRequest) *model.ImportOrder {
	t.Helper()
	order, err := f.orders.Create(f.ctx, &CreateImportOrderRequest{
		SupplierID: f.supplier.ID,
		ManagerID:  f.manager,
		Details:    lines,
	}, testUser)
	require.NoError(t, err)
	return order
}

func (f *fixture) approvedOrder(t *testing.T, lines ...ImportOrderLineRequest) *model.ImportOrder {
	t.Helper()
	order := f.createOrder(t, lines...)
	approved, err := f.orders.Approve(f.ctx, order.ID, testUser)
	require.NoError(t, err)
	return approved
}

// insertApproved stores an approved order as-is, bypassing Create's checks.
func (f *fixture) insertApproved(t *testing.T, details ...model.ImportOrderDetail) *model.ImportOrder {
	t.Helper()
	for i := range details {
		details[i].Status = model.DetailPending
	}
	order := &model.ImportOrder{
		SupplierID: f.supplier.ID,
		ManagerID:  f.manager,
		OrderDate:  time.Now(),
		Status:     model.ImportApproved,
		Details:    details,
	}
	order.RecalculateTotal()
	require.NoError(t, f.store.ImportOrders().Create(f.ctx, order))
	return order
}

func (f *fixture) ledger(t *testing.T) []model.InventoryTransaction {
	t.Helper()
	rows, err := f.store.Ledger().List(f.ctx, model.TransactionFilter{})
	require.NoError(t, err)
	return rows
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}
