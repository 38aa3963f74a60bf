//go:build integration

package repository_test

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
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/lock"
	"go-liquor-inventory/internal/model"
	"go-liquor-inventory/internal/repository"
	"go-liquor-inventory/internal/sequence"
	"go-liquor-inventory/internal/service"
	"go-liquor-inventory/pkg/database"
)

func setupMySQLContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	container, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("liquor_test"),
		tcmysql.WithUsername("test"),
		tcmysql.WithPassword("test"),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "parseTime=true", "loc=UTC")
	require.NoError(t, err)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		container.Terminate(ctx)
	}
	return db, cleanup
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedCatalogue(t *testing.T, store repository.Store) (*model.Supplier, *model.Product) {
	t.Helper()
	ctx := context.Background()
	supplier := &model.Supplier{Name: "Highland Imports", IsActive: true}
	require.NoError(t, store.Suppliers().Create(ctx, supplier))
	product := &model.Product{SKU: "WHISKY-12-" + uuid.NewString()[:8], Name: "Single Malt 12", Category: model.CategorySpirits, IsActive: true}
	require.NoError(t, store.Products().Create(ctx, product))
	return supplier, product
}

func TestStore_CompleteImportOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupMySQLContainer(t)
	defer cleanup()

	ctx := context.Background()
	store := repository.NewStore(db)
	supplier, product := seedCatalogue(t, store)

	seed := model.NewInventory(product.ID, time.Now())
	seed.Quantity = 10
	seed.AverageCost = decimal.NewFromInt(100)
	require.NoError(t, store.Inventories().Create(ctx, seed))

	orders := service.NewImportOrderService(store, lock.NewLocalLocker(5*time.Second), sequence.NewLocalNumberGenerator(), nil, quietLogger(), time.Minute)
	order, err := orders.Create(ctx, &service.CreateImportOrderRequest{
		SupplierID: supplier.ID,
		ManagerID:  uuid.New(),
		Details: []service.ImportOrderLineRequest{
			{ProductID: product.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(130)},
		},
	}, "integration")
	require.NoError(t, err)
	_, err = orders.Approve(ctx, order.ID, "integration")
	require.NoError(t, err)

	// Let the clock move past the approve write so a stale timestamp shows.
	time.Sleep(20 * time.Millisecond)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	results := make([]*model.ImportOrder, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = orders.Complete(ctx, order.ID, "integration")
		}(i)
	}
	wg.Wait()

	var completed *model.ImportOrder
	succeeded := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			completed = results[i]
		}
	}
	assert.Equal(t, 1, succeeded)
	require.NotNil(t, completed)

	inv, err := store.Inventories().FindByProductID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, inv.Quantity)
	assert.True(t, decimal.NewFromInt(110).Equal(inv.AverageCost), inv.AverageCost.String())
	assert.True(t, decimal.NewFromInt(1650).Equal(inv.TotalValue), inv.TotalValue.String())

	stored, err := store.ImportOrders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ImportCompleted, stored.Status)
	require.Len(t, stored.Details, 1)
	assert.Equal(t, model.DetailCompleted, stored.Details[0].Status)

	assert.Equal(t, stored.Version, completed.Version)
	assert.True(t, stored.UpdatedAt.Equal(completed.UpdatedAt),
		"returned updated_at %s, stored %s", completed.UpdatedAt, stored.UpdatedAt)
	require.Len(t, completed.Details, 1)
	assert.True(t, stored.Details[0].UpdatedAt.Equal(completed.Details[0].UpdatedAt),
		"returned detail updated_at %s, stored %s", completed.Details[0].UpdatedAt, stored.Details[0].UpdatedAt)

	rows, err := store.Ledger().FindByReference(ctx, model.RefImportOrder, order.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	p, err := store.Products().FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, p.StockQuantity)

	stats, err := repository.NewDashboardRepo(db).GetDashboardStats(ctx, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalProducts)
	assert.True(t, decimal.NewFromInt(1650).Equal(stats.TotalInventoryValue), stats.TotalInventoryValue.String())
}

func TestStore_TransactRollsBack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupMySQLContainer(t)
	defer cleanup()

	ctx := context.Background()
	store := repository.NewStore(db)
	_, product := seedCatalogue(t, store)

	err := store.Transact(ctx, func(tx repository.Tx) error {
		inv := model.NewInventory(product.ID, time.Now())
		if err := tx.Inventories().Create(ctx, inv); err != nil {
			return err
		}
		return apperr.Validation("abort")
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = store.Inventories().FindByProductID(ctx, product.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInventoryRepo_StaleVersionConflicts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupMySQLContainer(t)
	defer cleanup()

	ctx := context.Background()
	store := repository.NewStore(db)
	_, product := seedCatalogue(t, store)

	inv := model.NewInventory(product.ID, time.Now())
	require.NoError(t, store.Inventories().Create(ctx, inv))

	first, err := store.Inventories().FindByProductID(ctx, product.ID)
	require.NoError(t, err)
	second, err := store.Inventories().FindByProductID(ctx, product.ID)
	require.NoError(t, err)

	pos, err := first.Position().Receive(3, decimal.NewFromInt(20))
	require.NoError(t, err)
	first.ApplyPosition(pos, time.Now())
	require.NoError(t, store.Inventories().Save(ctx, first))

	pos, err = second.Position().Receive(4, decimal.NewFromInt(30))
	require.NoError(t, err)
	second.ApplyPosition(pos, time.Now())
	err = store.Inventories().Save(ctx, second)
	assert.ErrorIs(t, err, apperr.ErrConcurrencyConflict)
}

func TestLedgerRepo_DuplicateNumberIsPersistenceError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupMySQLContainer(t)
	defer cleanup()

	ctx := context.Background()
	store := repository.NewStore(db)
	_, product := seedCatalogue(t, store)

	entry := func() *model.InventoryTransaction {
		return &model.InventoryTransaction{
			TransactionNumber: "ADJ-20240501120000-000001",
			ProductID:         product.ID,
			Type:              model.TxAdjustment,
			Quantity:          1,
			ReferenceType:     model.RefManual,
			Status:            model.TxStatusCompleted,
			TransactionDate:   time.Now(),
		}
	}
	require.NoError(t, store.Ledger().Append(ctx, entry()))
	err := store.Ledger().Append(ctx, entry())
	assert.ErrorIs(t, err, apperr.ErrPersistence)

	rows, err := store.Ledger().List(ctx, model.TransactionFilter{ProductID: product.ID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestInventoryRepo_DuplicateCreateConflicts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupMySQLContainer(t)
	defer cleanup()

	ctx := context.Background()
	store := repository.NewStore(db)
	_, product := seedCatalogue(t, store)

	require.NoError(t, store.Inventories().Create(ctx, model.NewInventory(product.ID, time.Now())))
	err := store.Inventories().Create(ctx, model.NewInventory(product.ID, time.Now()))
	assert.ErrorIs(t, err, apperr.ErrConcurrencyConflict)
}

func TestDashboardRepo_GetStockMovement(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupMySQLContainer(t)
	defer cleanup()

	ctx := context.Background()
	store := repository.NewStore(db)
	_, product := seedCatalogue(t, store)

	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := []*model.InventoryTransaction{
		{
			TransactionNumber: "IMP-20240501100000-000001",
			ProductID:         product.ID,
			Type:              model.TxImport,
			Quantity:          12,
			UnitCost:          decimal.NewFromInt(40),
			ReferenceType:     model.RefImportOrder,
			ReferenceID:       1,
			Status:            model.TxStatusCompleted,
			TransactionDate:   day,
		},
		{
			TransactionNumber: "ADJ-20240501110000-000001",
			ProductID:         product.ID,
			Type:              model.TxAdjustment,
			Quantity:          -3,
			UnitCost:          decimal.NewFromInt(40),
			ReferenceType:     model.RefManual,
			Status:            model.TxStatusCompleted,
			TransactionDate:   day.Add(time.Hour),
		},
		{
			TransactionNumber: "IMP-20240502100000-000001",
			ProductID:         product.ID,
			Type:              model.TxImport,
			Quantity:          5,
			UnitCost:          decimal.NewFromInt(40),
			ReferenceType:     model.RefImportOrder,
			ReferenceID:       2,
			Status:            model.TxStatusCompleted,
			TransactionDate:   day.AddDate(0, 0, 1),
		},
	}
	for _, row := range rows {
		require.NoError(t, store.Ledger().Append(ctx, row))
	}

	movement, err := repository.NewDashboardRepo(db).GetStockMovement(ctx, day.Add(-time.Hour), day.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, movement, 2)

	assert.Equal(t, repository.StockMovementData{Date: "2024-05-01", Inbound: 12, Outbound: 3}, movement[0])
	assert.Equal(t, repository.StockMovementData{Date: "2024-05-02", Inbound: 5, Outbound: 0}, movement[1])
}
