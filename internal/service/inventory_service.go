package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
	"go-liquor-inventory/internal/repository"
	"go-liquor-inventory/internal/ws"
	"go-liquor-inventory/pkg/logger"
)

type InventoryService interface {
	CreateProduct(ctx context.Context, req *model.Product, userID string) error
	UpdateProduct(ctx context.Context, id uint, req *UpdateProductRequest, userID string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)

	CreateSupplier(ctx context.Context, req *model.Supplier, userID string) error
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)

	GetInventory(ctx context.Context, productID uint) (*model.Inventory, error)
	ListInventory(ctx context.Context) ([]model.Inventory, error)

	ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.InventoryTransaction, error)
	GetTransaction(ctx context.Context, id uint) (*model.InventoryTransaction, error)
	TransactionsForProduct(ctx context.Context, productID uint) ([]model.InventoryTransaction, error)

	Adjust(ctx context.Context, productID uint, req *AdjustInventoryRequest, userID string) (*AdjustmentResult, error)
}

// UpdateProductRequest carries only the fields being changed.
type UpdateProductRequest struct {
	SKU            *string                `json:"sku"`
	Name           *string                `json:"name"`
	Category       *model.ProductCategory `json:"category"`
	VolumeML       *int                   `json:"volume_ml"`
	AlcoholPercent *decimal.Decimal       `json:"alcohol_percent"`
	RetailPrice    *decimal.Decimal       `json:"retail_price"`
	Unit           *string                `json:"unit"`
	IsActive       *bool                  `json:"is_active"`
}

// AdjustInventoryRequest is a manual stock correction. Quantity is signed.
type AdjustInventoryRequest struct {
	Quantity int              `json:"quantity" validate:"ne=0"`
	UnitCost *decimal.Decimal `json:"unit_cost"`
	Reason   string           `json:"reason" validate:"required,max=500"`
}

type AdjustmentResult struct {
	Inventory   model.Inventory            `json:"inventory"`
	Transaction model.InventoryTransaction `json:"transaction"`
}

type inventoryService struct {
	store   repository.Store
	numbers TransactionNumberer
	events  EventPublisher
	log     *logrus.Logger
	now     func() time.Time
}

func NewInventoryService(store repository.Store, numbers TransactionNumberer, events EventPublisher, log *logrus.Logger) InventoryService {
	if events == nil {
		events = noopPublisher{}
	}
	return &inventoryService{
		store:   store,
		numbers: numbers,
		events:  events,
		log:     log,
		now:     time.Now,
	}
}

func (s *inventoryService) CreateProduct(ctx context.Context, req *model.Product, userID string) error {
	req.SKU = strings.TrimSpace(req.SKU)
	if req.Category == "" {
		req.Category = model.CategoryOther
	}
	if err := validate(req); err != nil {
		return err
	}

	existing, err := s.store.Products().FindBySKU(ctx, req.SKU)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if existing != nil {
		return apperr.Validation("SKU %s already exists", req.SKU)
	}

	req.ID = 0
	req.StockQuantity = 0
	req.IsActive = true
	req.CreatedBy = userID
	req.UpdatedBy = userID
	if err := s.store.Products().Create(ctx, req); err != nil {
		logger.LogError(s.log, "InventoryService", "CreateProduct", "insert product", req.SKU, err)
		return err
	}

	s.publish(EventProductCreated, req)
	return nil
}

// UpdateProduct edits catalogue fields. Stock is owned by inventory
// movements and is never taken from the request.
func (s *inventoryService) UpdateProduct(ctx context.Context, id uint, req *UpdateProductRequest, userID string) (*model.Product, error) {
	existing, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if sku != existing.SKU {
			other, err := s.store.Products().FindBySKU(ctx, sku)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return nil, err
			}
			if other != nil && other.ID != id {
				return nil, apperr.Validation("SKU %s already exists", sku)
			}
			existing.SKU = sku
		}
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Category != nil {
		existing.Category = *req.Category
	}
	if req.VolumeML != nil {
		existing.VolumeML = *req.VolumeML
	}
	if req.AlcoholPercent != nil {
		existing.AlcoholPercent = *req.AlcoholPercent
	}
	if req.RetailPrice != nil {
		existing.RetailPrice = *req.RetailPrice
	}
	if req.Unit != nil {
		existing.Unit = *req.Unit
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	existing.UpdatedBy = userID

	if err := validate(existing); err != nil {
		return nil, err
	}
	if err := s.store.Products().Update(ctx, existing); err != nil {
		logger.LogError(s.log, "InventoryService", "UpdateProduct", "update product", id, err)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"product_id": id, "user_id": userID}).Info("product updated")
	s.publish(EventProductUpdated, existing)
	return existing, nil
}

func (s *inventoryService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.store.Products().FindAll(ctx)
}

func (s *inventoryService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	return s.store.Products().FindByID(ctx, id)
}

func (s *inventoryService) CreateSupplier(ctx context.Context, req *model.Supplier, userID string) error {
	if err := validate(req); err != nil {
		return err
	}
	req.ID = 0
	req.IsActive = true
	req.CreatedBy = userID
	req.UpdatedBy = userID
	if err := s.store.Suppliers().Create(ctx, req); err != nil {
		logger.LogError(s.log, "InventoryService", "CreateSupplier", "insert supplier", req.Name, err)
		return err
	}
	return nil
}

func (s *inventoryService) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return s.store.Suppliers().FindAll(ctx)
}

func (s *inventoryService) GetInventory(ctx context.Context, productID uint) (*model.Inventory, error) {
	return s.store.Inventories().FindByProductID(ctx, productID)
}

func (s *inventoryService) ListInventory(ctx context.Context) ([]model.Inventory, error) {
	return s.store.Inventories().FindAll(ctx)
}

func (s *inventoryService) ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.InventoryTransaction, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, apperr.Validation("from must not be after to")
	}
	return s.store.Ledger().List(ctx, filter)
}

func (s *inventoryService) GetTransaction(ctx context.Context, id uint) (*model.InventoryTransaction, error) {
	return s.store.Ledger().FindByID(ctx, id)
}

func (s *inventoryService) TransactionsForProduct(ctx context.Context, productID uint) ([]model.InventoryTransaction, error) {
	if _, err := s.store.Products().FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.store.Ledger().List(ctx, model.TransactionFilter{ProductID: productID})
}

// Adjust corrects stock by hand. The ledger row it appends is the only record
// of the correction; earlier rows are never rewritten.
func (s *inventoryService) Adjust(ctx context.Context, productID uint, req *AdjustInventoryRequest, userID string) (*AdjustmentResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var result AdjustmentResult
	err := s.store.Transact(ctx, func(tx repository.Tx) error {
		product, err := tx.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}

		now := s.now()
		inv, err := tx.Inventories().FindByProductIDForUpdate(ctx, productID)
		if errors.Is(err, apperr.ErrNotFound) {
			inv = model.NewInventory(productID, now)
			err = tx.Inventories().Create(ctx, inv)
		}
		if err != nil {
			return err
		}

		pos, err := inv.Position().Adjust(req.Quantity, req.UnitCost)
		if err != nil {
			return err
		}
		unitCost := inv.AverageCost
		if req.UnitCost != nil {
			unitCost = *req.UnitCost
		}
		inv.ApplyPosition(pos, now)
		if err := tx.Inventories().Save(ctx, inv); err != nil {
			return err
		}

		number, err := s.numbers.Next(ctx, model.TxAdjustment, now)
		if err != nil {
			return apperr.Persistence(err)
		}
		entry := &model.InventoryTransaction{
			TransactionNumber: number,
			ProductID:         productID,
			Type:              model.TxAdjustment,
			Quantity:          req.Quantity,
			UnitCost:          unitCost,
			ReferenceType:     model.RefManual,
			Status:            model.TxStatusCompleted,
			TransactionDate:   now,
			Notes:             strings.TrimSpace(req.Reason),
			CreatedBy:         userID,
		}
		if err := tx.Ledger().Append(ctx, entry); err != nil {
			return err
		}
		if err := tx.Products().UpdateStock(ctx, product.ID, inv.Quantity, userID); err != nil {
			return err
		}

		result = AdjustmentResult{Inventory: *inv, Transaction: *entry}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindPersistence {
			logger.LogError(s.log, "InventoryService", "Adjust", "adjust inventory", productID, err)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"product_id":         productID,
		"quantity":           req.Quantity,
		"transaction_number": result.Transaction.TransactionNumber,
		"user_id":            userID,
	}).Info("inventory adjusted")
	s.publish(EventInventoryUpdated, result.Inventory)
	return &result, nil
}

func (s *inventoryService) publish(eventType string, payload any) {
	s.events.Publish(ws.Event{Type: eventType, Payload: payload, At: s.now()})
}
