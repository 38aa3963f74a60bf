package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/lock"
	"go-liquor-inventory/internal/model"
	"go-liquor-inventory/internal/repository"
	"go-liquor-inventory/internal/ws"
	"go-liquor-inventory/pkg/logger"
)

type ImportOrderService interface {
	Create(ctx context.Context, req *CreateImportOrderRequest, userID string) (*model.ImportOrder, error)
	Get(ctx context.Context, id uint) (*model.ImportOrder, error)
	List(ctx context.Context, filter model.ImportOrderFilter) ([]model.ImportOrder, error)
	Approve(ctx context.Context, id uint, userID string) (*model.ImportOrder, error)
	Complete(ctx context.Context, id uint, userID string) (*model.ImportOrder, error)
	Cancel(ctx context.Context, id uint, reason, userID string) (*model.ImportOrder, error)
}

type CreateImportOrderRequest struct {
	SupplierID uint                     `json:"supplier_id" validate:"required"`
	ManagerID  uuid.UUID                `json:"manager_id" validate:"uuid_required"`
	OrderDate  *time.Time               `json:"order_date"`
	Notes      string                   `json:"notes" validate:"max=2000"`
	Details    []ImportOrderLineRequest `json:"import_order_details" validate:"required,min=1,dive"`
}

type ImportOrderLineRequest struct {
	ProductID uint            `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"dec_gte0"`
}

type importOrderService struct {
	store   repository.Store
	locker  lock.Locker
	numbers TransactionNumberer
	events  EventPublisher
	log     *logrus.Logger
	lockTTL time.Duration
	now     func() time.Time
}

func NewImportOrderService(store repository.Store, locker lock.Locker, numbers TransactionNumberer, events EventPublisher, log *logrus.Logger, lockTTL time.Duration) ImportOrderService {
	if events == nil {
		events = noopPublisher{}
	}
	return &importOrderService{
		store:   store,
		locker:  locker,
		numbers: numbers,
		events:  events,
		log:     log,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

func orderLockKey(id uint) string {
	return fmt.Sprintf("import-order:%d", id)
}

func (s *importOrderService) Create(ctx context.Context, req *CreateImportOrderRequest, userID string) (*model.ImportOrder, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	supplier, err := s.store.Suppliers().FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if err := model.RequireActive(supplier, fmt.Sprintf("supplier %d", supplier.ID)); err != nil {
		return nil, err
	}

	now := s.now()
	order := &model.ImportOrder{
		SupplierID: req.SupplierID,
		ManagerID:  req.ManagerID,
		OrderDate:  now,
		Status:     model.ImportPending,
		Notes:      strings.TrimSpace(req.Notes),
	}
	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
	}
	order.CreatedBy = userID
	order.UpdatedBy = userID

	for _, line := range req.Details {
		product, err := s.store.Products().FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if err := model.RequireActive(product, "product "+product.SKU); err != nil {
			return nil, err
		}
		order.Details = append(order.Details, model.ImportOrderDetail{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Status:    model.DetailPending,
		})
	}
	order.RecalculateTotal()

	if err := s.store.ImportOrders().Create(ctx, order); err != nil {
		logger.LogError(s.log, "ImportOrderService", "Create", "insert import order", req, err)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"import_order_id": order.ID,
		"supplier_id":     order.SupplierID,
		"lines":           len(order.Details),
		"total_amount":    order.TotalAmount.String(),
	}).Info("import order created")
	s.publish(EventImportOrderCreated, order)
	return order, nil
}

func (s *importOrderService) Get(ctx context.Context, id uint) (*model.ImportOrder, error) {
	return s.store.ImportOrders().FindByID(ctx, id)
}

func (s *importOrderService) List(ctx context.Context, filter model.ImportOrderFilter) ([]model.ImportOrder, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperr.Validation("unknown import order status %q", filter.Status)
	}
	return s.store.ImportOrders().FindAll(ctx, filter)
}

func (s *importOrderService) Approve(ctx context.Context, id uint, userID string) (*model.ImportOrder, error) {
	var approved *model.ImportOrder
	err := s.store.Transact(ctx, func(tx repository.Tx) error {
		order, err := tx.ImportOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := order.Transition(model.ImportApproved); err != nil {
			return err
		}
		now := s.now()
		order.ApprovedAt = &now
		order.ApprovedBy = userID
		order.UpdatedBy = userID
		if err := tx.ImportOrders().UpdateStatus(ctx, order); err != nil {
			return err
		}
		approved = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"import_order_id": id, "user_id": userID}).Info("import order approved")
	s.publish(EventImportOrderApproved, approved)
	return approved, nil
}

// Complete receives every line of an approved order into stock. The whole
// order is applied in one transaction; on any failure nothing is written and
// the order stays Approved.
func (s *importOrderService) Complete(ctx context.Context, id uint, userID string) (*model.ImportOrder, error) {
	held, err := s.locker.Obtain(ctx, orderLockKey(id), s.lockTTL)
	if errors.Is(err, lock.ErrNotObtained) {
		return nil, apperr.Conflict("import order %d is already being completed", id)
	}
	if err != nil {
		logger.LogError(s.log, "ImportOrderService", "Complete", "obtain order lock", id, err)
		return nil, apperr.Persistence(err)
	}
	defer func() {
		if err := held.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.WithError(err).WithField("import_order_id", id).Warn("releasing import order lock")
		}
	}()

	var (
		completed *model.ImportOrder
		touched   []model.Inventory
	)
	err = s.store.Transact(ctx, func(tx repository.Tx) error {
		touched = touched[:0]
		order, err := tx.ImportOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := order.CheckTransition(model.ImportCompleted); err != nil {
			return err
		}
		if len(order.Details) == 0 {
			return apperr.Validation("import order %d has no lines", id)
		}
		for i := range order.Details {
			if err := order.Details[i].Validate(); err != nil {
				return err
			}
		}

		now := s.now()
		for i := range order.Details {
			inv, err := s.receiveLine(ctx, tx, order, &order.Details[i], userID, now)
			if err != nil {
				return err
			}
			touched = append(touched, *inv)
		}

		if err := order.Transition(model.ImportCompleted); err != nil {
			return err
		}
		order.ImportDate = &now
		order.CompletedAt = &now
		order.UpdatedBy = userID
		if err := tx.ImportOrders().UpdateStatus(ctx, order); err != nil {
			return err
		}
		completed = order
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindPersistence {
			logger.LogError(s.log, "ImportOrderService", "Complete", "complete import order", id, err)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"import_order_id": id,
		"user_id":         userID,
		"lines":           len(completed.Details),
	}).Info("import order completed")
	s.publish(EventImportOrderCompleted, completed)
	for i := range touched {
		s.publish(EventInventoryUpdated, touched[i])
	}
	return completed, nil
}

// receiveLine folds one order line into the product's inventory and records
// the ledger entry for it.
func (s *importOrderService) receiveLine(ctx context.Context, tx repository.Tx, order *model.ImportOrder, d *model.ImportOrderDetail, userID string, now time.Time) (*model.Inventory, error) {
	product, err := tx.Products().FindByID(ctx, d.ProductID)
	if err != nil {
		return nil, err
	}

	inv, err := tx.Inventories().FindByProductIDForUpdate(ctx, product.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		inv = model.NewInventory(product.ID, now)
		err = tx.Inventories().Create(ctx, inv)
	}
	if err != nil {
		return nil, err
	}

	pos, err := inv.Position().Receive(d.Quantity, d.UnitPrice)
	if err != nil {
		return nil, err
	}
	inv.ApplyPosition(pos, now)
	if err := tx.Inventories().Save(ctx, inv); err != nil {
		return nil, err
	}

	number, err := s.numbers.Next(ctx, model.TxImport, now)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	entry := &model.InventoryTransaction{
		TransactionNumber: number,
		ProductID:         product.ID,
		Type:              model.TxImport,
		Quantity:          d.Quantity,
		UnitCost:          d.UnitPrice,
		ReferenceType:     model.RefImportOrder,
		ReferenceID:       order.ID,
		Status:            model.TxStatusCompleted,
		TransactionDate:   now,
		Notes:             fmt.Sprintf("Import order %d line %d", order.ID, d.ID),
		CreatedBy:         userID,
	}
	if err := tx.Ledger().Append(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Products().UpdateStock(ctx, product.ID, inv.Quantity, userID); err != nil {
		return nil, err
	}
	if err := tx.ImportOrders().UpdateDetailStatus(ctx, d, model.DetailCompleted); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *importOrderService) Cancel(ctx context.Context, id uint, reason, userID string) (*model.ImportOrder, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("a cancellation reason is required")
	}

	var cancelled *model.ImportOrder
	err := s.store.Transact(ctx, func(tx repository.Tx) error {
		order, err := tx.ImportOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := order.Transition(model.ImportCancelled); err != nil {
			return err
		}
		now := s.now()
		order.CancelReason = reason
		order.CancelledAt = &now
		order.UpdatedBy = userID
		for i := range order.Details {
			if err := tx.ImportOrders().UpdateDetailStatus(ctx, &order.Details[i], model.DetailCancelled); err != nil {
				return err
			}
		}
		if err := tx.ImportOrders().UpdateStatus(ctx, order); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"import_order_id": id, "user_id": userID, "reason": reason}).Info("import order cancelled")
	s.publish(EventImportOrderCancelled, cancelled)
	return cancelled, nil
}

func (s *importOrderService) publish(eventType string, payload any) {
	s.events.Publish(ws.Event{Type: eventType, Payload: payload, At: s.now()})
}
