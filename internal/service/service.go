package service

import (
	"context"
	"time"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/sequence"
	"go-liquor-inventory/internal/ws"
	"go-liquor-inventory/pkg/validator"
)

// EventPublisher receives notifications after a unit of work has committed.
type EventPublisher interface {
	Publish(ev ws.Event)
}

// TransactionNumberer hands out unique ledger transaction numbers.
type TransactionNumberer interface {
	Next(ctx context.Context, kind sequence.Prefixer, at time.Time) (string, error)
}

type noopPublisher struct{}

func (noopPublisher) Publish(ws.Event) {}

const (
	EventImportOrderCreated   = "import_order.created"
	EventImportOrderApproved  = "import_order.approved"
	EventImportOrderCompleted = "import_order.completed"
	EventImportOrderCancelled = "import_order.cancelled"
	EventInventoryUpdated     = "inventory.updated"
	EventProductCreated       = "product.created"
	EventProductUpdated       = "product.updated"
)

// validate runs the struct validator and reports the first failure.
func validate(req any) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return apperr.Validation("Validation failed: Field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	return nil
}
