package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
)

type ledgerRepo struct {
	a   access
	now func() time.Time
}

func (r *ledgerRepo) Append(_ context.Context, tx *model.InventoryTransaction) error {
	return r.a.with(func(st *state) error {
		for _, existing := range st.ledger {
			if existing.TransactionNumber == tx.TransactionNumber {
				return apperr.Persistence(errDuplicate("inventory_transactions.transaction_number", tx.TransactionNumber))
			}
		}
		tx.ID = st.nextID("inventory_transactions")
		tx.CreatedAt = r.now()
		st.ledger = append(st.ledger, *tx)
		return nil
	})
}

func (r *ledgerRepo) FindByID(_ context.Context, id uint) (*model.InventoryTransaction, error) {
	var out *model.InventoryTransaction
	err := r.a.with(func(st *state) error {
		for _, tx := range st.ledger {
			if tx.ID == id {
				tx := tx
				out = &tx
				return nil
			}
		}
		return apperr.NotFound("inventory transaction %d not found", id)
	})
	return out, err
}

func (r *ledgerRepo) FindByReference(_ context.Context, refType model.ReferenceType, refID uint) ([]model.InventoryTransaction, error) {
	var out []model.InventoryTransaction
	err := r.a.with(func(st *state) error {
		for _, tx := range st.ledger {
			if tx.ReferenceType == refType && tx.ReferenceID == refID {
				out = append(out, tx)
			}
		}
		return nil
	})
	return out, err
}

func (r *ledgerRepo) List(_ context.Context, f model.TransactionFilter) ([]model.InventoryTransaction, error) {
	var out []model.InventoryTransaction
	err := r.a.with(func(st *state) error {
		for i := len(st.ledger) - 1; i >= 0; i-- {
			tx := st.ledger[i]
			if f.Matches(&tx) {
				out = append(out, tx)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].TransactionDate.After(out[j].TransactionDate) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, err
}

type duplicateError struct {
	key   string
	value any
}

func (e duplicateError) Error() string {
	return fmt.Sprintf("duplicate entry %v for key %s", e.value, e.key)
}

func errDuplicate(key string, value any) error {
	return duplicateError{key: key, value: value}
}
