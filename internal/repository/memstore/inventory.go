package memstore

import (
	"context"
	"sort"
	"time"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
)

type inventoryRepo struct {
	a   access
	now func() time.Time
}

func (r *inventoryRepo) FindByProductID(_ context.Context, productID uint) (*model.Inventory, error) {
	var out *model.Inventory
	err := r.a.with(func(st *state) error {
		inv, ok := st.inventories[productID]
		if !ok {
			return apperr.NotFound("inventory for product %d not found", productID)
		}
		out = &inv
		return nil
	})
	return out, err
}

// FindByProductIDForUpdate needs no extra locking: units of work are serialized.
func (r *inventoryRepo) FindByProductIDForUpdate(ctx context.Context, productID uint) (*model.Inventory, error) {
	return r.FindByProductID(ctx, productID)
}

func (r *inventoryRepo) FindAll(_ context.Context) ([]model.Inventory, error) {
	var out []model.Inventory
	err := r.a.with(func(st *state) error {
		for _, inv := range st.inventories {
			out = append(out, inv)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, err
}

func (r *inventoryRepo) Create(_ context.Context, inv *model.Inventory) error {
	return r.a.with(func(st *state) error {
		if _, ok := st.inventories[inv.ProductID]; ok {
			return apperr.Conflict("inventory for product %d was created concurrently", inv.ProductID)
		}
		inv.ID = st.nextID("inventories")
		inv.TotalValue = inv.Position().TotalValue
		inv.CreatedAt, inv.UpdatedAt = r.now(), r.now()
		st.inventories[inv.ProductID] = *inv
		return nil
	})
}

func (r *inventoryRepo) Save(_ context.Context, inv *model.Inventory) error {
	return r.a.with(func(st *state) error {
		current, ok := st.inventories[inv.ProductID]
		if !ok || current.ID != inv.ID {
			return apperr.NotFound("inventory for product %d not found", inv.ProductID)
		}
		if current.Version != inv.Version {
			return apperr.Conflict("inventory for product %d was modified concurrently", inv.ProductID)
		}
		pos := inv.Position()
		current.Quantity = pos.Quantity
		current.AverageCost = pos.AverageCost
		current.TotalValue = pos.TotalValue
		current.LastUpdated = inv.LastUpdated
		current.UpdatedAt = r.now()
		current.Version++
		st.inventories[inv.ProductID] = current

		inv.TotalValue = pos.TotalValue
		inv.Version = current.Version
		return nil
	})
}
