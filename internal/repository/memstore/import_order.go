package memstore

import (
	"context"
	"sort"
	"time"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
)

type importOrderRepo struct {
	a   access
	now func() time.Time
}

func (r *importOrderRepo) Create(_ context.Context, order *model.ImportOrder) error {
	return r.a.with(func(st *state) error {
		now := r.now()
		order.ID = st.nextID("import_orders")
		order.CreatedAt, order.UpdatedAt = now, now
		for i := range order.Details {
			d := &order.Details[i]
			d.ID = st.nextID("import_order_details")
			d.ImportOrderID = order.ID
			d.CreatedAt, d.UpdatedAt = now, now
			st.details[d.ID] = *d
		}
		header := *order
		header.Details = nil
		st.orders[order.ID] = header
		return nil
	})
}

func (r *importOrderRepo) FindByID(_ context.Context, id uint) (*model.ImportOrder, error) {
	var out *model.ImportOrder
	err := r.a.with(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return apperr.NotFound("import order %d not found", id)
		}
		o.Details = detailsOf(st, id)
		out = &o
		return nil
	})
	return out, err
}

// FindByIDForUpdate needs no extra locking: units of work are serialized.
func (r *importOrderRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.ImportOrder, error) {
	return r.FindByID(ctx, id)
}

func (r *importOrderRepo) FindAll(_ context.Context, f model.ImportOrderFilter) ([]model.ImportOrder, error) {
	var out []model.ImportOrder
	err := r.a.with(func(st *state) error {
		for id, o := range st.orders {
			if !f.Matches(&o) {
				continue
			}
			o.Details = detailsOf(st, id)
			out = append(out, o)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r *importOrderRepo) UpdateStatus(_ context.Context, order *model.ImportOrder) error {
	return r.a.with(func(st *state) error {
		current, ok := st.orders[order.ID]
		if !ok {
			return apperr.NotFound("import order %d not found", order.ID)
		}
		if current.Version != order.Version {
			return apperr.Conflict("import order %d was modified concurrently", order.ID)
		}
		current.Status = order.Status
		current.ImportDate = order.ImportDate
		current.CancelReason = order.CancelReason
		current.ApprovedAt = order.ApprovedAt
		current.ApprovedBy = order.ApprovedBy
		current.CompletedAt = order.CompletedAt
		current.CancelledAt = order.CancelledAt
		current.UpdatedBy = order.UpdatedBy
		current.UpdatedAt = r.now()
		current.Version++
		st.orders[order.ID] = current

		order.Version = current.Version
		order.UpdatedAt = current.UpdatedAt
		return nil
	})
}

func (r *importOrderRepo) UpdateDetailStatus(_ context.Context, detail *model.ImportOrderDetail, status model.DetailStatus) error {
	return r.a.with(func(st *state) error {
		d, ok := st.details[detail.ID]
		if !ok {
			return apperr.NotFound("import order detail %d not found", detail.ID)
		}
		d.Status = status
		d.UpdatedAt = r.now()
		st.details[detail.ID] = d

		detail.Status = d.Status
		detail.UpdatedAt = d.UpdatedAt
		return nil
	})
}

func detailsOf(st *state, orderID uint) []model.ImportOrderDetail {
	var out []model.ImportOrderDetail
	for _, d := range st.details {
		if d.ImportOrderID == orderID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
