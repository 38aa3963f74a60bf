// Package memstore is an in-memory repository.Store. Transact runs the
// callback against a private copy of the data and publishes it only on
// success, so a failed unit of work leaves nothing behind. Units of work are
// serialized.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-liquor-inventory/internal/apperr"
	"go-liquor-inventory/internal/model"
	"go-liquor-inventory/internal/repository"
)

type state struct {
	products    map[uint]model.Product
	suppliers   map[uint]model.Supplier
	inventories map[uint]model.Inventory // keyed by product id
	ledger      []model.InventoryTransaction
	orders      map[uint]model.ImportOrder // headers, details live in details
	details     map[uint]model.ImportOrderDetail
	seq         map[string]uint
}

func newState() *state {
	return &state{
		products:    map[uint]model.Product{},
		suppliers:   map[uint]model.Supplier{},
		inventories: map[uint]model.Inventory{},
		orders:      map[uint]model.ImportOrder{},
		details:     map[uint]model.ImportOrderDetail{},
		seq:         map[string]uint{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.inventories {
		c.inventories[k] = v
	}
	c.ledger = append([]model.InventoryTransaction(nil), s.ledger...)
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.details {
		c.details[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	return c
}

func (s *state) nextID(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

// access runs fn against a state, taking the store lock when needed.
type access interface {
	with(fn func(st *state) error) error
}

// Store implements repository.Store in memory.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

type locked struct{ s *Store }

func (l locked) with(fn func(st *state) error) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return fn(l.s.st)
}

type bound struct {
	st  *state
	now func() time.Time
}

func (b bound) with(fn func(st *state) error) error {
	return fn(b.st)
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepo{a: locked{s}, now: s.now}
}
func (s *Store) Suppliers() repository.SupplierRepository {
	return &supplierRepo{a: locked{s}, now: s.now}
}
func (s *Store) Inventories() repository.InventoryRepository {
	return &inventoryRepo{a: locked{s}, now: s.now}
}
func (s *Store) Ledger() repository.LedgerRepository {
	return &ledgerRepo{a: locked{s}, now: s.now}
}
func (s *Store) ImportOrders() repository.ImportOrderRepository {
	return &importOrderRepo{a: locked{s}, now: s.now}
}

func (s *Store) Transact(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return apperr.Persistence(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&txRepos{b: bound{st: work, now: s.now}}); err != nil {
		return err
	}
	s.st = work
	return nil
}

type txRepos struct{ b bound }

func (t *txRepos) Products() repository.ProductRepository {
	return &productRepo{a: t.b, now: t.b.now}
}
func (t *txRepos) Suppliers() repository.SupplierRepository {
	return &supplierRepo{a: t.b, now: t.b.now}
}
func (t *txRepos) Inventories() repository.InventoryRepository {
	return &inventoryRepo{a: t.b, now: t.b.now}
}
func (t *txRepos) Ledger() repository.LedgerRepository {
	return &ledgerRepo{a: t.b, now: t.b.now}
}
func (t *txRepos) ImportOrders() repository.ImportOrderRepository {
	return &importOrderRepo{a: t.b, now: t.b.now}
}

// products

type productRepo struct {
	a   access
	now func() time.Time
}

func (r *productRepo) Create(_ context.Context, p *model.Product) error {
	return r.a.with(func(st *state) error {
		for _, existing := range st.products {
			if existing.SKU == p.SKU {
				return apperr.Persistence(errDuplicate("products.sku", p.SKU))
			}
		}
		p.ID = st.nextID("products")
		p.CreatedAt, p.UpdatedAt = r.now(), r.now()
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) FindAll(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	err := r.a.with(func(st *state) error {
		for _, p := range st.products {
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *productRepo) FindByID(_ context.Context, id uint) (*model.Product, error) {
	var out *model.Product
	err := r.a.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return apperr.NotFound("product %d not found", id)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *productRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	var out *model.Product
	err := r.a.with(func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				p := p
				out = &p
				return nil
			}
		}
		return apperr.NotFound("product with sku %q not found", sku)
	})
	return out, err
}

func (r *productRepo) Update(_ context.Context, p *model.Product) error {
	return r.a.with(func(st *state) error {
		existing, ok := st.products[p.ID]
		if !ok {
			return apperr.NotFound("product %d not found", p.ID)
		}
		stock := existing.StockQuantity
		updated := *p
		updated.StockQuantity = stock
		updated.CreatedAt = existing.CreatedAt
		updated.CreatedBy = existing.CreatedBy
		updated.UpdatedAt = r.now()
		st.products[p.ID] = updated
		return nil
	})
}

func (r *productRepo) UpdateStock(_ context.Context, id uint, stock int, updatedBy string) error {
	return r.a.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return apperr.NotFound("product %d not found", id)
		}
		p.StockQuantity = stock
		p.UpdatedBy = updatedBy
		p.UpdatedAt = r.now()
		st.products[id] = p
		return nil
	})
}

// suppliers

type supplierRepo struct {
	a   access
	now func() time.Time
}

func (r *supplierRepo) Create(_ context.Context, s *model.Supplier) error {
	return r.a.with(func(st *state) error {
		s.ID = st.nextID("suppliers")
		s.CreatedAt, s.UpdatedAt = r.now(), r.now()
		st.suppliers[s.ID] = *s
		return nil
	})
}

func (r *supplierRepo) FindAll(_ context.Context) ([]model.Supplier, error) {
	var out []model.Supplier
	err := r.a.with(func(st *state) error {
		for _, s := range st.suppliers {
			out = append(out, s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *supplierRepo) FindByID(_ context.Context, id uint) (*model.Supplier, error) {
	var out *model.Supplier
	err := r.a.with(func(st *state) error {
		s, ok := st.suppliers[id]
		if !ok {
			return apperr.NotFound("supplier %d not found", id)
		}
		out = &s
		return nil
	})
	return out, err
}
