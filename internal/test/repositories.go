package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
	"github.com/polkiloo/printshop/internal/domain/model"
	"github.com/polkiloo/printshop/internal/domain/repository"
)

// MemoryStore keeps orders and designs in memory and satisfies the order,
// design and session repositories. It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.Mutex
	orders    map[int64]model.Order
	designs   map[int64]model.Design
	nextOrder int64
	nextDsgn  int64

	// Injected failures.
	CreateOrderErr     error
	SetOriginalPathErr error
	DeleteOrderErr     error
	CreateDesignErr    error
	SetConvertedErr    error
	SessionErr         error

	// Reads counts lookups, Sessions counts acquired sessions.
	Reads    int
	Sessions int
	Deleted  []int64
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:    make(map[int64]model.Order),
		designs:   make(map[int64]model.Design),
		nextOrder: 1,
		nextDsgn:  1,
	}
}

// PutOrder seeds an order, keeping its id.
func (s *MemoryStore) PutOrder(o model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.Status == "" {
		o.Status = model.OrderStatusNew
	}
	s.orders[o.ID] = o
	if o.ID >= s.nextOrder {
		s.nextOrder = o.ID + 1
	}
}

// PutDesign seeds a design, keeping its id.
func (s *MemoryStore) PutDesign(d model.Design) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.Status == "" {
		d.Status = model.DesignStatusCompleted
	}
	s.designs[d.ID] = d
	if d.ID >= s.nextDsgn {
		s.nextDsgn = d.ID + 1
	}
}

// Order returns a snapshot of the stored order.
func (s *MemoryStore) Order(id int64) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return o, ok
}

// Design returns a snapshot of the stored design.
func (s *MemoryStore) Design(id int64) (model.Design, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.designs[id]
	return d, ok
}

// ReadCount returns the number of lookups served so far.
func (s *MemoryStore) ReadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Reads
}

func (s *MemoryStore) Orders() repository.OrderRepository { return memoryOrders{s} }

func (s *MemoryStore) Designs() repository.DesignRepository { return memoryDesigns{s} }

// WithinSession runs fn against the same store.
func (s *MemoryStore) WithinSession(ctx context.Context, fn func(repository.Session) error) error {
	s.mu.Lock()
	s.Sessions++
	err := s.SessionErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return fn(s)
}

type memoryOrders struct{ s *MemoryStore }

func (r memoryOrders) Create(ctx context.Context, clientInfo *string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreateOrderErr != nil {
		return nil, r.s.CreateOrderErr
	}
	o := model.Order{ID: r.s.nextOrder, ClientInfo: clientInfo, Status: model.OrderStatusNew, CreatedAt: time.Now()}
	r.s.nextOrder++
	r.s.orders[o.ID] = o
	return &o, nil
}

func (r memoryOrders) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Reads++
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &o, nil
}

func (r memoryOrders) SetOriginalPath(ctx context.Context, id int64, remotePath string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.SetOriginalPathErr != nil {
		return r.s.SetOriginalPathErr
	}
	o, ok := r.s.orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.OriginalPath = remotePath
	r.s.orders[id] = o
	return nil
}

func (r memoryOrders) SetOriginalPreviewPath(ctx context.Context, id int64, remotePath string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.OriginalPreviewPath = &remotePath
	r.s.orders[id] = o
	return nil
}

func (r memoryOrders) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.DeleteOrderErr != nil {
		return r.s.DeleteOrderErr
	}
	if _, ok := r.s.orders[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(r.s.orders, id)
	for dID, d := range r.s.designs {
		if d.OrderID == id {
			delete(r.s.designs, dID)
		}
	}
	r.s.Deleted = append(r.s.Deleted, id)
	return nil
}

type memoryDesigns struct{ s *MemoryStore }

func (r memoryDesigns) Create(ctx context.Context, orderID int64, designPath string) (*model.Design, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreateDesignErr != nil {
		return nil, r.s.CreateDesignErr
	}
	if _, ok := r.s.orders[orderID]; !ok {
		return nil, domainErrors.ErrNotFound
	}
	d := model.Design{ID: r.s.nextDsgn, OrderID: orderID, DesignPath: designPath, Status: model.DesignStatusCompleted, CreatedAt: time.Now()}
	r.s.nextDsgn++
	r.s.designs[d.ID] = d
	return &d, nil
}

func (r memoryDesigns) GetByID(ctx context.Context, id int64) (*model.Design, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Reads++
	d, ok := r.s.designs[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &d, nil
}

func (r memoryDesigns) GetByOrderID(ctx context.Context, orderID int64) (*model.Design, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Reads++
	var latest *model.Design
	for _, d := range r.s.designs {
		if d.OrderID != orderID {
			continue
		}
		if latest == nil || d.ID > latest.ID {
			d := d
			latest = &d
		}
	}
	if latest == nil {
		return nil, domainErrors.ErrNotFound
	}
	return latest, nil
}

func (r memoryDesigns) SetPreviewPath(ctx context.Context, id int64, remotePath string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.designs[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	d.DesignPreviewPath = &remotePath
	r.s.designs[id] = d
	return nil
}

func (r memoryDesigns) SetConvertedPath(ctx context.Context, id int64, remotePath string, status model.DesignStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.SetConvertedErr != nil {
		return r.s.SetConvertedErr
	}
	d, ok := r.s.designs[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	d.ConvertedPath = &remotePath
	d.Status = status
	r.s.designs[id] = d
	return nil
}
