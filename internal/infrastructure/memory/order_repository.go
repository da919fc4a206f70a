package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepository)(nil)

// OrderRepository órdenes en memoria. Los cambios de estado son compare-and-set bajo el mutex.
type OrderRepository struct {
	mu       sync.RWMutex
	orders   map[string]*entity.Order
	byNumber map[string]string
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:   make(map[string]*entity.Order),
		byNumber: make(map[string]string),
	}
}

func (r *OrderRepository) Create(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byNumber[order.OrderNumber]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.orders[order.ID]; ok {
		return domain.ErrDuplicate
	}
	r.orders[order.ID] = cloneOrder(order)
	r.byNumber[order.OrderNumber] = order.ID
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneOrder(r.orders[id]), nil
}

func (r *OrderRepository) GetByPaymentIntentID(_ context.Context, intentID string) (*entity.Order, error) {
	if intentID == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.PaymentIntentID == intentID {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (r *OrderRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]*entity.Order, error) {
	return r.list(func(o *entity.Order) bool { return o.UserID == userID }, limit, offset), nil
}

func (r *OrderRepository) CountByUser(_ context.Context, userID string) (int, error) {
	return r.count(func(o *entity.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) ListAll(_ context.Context, status string, limit, offset int) ([]*entity.Order, error) {
	return r.list(statusMatch(status), limit, offset), nil
}

func (r *OrderRepository) Count(_ context.Context, status string) (int, error) {
	return r.count(statusMatch(status)), nil
}

func statusMatch(status string) func(*entity.Order) bool {
	return func(o *entity.Order) bool { return status == "" || string(o.Status) == status }
}

func (r *OrderRepository) list(match func(*entity.Order) bool, limit, offset int) []*entity.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*entity.Order
	for _, o := range r.orders {
		if match(o) {
			matched = append(matched, o)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].OrderNumber > matched[j].OrderNumber
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	out := make([]*entity.Order, 0, max(limit, 0))
	for i := max(offset, 0); i < len(matched) && (limit <= 0 || len(out) < limit); i++ {
		out = append(out, cloneOrder(matched[i]))
	}
	return out
}

func (r *OrderRepository) count(match func(*entity.Order) bool) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, o := range r.orders {
		if match(o) {
			n++
		}
	}
	return n
}

func (r *OrderRepository) UpdateFulfillment(_ context.Context, id string, change repository.FulfillmentChange) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.Status != change.From {
		return false, nil
	}
	o.Status = change.To
	if change.TrackingNumber != nil {
		o.TrackingNumber = *change.TrackingNumber
	}
	o.UpdatedAt = change.At
	return true, nil
}

func (r *OrderRepository) UpdatePaymentStatus(_ context.Context, id string, change repository.PaymentChange) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if o.PaymentStatus != change.From {
		return false, nil
	}
	o.PaymentStatus = change.To
	if change.Status != nil {
		o.Status = *change.Status
	}
	o.UpdatedAt = change.At
	return true, nil
}

func (r *OrderRepository) SetPaymentIntent(_ context.Context, id, intentID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.PaymentIntentID = intentID
	o.UpdatedAt = at
	return nil
}
