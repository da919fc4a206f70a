package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.PaymentEventRepository = (*PaymentEventRepository)(nil)

type PaymentEventRepository struct {
	mu     sync.RWMutex
	events map[string]entity.PaymentEvent
}

func NewPaymentEventRepository() *PaymentEventRepository {
	return &PaymentEventRepository{events: make(map[string]entity.PaymentEvent)}
}

func (r *PaymentEventRepository) Seen(_ context.Context, eventID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.events[eventID]
	return ok, nil
}

func (r *PaymentEventRepository) Record(_ context.Context, event *entity.PaymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; ok {
		return domain.ErrDuplicate
	}
	r.events[event.ID] = *event
	return nil
}

// Get devuelve el evento registrado (tests).
func (r *PaymentEventRepository) Get(eventID string) (entity.PaymentEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[eventID]
	return e, ok
}
