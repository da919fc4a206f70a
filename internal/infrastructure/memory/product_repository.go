package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository productos en memoria con SKU y ExternalID únicos (cuando no son vacíos).
type ProductRepository struct {
	mu    sync.RWMutex
	items map[string]*entity.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{items: make(map[string]*entity.Product)}
}

// conflicts busca otro producto que ya use el SKU o el ExternalID. Llamar con el lock tomado.
func (r *ProductRepository) conflicts(p *entity.Product) bool {
	for id, other := range r.items {
		if id == p.ID {
			continue
		}
		if p.SKU != "" && other.SKU == p.SKU {
			return true
		}
		if p.ExternalID != "" && other.ExternalID == p.ExternalID {
			return true
		}
	}
	return false
}

func (r *ProductRepository) Create(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[product.ID]; ok || r.conflicts(product) {
		return domain.ErrDuplicate
	}
	r.items[product.ID] = cloneProduct(product)
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneProduct(r.items[id]), nil
}

func (r *ProductRepository) GetByExternalID(_ context.Context, externalID string) (*entity.Product, error) {
	return r.findBy(func(p *entity.Product) bool { return externalID != "" && p.ExternalID == externalID })
}

func (r *ProductRepository) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	return r.findBy(func(p *entity.Product) bool { return sku != "" && p.SKU == sku })
}

func (r *ProductRepository) findBy(match func(*entity.Product) bool) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if match(p) {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (r *ProductRepository) Update(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[product.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.conflicts(product) {
		return domain.ErrDuplicate
	}
	r.items[product.ID] = cloneProduct(product)
	return nil
}

func (r *ProductRepository) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entity.Product
	for _, p := range r.items {
		if matchesFilter(p, f) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	out := make([]*entity.Product, 0, max(f.Limit, 0))
	for i := max(f.Offset, 0); i < total && (f.Limit <= 0 || len(out) < f.Limit); i++ {
		out = append(out, cloneProduct(matched[i]))
	}
	return out, total, nil
}

func (r *ProductRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

func matchesFilter(p *entity.Product, f repository.ProductFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if len(f.Tags) > 0 && !hasAnyTag(p.Tags, f.Tags) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		hay := strings.ToLower(p.Title + " " + p.Description + " " + strings.Join(p.Tags, " "))
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
