package repository

import (
	"context"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// ProductFilter criterios de listado. Status vacío significa cualquier estado.
type ProductFilter struct {
	Category string
	Tags     []string // coincide si el producto tiene al menos uno
	Status   string
	Search   string // sobre título, descripción y tags
	Limit    int
	Offset   int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	// Create falla con domain.ErrDuplicate si SKU o ExternalID ya existen.
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByExternalID(ctx context.Context, externalID string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	Count(ctx context.Context) (int, error)
}
