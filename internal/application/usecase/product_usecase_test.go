package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/infrastructure/memory"
)

func createProduct(t *testing.T, uc *ProductUseCase, sku, status string, tags ...string) *dto.ProductResponse {
	t.Helper()
	out, err := uc.Create(context.Background(), dto.CreateProductRequest{
		SKU: sku, Title: "Producto " + sku, Price: decimal.RequireFromString("19.99"), Quantity: 5,
		Tags: tags, Status: status,
	})
	require.NoError(t, err)
	return out
}

func TestProductUseCase_Create(t *testing.T) {
	uc := NewProductUseCase(memory.NewProductRepository())
	out := createProduct(t, uc, "SKU-1", "", " rojo ", "", "rojo")

	assert.Equal(t, entity.ProductDraft, out.Status, "sin status queda en draft")
	assert.Equal(t, DefaultCategory, out.Category)
	assert.Equal(t, []string{"rojo"}, out.Tags)

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{SKU: "SKU-1", Title: "Otro", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{Title: "  ", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_VisibilidadPorRol(t *testing.T) {
	uc := NewProductUseCase(memory.NewProductRepository())
	ctx := context.Background()
	active := createProduct(t, uc, "A", entity.ProductActive)
	draft := createProduct(t, uc, "D", entity.ProductDraft)

	_, err := uc.GetByID(ctx, active.ID, false)
	assert.NoError(t, err)
	_, err = uc.GetByID(ctx, draft.ID, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.GetByID(ctx, draft.ID, true)
	assert.NoError(t, err)

	// un cliente que pide draft igual recibe solo activos
	list, err := uc.List(ctx, dto.ListProductsQuery{Status: entity.ProductDraft}, false)
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, active.ID, list.Products[0].ID)

	list, err = uc.List(ctx, dto.ListProductsQuery{Status: entity.ProductDraft}, true)
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, draft.ID, list.Products[0].ID)
}

func TestProductUseCase_ListPaginacion(t *testing.T) {
	uc := NewProductUseCase(memory.NewProductRepository())
	ctx := context.Background()
	for _, sku := range []string{"P1", "P2", "P3", "P4", "P5"} {
		createProduct(t, uc, sku, entity.ProductActive)
	}

	list, err := uc.List(ctx, dto.ListProductsQuery{PageRequest: dto.PageRequest{Page: 2, Limit: 2}}, false)
	require.NoError(t, err)
	assert.Len(t, list.Products, 2)
	assert.Equal(t, dto.Pagination{Page: 2, Limit: 2, Total: 5, Pages: 3}, list.Pagination)

	list, err = uc.List(ctx, dto.ListProductsQuery{PageRequest: dto.PageRequest{Limit: 1000}}, false)
	require.NoError(t, err)
	assert.Equal(t, dto.MaxPageLimit, list.Pagination.Limit)
	assert.Equal(t, 1, list.Pagination.Page)

	_, err = uc.List(ctx, dto.ListProductsQuery{Status: "otro"}, true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_UpdateYArchive(t *testing.T) {
	uc := NewProductUseCase(memory.NewProductRepository())
	ctx := context.Background()
	p := createProduct(t, uc, "U1", entity.ProductActive)

	price := decimal.RequireFromString("25.50")
	title := "Nuevo título"
	out, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: &price, Title: &title})
	require.NoError(t, err)
	assert.True(t, price.Equal(out.Price))
	assert.Equal(t, title, out.Title)
	assert.Equal(t, "U1", out.SKU)

	archived, err := uc.Archive(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProductArchived, archived.Status)

	_, err = uc.Archive(ctx, p.ID)
	assert.NoError(t, err, "archivar dos veces no falla")

	_, err = uc.Update(ctx, "nope", dto.UpdateProductRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
