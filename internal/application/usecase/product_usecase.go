package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

// ProductUseCase casos de uso del catálogo: lectura pública y CRUD de administración.
// Archive es el único "borrado": deja el producto en status archived.
type ProductUseCase struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, now: time.Now}
}

// Create crea un producto local (sin ExternalID). SKU repetido devuelve ErrDuplicate.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = entity.ProductDraft
	}
	now := uc.now().UTC()
	product := &entity.Product{
		ID:             uuid.New().String(),
		SKU:            strings.TrimSpace(in.SKU),
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Price:          in.Price,
		CompareAtPrice: in.CompareAtPrice,
		Cost:           in.Cost,
		Quantity:       in.Quantity,
		Barcode:        in.Barcode,
		Images:         toImages(in.Images),
		Category:       categoryOrDefault(in.Category),
		Tags:           cleanTags(in.Tags),
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto. Quien no es admin solo ve productos activos.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string, isAdmin bool) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || (!isAdmin && product.Status != entity.ProductActive) {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// Update actualización parcial. No toca ExternalID ni variantes (las maneja la sincronización).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.SKU != nil {
		product.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Title != nil {
		product.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.CompareAtPrice != nil {
		product.CompareAtPrice = in.CompareAtPrice
	}
	if in.Cost != nil {
		product.Cost = in.Cost
	}
	if in.Quantity != nil {
		product.Quantity = *in.Quantity
	}
	if in.Barcode != nil {
		product.Barcode = *in.Barcode
	}
	if in.Images != nil {
		product.Images = toImages(*in.Images)
	}
	if in.Category != nil {
		product.Category = categoryOrDefault(*in.Category)
	}
	if in.Tags != nil {
		product.Tags = cleanTags(*in.Tags)
	}
	if in.Status != nil {
		product.Status = *in.Status
	}
	product.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// Archive borrado lógico. Archivar dos veces no es error.
func (uc *ProductUseCase) Archive(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.Status != entity.ProductArchived {
		product.Status = entity.ProductArchived
		product.UpdatedAt = uc.now().UTC()
		if err := uc.repo.Update(ctx, product); err != nil {
			return nil, err
		}
	}
	return ToProductResponse(product), nil
}

// List lista con filtros y paginación. Sin status se listan los activos; solo un admin puede
// pedir draft o archived.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ListProductsQuery, isAdmin bool) (*dto.ProductListResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q.Normalize()
	status := q.Status
	if status == "" || !isAdmin {
		status = entity.ProductActive
	}
	list, total, err := uc.repo.List(ctx, repository.ProductFilter{
		Category: strings.TrimSpace(q.Category),
		Tags:     cleanTags(q.Tags),
		Status:   status,
		Search:   strings.TrimSpace(q.Search),
		Limit:    q.Limit,
		Offset:   q.Offset(),
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{Products: out, Pagination: dto.NewPagination(q.PageRequest, total)}, nil
}

// DefaultCategory categoría cuando no se indica una.
const DefaultCategory = "Uncategorized"

func categoryOrDefault(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return DefaultCategory
	}
	return c
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toImages(in []dto.ProductImageDTO) []entity.ProductImage {
	out := make([]entity.ProductImage, 0, len(in))
	for _, img := range in {
		if strings.TrimSpace(img.URL) == "" {
			continue
		}
		out = append(out, entity.ProductImage{URL: img.URL, Alt: img.Alt})
	}
	return out
}

// ToProductResponse mapea la entidad a la respuesta HTTP.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	images := make([]dto.ProductImageDTO, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, dto.ProductImageDTO{URL: img.URL, Alt: img.Alt})
	}
	variants := make([]dto.ProductVariantDTO, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, dto.ProductVariantDTO{
			ExternalID: v.ExternalID, Title: v.Title, Options: v.Options, Price: v.Price, Quantity: v.Quantity,
		})
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &dto.ProductResponse{
		ID:             p.ID,
		ExternalID:     p.ExternalID,
		SKU:            p.SKU,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Cost:           p.Cost,
		Quantity:       p.Quantity,
		Barcode:        p.Barcode,
		Images:         images,
		Category:       p.Category,
		Tags:           tags,
		Variants:       variants,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
