package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductImageDTO imagen de producto.
type ProductImageDTO struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// ProductVariantDTO variante de producto.
type ProductVariantDTO struct {
	ExternalID string            `json:"externalId,omitempty"`
	Title      string            `json:"title"`
	Options    map[string]string `json:"options,omitempty"`
	Price      decimal.Decimal   `json:"price"`
	Quantity   int               `json:"quantity"`
}

// CreateProductRequest entrada para crear producto (admin).
type CreateProductRequest struct {
	SKU            string            `json:"sku"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Price          decimal.Decimal   `json:"price"`
	CompareAtPrice *decimal.Decimal  `json:"compareAtPrice"`
	Cost           *decimal.Decimal  `json:"cost"`
	Quantity       int               `json:"quantity"`
	Barcode        string            `json:"barcode"`
	Images         []ProductImageDTO `json:"images"`
	Category       string            `json:"category"`
	Tags           []string          `json:"tags"`
	Status         string            `json:"status"`
}

// Validate reglas de creación. Status vacío queda en draft.
func (r CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return invalid("title es requerido")
	}
	if r.Price.IsNegative() {
		return invalid("price no puede ser negativo")
	}
	if r.Quantity < 0 {
		return invalid("quantity no puede ser negativo")
	}
	if r.CompareAtPrice != nil && r.CompareAtPrice.IsNegative() {
		return invalid("compareAtPrice no puede ser negativo")
	}
	if r.Cost != nil && r.Cost.IsNegative() {
		return invalid("cost no puede ser negativo")
	}
	return validStatus(r.Status)
}

func validStatus(s string) error {
	switch s {
	case "", "active", "draft", "archived":
		return nil
	}
	return invalid("status debe ser active, draft o archived")
}

// UpdateProductRequest actualización parcial (admin). Campos nil no se tocan.
type UpdateProductRequest struct {
	SKU            *string            `json:"sku"`
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	Price          *decimal.Decimal   `json:"price"`
	CompareAtPrice *decimal.Decimal   `json:"compareAtPrice"`
	Cost           *decimal.Decimal   `json:"cost"`
	Quantity       *int               `json:"quantity"`
	Barcode        *string            `json:"barcode"`
	Images         *[]ProductImageDTO `json:"images"`
	Category       *string            `json:"category"`
	Tags           *[]string          `json:"tags"`
	Status         *string            `json:"status"`
}

// Validate reglas de actualización.
func (r UpdateProductRequest) Validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return invalid("title no puede ser vacío")
	}
	if r.Price != nil && r.Price.IsNegative() {
		return invalid("price no puede ser negativo")
	}
	if r.Quantity != nil && *r.Quantity < 0 {
		return invalid("quantity no puede ser negativo")
	}
	if r.Status != nil {
		if *r.Status == "" {
			return invalid("status no puede ser vacío")
		}
		return validStatus(*r.Status)
	}
	return nil
}

// ListProductsQuery filtros del listado público.
type ListProductsQuery struct {
	PageRequest
	Category string   `query:"category"`
	Tags     []string `query:"tags"`
	Status   string   `query:"status"`
	Search   string   `query:"search"`
}

// Validate solo revisa el status si viene.
func (q ListProductsQuery) Validate() error {
	return validStatus(q.Status)
}

// ProductResponse salida de producto.
type ProductResponse struct {
	ID             string              `json:"id"`
	ExternalID     string              `json:"externalId,omitempty"`
	SKU            string              `json:"sku,omitempty"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Price          decimal.Decimal     `json:"price"`
	CompareAtPrice *decimal.Decimal    `json:"compareAtPrice,omitempty"`
	Cost           *decimal.Decimal    `json:"cost,omitempty"`
	Quantity       int                 `json:"quantity"`
	Barcode        string              `json:"barcode,omitempty"`
	Images         []ProductImageDTO   `json:"images"`
	Category       string              `json:"category"`
	Tags           []string            `json:"tags"`
	Variants       []ProductVariantDTO `json:"variants"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// ProductListResponse página de productos.
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Pagination Pagination        `json:"pagination"`
}
