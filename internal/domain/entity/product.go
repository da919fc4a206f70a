package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de producto. Archived es el borrado lógico.
const (
	ProductActive   = "active"
	ProductDraft    = "draft"
	ProductArchived = "archived"
)

// IsValidProductStatus valida el estado de producto.
func IsValidProductStatus(s string) bool {
	return s == ProductActive || s == ProductDraft || s == ProductArchived
}

// ProductImage imagen de catálogo.
type ProductImage struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// ProductVariant variante del catálogo externo (talla, color, ...).
type ProductVariant struct {
	ExternalID string            `json:"externalId"`
	Title      string            `json:"title"`
	Options    map[string]string `json:"options,omitempty"`
	Price      decimal.Decimal   `json:"price"`
	Quantity   int               `json:"quantity"`
}

// Product producto del catálogo. ExternalID (id en Shopify) es opcional y, si existe, es la llave de upsert.
type Product struct {
	ID             string
	ExternalID     string // vacío si el producto se creó localmente
	SKU            string // único cuando no es vacío
	Title          string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Cost           *decimal.Decimal
	Quantity       int
	Barcode        string
	Images         []ProductImage
	Category       string
	Tags           []string
	Variants       []ProductVariant
	Status         string // active, draft, archived
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsExternal indica si el producto viene del catálogo externo.
func (p *Product) IsExternal() bool {
	return p.ExternalID != ""
}
