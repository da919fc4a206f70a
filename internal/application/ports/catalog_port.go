package ports

import (
	"context"
	"time"
)

// RemoteImage imagen del catálogo externo.
type RemoteImage struct {
	Src string
	Alt string
}

// RemoteVariant variante del catálogo externo. Price viene como texto ("19.99").
type RemoteVariant struct {
	ID                string
	Title             string
	SKU               string
	Barcode           string
	Price             string
	CompareAtPrice    string
	InventoryQuantity int
	Option1           string
	Option2           string
	Option3           string
}

// RemoteProduct producto tal como lo entrega el catálogo externo.
type RemoteProduct struct {
	ID          string
	Title       string
	BodyHTML    string
	ProductType string
	Tags        string // separado por comas
	Status      string
	Variants    []RemoteVariant
	Images      []RemoteImage
	UpdatedAt   time.Time
}

// CatalogSource puerto de lectura paginada del catálogo externo.
// cursor vacío pide la primera página; next vacío indica que no hay más.
type CatalogSource interface {
	ListProducts(ctx context.Context, pageSize int, cursor string) (page []RemoteProduct, next string, err error)
}

// OrderMirror propaga el estado de despacho a la orden espejo en el sistema externo.
type OrderMirror interface {
	UpdateFulfillment(ctx context.Context, externalOrderID, status, trackingNumber string) error
}
