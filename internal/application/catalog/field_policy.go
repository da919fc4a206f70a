package catalog

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// Campos de Product que la sincronización sabe escribir.
const (
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldPrice          = "price"
	FieldCompareAtPrice = "compareAtPrice"
	FieldSKU            = "sku"
	FieldBarcode        = "barcode"
	FieldQuantity       = "quantity"
	FieldImages         = "images"
	FieldCategory       = "category"
	FieldTags           = "tags"
	FieldVariants       = "variants"
	FieldStatus         = "status"
)

var syncFields = []string{
	FieldTitle, FieldDescription, FieldPrice, FieldCompareAtPrice, FieldSKU, FieldBarcode,
	FieldQuantity, FieldImages, FieldCategory, FieldTags, FieldVariants, FieldStatus,
}

// FieldPolicy define qué campos son de autoridad local. Un campo local conserva el valor
// guardado en cada sincronización; el resto lo sobreescribe el catálogo externo.
// La política vacía es overwrite completo.
type FieldPolicy struct {
	local map[string]bool
}

// NewFieldPolicy construye la política. Nombres desconocidos son error de configuración.
func NewFieldPolicy(localFields []string) (FieldPolicy, error) {
	p := FieldPolicy{local: make(map[string]bool, len(localFields))}
	for _, f := range localFields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !slices.Contains(syncFields, f) {
			return FieldPolicy{}, fmt.Errorf("%w: campo de sincronización desconocido %q", domain.ErrInvalidInput, f)
		}
		p.local[f] = true
	}
	return p, nil
}

// IsLocal indica si el campo es de autoridad local.
func (p FieldPolicy) IsLocal(field string) bool {
	return p.local[field]
}

// LocalFields lista ordenada de campos locales.
func (p FieldPolicy) LocalFields() []string {
	out := slices.Collect(maps.Keys(p.local))
	sort.Strings(out)
	return out
}

// Merge arma el producto a guardar: parte de current (ID, ExternalID, fechas) y copia
// de remote solo los campos externos.
func (p FieldPolicy) Merge(current, remote *entity.Product) *entity.Product {
	out := *current
	if !p.IsLocal(FieldTitle) {
		out.Title = remote.Title
	}
	if !p.IsLocal(FieldDescription) {
		out.Description = remote.Description
	}
	if !p.IsLocal(FieldPrice) {
		out.Price = remote.Price
	}
	if !p.IsLocal(FieldCompareAtPrice) {
		out.CompareAtPrice = remote.CompareAtPrice
	}
	if !p.IsLocal(FieldSKU) {
		out.SKU = remote.SKU
	}
	if !p.IsLocal(FieldBarcode) {
		out.Barcode = remote.Barcode
	}
	if !p.IsLocal(FieldQuantity) {
		out.Quantity = remote.Quantity
	}
	if !p.IsLocal(FieldImages) {
		out.Images = remote.Images
	}
	if !p.IsLocal(FieldCategory) {
		out.Category = remote.Category
	}
	if !p.IsLocal(FieldTags) {
		out.Tags = remote.Tags
	}
	if !p.IsLocal(FieldVariants) {
		out.Variants = remote.Variants
	}
	if !p.IsLocal(FieldStatus) {
		out.Status = remote.Status
	}
	return &out
}

// SameContent compara los campos que escribe la sincronización.
func SameContent(a, b *entity.Product) bool {
	return a.Title == b.Title &&
		a.Description == b.Description &&
		a.Price.Equal(b.Price) &&
		equalDecimalPtr(a.CompareAtPrice, b.CompareAtPrice) &&
		a.SKU == b.SKU &&
		a.Barcode == b.Barcode &&
		a.Quantity == b.Quantity &&
		slices.Equal(a.Images, b.Images) &&
		a.Category == b.Category &&
		slices.Equal(a.Tags, b.Tags) &&
		slices.EqualFunc(a.Variants, b.Variants, equalVariant) &&
		a.Status == b.Status
}

func equalDecimalPtr(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func equalVariant(a, b entity.ProductVariant) bool {
	return a.ExternalID == b.ExternalID &&
		a.Title == b.Title &&
		a.Price.Equal(b.Price) &&
		a.Quantity == b.Quantity &&
		maps.Equal(a.Options, b.Options)
}
