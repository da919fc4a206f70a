package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// DefaultCategory categoría para productos sin product_type.
const DefaultCategory = "Uncategorized"

// MapProduct convierte un producto remoto a su representación local canónica.
// No asigna ID ni fechas: eso lo decide el upsert.
//
// Reglas: precio, SKU, barcode y stock salen de la primera variante (0 / vacío si no hay);
// tags se separan por coma, se recortan, se normalizan a NFC y se descartan vacíos;
// status es active solo si el remoto está active, cualquier otro valor queda draft.
func MapProduct(rp ports.RemoteProduct) (*entity.Product, error) {
	if strings.TrimSpace(rp.ID) == "" {
		return nil, fmt.Errorf("%w: producto remoto sin id", domain.ErrInvalidInput)
	}
	p := &entity.Product{
		ExternalID:  rp.ID,
		Title:       strings.TrimSpace(rp.Title),
		Description: rp.BodyHTML,
		Price:       decimal.Zero,
		Category:    strings.TrimSpace(rp.ProductType),
		Tags:        ParseTags(rp.Tags),
		Images:      make([]entity.ProductImage, 0, len(rp.Images)),
		Variants:    make([]entity.ProductVariant, 0, len(rp.Variants)),
		Status:      entity.ProductDraft,
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if rp.Status == "active" {
		p.Status = entity.ProductActive
	}
	for _, img := range rp.Images {
		if img.Src == "" {
			continue
		}
		p.Images = append(p.Images, entity.ProductImage{URL: img.Src, Alt: img.Alt})
	}
	for i, v := range rp.Variants {
		price, err := parsePrice(v.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: producto %s variante %s: %v", domain.ErrInvalidInput, rp.ID, v.ID, err)
		}
		p.Variants = append(p.Variants, entity.ProductVariant{
			ExternalID: v.ID,
			Title:      v.Title,
			Options:    variantOptions(v),
			Price:      price,
			Quantity:   v.InventoryQuantity,
		})
		if i == 0 {
			p.Price = price
			p.SKU = strings.TrimSpace(v.SKU)
			p.Barcode = strings.TrimSpace(v.Barcode)
			p.Quantity = v.InventoryQuantity
			if cmp, err := parsePrice(v.CompareAtPrice); err == nil && cmp.IsPositive() {
				p.CompareAtPrice = &cmp
			}
		}
	}
	return p, nil
}

// ParseTags separa "a, b,,c" en [a b c] con normalización NFC y sin duplicados.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, t := range parts {
		t = norm.NFC.String(strings.TrimSpace(t))
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

func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("precio inválido %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("precio negativo %q", s)
	}
	return d, nil
}

func variantOptions(v ports.RemoteVariant) map[string]string {
	opts := make(map[string]string, 3)
	for k, val := range map[string]string{"option1": v.Option1, "option2": v.Option2, "option3": v.Option3} {
		if val != "" {
			opts[k] = val
		}
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}
