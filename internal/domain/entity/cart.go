package entity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/storefront-api/internal/domain"
)

// CartLine línea del carrito. La identidad es (ProductID, VariantID).
type CartLine struct {
	ProductID string
	VariantID string
	Title     string
	Price     decimal.Decimal
	Quantity  int
	Image     string
}

func (l CartLine) key() string {
	return l.ProductID + "|" + l.VariantID
}

// Subtotal precio por cantidad de la línea.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart agregado de carrito que viaja explícito hasta el checkout. No es seguro para uso concurrente:
// cada request arma el suyo.
type Cart struct {
	lines []CartLine
	index map[string]int
}

// NewCart crea un carrito vacío.
func NewCart() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Add agrega una línea. Si el producto ya está, suma cantidades.
// Cantidad y precio deben ser positivos; el mismo producto con otro precio es un error de entrada.
func (c *Cart) Add(line CartLine) error {
	if line.ProductID == "" {
		return fmt.Errorf("%w: productId requerido", domain.ErrInvalidInput)
	}
	if line.Quantity <= 0 {
		return fmt.Errorf("%w: quantity debe ser mayor a 0 (producto %s)", domain.ErrInvalidInput, line.ProductID)
	}
	if !line.Price.IsPositive() {
		return fmt.Errorf("%w: price debe ser mayor a 0 (producto %s)", domain.ErrInvalidInput, line.ProductID)
	}
	k := line.key()
	if i, ok := c.index[k]; ok {
		existing := &c.lines[i]
		if !existing.Price.Equal(line.Price) {
			return fmt.Errorf("%w: precios distintos para el producto %s", domain.ErrInvalidInput, line.ProductID)
		}
		existing.Quantity += line.Quantity
		return nil
	}
	c.index[k] = len(c.lines)
	c.lines = append(c.lines, line)
	return nil
}

// Remove quita la línea del producto/variante. No falla si no existe.
func (c *Cart) Remove(productID, variantID string) {
	k := CartLine{ProductID: productID, VariantID: variantID}.key()
	i, ok := c.index[k]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.reindex()
}

// SetQuantity fija la cantidad de una línea existente. Cantidad <= 0 la elimina.
func (c *Cart) SetQuantity(productID, variantID string, qty int) error {
	k := CartLine{ProductID: productID, VariantID: variantID}.key()
	i, ok := c.index[k]
	if !ok {
		return fmt.Errorf("%w: producto %s no está en el carrito", domain.ErrNotFound, productID)
	}
	if qty <= 0 {
		c.Remove(productID, variantID)
		return nil
	}
	c.lines[i].Quantity = qty
	return nil
}

func (c *Cart) reindex() {
	c.index = make(map[string]int, len(c.lines))
	for i, l := range c.lines {
		c.index[l.key()] = i
	}
}

// Lines devuelve una copia de las líneas en orden de inserción.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total suma de subtotales, sin redondear.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Count total de unidades.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty indica si no hay líneas.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// ToOrderItems congela las líneas como items de orden.
func (c *Cart) ToOrderItems() []OrderItem {
	items := make([]OrderItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, OrderItem{
			ProductID:         l.ProductID,
			ExternalVariantID: l.VariantID,
			Title:             l.Title,
			Price:             l.Price,
			Quantity:          l.Quantity,
			Image:             l.Image,
		})
	}
	return items
}
