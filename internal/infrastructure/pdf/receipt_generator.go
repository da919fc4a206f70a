// Package pdf genera el comprobante de compra de una orden.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda                 │  N° Orden + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + email   │  ENVÍO / FACTURACIÓN           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Subtotal                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Impuesto / Envío / Descuento / TOTAL    │
//	│  ESTADO: despacho + pago, código de barras del N° de orden   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/pkg/money"
)

var _ ports.ReceiptGenerator = (*ReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 33, Green: 37, Blue: 41}
	colorGray    = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator implementa ports.ReceiptGenerator usando Maroto v2.
type ReceiptGenerator struct {
	storeName string
}

// NewReceiptGenerator construye el generador; storeName va en el encabezado.
func NewReceiptGenerator(storeName string) *ReceiptGenerator {
	return &ReceiptGenerator{storeName: nonEmpty(storeName, "Storefront")}
}

// Generate arma el PDF. customer puede ser nil si la cuenta ya no existe.
func (g *ReceiptGenerator) Generate(order *entity.Order, customer *entity.User) ([]byte, error) {
	if order == nil {
		return nil, fmt.Errorf("pdf: orden nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante "+order.OrderNumber, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(order, customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(order.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(order))
	m.AddRows(line.NewRow(3))
	m.AddRows(statusRow(order))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *ReceiptGenerator) headerRow(order *entity.Order) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
			text.New("Comprobante de compra", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("ORDEN", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(order.OrderNumber, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 6}),
			text.New("Fecha: "+order.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// partiesRow cliente a la izquierda; direcciones de envío y facturación a la derecha.
func partiesRow(order *entity.Order, customer *entity.User) core.Row {
	name, email := "—", "—"
	if customer != nil {
		name = nonEmpty(customer.FullName(), "—")
		email = nonEmpty(customer.Email, "—")
	}
	return row.New(24).Add(
		col.New(4).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 9, Top: 6}),
			text.New(email, props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("ENVÍO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(formatAddress(order.ShippingAddress), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("FACTURACIÓN", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(formatAddress(order.BillingAddress), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func itemRows(items []entity.OrderItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(it.Title, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(amount(it.Price), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(amount(it.LineTotal()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalsRow(order *entity.Order) core.Row {
	labels := []string{"Subtotal:", "Impuesto:", "Envío:", "Descuento:", "TOTAL (" + strings.ToUpper(order.Currency) + "):"}
	values := []decimal.Decimal{order.Subtotal, order.Tax, order.Shipping, order.Discount, order.Total}

	left, right := col.New(3), col.New(3)
	for i := range labels {
		top := float64(i) * 5
		style := fontstyle.Normal
		if i == len(labels)-1 {
			style = fontstyle.Bold
		}
		left = left.Add(text.New(labels[i], props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top}))
		right = right.Add(text.New(amount(values[i]), props.Text{Style: style, Size: 9, Align: align.Right, Right: 1, Top: top}))
	}
	return row.New(28).Add(col.New(6), left, right)
}

// statusRow estados al momento de emitir y código de barras del número de orden.
func statusRow(order *entity.Order) core.Row {
	return row.New(20).Add(
		col.New(6).Add(
			text.New("Estado del pedido: "+string(order.Status), props.Text{Size: 8, Top: 2, Color: colorGray}),
			text.New("Estado del pago: "+string(order.PaymentStatus), props.Text{Size: 8, Top: 7, Color: colorGray}),
			text.New("Método de pago: "+order.PaymentMethod, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
		col.New(6).Add(code.NewBar(order.OrderNumber, props.Barcode{Percent: 90, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func amount(d decimal.Decimal) string {
	return "$" + money.Round(d).StringFixed(money.Scale)
}

func formatAddress(a entity.Address) string {
	if !a.Complete() {
		return "—"
	}
	var parts []string
	if name := strings.TrimSpace(a.FirstName + " " + a.LastName); name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, a.Street)
	city := a.City
	if a.State != "" {
		city += ", " + a.State
	}
	if a.ZipCode != "" {
		city += " " + a.ZipCode
	}
	parts = append(parts, city, a.Country)
	return strings.Join(parts, "\n")
}
