package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storefront-api/internal/domain"
)

const page1 = `{"products":[{"id":632910392,"title":"IPod Nano","body_html":"<p>nano</p>","product_type":"Cult Products",
"tags":"Emotive, Flash Memory","status":"active","updated_at":"2026-01-02T10:00:00-05:00",
"variants":[{"id":808950810,"title":"Pink","sku":"IPOD2008PINK","barcode":"1234","price":"199.00","compare_at_price":null,
"inventory_quantity":10,"option1":"Pink","option2":null,"option3":null}],
"images":[{"src":"https://cdn.example.com/ipod.jpg","alt":null}]}]}`

const page2 = `{"products":[{"id":921728736,"title":"IPod Touch","status":"draft","variants":[],"images":[]}]}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{AccessToken: "shpat_test", BaseURL: srv.URL, Timeout: 2 * time.Second}, nil)
	require.NoError(t, err)
	return c
}

func TestListProducts_PaginaPorLinkHeader(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		assert.Equal(t, "/admin/api/2024-01/products.json", r.URL.Path)
		calls = append(calls, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", `<https://shop.example.com/admin/api/2024-01/products.json?limit=2&page_info=abc123>; rel="next"`)
			_, _ = w.Write([]byte(page1))
			return
		}
		w.Header().Set("Link", `<https://shop.example.com/admin/api/2024-01/products.json?limit=2&page_info=xyz>; rel="previous"`)
		_, _ = w.Write([]byte(page2))
	})

	products, next, err := c.ListProducts(context.Background(), 2, "")
	require.NoError(t, err)
	assert.Equal(t, "abc123", next)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "632910392", p.ID)
	assert.Equal(t, "Cult Products", p.ProductType)
	assert.Equal(t, "Emotive, Flash Memory", p.Tags)
	require.Len(t, p.Variants, 1)
	assert.Equal(t, "808950810", p.Variants[0].ID)
	assert.Equal(t, "199.00", p.Variants[0].Price)
	assert.Equal(t, "", p.Variants[0].CompareAtPrice)
	assert.Equal(t, "Pink", p.Variants[0].Option1)
	assert.Equal(t, 10, p.Variants[0].InventoryQuantity)
	assert.Equal(t, "https://cdn.example.com/ipod.jpg", p.Images[0].Src)

	products, next, err = c.ListProducts(context.Background(), 2, next)
	require.NoError(t, err)
	assert.Empty(t, next, "rel=previous no es página siguiente")
	assert.Equal(t, "draft", products[0].Status)
	assert.Equal(t, []string{"limit=2", "limit=2&page_info=abc123"}, calls)
}

func TestListProducts_ErrorHTTPEsUpstream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":"[API] Invalid API key or access token"}`))
	})
	_, _, err := c.ListProducts(context.Background(), 50, "")
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "401")
}

func TestListProducts_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, err := c.ListProducts(ctx, 50, "")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestUpdateFulfillment_NotasYCancelacion(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	var calls []call
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.Method, r.URL.Path, body})
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, c.UpdateFulfillment(context.Background(), "450789469", "shipped", "TRK-9"))
	require.NoError(t, c.UpdateFulfillment(context.Background(), "450789469", "cancelled", ""))

	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPut, calls[0].method)
	assert.Equal(t, "/admin/api/2024-01/orders/450789469.json", calls[0].path)
	order := calls[0].body["order"].(map[string]any)
	attrs := order["note_attributes"].([]any)
	require.Len(t, attrs, 2)
	assert.Equal(t, "TRK-9", attrs[1].(map[string]any)["value"])

	assert.Equal(t, http.MethodPost, calls[1].method)
	assert.Equal(t, "/admin/api/2024-01/orders/450789469/cancel.json", calls[1].path)

	assert.ErrorIs(t, c.UpdateFulfillment(context.Background(), "", "shipped", ""), domain.ErrInvalidInput)
}

func TestNextPageInfo(t *testing.T) {
	link := `<https://s/admin/api/x/products.json?page_info=prev1>; rel="previous", <https://s/admin/api/x/products.json?limit=5&page_info=nxt2>; rel="next"`
	assert.Equal(t, "nxt2", nextPageInfo(link))
	assert.Equal(t, "", nextPageInfo(""))
}

func TestNew_RequiereCredenciales(t *testing.T) {
	_, err := New(Config{ShopName: "x.myshopify.com"}, nil)
	assert.Error(t, err)
}
