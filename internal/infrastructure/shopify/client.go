// Package shopify adaptador de la Admin REST API de Shopify: lectura paginada del catálogo
// y propagación del estado de despacho a órdenes espejo.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

var (
	_ ports.CatalogSource = (*Client)(nil)
	_ ports.OrderMirror   = (*Client)(nil)
)

const (
	defaultAPIVersion = "2024-01"
	defaultTimeout    = 20 * time.Second
	maxResponseBytes  = 16 << 20
)

// Config credenciales de la tienda. BaseURL reemplaza https://{ShopName} (tests).
type Config struct {
	ShopName    string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
	BaseURL     string
}

// Client cliente HTTP de la Admin API. Cada request lleva el timeout del http.Client además del ctx del caller.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// New valida credenciales y arma el cliente.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.AccessToken == "" || (cfg.ShopName == "" && cfg.BaseURL == "") {
		return nil, errors.New("shopify: SHOPIFY_SHOP_NAME y SHOPIFY_API_PASSWORD son obligatorios")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://" + strings.TrimSuffix(strings.TrimPrefix(cfg.ShopName, "https://"), "/")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(base, "/") + "/admin/api/" + cfg.APIVersion,
		token:      cfg.AccessToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.Named("shopify"),
	}, nil
}

// ── Estructuras del protocolo ─────────────────────────────────────────────────

type productsResponse struct {
	Products []product `json:"products"`
}

type product struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	BodyHTML    string      `json:"body_html"`
	ProductType string      `json:"product_type"`
	Tags        string      `json:"tags"`
	Status      string      `json:"status"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Variants    []variant   `json:"variants"`
	Images      []image     `json:"images"`
}

type variant struct {
	ID                json.Number `json:"id"`
	Title             string      `json:"title"`
	SKU               string      `json:"sku"`
	Barcode           string      `json:"barcode"`
	Price             string      `json:"price"`
	CompareAtPrice    *string     `json:"compare_at_price"`
	InventoryQuantity int         `json:"inventory_quantity"`
	Option1           *string     `json:"option1"`
	Option2           *string     `json:"option2"`
	Option3           *string     `json:"option3"`
}

type image struct {
	Src string  `json:"src"`
	Alt *string `json:"alt"`
}

type errorResponse struct {
	Errors json.RawMessage `json:"errors"`
}

// ── CatalogSource ─────────────────────────────────────────────────────────────

// ListProducts pide una página de productos. El cursor es el page_info del header Link (paginación por cursor de Shopify).
func (c *Client) ListProducts(ctx context.Context, pageSize int, cursor string) ([]ports.RemoteProduct, string, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(pageSize))
	if cursor != "" {
		// con page_info Shopify no acepta otros filtros salvo limit
		q.Set("page_info", cursor)
	}
	var body productsResponse
	header, err := c.do(ctx, http.MethodGet, "/products.json?"+q.Encode(), nil, &body)
	if err != nil {
		return nil, "", err
	}

	out := make([]ports.RemoteProduct, 0, len(body.Products))
	for _, p := range body.Products {
		out = append(out, p.toRemote())
	}
	return out, nextPageInfo(header.Get("Link")), nil
}

func (p product) toRemote() ports.RemoteProduct {
	rp := ports.RemoteProduct{
		ID:          p.ID.String(),
		Title:       p.Title,
		BodyHTML:    p.BodyHTML,
		ProductType: p.ProductType,
		Tags:        p.Tags,
		Status:      p.Status,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, v := range p.Variants {
		rp.Variants = append(rp.Variants, ports.RemoteVariant{
			ID:                v.ID.String(),
			Title:             v.Title,
			SKU:               v.SKU,
			Barcode:           v.Barcode,
			Price:             v.Price,
			CompareAtPrice:    deref(v.CompareAtPrice),
			InventoryQuantity: v.InventoryQuantity,
			Option1:           deref(v.Option1),
			Option2:           deref(v.Option2),
			Option3:           deref(v.Option3),
		})
	}
	for _, img := range p.Images {
		rp.Images = append(rp.Images, ports.RemoteImage{Src: img.Src, Alt: deref(img.Alt)})
	}
	return rp
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// linkNextRe extrae la URL del rel="next" de un header Link: <https://...&page_info=abc>; rel="next".
var linkNextRe = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="?next"?`)

func nextPageInfo(link string) string {
	for _, part := range strings.Split(link, ",") {
		m := linkNextRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		u, err := url.Parse(m[1])
		if err != nil {
			return ""
		}
		return u.Query().Get("page_info")
	}
	return ""
}

// ── OrderMirror ───────────────────────────────────────────────────────────────

// UpdateFulfillment refleja el estado local en la orden de Shopify. Una cancelación usa el endpoint
// de cancelación; el resto queda como atributos de nota (estado y tracking), que la tienda muestra al operador.
func (c *Client) UpdateFulfillment(ctx context.Context, externalOrderID, status, trackingNumber string) error {
	if externalOrderID == "" {
		return fmt.Errorf("%w: id de orden externa vacío", domain.ErrInvalidInput)
	}
	path := "/orders/" + url.PathEscape(externalOrderID)
	if status == "cancelled" {
		_, err := c.do(ctx, http.MethodPost, path+"/cancel.json", map[string]any{}, nil)
		return err
	}
	attrs := []map[string]string{{"name": "fulfillment_status", "value": status}}
	if trackingNumber != "" {
		attrs = append(attrs, map[string]string{"name": "tracking_number", "value": trackingNumber})
	}
	body := map[string]any{"order": map[string]any{"id": externalOrderID, "note_attributes": attrs}}
	_, err := c.do(ctx, http.MethodPut, path+".json", body, nil)
	return err
}

// do ejecuta la llamada y decodifica la respuesta en out (si no es nil). Cualquier status no 2xx es ErrUpstream.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (http.Header, error) {
	var reader io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("shopify: serializar request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("shopify: crear HTTP request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: shopify: timeout o cancelación: %v", domain.ErrUpstream, ctx.Err())
		}
		return nil, fmt.Errorf("%w: shopify: llamada HTTP fallida: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: shopify: leer respuesta: %v", domain.ErrUpstream, err)
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).Msg("shopify request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er errorResponse
		if jsonErr := json.Unmarshal(raw, &er); jsonErr == nil && len(er.Errors) > 0 {
			return nil, fmt.Errorf("%w: shopify HTTP %d: %s", domain.ErrUpstream, resp.StatusCode, string(er.Errors))
		}
		return nil, fmt.Errorf("%w: shopify HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("%w: shopify: deserializar respuesta: %v", domain.ErrUpstream, err)
		}
	}
	return resp.Header, nil
}
