// Package stripe implementa ports.PaymentGateway sobre la API de Stripe.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	gostripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/jhoicas/storefront-api/internal/application/ports"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/pkg/logger"
	"github.com/jhoicas/storefront-api/pkg/money"
)

var _ ports.PaymentGateway = (*Gateway)(nil)

const defaultTimeout = 15 * time.Second

// Config credenciales y límites del adaptador.
type Config struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
	// BaseURL reemplaza la URL de la API (tests con httptest).
	BaseURL string
}

// Gateway cliente de Stripe. Cada llamada lleva su propio timeout.
type Gateway struct {
	api           *client.API
	webhookSecret string
	timeout       time.Duration
	log           *logger.Logger
}

// New crea el gateway. Sin SecretKey devuelve error: el checkout no puede operar sin pasarela.
func New(cfg Config, log *logger.Logger) (*Gateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe: STRIPE_SECRET_KEY no configurada")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("stripe")

	backendCfg := &gostripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		LeveledLogger:     leveledLogger{log: log},
		MaxNetworkRetries: gostripe.Int64(1),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = gostripe.String(cfg.BaseURL)
		backendCfg.MaxNetworkRetries = gostripe.Int64(0)
	}
	backend := gostripe.GetBackendWithConfig(gostripe.APIBackend, backendCfg)
	api := client.New(cfg.SecretKey, &gostripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &Gateway{api: api, webhookSecret: cfg.WebhookSecret, timeout: cfg.Timeout, log: log}, nil
}

// CreateIntent convierte amount a centavos (half-up) y crea el intent con métodos de pago automáticos.
func (g *Gateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*ports.IntentRef, error) {
	cents, err := money.ToMinorUnits(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &gostripe.PaymentIntentParams{
		Amount:   gostripe.Int64(cents),
		Currency: gostripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &gostripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: gostripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, wrap("crear payment intent", err)
	}
	return &ports.IntentRef{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (g *Gateway) GetIntent(ctx context.Context, intentID string) (*ports.IntentDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &gostripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, wrap("consultar payment intent", err)
	}
	return &ports.IntentDetails{
		ID:       pi.ID,
		Status:   string(pi.Status),
		Amount:   money.FromMinorUnits(pi.Amount),
		Currency: string(pi.Currency),
		Metadata: pi.Metadata,
	}, nil
}

func (g *Gateway) CancelIntent(ctx context.Context, intentID string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &gostripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := g.api.PaymentIntents.Cancel(intentID, params); err != nil {
		return wrap("cancelar payment intent", err)
	}
	return nil
}

// Refund amount nil reembolsa el total del intent.
func (g *Gateway) Refund(ctx context.Context, intentID string, amount *decimal.Decimal) (*ports.RefundRef, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &gostripe.RefundParams{PaymentIntent: gostripe.String(intentID)}
	params.Context = ctx
	if amount != nil {
		cents, err := money.ToMinorUnits(*amount)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		params.Amount = gostripe.Int64(cents)
	}
	r, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, wrap("crear reembolso", err)
	}
	return &ports.RefundRef{ID: r.ID, Status: string(r.Status), Amount: money.FromMinorUnits(r.Amount)}, nil
}

// ParseEvent valida la cabecera Stripe-Signature (HMAC + tolerancia de tiempo) antes de leer el payload.
func (g *Gateway) ParseEvent(payload []byte, signature string) (*ports.GatewayEvent, error) {
	if g.webhookSecret == "" {
		return nil, fmt.Errorf("%w: STRIPE_WEBHOOK_SECRET no configurado", domain.ErrInvalidSignature)
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	out := &ports.GatewayEvent{ID: ev.ID, RawType: string(ev.Type), Kind: normalizeKind(ev.Type)}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return out, nil
	}
	switch out.Kind {
	case entity.EventIntentSucceeded, entity.EventIntentFailed:
		var pi gostripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("stripe: decodificar payment intent del evento %s: %w", ev.ID, err)
		}
		out.IntentID = pi.ID
		out.OrderID = pi.Metadata["orderId"]
	case entity.EventChargeRefunded:
		var ch gostripe.Charge
		if err := json.Unmarshal(ev.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("stripe: decodificar cargo del evento %s: %w", ev.ID, err)
		}
		if ch.PaymentIntent != nil {
			out.IntentID = ch.PaymentIntent.ID
		}
		out.OrderID = ch.Metadata["orderId"]
	}
	return out, nil
}

func normalizeKind(t gostripe.EventType) string {
	switch t {
	case "payment_intent.succeeded":
		return entity.EventIntentSucceeded
	case "payment_intent.payment_failed":
		return entity.EventIntentFailed
	case "charge.refunded":
		return entity.EventChargeRefunded
	}
	return string(t)
}

// wrap clasifica errores de Stripe: un recurso inexistente es NotFound, el resto upstream.
func wrap(op string, err error) error {
	var se *gostripe.Error
	if errors.As(err, &se) {
		if se.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: stripe: %s: %s", domain.ErrNotFound, op, se.Msg)
		}
		return fmt.Errorf("%w: stripe: %s: %s", domain.ErrUpstream, op, se.Msg)
	}
	return fmt.Errorf("%w: stripe: %s: %v", domain.ErrUpstream, op, err)
}
