package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// IntentRef referencia a un payment intent recién creado.
type IntentRef struct {
	ID           string
	ClientSecret string
	Status       string
}

// Estados de intent que importan al reintentar un pago.
const (
	IntentStatusSucceeded  = "succeeded"
	IntentStatusProcessing = "processing"
	IntentStatusCanceled   = "canceled"
)

// IntentDetails estado de un intent según la pasarela.
type IntentDetails struct {
	ID       string
	Status   string
	Amount   decimal.Decimal
	Currency string
	Metadata map[string]string
}

// RefundRef resultado de pedir un reembolso.
type RefundRef struct {
	ID     string
	Status string
	Amount decimal.Decimal
}

// GatewayEvent evento de webhook ya verificado y normalizado.
// Kind usa los valores entity.Event* o el tipo crudo si no se reconoce.
type GatewayEvent struct {
	ID       string
	Kind     string
	RawType  string
	IntentID string
	OrderID  string // identificador de correlación leído de la metadata
}

// PaymentGateway puerto de salida hacia la pasarela de pagos.
// Las implementaciones deben acotar cada llamada con un timeout.
type PaymentGateway interface {
	// CreateIntent crea un intent por amount (en unidades mayores). metadata viaja en el intent
	// y vuelve en los eventos; debe incluir orderId.
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*IntentRef, error)
	GetIntent(ctx context.Context, intentID string) (*IntentDetails, error)
	// CancelIntent anula un intent que todavía no se cobró.
	CancelIntent(ctx context.Context, intentID string) error
	// Refund reembolsa el intent; amount nil es reembolso total.
	Refund(ctx context.Context, intentID string, amount *decimal.Decimal) (*RefundRef, error)
	// ParseEvent verifica la firma antes de leer cualquier campo del payload.
	// Devuelve domain.ErrInvalidSignature si no es auténtico.
	ParseEvent(payload []byte, signature string) (*GatewayEvent, error)
}
