package entity

import "time"

// Tipos de evento de pasarela ya normalizados (independientes del proveedor).
const (
	EventIntentSucceeded = "intent.succeeded"
	EventIntentFailed    = "intent.failed"
	EventChargeRefunded  = "charge.refunded"
)

// PaymentEvent registro de un evento de webhook ya procesado. El ID del proveedor es la llave
// de idempotencia: un evento reentregado con el mismo ID no se vuelve a aplicar.
type PaymentEvent struct {
	ID          string // id del evento en la pasarela
	Kind        string // tipo normalizado
	OrderID     string // vacío si no se pudo correlacionar
	Outcome     string // applied, ignored
	Reason      string
	ProcessedAt time.Time
}

// Resultados posibles de un PaymentEvent.
const (
	EventOutcomeApplied = "applied"
	EventOutcomeIgnored = "ignored"
)
