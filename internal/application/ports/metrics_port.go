package ports

import "time"

// Recorder métricas de negocio. Las etiquetas son de baja cardinalidad (outcome, kind).
type Recorder interface {
	OrderPlaced(outcome string)
	WebhookEvent(kind, outcome string)
	SyncRun(outcome string, elapsed time.Duration, created, updated, failed int)
}

// NopRecorder no registra nada.
type NopRecorder struct{}

func (NopRecorder) OrderPlaced(string) {}
func (NopRecorder) WebhookEvent(string, string) {}
func (NopRecorder) SyncRun(string, time.Duration, int, int, int) {}
