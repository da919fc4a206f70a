package dto

// WebhookAck respuesta al webhook de la pasarela. Siempre 200 salvo firma inválida.
type WebhookAck struct {
	Received bool   `json:"received"`
	EventID  string `json:"eventId,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Applied  bool   `json:"applied"`
	Ignored  bool   `json:"ignored"`
	Reason   string `json:"reason,omitempty"`
}
