package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/payment"
)

// HeaderStripeSignature cabecera con la firma HMAC del evento.
const HeaderStripeSignature = "Stripe-Signature"

// WebhookHandler recibe eventos de la pasarela de pago.
type WebhookHandler struct {
	uc *payment.WebhookUseCase
}

func NewWebhookHandler(uc *payment.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{uc: uc}
}

// Stripe godoc
// @Summary      Webhook de Stripe
// @Description  Requiere la cabecera Stripe-Signature. Todo evento con firma válida responde 200,
// @Description  se aplique o no; una firma inválida responde 400.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  dto.WebhookAck
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/webhooks/stripe [post]
func (h *WebhookHandler) Stripe(c *fiber.Ctx) error {
	// el body debe llegar byte a byte: la firma se calcula sobre el payload crudo
	payload := append([]byte(nil), c.Body()...)
	ack, err := h.uc.HandleEvent(c.UserContext(), payload, c.Get(HeaderStripeSignature))
	if err != nil {
		return err
	}
	return c.JSON(ack)
}
