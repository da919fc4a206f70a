package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/application/ordering"
)

// OrderHandler checkout, historial, despacho y pagos de órdenes.
type OrderHandler struct {
	uc *ordering.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *ordering.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Place godoc
// @Summary      Crear orden (checkout)
// @Description  Persiste la orden y crea el payment intent. Si la pasarela falla la orden queda pendiente
// @Description  y el error incluye orderId para reintentar con POST /api/orders/{id}/payment.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PlaceOrderRequest  true  "Ítems, direcciones y método de pago"
// @Success      201   {object}  dto.PlaceOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in dto.PlaceOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.PlaceOrder(c.UserContext(), GetUserID(c), in)
	if err != nil {
		if out != nil {
			return withDetails(err, map[string]any{
				"orderId":     out.Order.ID,
				"orderNumber": out.Order.OrderNumber,
			})
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMine godoc
// @Summary      Mis órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        page   query  int  false  "Página"
// @Param        limit  query  int  false  "Tamaño de página (por defecto 10)"
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "query inválida")
	}
	out, err := h.uc.ListMyOrders(c.UserContext(), GetUserID(c), page)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListAll godoc
// @Summary      Todas las órdenes (admin)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtro por estado"
// @Param        page    query  int     false  "Página"
// @Param        limit   query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.OrderListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/orders/all [get]
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	var q dto.ListOrdersQuery
	if err := c.QueryParser(&q); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidation, "query inválida")
	}
	out, err := h.uc.ListAllOrders(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener orden
// @Description  El dueño ve su orden; un admin ve cualquiera. Órdenes ajenas responden 404.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetOrder(c.UserContext(), GetUserID(c), c.Params("id"), IsAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateFulfillment godoc
// @Summary      Actualizar estado de despacho (admin)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la orden"
// @Param        body  body  dto.UpdateFulfillmentRequest  true  "status y trackingNumber"
// @Success      200   {object}  dto.UpdateFulfillmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) UpdateFulfillment(c *fiber.Ctx) error {
	var in dto.UpdateFulfillmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateFulfillment(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// RetryPayment godoc
// @Summary      Reintentar el pago de una orden pendiente
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      201  {object}  dto.PaymentIntentRef
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/payment [post]
func (h *OrderHandler) RetryPayment(c *fiber.Ctx) error {
	out, err := h.uc.RetryPayment(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PaymentDetails godoc
// @Summary      Estado del pago según la pasarela
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PaymentDetailsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/payment [get]
func (h *OrderHandler) PaymentDetails(c *fiber.Ctx) error {
	out, err := h.uc.PaymentDetails(c.UserContext(), GetUserID(c), c.Params("id"), IsAdmin(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Refund godoc
// @Summary      Solicitar reembolso (admin)
// @Description  La orden cambia a refunded cuando llega el evento charge.refunded de la pasarela.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la orden"
// @Param        body  body  dto.RefundRequest  false "amount (vacío = total)"
// @Success      202   {object}  dto.RefundResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/refund [post]
func (h *OrderHandler) Refund(c *fiber.Ctx) error {
	var in dto.RefundRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.RequestRefund(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de la orden
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.Receipt(c.UserContext(), GetUserID(c), c.Params("id"), IsAdmin(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}
