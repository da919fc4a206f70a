package ordering

import (
	"context"
	"errors"
	"fmt"
)

// ErrReceiptsDisabled no hay generador de comprobantes configurado.
var ErrReceiptsDisabled = errors.New("generador de comprobantes no configurado")

// Receipt genera el PDF de una orden visible para el usuario. Devuelve el nombre sugerido del archivo.
func (uc *OrderUseCase) Receipt(ctx context.Context, userID, orderID string, isAdmin bool) ([]byte, string, error) {
	if uc.receipts == nil {
		return nil, "", ErrReceiptsDisabled
	}
	order, err := uc.load(ctx, userID, orderID, isAdmin)
	if err != nil {
		return nil, "", err
	}
	customer, err := uc.users.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.receipts.Generate(order, customer)
	if err != nil {
		return nil, "", fmt.Errorf("generar comprobante %s: %w", order.OrderNumber, err)
	}
	return pdf, order.OrderNumber + ".pdf", nil
}
