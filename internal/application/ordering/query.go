package ordering

import (
	"context"
	"fmt"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// defaultMyOrdersLimit tamaño de página del historial propio.
const defaultMyOrdersLimit = 10

// GetOrder devuelve una orden propia; un admin puede ver cualquiera.
func (uc *OrderUseCase) GetOrder(ctx context.Context, userID, orderID string, isAdmin bool) (*dto.OrderResponse, error) {
	order, err := uc.load(ctx, userID, orderID, isAdmin)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(order), nil
}

// ListMyOrders historial del usuario, más recientes primero.
func (uc *OrderUseCase) ListMyOrders(ctx context.Context, userID string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	if page.Limit <= 0 {
		page.Limit = defaultMyOrdersLimit
	}
	page.Normalize()
	list, err := uc.orders.ListByUser(ctx, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	total, err := uc.orders.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toListResponse(list, page, total), nil
}

// ListAllOrders listado admin con filtro opcional por status.
func (uc *OrderUseCase) ListAllOrders(ctx context.Context, q dto.ListOrdersQuery) (*dto.OrderListResponse, error) {
	if q.Status != "" && !entity.OrderStatus(q.Status).Valid() {
		return nil, fmt.Errorf("%w: status desconocido %q", domain.ErrInvalidInput, q.Status)
	}
	q.Normalize()
	list, err := uc.orders.ListAll(ctx, q.Status, q.Limit, q.Offset())
	if err != nil {
		return nil, err
	}
	total, err := uc.orders.Count(ctx, q.Status)
	if err != nil {
		return nil, err
	}
	return toListResponse(list, q.PageRequest, total), nil
}

func toListResponse(list []*entity.Order, page dto.PageRequest, total int) *dto.OrderListResponse {
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, *ToOrderResponse(o))
	}
	return &dto.OrderListResponse{Orders: out, Pagination: dto.NewPagination(page, total)}
}
