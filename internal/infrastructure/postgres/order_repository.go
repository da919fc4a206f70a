package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, user_id, items, shipping_address, billing_address, payment_method, currency,
	subtotal, tax, shipping, discount, total, status, payment_status, payment_intent_id, external_order_id,
	tracking_number, notes, created_at, updated_at`

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL (pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de persistencia para órdenes.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la orden con sus líneas y direcciones como jsonb.
// orders_order_number_key es la garantía final de unicidad del número de orden.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	items, err := toJSON(o.Items)
	if err != nil {
		return err
	}
	shipping, err := toJSON(o.ShippingAddress)
	if err != nil {
		return err
	}
	billing, err := toJSON(o.BillingAddress)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err = r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.UserID, items, shipping, billing, o.PaymentMethod, o.Currency,
		o.Subtotal, o.Tax, o.Shipping, o.Discount, o.Total, string(o.Status), string(o.PaymentStatus),
		nullIfEmpty(o.PaymentIntentID), nullIfEmpty(o.ExternalOrderID), nullIfEmpty(o.TrackingNumber),
		o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	if !isUUID(id) {
		return nil, nil
	}
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetByPaymentIntentID obtiene la orden asociada a un payment intent.
func (r *OrderRepo) GetByPaymentIntentID(ctx context.Context, intentID string) (*entity.Order, error) {
	if intentID == "" {
		return nil, nil
	}
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1`, intentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by intent: %w", err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var (
		o                         entity.Order
		items, shipping, billing  []byte
		status, paymentStatus     string
		intentID, extID, tracking *string
	)
	if err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &items, &shipping, &billing, &o.PaymentMethod, &o.Currency,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Discount, &o.Total, &status, &paymentStatus,
		&intentID, &extID, &tracking, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	o.PaymentStatus = entity.PaymentStatus(paymentStatus)
	o.PaymentIntentID = derefString(intentID)
	o.ExternalOrderID = derefString(extID)
	o.TrackingNumber = derefString(tracking)
	if err := fromJSON(items, &o.Items); err != nil {
		return nil, err
	}
	if err := fromJSON(shipping, &o.ShippingAddress); err != nil {
		return nil, err
	}
	if err := fromJSON(billing, &o.BillingAddress); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// ListByUser órdenes de un usuario, más recientes primero.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1
		ORDER BY created_at DESC, order_number DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
}

// CountByUser cantidad de órdenes del usuario.
func (r *OrderRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders by user: %w", err)
	}
	return n, nil
}

// ListAll todas las órdenes, opcionalmente filtradas por estado.
func (r *OrderRepo) ListAll(ctx context.Context, status string, limit, offset int) ([]*entity.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, order_number DESC LIMIT $2 OFFSET $3`, status, limit, offset)
}

// Count cantidad de órdenes, opcionalmente por estado.
func (r *OrderRepo) Count(ctx context.Context, status string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// UpdateFulfillment compare-and-set sobre status: solo escribe si la fila sigue en change.From.
func (r *OrderRepo) UpdateFulfillment(ctx context.Context, id string, change repository.FulfillmentChange) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET status = $3,
			tracking_number = CASE WHEN $4::text IS NULL THEN tracking_number ELSE NULLIF($4, '') END,
			updated_at = $5
		WHERE id = $1 AND status = $2`,
		id, string(change.From), string(change.To), change.TrackingNumber, change.At,
	)
	if err != nil {
		return false, fmt.Errorf("update fulfillment: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return true, nil
	}
	return false, r.ensureExists(ctx, id)
}

// UpdatePaymentStatus compare-and-set sobre payment_status; opcionalmente mueve status en la misma escritura.
func (r *OrderRepo) UpdatePaymentStatus(ctx context.Context, id string, change repository.PaymentChange) (bool, error) {
	var status *string
	if change.Status != nil {
		s := string(*change.Status)
		status = &s
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE orders SET payment_status = $3, status = COALESCE($4, status), updated_at = $5
		WHERE id = $1 AND payment_status = $2`,
		id, string(change.From), string(change.To), status, change.At,
	)
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return true, nil
	}
	return false, r.ensureExists(ctx, id)
}

// SetPaymentIntent guarda el id del intent de pago creado para la orden.
func (r *OrderRepo) SetPaymentIntent(ctx context.Context, id, intentID string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE orders SET payment_intent_id = $2, updated_at = $3 WHERE id = $1`, id, intentID, at)
	if err != nil {
		return fmt.Errorf("set payment intent: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ensureExists distingue "otra escritura ganó" (nil) de "la orden no existe" (ErrNotFound).
func (r *OrderRepo) ensureExists(ctx context.Context, id string) error {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check order: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}
