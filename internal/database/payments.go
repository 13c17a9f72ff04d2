package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tradepro/internal/apperrors"
	"tradepro/internal/models"
)

const orderColumns = `order_id, user_id, amount, currency, receipt, mock, status, payment_id, created_at, paid_at`

func (q *Queries) CreateOrder(ctx context.Context, o *models.PaymentOrder) error {
	_, err := q.exec(ctx, `INSERT INTO payment_orders (order_id, user_id, amount, currency, receipt, mock, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, o.UserID, o.Amount, o.Currency, o.Receipt, o.Mock, o.Status, o.CreatedAt)
	return mapErr(err)
}

func (q *Queries) GetOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	var o models.PaymentOrder
	err := q.get(ctx, &o, `SELECT `+orderColumns+` FROM payment_orders WHERE order_id = ?`+q.forUpdate, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrPaymentOrderNotFound
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

// MarkOrderPaid records the payment id. A payment id can only ever be attached to one order.
func (q *Queries) MarkOrderPaid(ctx context.Context, orderID, paymentID string, at time.Time) error {
	res, err := q.exec(ctx, `UPDATE payment_orders SET status = ?, payment_id = ?, paid_at = ?
		WHERE order_id = ? AND status = ?`, models.OrderPaid, paymentID, at, orderID, models.OrderCreated)
	if err = mapErr(err); errors.Is(err, apperrors.ErrDuplicateEntry) {
		return apperrors.ErrPaymentAlreadyProcessed
	}
	return affectedOne(res, err, apperrors.ErrPaymentAlreadyProcessed)
}
