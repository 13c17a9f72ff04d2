package models

import "time"

const (
	OrderCreated = "created"
	OrderPaid    = "paid"
)

// PaymentOrder is a wallet top-up created with the gateway (or synthesized in mock mode).
// PaymentID is set once, when the payment is verified and the wallet credited.
type PaymentOrder struct {
	OrderID   string     `db:"order_id" json:"orderId"`
	UserID    string     `db:"user_id" json:"-"`
	Amount    Money      `db:"amount" json:"amount"`
	Currency  string     `db:"currency" json:"currency"`
	Receipt   string     `db:"receipt" json:"receipt"`
	Mock      bool       `db:"mock" json:"isMockMode"`
	Status    string     `db:"status" json:"status"`
	PaymentID *string    `db:"payment_id" json:"paymentId,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	PaidAt    *time.Time `db:"paid_at" json:"paidAt,omitempty"`
}

// Paid reports whether the order has already credited the wallet.
func (o *PaymentOrder) Paid() bool {
	return o.Status == OrderPaid
}
