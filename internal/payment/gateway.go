// Package payment creates Razorpay orders and checks payment signatures.
package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"tradepro/internal/models"
)

// Order is the gateway's view of a created order. Amount is in minor units.
type Order struct {
	ID       string       `json:"id"`
	Amount   models.Money `json:"-"`
	Currency string       `json:"currency"`
	Receipt  string       `json:"receipt"`
	Status   string       `json:"status"`
}

type OrderRequest struct {
	Amount   models.Money
	Currency string
	Receipt  string
}

// Gateway creates orders with a payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	KeyID() string
}

// orderCreator is the part of the Razorpay SDK's order resource used here.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayClient creates orders through the Razorpay SDK.
type RazorpayClient struct {
	orders orderCreator
	keyID  string
}

func NewRazorpayClient(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{orders: razorpay.NewClient(keyID, keySecret).Order, keyID: keyID}
}

func (c *RazorpayClient) KeyID() string { return c.keyID }

// CreateOrder checks ctx only before the call. The SDK takes no context.
func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := c.orders.Create(map[string]interface{}{
		"amount":          int64(req.Amount),
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	o := &Order{
		ID:       stringField(resp, "id"),
		Currency: stringField(resp, "currency"),
		Receipt:  stringField(resp, "receipt"),
		Status:   stringField(resp, "status"),
	}
	if o.ID == "" {
		return nil, fmt.Errorf("create order: empty order id")
	}
	// decoded JSON numbers arrive as float64
	switch a := resp["amount"].(type) {
	case float64:
		o.Amount = models.Money(a)
	case int64:
		o.Amount = models.Money(a)
	case int:
		o.Amount = models.Money(a)
	default:
		o.Amount = req.Amount
	}
	return o, nil
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
