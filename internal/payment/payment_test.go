package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepro/internal/models"
)

func TestSignature(t *testing.T) {
	sig := Sign("secret", "order_1", "pay_1")
	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature("secret", "order_1", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "order_1", "pay_2", sig))
	assert.False(t, VerifySignature("other", "order_1", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "order_1", "pay_1", sig[:63]+"0"))
	assert.False(t, VerifySignature("", "order_1", "pay_1", sig))
}

type fakeOrders struct {
	got  map[string]interface{}
	resp map[string]interface{}
	err  error
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.got = data
	return f.resp, f.err
}

func TestRazorpayClient_CreateOrder(t *testing.T) {
	orders := &fakeOrders{resp: map[string]interface{}{
		"id": "order_ABC", "amount": float64(50000), "currency": "INR", "receipt": "r1", "status": "created",
	}}
	c := &RazorpayClient{orders: orders, keyID: "key"}

	o, err := c.CreateOrder(context.Background(), OrderRequest{Amount: models.MustParseMoney("500"), Currency: "INR", Receipt: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "order_ABC", o.ID)
	assert.Equal(t, models.Money(50000), o.Amount)
	assert.Equal(t, "created", o.Status)
	assert.Equal(t, int64(50000), orders.got["amount"])
	assert.Equal(t, "INR", orders.got["currency"])
	assert.Equal(t, 1, orders.got["payment_capture"])
}

func TestRazorpayClient_Errors(t *testing.T) {
	c := &RazorpayClient{orders: &fakeOrders{err: errors.New("Authentication failed")}}
	_, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Authentication failed")

	c = &RazorpayClient{orders: &fakeOrders{resp: map[string]interface{}{"status": "created"}}}
	_, err = c.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
	assert.ErrorContains(t, err, "empty order id")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	orders := &fakeOrders{}
	_, err = (&RazorpayClient{orders: orders}).CreateOrder(ctx, OrderRequest{Amount: 100})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, orders.got)
}

func TestNewRazorpayClient(t *testing.T) {
	c := NewRazorpayClient("rzp_test_key", "secret")
	assert.Equal(t, "rzp_test_key", c.KeyID())
	assert.NotNil(t, c.orders)
}

func TestMockGateway(t *testing.T) {
	m := NewMockGateway()
	a, err := m.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "USD"})
	require.NoError(t, err)
	b, err := m.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "USD"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, IsMockOrderID(a.ID))
	assert.False(t, IsMockOrderID("order_ABC"))
	assert.Equal(t, MockKeyID, m.KeyID())
}
