package payment

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

const (
	MockKeyID       = "rzp_test_mock_key"
	mockOrderPrefix = "order_mock_"
)

// MockGateway synthesizes orders locally. It is only used when mock mode is configured.
type MockGateway struct {
	seq atomic.Int64
	now func() time.Time
}

func NewMockGateway() *MockGateway {
	return &MockGateway{now: time.Now}
}

func (m *MockGateway) KeyID() string { return MockKeyID }

func (m *MockGateway) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	id := fmt.Sprintf("%s%d_%d", mockOrderPrefix, m.now().UnixMilli(), m.seq.Add(1))
	return &Order{ID: id, Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

// IsMockOrderID reports whether id was produced by MockGateway.
func IsMockOrderID(id string) bool {
	return strings.HasPrefix(id, mockOrderPrefix)
}
