package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tradepro/internal/apperrors"
	"tradepro/internal/config"
	"tradepro/internal/database"
	"tradepro/internal/models"
	"tradepro/internal/payment"
)

// maxTopUp caps a single wallet top-up.
var maxTopUp = models.MustParseMoney("1000000")

// CreatedOrder is what the client needs to open the checkout.
type CreatedOrder struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Key      string `json:"key"`
	Mock     bool   `json:"isMockMode"`
}

// Verification carries the gateway callback fields.
type Verification struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifyResult reports the credited wallet. Duplicate is set when the payment had already
// been credited and nothing changed.
type VerifyResult struct {
	Message   string             `json:"message"`
	Balance   models.Money       `json:"balance"`
	Entry     models.LedgerEntry `json:"transaction"`
	Duplicate bool               `json:"duplicate,omitempty"`
	Mock      bool               `json:"isMockMode"`
}

// PaymentService turns verified gateway payments into wallet deposits.
type PaymentService struct {
	repo    *database.Repo
	locks   *UserLocks
	wallets *WalletService
	gateway payment.Gateway
	mock    *payment.MockGateway
	cfg     config.PaymentConfig
	log     *logrus.Logger
	now     func() time.Time
}

// NewPaymentService picks the gateway from cfg. With credentials the Razorpay client is
// used; mock orders are only produced when mock mode or the mock fallback is configured.
func NewPaymentService(repo *database.Repo, locks *UserLocks, wallets *WalletService, cfg config.PaymentConfig, log *logrus.Logger) *PaymentService {
	s := &PaymentService{repo: repo, locks: locks, wallets: wallets, cfg: cfg, log: log, now: utcNow}
	if cfg.Configured() && !cfg.MockMode {
		s.gateway = payment.NewRazorpayClient(cfg.KeyID, cfg.KeySecret)
	}
	if cfg.MockMode || cfg.MockFallback {
		s.mock = payment.NewMockGateway()
	}
	return s
}

// WithGateway replaces the live gateway.
func (s *PaymentService) WithGateway(g payment.Gateway) *PaymentService {
	s.gateway = g
	return s
}

func (s *PaymentService) CreateOrder(ctx context.Context, userID string, amount models.Money) (*CreatedOrder, error) {
	if amount <= 0 || amount > maxTopUp {
		return nil, apperrors.ErrInvalidAmount
	}
	req := payment.OrderRequest{
		Amount:   amount,
		Currency: s.cfg.Currency,
		Receipt:  fmt.Sprintf("receipt_%d", s.now().UnixMilli()),
	}

	gw, mock, err := s.pick()
	if err != nil {
		return nil, err
	}
	order, err := gw.CreateOrder(ctx, req)
	if err != nil && s.mock != nil && !mock && s.cfg.MockFallback {
		s.log.Warnf("payment gateway failed, using mock order: %v", err)
		gw, mock = s.mock, true
		order, err = gw.CreateOrder(ctx, req)
	}
	if err != nil {
		s.log.Errorf("create order failed: %v", err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamPayment, err)
	}

	po := &models.PaymentOrder{
		OrderID:   order.ID,
		UserID:    userID,
		Amount:    amount,
		Currency:  req.Currency,
		Receipt:   req.Receipt,
		Mock:      mock,
		Status:    models.OrderCreated,
		CreatedAt: s.now(),
	}
	err = s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		return q.CreateOrder(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "order_id": order.ID, "mock": mock}).Info("payment order created")
	return &CreatedOrder{
		OrderID:  order.ID,
		Amount:   int64(amount),
		Currency: req.Currency,
		Key:      gw.KeyID(),
		Mock:     mock,
	}, nil
}

// pick returns the gateway for a new order and whether it is the mock.
func (s *PaymentService) pick() (payment.Gateway, bool, error) {
	switch {
	case s.cfg.MockMode && s.mock != nil:
		return s.mock, true, nil
	case s.gateway != nil:
		return s.gateway, false, nil
	case s.mock != nil:
		return s.mock, true, nil
	default:
		return nil, false, apperrors.ErrPaymentNotConfigured
	}
}

// Verify checks the gateway signature and credits the stored order amount exactly once.
// Mock orders skip the signature check. Verifying an already credited payment returns the
// earlier result without crediting again.
func (s *PaymentService) Verify(ctx context.Context, userID string, v Verification) (*VerifyResult, error) {
	if v.OrderID == "" || v.PaymentID == "" {
		return nil, apperrors.Invalid("razorpay_order_id and razorpay_payment_id are required")
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var res VerifyResult
	err := s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		order, err := q.GetOrder(ctx, v.OrderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return apperrors.ErrPaymentOrderNotFound
		}
		if !order.Mock {
			if s.cfg.KeySecret == "" {
				return apperrors.ErrPaymentNotConfigured
			}
			if !payment.VerifySignature(s.cfg.KeySecret, v.OrderID, v.PaymentID, v.Signature) {
				return apperrors.ErrInvalidSignature
			}
		}
		res.Mock = order.Mock

		if order.Paid() {
			if order.PaymentID == nil || *order.PaymentID != v.PaymentID {
				return apperrors.ErrPaymentAlreadyProcessed
			}
			return s.replay(ctx, q, order, &res)
		}

		if err := q.MarkOrderPaid(ctx, order.OrderID, v.PaymentID, s.now()); err != nil {
			return err
		}
		desc := "Razorpay payment - " + v.PaymentID
		res.Message = "Payment verified and funds added successfully"
		if order.Mock {
			desc = "Mock payment - " + v.PaymentID
			res.Message = "Mock payment processed successfully"
		}
		wr, err := s.wallets.applyIn(ctx, q, userID, func(w *models.Wallet, now time.Time) (models.LedgerEntry, error) {
			e, err := w.Deposit(order.Amount, desc, now)
			if err != nil {
				return e, err
			}
			e.PaymentID = v.PaymentID
			e.OrderID = order.OrderID
			return e, nil
		})
		if err != nil {
			return err
		}
		res.Balance = wr.Balance
		res.Entry = wr.Entry
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidSignature) {
			s.log.Warnf("payment signature mismatch for order %s", v.OrderID)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"order_id":   v.OrderID,
		"payment_id": v.PaymentID,
		"duplicate":  res.Duplicate,
	}).Info("payment verified")
	return &res, nil
}

// replay rebuilds the result of an earlier credit from the ledger.
func (s *PaymentService) replay(ctx context.Context, q *database.Queries, order *models.PaymentOrder, res *VerifyResult) error {
	w, err := q.GetWallet(ctx, order.UserID)
	if err != nil {
		return err
	}
	entries, err := q.LedgerEntries(ctx, order.UserID, 0)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.OrderID == order.OrderID {
			res.Entry = e
			break
		}
	}
	res.Balance = w.Balance
	res.Duplicate = true
	res.Message = "Payment already processed"
	return nil
}
