package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradepro/internal/models"
	"tradepro/internal/service"
)

type FundsRequest struct {
	Amount      models.Money `json:"amount"`
	Description string       `json:"description"`
}

type TopUpRequest struct {
	Amount models.Money `json:"amount"`
}

// GetWallet creates the wallet on first access.
func (h *Handler) GetWallet(c *gin.Context) {
	w, err := h.svc.Wallets.Initialize(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		h.fail(c, "get wallet", err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) PostWallet(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(ctxUserID)

	switch c.Query("action") {
	case "initialize":
		w, err := h.svc.Wallets.Initialize(ctx, userID)
		if err != nil {
			h.fail(c, "initialize wallet", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":      "Wallet initialized",
			"balance":      w.Balance,
			"currency":     w.Currency,
			"transactions": w.Transactions,
		})
	case "deposit", "withdraw":
		var req FundsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badBody(c, err)
			return
		}
		var (
			res *service.WalletResult
			err error
			msg string
		)
		if c.Query("action") == "deposit" {
			res, err = h.svc.Wallets.Deposit(ctx, userID, req.Amount, req.Description)
			msg = "Funds added successfully"
		} else {
			res, err = h.svc.Wallets.Withdraw(ctx, userID, req.Amount, req.Description)
			msg = "Funds withdrawn successfully"
		}
		if err != nil {
			h.fail(c, c.Query("action"), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": msg, "balance": res.Balance, "transaction": res.Entry})
	default:
		methodNotAllowed(c)
	}
}

func (h *Handler) PostPayment(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(ctxUserID)

	switch c.Query("action") {
	case "create-order":
		var req TopUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badBody(c, err)
			return
		}
		order, err := h.svc.Payments.CreateOrder(ctx, userID, req.Amount)
		if err != nil {
			h.fail(c, "create order", err)
			return
		}
		c.JSON(http.StatusOK, order)
	case "verify":
		var req service.Verification
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badBody(c, err)
			return
		}
		res, err := h.svc.Payments.Verify(ctx, userID, req)
		if err != nil {
			h.fail(c, "verify payment", err)
			return
		}
		c.JSON(http.StatusOK, res)
	default:
		methodNotAllowed(c)
	}
}
