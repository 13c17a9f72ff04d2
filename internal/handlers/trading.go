package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradepro/internal/models"
	"tradepro/internal/service"
)

// OrderRequest is the body of POST /portfolio. Price may be omitted to trade at the quote.
type OrderRequest struct {
	Symbol   string       `json:"symbol"`
	Name     string       `json:"name"`
	Quantity int64        `json:"quantity"`
	Price    models.Money `json:"price"`
}

type WatchRequest struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	holdings, err := h.svc.Portfolio.Holdings(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		h.fail(c, "get portfolio", err)
		return
	}
	if holdings == nil {
		holdings = []service.Holding{}
	}
	c.JSON(http.StatusOK, holdings)
}

func (h *Handler) PostPortfolio(c *gin.Context) {
	action := c.Query("action")
	if action != "buy" && action != "sell" {
		methodNotAllowed(c)
		return
	}
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	userID := c.GetString(ctxUserID)

	var (
		res *service.TradeResult
		err error
		msg string
	)
	if action == "buy" {
		res, err = h.svc.Trades.Buy(c.Request.Context(), service.BuyOrder{
			UserID: userID, Symbol: req.Symbol, Name: req.Name, Quantity: req.Quantity, Price: req.Price,
		})
		msg = "Stock purchased successfully"
	} else {
		res, err = h.svc.Trades.Sell(c.Request.Context(), service.SellOrder{
			UserID: userID, Symbol: req.Symbol, Quantity: req.Quantity, Price: req.Price,
		})
		msg = "Stock sold successfully"
	}
	if err != nil {
		h.fail(c, action, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       msg,
		"transaction":   res.Trade,
		"walletBalance": res.Balance,
		"position":      res.Position,
	})
}

func (h *Handler) GetTransactions(c *gin.Context) {
	trades, page, err := h.svc.Trades.History(c.Request.Context(), c.GetString(ctxUserID),
		queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		h.fail(c, "transactions", err)
		return
	}
	if trades == nil {
		trades = []models.TradeRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": trades, "pagination": page})
}

func (h *Handler) GetWatchlist(c *gin.Context) {
	items, err := h.svc.Watchlist.List(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		h.fail(c, "get watchlist", err)
		return
	}
	if items == nil {
		items = []models.WatchlistEntry{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) AddWatchlist(c *gin.Context) {
	var req WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}
	e, err := h.svc.Watchlist.Add(c.Request.Context(), c.GetString(ctxUserID), req.Symbol, req.Name)
	if err != nil {
		h.fail(c, "add watchlist", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock added to watchlist", "watchlistItem": e})
}

// RemoveWatchlist takes the symbol from the path or from ?symbol=.
func (h *Handler) RemoveWatchlist(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		symbol = c.Query("symbol")
	}
	if err := h.svc.Watchlist.Remove(c.Request.Context(), c.GetString(ctxUserID), symbol); err != nil {
		h.fail(c, "remove watchlist", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock removed from watchlist"})
}

func (h *Handler) GetDashboard(c *gin.Context) {
	if c.Query("type") != "stats" {
		methodNotAllowed(c)
		return
	}
	stats, err := h.svc.Dashboard.Stats(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		h.fail(c, "dashboard", err)
		return
	}
	if stats.RecentTransactions == nil {
		stats.RecentTransactions = []models.TradeRecord{}
	}
	c.JSON(http.StatusOK, stats)
}
