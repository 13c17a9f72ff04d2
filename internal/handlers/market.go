package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradepro/internal/models"
)

func (h *Handler) ListStocks(c *gin.Context) {
	stocks, err := h.svc.Stocks.List(c.Request.Context(), models.StockFilter{
		Search: c.Query("search"),
		Sector: c.Query("sector"),
		SortBy: c.Query("sortBy"),
		Limit:  queryInt(c, "limit", 0),
	})
	if err != nil {
		h.fail(c, "list stocks", err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

func (h *Handler) GetStock(c *gin.Context) {
	s, err := h.svc.Stocks.Get(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.fail(c, "get stock", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetChart returns the bare point series for the requested period.
func (h *Handler) GetChart(c *gin.Context) {
	chart, err := h.svc.Stocks.Chart(c.Request.Context(), c.Param("symbol"), c.DefaultQuery("period", "1M"))
	if err != nil {
		h.fail(c, "get chart", err)
		return
	}
	points := chart.Points
	if points == nil {
		points = []models.PricePoint{}
	}
	c.JSON(http.StatusOK, points)
}

func (h *Handler) GetIndices(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stocks.Indices())
}

func (h *Handler) GetTrending(c *gin.Context) {
	stocks, err := h.svc.Stocks.Trending(c.Request.Context(), c.Query("category"), queryInt(c, "limit", 0))
	if err != nil {
		h.fail(c, "trending", err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

// HealthDB reports database reachability and row counts.
func (h *Handler) HealthDB(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.repo.Ping(ctx); err != nil {
		h.log.Errorf("health ping failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "disconnected"})
		return
	}
	counts, err := h.repo.Counts(ctx)
	if err != nil {
		h.log.Errorf("health counts failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "connected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected", "counts": counts})
}
