package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every route and wraps the engine in CORS.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	rg := gin.New()
	rg.Use(gin.Recovery(), RequestLogger(h.log))
	rg.HandleMethodNotAllowed = true
	rg.NoMethod(methodNotAllowed)
	rg.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	rg.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	rg.GET("/health/db", h.HealthDB)
	rg.GET("/ws/prices", h.hub.ServeWS)

	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)

	rg.GET("/stocks", h.ListStocks)
	rg.GET("/stocks/:symbol", h.GetStock)
	rg.GET("/stocks/:symbol/chart", h.GetChart)
	rg.GET("/market/indices", h.GetIndices)
	rg.GET("/market/trending", h.GetTrending)

	authed := rg.Group("/", RequireAuth(h.issuer))
	authed.GET("/user/profile", h.GetProfile)
	authed.PUT("/user/profile", h.UpdateProfile)

	authed.GET("/portfolio", h.GetPortfolio)
	authed.POST("/portfolio", h.PostPortfolio)
	authed.GET("/transactions", h.GetTransactions)

	authed.GET("/watchlist", h.GetWatchlist)
	authed.POST("/watchlist", h.AddWatchlist)
	authed.DELETE("/watchlist", h.RemoveWatchlist)
	authed.DELETE("/watchlist/:symbol", h.RemoveWatchlist)

	authed.GET("/wallet", h.GetWallet)
	authed.POST("/wallet", h.PostWallet)
	authed.POST("/payment", h.PostPayment)
	authed.GET("/dashboard", h.GetDashboard)

	return NewCORS(allowedOrigins).Handler(rg)
}
