package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tradepro/internal/apperrors"
	"tradepro/internal/auth"
	"tradepro/internal/database"
	"tradepro/internal/service"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Wallets   *service.WalletService
	Trades    *service.TradeService
	Portfolio *service.PortfolioService
	Watchlist *service.WatchlistService
	Dashboard *service.DashboardService
	Stocks    *service.StockService
	Payments  *service.PaymentService
}

type Handler struct {
	svc    Services
	repo   *database.Repo
	issuer *auth.Issuer
	hub    *Hub
	log    *logrus.Logger
}

func NewHandler(svc Services, r *database.Repo, issuer *auth.Issuer, hub *Hub, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, repo: r, issuer: issuer, hub: hub, log: log}
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindBusinessRule:
		return http.StatusBadRequest
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindStorage:
		return http.StatusServiceUnavailable
	case apperrors.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"message": ...}. Internal details only reach the log.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	kind, msg := apperrors.Describe(err)
	status := statusFor(kind)
	entry := h.log.WithFields(logrus.Fields{"op": op, "status": status, "user": c.GetString(ctxUserID)})
	if status >= http.StatusInternalServerError {
		entry.Errorf("%s failed: %v", op, err)
	} else {
		entry.Warnf("%s rejected: %v", op, err)
	}
	c.JSON(status, gin.H{"message": msg})
}

func (h *Handler) badBody(c *gin.Context, err error) {
	h.log.Warnf("invalid request body: %v", err)
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
}

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Method not allowed"})
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
