package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"copydesk/internal/repository"
)

type PendingTradeHandler struct {
	Repo repository.Repository
}

func (h *PendingTradeHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/trades/pending", h.listPending)
}

// @Summary List pending trades awaiting confirmation
// @Tags trades
// @Param X-User-ID header string true "caller identity"
// @Success 200 {object} apiResponse
// @Router /api/v1/trades/pending [get]
func (h *PendingTradeHandler) listPending(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	status := "pending"
	items, err := h.Repo.ListPendingTrades(c.Request.Context(), repository.ListTradesParams{
		UserID: uid,
		Status: &status,
		Limit:  intQuery(c, "limit", 100),
		Offset: intQuery(c, "offset", 0),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}
