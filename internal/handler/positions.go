package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"copydesk/internal/repository"
)

type PositionHandler struct {
	Repo repository.Repository
}

func (h *PositionHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/positions", h.list)
}

// @Summary List positions
// @Tags positions
// @Param X-User-ID header string true "caller identity"
// @Param status query string false "open or closed"
// @Success 200 {object} apiResponse
// @Router /api/v1/positions [get]
func (h *PositionHandler) list(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)
	orderBy := parseOrder(c.Query("order_by"), map[string]string{
		"opened_at":    "opened_at",
		"closed_at":    "closed_at",
		"realized_pnl": "realized_pnl",
		"created_at":   "created_at",
	})
	if orderBy == "" {
		orderBy = "opened_at"
	}
	asc := strings.EqualFold(strings.TrimSpace(c.Query("order")), "asc")

	params := repository.ListPositionsParams{
		UserID:  uid,
		Status:  strQueryPtr(c, "status"),
		Limit:   limit,
		Offset:  offset,
		OrderBy: orderBy,
		Asc:     boolPtr(asc),
	}
	items, err := h.Repo.ListPositions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountPositions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}
