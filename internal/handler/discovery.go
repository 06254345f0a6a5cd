package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"copydesk/internal/discovery"
)

type DiscoveryHandler struct {
	Agg *discovery.Aggregator
}

func (h *DiscoveryHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/discovery")
	g.GET("/fresh", h.fresh)
	g.GET("/momentum", h.momentum)
	g.GET("/status", h.status)
	g.PUT("/min-market-cap", h.putMinMarketCap)
}

// @Summary Freshly launched tokens, newest first
// @Tags discovery
// @Success 200 {object} apiResponse
// @Router /api/v1/discovery/fresh [get]
func (h *DiscoveryHandler) fresh(c *gin.Context) {
	if h.Agg == nil {
		Error(c, http.StatusInternalServerError, "aggregator unavailable", nil)
		return
	}
	snap := h.Agg.Snapshot()
	Ok(c, snap.Fresh, snapshotMeta(snap))
}

// @Summary Tokens with migration or trading momentum
// @Tags discovery
// @Success 200 {object} apiResponse
// @Router /api/v1/discovery/momentum [get]
func (h *DiscoveryHandler) momentum(c *gin.Context) {
	if h.Agg == nil {
		Error(c, http.StatusInternalServerError, "aggregator unavailable", nil)
		return
	}
	snap := h.Agg.Snapshot()
	Ok(c, snap.Momentum, snapshotMeta(snap))
}

// @Summary Per-source fetch status of the last refresh cycle
// @Tags discovery
// @Success 200 {object} apiResponse
// @Router /api/v1/discovery/status [get]
func (h *DiscoveryHandler) status(c *gin.Context) {
	if h.Agg == nil {
		Error(c, http.StatusInternalServerError, "aggregator unavailable", nil)
		return
	}
	snap := h.Agg.Snapshot()
	Ok(c, map[string]any{
		"sources":        h.Agg.Statuses(),
		"warning":        snap.Warning,
		"min_market_cap": h.Agg.MinMarketCap(),
		"cycle":          snap.Cycle,
		"refreshed_at":   snap.RefreshedAt,
	}, nil)
}

type putMinMarketCapRequest struct {
	MinMarketCap float64 `json:"min_market_cap"`
}

// @Summary Set the market-cap floor applied to both discovery columns
// @Tags discovery
// @Success 200 {object} apiResponse
// @Router /api/v1/discovery/min-market-cap [put]
func (h *DiscoveryHandler) putMinMarketCap(c *gin.Context) {
	if h.Agg == nil {
		Error(c, http.StatusInternalServerError, "aggregator unavailable", nil)
		return
	}
	var req putMinMarketCapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.MinMarketCap < 0 {
		Error(c, http.StatusBadRequest, "min_market_cap must be >= 0", nil)
		return
	}
	h.Agg.SetMinMarketCap(req.MinMarketCap)
	snap := h.Agg.Snapshot()
	Ok(c, map[string]any{
		"min_market_cap": h.Agg.MinMarketCap(),
		"fresh":          snap.Fresh,
		"momentum":       snap.Momentum,
	}, nil)
}

func snapshotMeta(snap discovery.Snapshot) map[string]any {
	meta := map[string]any{
		"cycle":        snap.Cycle,
		"refreshed_at": snap.RefreshedAt,
	}
	if snap.Warning != "" {
		meta["warning"] = snap.Warning
	}
	return meta
}
