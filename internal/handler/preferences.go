package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"copydesk/internal/service"
)

type PreferenceHandler struct {
	Prefs *service.PreferenceService
}

func (h *PreferenceHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/preferences")
	g.GET("/currency-mode", h.getCurrencyMode)
	g.PUT("/currency-mode", h.putCurrencyMode)
}

// @Summary Current currency display mode
// @Tags preferences
// @Param X-User-ID header string true "caller identity"
// @Success 200 {object} apiResponse
// @Router /api/v1/preferences/currency-mode [get]
func (h *PreferenceHandler) getCurrencyMode(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if h.Prefs == nil {
		Error(c, http.StatusInternalServerError, "preference service unavailable", nil)
		return
	}
	mode, err := h.Prefs.CurrencyMode(c.Request.Context(), uid)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]string{"mode": mode}, nil)
}

type putCurrencyModeRequest struct {
	Mode string `json:"mode"`
}

// @Summary Set the currency display mode
// @Tags preferences
// @Param X-User-ID header string true "caller identity"
// @Success 200 {object} apiResponse
// @Router /api/v1/preferences/currency-mode [put]
func (h *PreferenceHandler) putCurrencyMode(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if h.Prefs == nil {
		Error(c, http.StatusInternalServerError, "preference service unavailable", nil)
		return
	}
	var req putCurrencyModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if err := h.Prefs.SetCurrencyMode(c.Request.Context(), uid, req.Mode); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	mode, err := h.Prefs.CurrencyMode(c.Request.Context(), uid)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]string{"mode": mode}, nil)
}
