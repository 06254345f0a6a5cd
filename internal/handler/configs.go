package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"copydesk/internal/repository"
	"copydesk/internal/service"
)

type CopyConfigHandler struct {
	Repo    repository.Repository
	Configs *service.CopyConfigService
}

func (h *CopyConfigHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/configs")
	g.GET("", h.list)
	g.POST("/:id/toggle", h.toggle)
	g.DELETE("/:id", h.remove)
}

// @Summary List copy configurations
// @Tags configs
// @Param X-User-ID header string true "caller identity"
// @Param active query bool false "filter by active flag"
// @Success 200 {object} apiResponse
// @Router /api/v1/configs [get]
func (h *CopyConfigHandler) list(c *gin.Context) {
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
	params := repository.ListConfigsParams{
		UserID:  uid,
		Active:  boolQueryPtr(c, "active"),
		Limit:   limit,
		Offset:  offset,
		OrderBy: "created_at",
		Asc:     boolPtr(false),
	}
	items, err := h.Repo.ListCopyConfigs(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountCopyConfigs(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

type toggleConfigRequest struct {
	Active *bool `json:"active"`
}

// @Summary Toggle a copy configuration's active flag
// @Tags configs
// @Param X-User-ID header string true "caller identity"
// @Param id path int true "config id"
// @Success 200 {object} apiResponse
// @Router /api/v1/configs/{id}/toggle [post]
func (h *CopyConfigHandler) toggle(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if h.Configs == nil {
		Error(c, http.StatusInternalServerError, "config service unavailable", nil)
		return
	}
	id := uint64Param(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req toggleConfigRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, "invalid body", nil)
			return
		}
	}
	result := h.Configs.ToggleActive(c.Request.Context(), uid, id, req.Active)
	respondMutation(c, result)
}

// @Summary Delete a copy configuration
// @Tags configs
// @Param X-User-ID header string true "caller identity"
// @Param id path int true "config id"
// @Success 200 {object} apiResponse
// @Router /api/v1/configs/{id} [delete]
func (h *CopyConfigHandler) remove(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	if h.Configs == nil {
		Error(c, http.StatusInternalServerError, "config service unavailable", nil)
		return
	}
	id := uint64Param(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	result := h.Configs.Delete(c.Request.Context(), uid, id)
	respondMutation(c, result)
}

// respondMutation renders a write-then-refetch outcome. The refreshed list
// ships even when the write failed so the client can fall back to server
// state instead of its optimistic guess.
func respondMutation(c *gin.Context, result service.ToggleResult) {
	if result.ListErr != nil {
		Error(c, http.StatusBadGateway, result.ListErr.Error(), nil)
		return
	}
	if result.WriteErr != nil {
		c.JSON(http.StatusConflict, apiResponse{
			Code:    http.StatusConflict,
			Message: result.WriteErr.Error(),
			Data:    result.Configs,
		})
		return
	}
	Ok(c, result.Configs, nil)
}
