package handler

import (
	"net/http"
	"strconv"

	"sukiism/internal/repository"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct{ repo repository.AuditRepository }

func NewAuditHandler(repo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// History returns the newest audit entries for one item code, ?limit=N (default 50).
func (h *AuditHandler) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 50
	}
	entries, err := h.repo.ListByEntity(c.Request.Context(), c.Param("code"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]gin.H, len(entries))
	for i, e := range entries {
		out[i] = gin.H{
			"actor":      e.Actor,
			"action":     e.Action,
			"code":       e.EntityCode,
			"detail":     e.Detail,
			"created_at": e.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, out)
}
