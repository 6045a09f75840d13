package handler

import (
	"fmt"
	"net/http"
	"time"

	"sukiism/internal/infra"
	"sukiism/internal/service"

	"github.com/gin-gonic/gin"
)

type RestockHandler struct {
	ledger   service.LedgerService
	currency string
	now      func() time.Time
}

func NewRestockHandler(ledger service.LedgerService, currency string) *RestockHandler {
	return &RestockHandler{ledger: ledger, currency: currency, now: time.Now}
}

// Report godoc
// @Summary Items below their minimum stock
// @Tags restock
// @Produce json
// @Success 200 {array} dto.RestockResponse
// @Router /v1/restock [get]
func (h *RestockHandler) Report(c *gin.Context) {
	entries, err := h.ledger.RestockReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRestockResponses(entries))
}

// PDF renders the restock report as a printable purchase list.
func (h *RestockHandler) PDF(c *gin.Context) {
	entries, err := h.ledger.RestockReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	at := h.now()
	data, err := infra.GenerateRestockPDF(entries, h.currency, at)
	if err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("restock-%s.pdf", at.Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
