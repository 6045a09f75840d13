package handler

import (
	"net/http"
	"strconv"

	"sukiism/internal/apierror"
	"sukiism/internal/dto"
	"sukiism/internal/middleware"
	"sukiism/internal/service"

	"github.com/gin-gonic/gin"
)

type TransactionsHandler struct{ svc service.TransactionService }

func NewTransactionsHandler(svc service.TransactionService) *TransactionsHandler {
	return &TransactionsHandler{svc: svc}
}

// Record godoc
// @Summary Record a stock movement
// @Description Appends a ledger row and recomputes the item. Outgoing movements larger than the current stock are rejected.
// @Tags transactions
// @Accept json
// @Produce json
// @Param body body dto.RecordTransactionRequest true "Movement"
// @Success 201 {object} dto.RecordTransactionResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/transactions [post]
func (h *TransactionsHandler) Record(c *gin.Context) {
	var req dto.RecordTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	approved := true
	if req.Approved != nil {
		approved = *req.Approved
	}
	res, err := h.svc.Record(c.Request.Context(), service.RecordInput{
		ItemCode:      req.ItemCode,
		Type:          req.Type,
		Quantity:      req.Quantity,
		ShelfLifeDays: req.ShelfLifeDays,
		Requester:     middleware.Actor(c),
		Approved:      approved,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.RecordTransactionResponse{Order: res.Order, Row: res.Row}
	if res.Item != nil {
		it := toItemResponse(*res.Item)
		resp.Item = &it
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary List ledger rows
// @Tags transactions
// @Produce json
// @Param date query string false "dd/mm/yy"
// @Param type query string false "in | out"
// @Param item_code query string false "Item code"
// @Success 200 {array} dto.TransactionResponse
// @Router /v1/transactions [get]
func (h *TransactionsHandler) List(c *gin.Context) {
	var f dto.TransactionFilter
	if !bindQuery(c, &f) {
		return
	}
	txs, err := h.svc.List(c.Request.Context(), service.TransactionFilter{
		Date:     f.Date,
		Type:     f.Type,
		ItemCode: f.ItemCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.TransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionResponse(tx)
	}
	c.JSON(http.StatusOK, out)
}

// Approve marks a pending ledger row approved so it counts toward stock.
func (h *TransactionsHandler) Approve(c *gin.Context) {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid row"))
		return
	}
	it, err := h.svc.Approve(c.Request.Context(), row, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if it == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(*it))
}
