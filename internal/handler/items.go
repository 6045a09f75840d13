package handler

import (
	"net/http"
	"strings"

	"sukiism/internal/dto"
	"sukiism/internal/middleware"
	"sukiism/internal/service"

	"github.com/gin-gonic/gin"
)

type ItemsHandler struct {
	svc    service.ItemService
	ledger service.LedgerService
}

func NewItemsHandler(svc service.ItemService, ledger service.LedgerService) *ItemsHandler {
	return &ItemsHandler{svc: svc, ledger: ledger}
}

// List godoc
// @Summary List items
// @Tags items
// @Produce json
// @Success 200 {array} dto.ItemResponse
// @Router /v1/items [get]
func (h *ItemsHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.ItemResponse, len(items))
	for i, it := range items {
		out[i] = toItemResponse(it)
	}
	c.JSON(http.StatusOK, out)
}

func (h *ItemsHandler) Get(c *gin.Context) {
	it, err := h.svc.Get(c.Request.Context(), strings.TrimSpace(c.Param("code")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(*it))
}

// Create godoc
// @Summary Add an item
// @Description Allocates the next code for the category. A positive quantity is recorded as an approved opening movement.
// @Tags items
// @Accept json
// @Produce json
// @Param body body dto.CreateItemRequest true "Item"
// @Success 201 {object} dto.CreateItemResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/items [post]
func (h *ItemsHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	code, err := h.svc.Add(c.Request.Context(), service.AddItemInput{
		Name:          req.Name,
		Category:      req.Category,
		Unit:          req.Unit,
		UnitPrice:     req.UnitPrice,
		MinStock:      req.MinStock,
		Quantity:      req.Quantity,
		ShelfLifeDays: req.ShelfLifeDays,
	}, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreateItemResponse{Code: code})
}

func (h *ItemsHandler) Update(c *gin.Context) {
	var req dto.UpdateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	it, err := h.svc.Update(c.Request.Context(), c.Param("code"), service.UpdateItemInput{
		Name:          req.Name,
		Category:      req.Category,
		Unit:          req.Unit,
		UnitPrice:     req.UnitPrice,
		MinStock:      req.MinStock,
		ShelfLifeDays: req.ShelfLifeDays,
	}, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(*it))
}

func (h *ItemsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("code"), middleware.Actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Recompute rebuilds one item's stock columns from the approved ledger rows.
func (h *ItemsHandler) Recompute(c *gin.Context) {
	rc, err := h.ledger.Recompute(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	if rc == nil {
		respondError(c, service.ErrItemNotFound)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(rc.Item))
}

// Categories lists the known categories with their code prefixes.
func (h *ItemsHandler) Categories(c *gin.Context) {
	cats := service.Categories()
	out := make([]gin.H, 0, len(cats)+1)
	for _, name := range cats {
		out = append(out, gin.H{"name": name, "prefix": service.PrefixFor(name)})
	}
	out = append(out, gin.H{"name": "other", "prefix": service.OtherPrefix})
	c.JSON(http.StatusOK, out)
}

// ── Dashboard ────────────────────────────────────────────────────────────────

func (h *ItemsHandler) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DashboardResponse{
		ItemCount:         d.ItemCount,
		RestockCount:      d.RestockCount,
		TotalValue:        d.TotalValue,
		TodayTransactions: d.TodayTransactions,
		Restock:           toRestockResponses(d.Restock),
	})
}

// Refresh drops the cached item and ledger reads so the next request sees
// edits made directly in the spreadsheet.
func (h *ItemsHandler) Refresh(c *gin.Context) {
	if err := h.svc.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
