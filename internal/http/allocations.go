package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tripdesk/supplier-contracts/internal/model"
	"github.com/tripdesk/supplier-contracts/internal/service"
)

type allocationRequest struct {
	PoolID         *string `json:"pool_id"`
	ProductName    string  `json:"product_name" binding:"required"`
	AllocationType string  `json:"allocation_type"`
	StartDate      string  `json:"start_date" binding:"required"`
	EndDate        string  `json:"end_date" binding:"required"`
	Quantity       *int    `json:"quantity" binding:"omitempty,min=0"`
	Booked         int     `json:"booked" binding:"min=0"`
	Held           int     `json:"held" binding:"min=0"`
	ReleaseDays    int     `json:"release_days" binding:"min=0"`
	ReleaseDate    *string `json:"release_date"`
	IsBlackout     bool    `json:"is_blackout"`
	IsStopSell     bool    `json:"is_stop_sell"`
}

func (r allocationRequest) input() (service.AllocationInput, string) {
	poolID, err := parseOptionalUUID(r.PoolID)
	if err != nil {
		return service.AllocationInput{}, "invalid pool_id"
	}
	start, err := parseDate(r.StartDate)
	if err != nil {
		return service.AllocationInput{}, "invalid start_date"
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return service.AllocationInput{}, "invalid end_date"
	}
	release, err := parseOptionalDate(r.ReleaseDate)
	if err != nil {
		return service.AllocationInput{}, "invalid release_date"
	}
	allocationType := model.AllocationType(strings.ToLower(strings.TrimSpace(r.AllocationType)))
	if allocationType == "" {
		allocationType = model.AllocationTypeRoom
	}
	return service.AllocationInput{
		PoolID:         poolID,
		ProductName:    r.ProductName,
		AllocationType: allocationType,
		StartDate:      start,
		EndDate:        end,
		Quantity:       r.Quantity,
		Booked:         r.Booked,
		Held:           r.Held,
		ReleaseDays:    r.ReleaseDays,
		ReleaseDate:    release,
		IsBlackout:     r.IsBlackout,
		IsStopSell:     r.IsStopSell,
	}, ""
}

type adjustRequest struct {
	BookedDelta int `json:"booked_delta"`
	HeldDelta   int `json:"held_delta"`
}

type bulkUpdateRequest struct {
	IDs   []uuid.UUID           `json:"ids" binding:"required,min=1"`
	Patch model.AllocationPatch `json:"patch"`
}

type assignRequest struct {
	AllocationID uuid.UUID `json:"allocation_id" binding:"required"`
}

func (h *Handler) listContractAllocations(c *gin.Context) {
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	poolID, ok := queryUUID(c, "pool_id")
	if !ok {
		return
	}
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}

	filter := model.AllocationFilter{
		ContractID: &contractID,
		PoolID:     poolID,
		From:       from,
		To:         to,
		Status:     model.AllocationStatus(strings.ToLower(c.Query("status"))),
	}
	result, err := h.allocations.List(c.Request.Context(), filter, page)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getAllocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.allocations.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) createAllocation(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, problem := req.input()
	if problem != "" {
		badRequest(c, problem)
		return
	}
	view, err := h.allocations.Create(c.Request.Context(), principal, contractID, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) updateAllocation(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, problem := req.input()
	if problem != "" {
		badRequest(c, problem)
		return
	}
	view, err := h.allocations.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) deleteAllocation(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.allocations.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) adjustAllocation(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	view, err := h.allocations.AdjustCounters(c.Request.Context(), principal, id, req.BookedDelta, req.HeldDelta)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) releaseAllocation(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.allocations.Release(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) bulkUpdateAllocations(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	result, err := h.allocations.BulkUpdate(c.Request.Context(), principal, req.IDs, req.Patch)
	if err != nil {
		h.handleError(c, err)
		return
	}
	status := http.StatusOK
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

func (h *Handler) contractReleaseWarnings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respondReleaseWarnings(c, &id)
}

func (h *Handler) releaseWarnings(c *gin.Context) {
	contractID, ok := queryUUID(c, "contract_id")
	if !ok {
		return
	}
	h.respondReleaseWarnings(c, contractID)
}

func (h *Handler) respondReleaseWarnings(c *gin.Context, contractID *uuid.UUID) {
	warnings, err := h.allocations.ReleaseWarnings(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": warnings, "total": len(warnings)})
}

func (h *Handler) exportReleaseWorkbook(c *gin.Context) {
	result, err := h.exports.ReleaseWorkbook(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, contentTypeXLSX, result)
}

func (h *Handler) unassignAllocation(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.pools.Unassign(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
