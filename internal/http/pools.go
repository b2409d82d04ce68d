package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tripdesk/supplier-contracts/internal/service"
)

type poolRequest struct {
	SupplierID  uuid.UUID `json:"supplier_id" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	Capacity    *int      `json:"capacity" binding:"omitempty,min=0"`
}

func (r poolRequest) input() service.PoolInput {
	return service.PoolInput{
		SupplierID:  r.SupplierID,
		Name:        r.Name,
		Description: r.Description,
		Capacity:    r.Capacity,
	}
}

func (h *Handler) listPools(c *gin.Context) {
	supplierID, ok := queryUUID(c, "supplier_id")
	if !ok {
		return
	}
	pools, err := h.pools.List(c.Request.Context(), supplierID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": pools})
}

func (h *Handler) getPool(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pool, err := h.pools.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

func (h *Handler) createPool(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req poolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	pool, err := h.pools.Create(c.Request.Context(), principal, req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pool)
}

func (h *Handler) updatePool(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req poolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	pool, err := h.pools.Update(c.Request.Context(), principal, id, req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

func (h *Handler) deletePool(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.pools.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) assignAllocation(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	poolID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	view, err := h.pools.Assign(c.Request.Context(), principal, poolID, req.AllocationID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
