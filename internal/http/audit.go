package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

func (h *Handler) listAuditLogs(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	entityID, ok := queryUUID(c, "entity_id")
	if !ok {
		return
	}
	contractID, ok := queryUUID(c, "contract_id")
	if !ok {
		return
	}
	since, ok := queryDate(c, "since")
	if !ok {
		return
	}
	filter := model.AuditFilter{
		EntityType: strings.ToLower(strings.TrimSpace(c.Query("entity_type"))),
		EntityID:   entityID,
		ContractID: contractID,
		Since:      since,
	}
	result, err := h.audit.List(c.Request.Context(), filter, page)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
