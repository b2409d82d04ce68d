package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tripdesk/supplier-contracts/internal/model"
	"github.com/tripdesk/supplier-contracts/internal/service"
)

type deadlineRequest struct {
	Title              string `json:"title" binding:"required"`
	DeadlineType       string `json:"deadline_type" binding:"required"`
	DeadlineDate       string `json:"deadline_date" binding:"required"`
	Status             string `json:"status"`
	ReminderDaysBefore int    `json:"reminder_days_before" binding:"min=0"`
	Notes              string `json:"notes"`
}

func (r deadlineRequest) input() (service.DeadlineInput, error) {
	date, err := parseDate(r.DeadlineDate)
	if err != nil {
		return service.DeadlineInput{}, err
	}
	return service.DeadlineInput{
		Title:              r.Title,
		DeadlineType:       model.DeadlineType(strings.ToLower(strings.TrimSpace(r.DeadlineType))),
		DeadlineDate:       date,
		Status:             model.DeadlineStatus(strings.ToLower(strings.TrimSpace(r.Status))),
		ReminderDaysBefore: r.ReminderDaysBefore,
		Notes:              r.Notes,
	}, nil
}

func (h *Handler) listContractDeadlines(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respondDeadlines(c, &id)
}

func (h *Handler) listDeadlines(c *gin.Context) {
	contractID, ok := queryUUID(c, "contract_id")
	if !ok {
		return
	}
	h.respondDeadlines(c, contractID)
}

func (h *Handler) respondDeadlines(c *gin.Context, contractID *uuid.UUID) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	overdue, ok := queryBool(c, "overdue")
	if !ok {
		return
	}
	dueWithin, ok := queryInt(c, "due_within")
	if !ok {
		return
	}
	if dueWithin != nil && *dueWithin < 0 {
		badRequest(c, "invalid due_within")
		return
	}

	filter := model.DeadlineFilter{
		ContractID:  contractID,
		Status:      model.DeadlineStatus(strings.ToLower(c.Query("status"))),
		OverdueOnly: overdue,
		DueWithin:   dueWithin,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		badRequest(c, "invalid status")
		return
	}

	result, err := h.deadlines.List(c.Request.Context(), filter, page)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getDeadline(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	deadline, err := h.deadlines.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, deadline)
}

func (h *Handler) createDeadline(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req deadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, err := req.input()
	if err != nil {
		badRequest(c, "invalid deadline_date")
		return
	}
	deadline, err := h.deadlines.Create(c.Request.Context(), principal, contractID, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deadline)
}

func (h *Handler) updateDeadline(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req deadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, err := req.input()
	if err != nil {
		badRequest(c, "invalid deadline_date")
		return
	}
	deadline, err := h.deadlines.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, deadline)
}

func (h *Handler) completeDeadline(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	deadline, err := h.deadlines.Complete(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, deadline)
}

func (h *Handler) deleteDeadline(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deadlines.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
