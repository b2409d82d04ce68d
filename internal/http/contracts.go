package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/supplier-contracts/internal/model"
	"github.com/tripdesk/supplier-contracts/internal/service"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type supplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Code  string `json:"code" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}

type contractRequest struct {
	SupplierID        uuid.UUID       `json:"supplier_id" binding:"required"`
	ContractNumber    string          `json:"contract_number" binding:"required"`
	Name              string          `json:"name" binding:"required"`
	ContractType      string          `json:"contract_type" binding:"required"`
	Status            string          `json:"status"`
	Currency          string          `json:"currency" binding:"required,len=3"`
	ValidFrom         string          `json:"valid_from" binding:"required"`
	ValidTo           string          `json:"valid_to" binding:"required"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	Notes             string          `json:"notes"`
}

func (r contractRequest) input() (service.ContractInput, error) {
	from, err := parseDate(r.ValidFrom)
	if err != nil {
		return service.ContractInput{}, err
	}
	to, err := parseDate(r.ValidTo)
	if err != nil {
		return service.ContractInput{}, err
	}
	return service.ContractInput{
		SupplierID:        r.SupplierID,
		ContractNumber:    r.ContractNumber,
		Name:              r.Name,
		ContractType:      model.ContractType(strings.ToLower(strings.TrimSpace(r.ContractType))),
		Status:            model.ContractStatus(strings.ToLower(strings.TrimSpace(r.Status))),
		Currency:          r.Currency,
		ValidFrom:         from,
		ValidTo:           to,
		CommissionPercent: r.CommissionPercent,
		Notes:             r.Notes,
	}, nil
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) listSuppliers(c *gin.Context) {
	suppliers, err := h.contracts.ListSuppliers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": suppliers})
}

func (h *Handler) createSupplier(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	supplier, err := h.contracts.CreateSupplier(c.Request.Context(), principal, service.SupplierInput{
		Name:  req.Name,
		Code:  req.Code,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *Handler) listContracts(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	supplierID, ok := queryUUID(c, "supplier_id")
	if !ok {
		return
	}
	activeOn, ok := queryDate(c, "active_on")
	if !ok {
		return
	}

	filter := model.ContractFilter{
		Status:       model.ContractStatus(strings.ToLower(c.Query("status"))),
		ContractType: model.ContractType(strings.ToLower(c.Query("contract_type"))),
		SupplierID:   supplierID,
		Search:       strings.TrimSpace(c.Query("search")),
		ActiveOn:     activeOn,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		badRequest(c, "invalid status")
		return
	}
	if filter.ContractType != "" && !filter.ContractType.Valid() {
		badRequest(c, "invalid contract_type")
		return
	}

	result, err := h.contracts.List(c.Request.Context(), filter, page)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getContract(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	contract, err := h.contracts.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, err := req.input()
	if err != nil {
		badRequest(c, "invalid validity dates")
		return
	}
	contract, err := h.contracts.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) updateContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, err := req.input()
	if err != nil {
		badRequest(c, "invalid validity dates")
		return
	}
	contract, err := h.contracts.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) changeContractStatus(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status := model.ContractStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	contract, err := h.contracts.ChangeStatus(c.Request.Context(), principal, id, status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) deleteContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.contracts.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getDashboard(c *gin.Context) {
	dashboard, err := h.dashboard.Build(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) exportContractWorkbook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.exports.ContractWorkbook(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, contentTypeXLSX, result)
}

func (h *Handler) exportContractPDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.exports.ContractPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, contentTypePDF, result)
}
