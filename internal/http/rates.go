package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/supplier-contracts/internal/model"
	"github.com/tripdesk/supplier-contracts/internal/service"
)

type rateRequest struct {
	ProductName  string          `json:"product_name" binding:"required"`
	RatePlanName string          `json:"rate_plan_name" binding:"required"`
	VariantName  string          `json:"variant_name"`
	BoardBasis   string          `json:"board_basis"`
	RateType     string          `json:"rate_type" binding:"required"`
	Currency     string          `json:"currency"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	MinStay      int             `json:"min_stay" binding:"min=0"`
	ValidFrom    string          `json:"valid_from" binding:"required"`
	ValidTo      string          `json:"valid_to" binding:"required"`
}

func (r rateRequest) input() (service.RateInput, error) {
	from, err := parseDate(r.ValidFrom)
	if err != nil {
		return service.RateInput{}, err
	}
	to, err := parseDate(r.ValidTo)
	if err != nil {
		return service.RateInput{}, err
	}
	return service.RateInput{
		ProductName:  r.ProductName,
		RatePlanName: r.RatePlanName,
		VariantName:  r.VariantName,
		BoardBasis:   r.BoardBasis,
		RateType:     model.RateType(strings.ToLower(strings.TrimSpace(r.RateType))),
		Currency:     r.Currency,
		CostPrice:    r.CostPrice,
		SellPrice:    r.SellPrice,
		MinStay:      r.MinStay,
		ValidFrom:    from,
		ValidTo:      to,
	}, nil
}

func (h *Handler) listRates(c *gin.Context) {
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	validOn, ok := queryDate(c, "valid_on")
	if !ok {
		return
	}
	filter := model.RateFilter{
		ContractID:  contractID,
		ProductName: strings.TrimSpace(c.Query("product_name")),
		ValidOn:     validOn,
	}
	result, err := h.rates.List(c.Request.Context(), filter, page)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getRate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rate, err := h.rates.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}

func (h *Handler) createRate(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, err := req.input()
	if err != nil {
		badRequest(c, "invalid validity dates")
		return
	}
	rate, err := h.rates.Create(c.Request.Context(), principal, contractID, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rate)
}

func (h *Handler) updateRate(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input, err := req.input()
	if err != nil {
		badRequest(c, "invalid validity dates")
		return
	}
	rate, err := h.rates.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}

func (h *Handler) deleteRate(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.rates.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
