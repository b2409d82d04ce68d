package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/supplier-contracts/internal/inventory"
	"github.com/tripdesk/supplier-contracts/internal/model"
)

type RateService struct {
	rates     RateRepository
	contracts ContractRepository
	audit     auditTrail
	paging    Paging
	now       func() time.Time
}

func NewRateService(rates RateRepository, contracts ContractRepository, audit AuditRepository, paging Paging, log zerolog.Logger) *RateService {
	return &RateService{
		rates:     rates,
		contracts: contracts,
		audit:     auditTrail{repo: audit, log: log},
		paging:    paging,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type RateInput struct {
	ProductName  string
	RatePlanName string
	VariantName  string
	BoardBasis   string
	RateType     model.RateType
	Currency     string
	CostPrice    decimal.Decimal
	SellPrice    decimal.Decimal
	MinStay      int
	ValidFrom    time.Time
	ValidTo      time.Time
}

type RateView struct {
	model.SupplierRate
	Margin        decimal.Decimal `json:"margin"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
}

func NewRateView(r model.SupplierRate) RateView {
	return RateView{SupplierRate: r, Margin: r.Margin(), MarginPercent: r.MarginPercent()}
}

func (s *RateService) List(ctx context.Context, filter model.RateFilter, page model.PageRequest) (model.Page[RateView], error) {
	result, err := paginate(ctx, s.paging, page,
		func(ctx context.Context) (int64, error) { return s.rates.Count(ctx, filter) },
		func(ctx context.Context, req model.PageRequest) ([]model.SupplierRate, error) {
			return s.rates.List(ctx, filter, req)
		},
	)
	if err != nil {
		return model.Page[RateView]{}, err
	}
	return mapPage(result, NewRateView), nil
}

func (s *RateService) Get(ctx context.Context, id uuid.UUID) (*RateView, error) {
	r, err := s.rates.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	view := NewRateView(*r)
	return &view, nil
}

func (s *RateService) Create(ctx context.Context, principal model.Principal, contractID uuid.UUID, input RateInput) (*RateView, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, translate(err)
	}
	rate, err := buildRate(*contract, input)
	if err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, rate); err != nil {
		return nil, err
	}

	saved, err := s.rates.Create(ctx, rate)
	if err != nil {
		return nil, err
	}
	cs := newChangeSet(model.EntityRate, saved.ID, &contractID, principal.UserID, s.now())
	cs.event(model.AuditActionCreate)
	s.audit.record(ctx, cs)

	view := NewRateView(*saved)
	return &view, nil
}

func (s *RateService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input RateInput) (*RateView, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	current, err := s.rates.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	contract, err := s.contracts.Get(ctx, current.ContractID)
	if err != nil {
		return nil, translate(err)
	}
	rate, err := buildRate(*contract, input)
	if err != nil {
		return nil, err
	}
	rate.ID = id
	if err := s.checkOverlap(ctx, rate); err != nil {
		return nil, err
	}

	saved, err := s.rates.Update(ctx, rate)
	if err != nil {
		return nil, translate(err)
	}
	cs := newChangeSet(model.EntityRate, id, &current.ContractID, principal.UserID, s.now())
	cs.field(model.AuditActionUpdate, "product_name", current.ProductName, saved.ProductName)
	cs.field(model.AuditActionUpdate, "rate_plan_name", current.RatePlanName, saved.RatePlanName)
	cs.field(model.AuditActionUpdate, "variant_name", current.VariantName, saved.VariantName)
	cs.field(model.AuditActionUpdate, "board_basis", current.BoardBasis, saved.BoardBasis)
	cs.field(model.AuditActionUpdate, "rate_type", current.RateType, saved.RateType)
	cs.field(model.AuditActionUpdate, "currency", current.Currency, saved.Currency)
	cs.field(model.AuditActionUpdate, "cost_price", current.CostPrice, saved.CostPrice)
	cs.field(model.AuditActionUpdate, "sell_price", current.SellPrice, saved.SellPrice)
	cs.field(model.AuditActionUpdate, "min_stay", current.MinStay, saved.MinStay)
	cs.field(model.AuditActionUpdate, "valid_from", current.ValidFrom, saved.ValidFrom)
	cs.field(model.AuditActionUpdate, "valid_to", current.ValidTo, saved.ValidTo)
	s.audit.record(ctx, cs)

	view := NewRateView(*saved)
	return &view, nil
}

func (s *RateService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.CanWrite() {
		return ErrPermissionDenied
	}
	current, err := s.rates.Get(ctx, id)
	if err != nil {
		return translate(err)
	}
	if err := s.rates.SoftDelete(ctx, id); err != nil {
		return translate(err)
	}
	cs := newChangeSet(model.EntityRate, id, &current.ContractID, principal.UserID, s.now())
	cs.event(model.AuditActionDelete)
	s.audit.record(ctx, cs)
	return nil
}

// checkOverlap rejects rate when another active rate for the same
// variant shares a validity day.
func (s *RateService) checkOverlap(ctx context.Context, rate model.SupplierRate) error {
	existing, err := s.rates.ListVariant(ctx, rate)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == rate.ID || !other.SameVariant(rate) {
			continue
		}
		if other.Overlaps(rate) {
			return fmt.Errorf("%w: overlaps rate %s valid %s to %s", ErrConflict,
				other.ID, other.ValidFrom.Format("2006-01-02"), other.ValidTo.Format("2006-01-02"))
		}
	}
	return nil
}

func buildRate(contract model.Contract, input RateInput) (model.SupplierRate, error) {
	rate := model.SupplierRate{
		ContractID:   contract.ID,
		ProductName:  strings.TrimSpace(input.ProductName),
		RatePlanName: strings.TrimSpace(input.RatePlanName),
		VariantName:  strings.TrimSpace(input.VariantName),
		BoardBasis:   strings.ToUpper(strings.TrimSpace(input.BoardBasis)),
		RateType:     input.RateType,
		Currency:     strings.ToUpper(strings.TrimSpace(input.Currency)),
		CostPrice:    input.CostPrice.Round(2),
		SellPrice:    input.SellPrice.Round(2),
		MinStay:      input.MinStay,
		ValidFrom:    inventory.DateOnly(input.ValidFrom),
		ValidTo:      inventory.DateOnly(input.ValidTo),
	}
	if rate.Currency == "" {
		rate.Currency = contract.Currency
	}

	switch {
	case rate.ProductName == "":
		return rate, fmt.Errorf("%w: product_name is required", ErrInvalidInput)
	case rate.RatePlanName == "":
		return rate, fmt.Errorf("%w: rate_plan_name is required", ErrInvalidInput)
	case !rate.RateType.Valid():
		return rate, fmt.Errorf("%w: unknown rate_type %q", ErrInvalidInput, rate.RateType)
	case !validCurrency(rate.Currency):
		return rate, fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidInput)
	case rate.CostPrice.IsNegative() || rate.SellPrice.IsNegative():
		return rate, fmt.Errorf("%w: prices must not be negative", ErrInvalidInput)
	case rate.MinStay < 0:
		return rate, fmt.Errorf("%w: min_stay must not be negative", ErrInvalidInput)
	case rate.ValidFrom.IsZero() || rate.ValidTo.IsZero():
		return rate, fmt.Errorf("%w: validity dates are required", ErrInvalidInput)
	case rate.ValidFrom.After(rate.ValidTo):
		return rate, fmt.Errorf("%w: valid_from must be before or equal to valid_to", ErrInvalidInput)
	case rate.ValidFrom.Before(contract.ValidFrom) || rate.ValidTo.After(contract.ValidTo):
		return rate, fmt.Errorf("%w: rate validity must fall within the contract validity", ErrInvalidInput)
	}
	return rate, nil
}
