package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RateType string

const (
	RateTypePerNight  RateType = "per_night"
	RateTypePerPerson RateType = "per_person"
	RateTypePerUnit   RateType = "per_unit"
)

func (t RateType) Valid() bool {
	switch t {
	case RateTypePerNight, RateTypePerPerson, RateTypePerUnit:
		return true
	}
	return false
}

// SupplierRate is a rate plan for one product variant of a contract,
// valid over an inclusive date window.
type SupplierRate struct {
	ID           uuid.UUID       `json:"id"`
	ContractID   uuid.UUID       `json:"contract_id"`
	ProductName  string          `json:"product_name"`
	RatePlanName string          `json:"rate_plan_name"`
	VariantName  string          `json:"variant_name"`
	BoardBasis   string          `json:"board_basis"`
	RateType     RateType        `json:"rate_type"`
	Currency     string          `json:"currency"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	MinStay      int             `json:"min_stay"`
	ValidFrom    time.Time       `json:"valid_from"`
	ValidTo      time.Time       `json:"valid_to"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (r SupplierRate) Margin() decimal.Decimal {
	return r.SellPrice.Sub(r.CostPrice)
}

// MarginPercent is the margin relative to the sell price, rounded to two
// places. Zero when the sell price is zero.
func (r SupplierRate) MarginPercent() decimal.Decimal {
	if r.SellPrice.IsZero() {
		return decimal.Zero
	}
	return r.Margin().Div(r.SellPrice).Mul(decimal.NewFromInt(100)).Round(2)
}

// SameVariant reports whether two rates price the same product variant
// under the same plan.
func (r SupplierRate) SameVariant(other SupplierRate) bool {
	return r.ContractID == other.ContractID &&
		r.ProductName == other.ProductName &&
		r.RatePlanName == other.RatePlanName &&
		r.VariantName == other.VariantName
}

// Overlaps reports whether two inclusive validity windows share a day.
func (r SupplierRate) Overlaps(other SupplierRate) bool {
	return !r.ValidFrom.After(other.ValidTo) && !other.ValidFrom.After(r.ValidTo)
}

type RateFilter struct {
	ContractID  uuid.UUID
	ProductName string
	ValidOn     *time.Time
}
