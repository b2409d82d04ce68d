package model

import (
	"time"

	"github.com/google/uuid"
)

type AllocationType string

const (
	AllocationTypeRoom AllocationType = "room"
	AllocationTypeSeat AllocationType = "seat"
	AllocationTypeUnit AllocationType = "unit"
)

func (t AllocationType) Valid() bool {
	switch t {
	case AllocationTypeRoom, AllocationTypeSeat, AllocationTypeUnit:
		return true
	}
	return false
}

// AllocationStatus is the display state of an allocation bucket.
type AllocationStatus string

const (
	AllocationStatusAvailable AllocationStatus = "available"
	AllocationStatusSoldOut   AllocationStatus = "sold_out"
	AllocationStatusFreesale  AllocationStatus = "freesale"
	AllocationStatusBlackout  AllocationStatus = "blackout"
	AllocationStatusStopSell  AllocationStatus = "stop_sell"
)

func (s AllocationStatus) Valid() bool {
	switch s {
	case AllocationStatusAvailable, AllocationStatusSoldOut, AllocationStatusFreesale,
		AllocationStatusBlackout, AllocationStatusStopSell:
		return true
	}
	return false
}

// ContractAllocation is an allocation bucket: a block of rooms or seats
// held for a product over a date range. A nil Quantity means freesale.
type ContractAllocation struct {
	ID             uuid.UUID      `json:"id"`
	ContractID     uuid.UUID      `json:"contract_id"`
	PoolID         *uuid.UUID     `json:"pool_id,omitempty"`
	ProductName    string         `json:"product_name"`
	AllocationType AllocationType `json:"allocation_type"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	Quantity       *int           `json:"quantity"`
	Booked         int            `json:"booked"`
	Held           int            `json:"held"`
	ReleaseDays    int            `json:"release_days"`
	ReleaseDate    *time.Time     `json:"release_date,omitempty"`
	IsBlackout     bool           `json:"is_blackout"`
	IsStopSell     bool           `json:"is_stop_sell"`
	ReleasedAt     *time.Time     `json:"released_at,omitempty"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type AllocationFilter struct {
	ContractID *uuid.UUID
	PoolID     *uuid.UUID
	From       *time.Time
	To         *time.Time
	Status     AllocationStatus
}

// AllocationPatch carries the fields a bulk update may change.
type AllocationPatch struct {
	Quantity   *int  `json:"quantity"`
	IsBlackout *bool `json:"is_blackout"`
	IsStopSell *bool `json:"is_stop_sell"`
}

func (p AllocationPatch) Empty() bool {
	return p.Quantity == nil && p.IsBlackout == nil && p.IsStopSell == nil
}
