package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "draft"
	ContractStatusActive     ContractStatus = "active"
	ContractStatusSuspended  ContractStatus = "suspended"
	ContractStatusExpired    ContractStatus = "expired"
	ContractStatusTerminated ContractStatus = "terminated"
)

// contractTransitions lists the statuses reachable from each status.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractStatusDraft:     {ContractStatusActive, ContractStatusTerminated},
	ContractStatusActive:    {ContractStatusSuspended, ContractStatusExpired, ContractStatusTerminated},
	ContractStatusSuspended: {ContractStatusActive, ContractStatusTerminated},
}

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusActive, ContractStatusSuspended,
		ContractStatusExpired, ContractStatusTerminated:
		return true
	}
	return false
}

// CanTransitionTo reports whether a contract in status s may move to next.
func (s ContractStatus) CanTransitionTo(next ContractStatus) bool {
	for _, allowed := range contractTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type ContractType string

const (
	ContractTypeHotel    ContractType = "hotel"
	ContractTypeFlight   ContractType = "flight"
	ContractTypeTransfer ContractType = "transfer"
	ContractTypeActivity ContractType = "activity"
	ContractTypePackage  ContractType = "package"
)

func (t ContractType) Valid() bool {
	switch t {
	case ContractTypeHotel, ContractTypeFlight, ContractTypeTransfer,
		ContractTypeActivity, ContractTypePackage:
		return true
	}
	return false
}

type Supplier struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Contract struct {
	ID                uuid.UUID       `json:"id"`
	SupplierID        uuid.UUID       `json:"supplier_id"`
	SupplierName      string          `json:"supplier_name"`
	ContractNumber    string          `json:"contract_number"`
	Name              string          `json:"name"`
	ContractType      ContractType    `json:"contract_type"`
	Status            ContractStatus  `json:"status"`
	Currency          string          `json:"currency"`
	ValidFrom         time.Time       `json:"valid_from"`
	ValidTo           time.Time       `json:"valid_to"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	Notes             string          `json:"notes"`
	IsActive          bool            `json:"is_active"`
	CreatedBy         uuid.UUID       `json:"created_by"`
	UpdatedBy         *uuid.UUID      `json:"updated_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ContractFilter narrows contract listings. Zero values are ignored.
type ContractFilter struct {
	Status       ContractStatus
	ContractType ContractType
	SupplierID   *uuid.UUID
	Search       string
	ActiveOn     *time.Time
}
