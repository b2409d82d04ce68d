package model

import "time"

// ContractDocument is everything exported for a single contract.
type ContractDocument struct {
	Contract    Contract
	Deadlines   []ContractDeadline
	Allocations []ContractAllocation
	Rates       []SupplierRate
	GeneratedAt time.Time
	HorizonDays int
}

// ReleaseReport covers the release position across all active contracts.
type ReleaseReport struct {
	Contracts   []Contract
	Allocations []ContractAllocation
	GeneratedAt time.Time
	HorizonDays int
}
