package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

type SupplierRepository interface {
	List(ctx context.Context) ([]model.Supplier, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	ExistsCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, supplier model.Supplier) (*model.Supplier, error)
}

type ContractRepository interface {
	Count(ctx context.Context, filter model.ContractFilter) (int64, error)
	List(ctx context.Context, filter model.ContractFilter, page model.PageRequest) ([]model.Contract, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	ExistsNumber(ctx context.Context, number string, exclude uuid.UUID) (bool, error)
	Create(ctx context.Context, contract model.Contract) (*model.Contract, error)
	Update(ctx context.Context, contract model.Contract) (*model.Contract, error)
	SoftDelete(ctx context.Context, id, by uuid.UUID) error
	CountByStatus(ctx context.Context) (map[model.ContractStatus]int64, error)
}

type DeadlineRepository interface {
	Count(ctx context.Context, filter model.DeadlineFilter, now time.Time) (int64, error)
	List(ctx context.Context, filter model.DeadlineFilter, now time.Time, page model.PageRequest) ([]model.ContractDeadline, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ContractDeadline, error)
	Create(ctx context.Context, d model.ContractDeadline) (*model.ContractDeadline, error)
	Update(ctx context.Context, d model.ContractDeadline) (*model.ContractDeadline, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type AllocationRepository interface {
	Count(ctx context.Context, filter model.AllocationFilter) (int64, error)
	List(ctx context.Context, filter model.AllocationFilter, page model.PageRequest) ([]model.ContractAllocation, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ContractAllocation, error)
	Create(ctx context.Context, a model.ContractAllocation) (*model.ContractAllocation, error)
	Update(ctx context.Context, a model.ContractAllocation, bookedDelta, heldDelta int) (*model.ContractAllocation, error)
	Patch(ctx context.Context, id uuid.UUID, patch model.AllocationPatch) (*model.ContractAllocation, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	AdjustCounters(ctx context.Context, id uuid.UUID, bookedDelta, heldDelta int) (*model.ContractAllocation, error)
	Release(ctx context.Context, id uuid.UUID, at time.Time) (*model.ContractAllocation, error)
	SetPool(ctx context.Context, id uuid.UUID, poolID *uuid.UUID) (*model.ContractAllocation, error)
}

type PoolRepository interface {
	List(ctx context.Context, supplierID *uuid.UUID) ([]model.AllocationPool, error)
	Get(ctx context.Context, id uuid.UUID) (*model.AllocationPool, error)
	Create(ctx context.Context, pool model.AllocationPool) (*model.AllocationPool, error)
	Update(ctx context.Context, pool model.AllocationPool) (*model.AllocationPool, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type RateRepository interface {
	Count(ctx context.Context, filter model.RateFilter) (int64, error)
	List(ctx context.Context, filter model.RateFilter, page model.PageRequest) ([]model.SupplierRate, error)
	ListVariant(ctx context.Context, rate model.SupplierRate) ([]model.SupplierRate, error)
	Get(ctx context.Context, id uuid.UUID) (*model.SupplierRate, error)
	Create(ctx context.Context, rate model.SupplierRate) (*model.SupplierRate, error)
	Update(ctx context.Context, rate model.SupplierRate) (*model.SupplierRate, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type AuditRepository interface {
	Create(ctx context.Context, entries []model.AuditLog) error
	Count(ctx context.Context, filter model.AuditFilter) (int64, error)
	List(ctx context.Context, filter model.AuditFilter, page model.PageRequest) ([]model.AuditLog, error)
}
