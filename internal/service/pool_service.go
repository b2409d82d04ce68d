package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tripdesk/supplier-contracts/internal/inventory"
	"github.com/tripdesk/supplier-contracts/internal/model"
)

type PoolService struct {
	pools       PoolRepository
	allocations AllocationRepository
	contracts   ContractRepository
	suppliers   SupplierRepository
	audit       auditTrail
	now         func() time.Time
}

func NewPoolService(
	pools PoolRepository,
	allocations AllocationRepository,
	contracts ContractRepository,
	suppliers SupplierRepository,
	audit AuditRepository,
	log zerolog.Logger,
) *PoolService {
	return &PoolService{
		pools:       pools,
		allocations: allocations,
		contracts:   contracts,
		suppliers:   suppliers,
		audit:       auditTrail{repo: audit, log: log},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type PoolInput struct {
	SupplierID  uuid.UUID
	Name        string
	Description string
	Capacity    *int
}

// PoolView is a pool with the aggregate of its member allocations.
type PoolView struct {
	model.AllocationPool
	Summary           inventory.Summary `json:"summary"`
	CapacityRemaining *int              `json:"capacity_remaining,omitempty"`
}

type PoolDetail struct {
	PoolView
	Allocations []inventory.View `json:"allocations"`
}

func (s *PoolService) List(ctx context.Context, supplierID *uuid.UUID) ([]PoolView, error) {
	pools, err := s.pools.List(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	views := make([]PoolView, 0, len(pools))
	for _, pool := range pools {
		members, err := s.members(ctx, pool.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, newPoolView(pool, members))
	}
	return views, nil
}

func (s *PoolService) Get(ctx context.Context, id uuid.UUID) (*PoolDetail, error) {
	pool, err := s.pools.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	members, err := s.members(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PoolDetail{
		PoolView:    newPoolView(*pool, members),
		Allocations: inventory.NewViews(members),
	}, nil
}

func (s *PoolService) Create(ctx context.Context, principal model.Principal, input PoolInput) (*PoolView, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	input, err := normalizePool(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.suppliers.Get(ctx, input.SupplierID); err != nil {
		if translate(err) == ErrNotFound {
			return nil, fmt.Errorf("%w: supplier not found", ErrInvalidInput)
		}
		return nil, err
	}

	saved, err := s.pools.Create(ctx, model.AllocationPool{
		SupplierID:  input.SupplierID,
		Name:        input.Name,
		Description: input.Description,
		Capacity:    input.Capacity,
	})
	if err != nil {
		return nil, err
	}

	cs := newChangeSet(model.EntityPool, saved.ID, nil, principal.UserID, s.now())
	cs.event(model.AuditActionCreate)
	s.audit.record(ctx, cs)

	view := newPoolView(*saved, nil)
	return &view, nil
}

// Update changes name, description and capacity. The supplier of a pool
// is fixed.
func (s *PoolService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input PoolInput) (*PoolView, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	current, err := s.pools.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	input.SupplierID = current.SupplierID
	input, err = normalizePool(input)
	if err != nil {
		return nil, err
	}

	members, err := s.members(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Capacity != nil && inventory.Summarize(members).Quantity > *input.Capacity {
		return nil, fmt.Errorf("%w: member allocations exceed the new capacity", ErrCapacityExceeded)
	}

	next := *current
	next.Name = input.Name
	next.Description = input.Description
	next.Capacity = input.Capacity
	saved, err := s.pools.Update(ctx, next)
	if err != nil {
		return nil, translate(err)
	}

	cs := newChangeSet(model.EntityPool, id, nil, principal.UserID, s.now())
	cs.field(model.AuditActionUpdate, "name", current.Name, saved.Name)
	cs.field(model.AuditActionUpdate, "description", current.Description, saved.Description)
	cs.field(model.AuditActionUpdate, "capacity", current.Capacity, saved.Capacity)
	s.audit.record(ctx, cs)

	view := newPoolView(*saved, members)
	return &view, nil
}

// Delete releases every member allocation from the pool before the pool
// itself is removed.
func (s *PoolService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.CanWrite() {
		return ErrPermissionDenied
	}
	if _, err := s.pools.Get(ctx, id); err != nil {
		return translate(err)
	}
	members, err := s.members(ctx, id)
	if err != nil {
		return err
	}
	for _, m := range members {
		saved, err := s.allocations.SetPool(ctx, m.ID, nil)
		if err != nil {
			return translate(err)
		}
		cs := newChangeSet(model.EntityAllocation, m.ID, &m.ContractID, principal.UserID, s.now())
		cs.field(model.AuditActionUpdate, "pool_id", m.PoolID, saved.PoolID)
		s.audit.record(ctx, cs)
	}

	if err := s.pools.SoftDelete(ctx, id); err != nil {
		return translate(err)
	}
	cs := newChangeSet(model.EntityPool, id, nil, principal.UserID, s.now())
	cs.event(model.AuditActionDelete)
	s.audit.record(ctx, cs)
	return nil
}

// Assign moves an allocation into the pool. The allocation's contract
// must belong to the pool's supplier and the pool capacity must hold.
func (s *PoolService) Assign(ctx context.Context, principal model.Principal, poolID, allocationID uuid.UUID) (*inventory.View, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	pool, err := s.pools.Get(ctx, poolID)
	if err != nil {
		return nil, translate(err)
	}
	alloc, err := s.allocations.Get(ctx, allocationID)
	if err != nil {
		return nil, translate(err)
	}
	if alloc.PoolID != nil && *alloc.PoolID == poolID {
		view := inventory.NewView(*alloc)
		return &view, nil
	}
	contract, err := s.contracts.Get(ctx, alloc.ContractID)
	if err != nil {
		return nil, translate(err)
	}
	if contract.SupplierID != pool.SupplierID {
		return nil, fmt.Errorf("%w: allocation belongs to another supplier", ErrInvalidInput)
	}

	if err := ensurePoolCapacity(ctx, s.allocations, pool, allocationID, alloc.Quantity); err != nil {
		return nil, err
	}

	saved, err := s.allocations.SetPool(ctx, allocationID, &poolID)
	if err != nil {
		return nil, translate(err)
	}
	cs := newChangeSet(model.EntityAllocation, allocationID, &alloc.ContractID, principal.UserID, s.now())
	cs.field(model.AuditActionUpdate, "pool_id", alloc.PoolID, saved.PoolID)
	s.audit.record(ctx, cs)

	view := inventory.NewView(*saved)
	return &view, nil
}

func (s *PoolService) Unassign(ctx context.Context, principal model.Principal, allocationID uuid.UUID) (*inventory.View, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	alloc, err := s.allocations.Get(ctx, allocationID)
	if err != nil {
		return nil, translate(err)
	}
	if alloc.PoolID == nil {
		view := inventory.NewView(*alloc)
		return &view, nil
	}
	saved, err := s.allocations.SetPool(ctx, allocationID, nil)
	if err != nil {
		return nil, translate(err)
	}
	cs := newChangeSet(model.EntityAllocation, allocationID, &alloc.ContractID, principal.UserID, s.now())
	cs.field(model.AuditActionUpdate, "pool_id", alloc.PoolID, saved.PoolID)
	s.audit.record(ctx, cs)

	view := inventory.NewView(*saved)
	return &view, nil
}

func (s *PoolService) members(ctx context.Context, poolID uuid.UUID) ([]model.ContractAllocation, error) {
	return s.allocations.List(ctx, model.AllocationFilter{PoolID: &poolID}, model.PageRequest{})
}

// ensurePoolCapacity fails when the pool members, counting allocationID
// at quantity instead of its stored value, would exceed the pool
// capacity. Freesale allocations take no capacity.
func ensurePoolCapacity(ctx context.Context, allocations AllocationRepository, pool *model.AllocationPool, allocationID uuid.UUID, quantity *int) error {
	if pool.Capacity == nil {
		return nil
	}
	members, err := allocations.List(ctx, model.AllocationFilter{PoolID: &pool.ID}, model.PageRequest{})
	if err != nil {
		return err
	}
	used := 0
	if quantity != nil {
		used = *quantity
	}
	for _, m := range members {
		if m.ID != allocationID && m.Quantity != nil {
			used += *m.Quantity
		}
	}
	if used > *pool.Capacity {
		return fmt.Errorf("%w: pool capacity %d would be exceeded", ErrCapacityExceeded, *pool.Capacity)
	}
	return nil
}

func newPoolView(pool model.AllocationPool, members []model.ContractAllocation) PoolView {
	view := PoolView{AllocationPool: pool, Summary: inventory.Summarize(members)}
	if pool.Capacity != nil {
		remaining := *pool.Capacity - view.Summary.Quantity
		if remaining < 0 {
			remaining = 0
		}
		view.CapacityRemaining = &remaining
	}
	return view
}

func normalizePool(input PoolInput) (PoolInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	switch {
	case input.SupplierID == uuid.Nil:
		return input, fmt.Errorf("%w: supplier_id is required", ErrInvalidInput)
	case input.Name == "":
		return input, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case input.Capacity != nil && *input.Capacity < 0:
		return input, fmt.Errorf("%w: capacity must not be negative", ErrInvalidInput)
	}
	return input, nil
}
