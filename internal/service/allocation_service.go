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

// MaxBulkItems bounds a single bulk update request.
const MaxBulkItems = 500

type AllocationService struct {
	allocations AllocationRepository
	contracts   ContractRepository
	pools       PoolRepository
	audit       auditTrail
	paging      Paging
	horizonDays int
	log         zerolog.Logger
	now         func() time.Time
}

func NewAllocationService(
	allocations AllocationRepository,
	contracts ContractRepository,
	pools PoolRepository,
	audit AuditRepository,
	paging Paging,
	horizonDays int,
	log zerolog.Logger,
) *AllocationService {
	return &AllocationService{
		allocations: allocations,
		contracts:   contracts,
		pools:       pools,
		audit:       auditTrail{repo: audit, log: log},
		paging:      paging,
		horizonDays: horizonDays,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type AllocationInput struct {
	PoolID         *uuid.UUID
	ProductName    string
	AllocationType model.AllocationType
	StartDate      time.Time
	EndDate        time.Time
	Quantity       *int
	Booked         int
	Held           int
	ReleaseDays    int
	ReleaseDate    *time.Time
	IsBlackout     bool
	IsStopSell     bool
}

type BulkFailure struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}

// BulkResult reports the outcome of every item in a bulk request.
type BulkResult struct {
	Succeeded []uuid.UUID   `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

func (s *AllocationService) List(ctx context.Context, filter model.AllocationFilter, page model.PageRequest) (model.Page[inventory.View], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return model.Page[inventory.View]{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	result, err := paginate(ctx, s.paging, page,
		func(ctx context.Context) (int64, error) { return s.allocations.Count(ctx, filter) },
		func(ctx context.Context, req model.PageRequest) ([]model.ContractAllocation, error) {
			return s.allocations.List(ctx, filter, req)
		},
	)
	if err != nil {
		return model.Page[inventory.View]{}, err
	}
	return mapPage(result, inventory.NewView), nil
}

func (s *AllocationService) Get(ctx context.Context, id uuid.UUID) (*inventory.View, error) {
	a, err := s.allocations.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	view := inventory.NewView(*a)
	return &view, nil
}

func (s *AllocationService) Create(ctx context.Context, principal model.Principal, contractID uuid.UUID, input AllocationInput) (*inventory.View, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, translate(err)
	}
	input, err = s.normalize(ctx, contract, uuid.Nil, input)
	if err != nil {
		return nil, err
	}

	saved, err := s.allocations.Create(ctx, model.ContractAllocation{
		ContractID:     contractID,
		PoolID:         input.PoolID,
		ProductName:    input.ProductName,
		AllocationType: input.AllocationType,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Quantity:       input.Quantity,
		Booked:         input.Booked,
		Held:           input.Held,
		ReleaseDays:    input.ReleaseDays,
		ReleaseDate:    input.ReleaseDate,
		IsBlackout:     input.IsBlackout,
		IsStopSell:     input.IsStopSell,
	})
	if err != nil {
		return nil, err
	}

	cs := newChangeSet(model.EntityAllocation, saved.ID, &contractID, principal.UserID, s.now())
	cs.event(model.AuditActionCreate)
	s.audit.record(ctx, cs)

	view := inventory.NewView(*saved)
	return &view, nil
}

func (s *AllocationService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input AllocationInput) (*inventory.View, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	current, err := s.allocations.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	contract, err := s.contracts.Get(ctx, current.ContractID)
	if err != nil {
		return nil, translate(err)
	}
	input, err = s.normalize(ctx, contract, id, input)
	if err != nil {
		return nil, err
	}

	// Counters move by the difference to what the caller read, so bookings
	// taken in the meantime are kept.
	bookedDelta := input.Booked - current.Booked
	heldDelta := input.Held - current.Held
	if current.ReleasedAt != nil && (bookedDelta > 0 || heldDelta > 0 || quantityGrows(current.Quantity, input.Quantity)) {
		return nil, fmt.Errorf("%w: allocation was released", ErrConflict)
	}

	next := *current
	next.PoolID = input.PoolID
	next.ProductName = input.ProductName
	next.AllocationType = input.AllocationType
	next.StartDate = input.StartDate
	next.EndDate = input.EndDate
	next.Quantity = input.Quantity
	next.ReleaseDays = input.ReleaseDays
	next.ReleaseDate = input.ReleaseDate
	next.IsBlackout = input.IsBlackout
	next.IsStopSell = input.IsStopSell

	saved, err := s.allocations.Update(ctx, next, bookedDelta, heldDelta)
	if err != nil {
		return nil, translate(err)
	}

	cs := newChangeSet(model.EntityAllocation, id, &current.ContractID, principal.UserID, s.now())
	recordAllocationChanges(cs, *current, *saved)
	s.audit.record(ctx, cs)

	view := inventory.NewView(*saved)
	return &view, nil
}

func (s *AllocationService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.CanWrite() {
		return ErrPermissionDenied
	}
	current, err := s.allocations.Get(ctx, id)
	if err != nil {
		return translate(err)
	}
	if err := s.allocations.SoftDelete(ctx, id); err != nil {
		return translate(err)
	}
	cs := newChangeSet(model.EntityAllocation, id, &current.ContractID, principal.UserID, s.now())
	cs.event(model.AuditActionDelete)
	s.audit.record(ctx, cs)
	return nil
}

// AdjustCounters applies booked and held deltas atomically.
func (s *AllocationService) AdjustCounters(ctx context.Context, principal model.Principal, id uuid.UUID, bookedDelta, heldDelta int) (*inventory.View, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	if bookedDelta == 0 && heldDelta == 0 {
		return nil, fmt.Errorf("%w: at least one delta is required", ErrInvalidInput)
	}
	current, err := s.allocations.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if current.ReleasedAt != nil && (bookedDelta > 0 || heldDelta > 0) {
		return nil, fmt.Errorf("%w: allocation was released", ErrConflict)
	}

	saved, err := s.allocations.AdjustCounters(ctx, id, bookedDelta, heldDelta)
	if err != nil {
		return nil, translate(err)
	}

	cs := newChangeSet(model.EntityAllocation, id, &current.ContractID, principal.UserID, s.now())
	cs.field(model.AuditActionAdjust, "booked", current.Booked, saved.Booked)
	cs.field(model.AuditActionAdjust, "held", current.Held, saved.Held)
	s.audit.record(ctx, cs)

	view := inventory.NewView(*saved)
	return &view, nil
}

// Release returns the unsold units of an allocation to the supplier.
func (s *AllocationService) Release(ctx context.Context, principal model.Principal, id uuid.UUID) (*inventory.View, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	saved, err := s.release(ctx, principal.UserID, id)
	if err != nil {
		return nil, err
	}
	view := inventory.NewView(*saved)
	return &view, nil
}

func (s *AllocationService) release(ctx context.Context, by, id uuid.UUID) (*model.ContractAllocation, error) {
	current, err := s.allocations.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if current.Quantity == nil {
		return nil, fmt.Errorf("%w: freesale allocations cannot be released", ErrInvalidInput)
	}
	if current.ReleasedAt != nil {
		return nil, fmt.Errorf("%w: allocation already released", ErrConflict)
	}

	now := s.now()
	saved, err := s.allocations.Release(ctx, id, now)
	if err != nil {
		if translate(err) == ErrCapacityExceeded {
			return nil, fmt.Errorf("%w: allocation already released", ErrConflict)
		}
		return nil, translate(err)
	}

	cs := newChangeSet(model.EntityAllocation, id, &current.ContractID, by, now)
	cs.field(model.AuditActionRelease, "quantity", current.Quantity, saved.Quantity)
	s.audit.record(ctx, cs)
	return saved, nil
}

// ReleaseLapsed releases every allocation whose release date passed
// beyond the grace period. Failures are logged and skipped.
func (s *AllocationService) ReleaseLapsed(ctx context.Context) ([]model.ContractAllocation, error) {
	all, err := s.allocations.List(ctx, model.AllocationFilter{}, model.PageRequest{})
	if err != nil {
		return nil, err
	}
	var released []model.ContractAllocation
	for _, a := range inventory.Lapsed(all, s.now()) {
		saved, err := s.release(ctx, uuid.Nil, a.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("allocation_id", a.ID.String()).Msg("auto release failed")
			continue
		}
		released = append(released, *saved)
	}
	return released, nil
}

// BulkUpdate applies patch to each id independently and reports which
// items failed and why.
func (s *AllocationService) BulkUpdate(ctx context.Context, principal model.Principal, ids []uuid.UUID, patch model.AllocationPatch) (*BulkResult, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: ids are required", ErrInvalidInput)
	}
	if len(ids) > MaxBulkItems {
		return nil, fmt.Errorf("%w: at most %d ids per request", ErrInvalidInput, MaxBulkItems)
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}

	result := &BulkResult{Succeeded: []uuid.UUID{}, Failed: []BulkFailure{}}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if err := s.applyPatch(ctx, principal, id, patch); err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}

func (s *AllocationService) applyPatch(ctx context.Context, principal model.Principal, id uuid.UUID, patch model.AllocationPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	current, err := s.allocations.Get(ctx, id)
	if err != nil {
		return translate(err)
	}
	if patch.Quantity != nil {
		q := *patch.Quantity
		if current.ReleasedAt != nil && quantityGrows(current.Quantity, patch.Quantity) {
			return fmt.Errorf("%w: allocation was released", ErrConflict)
		}
		if q < current.Booked+current.Held {
			return fmt.Errorf("%w: quantity %d is below booked plus held", ErrCapacityExceeded, q)
		}
		if current.PoolID != nil {
			pool, err := s.pools.Get(ctx, *current.PoolID)
			if err != nil {
				return translate(err)
			}
			if err := ensurePoolCapacity(ctx, s.allocations, pool, id, patch.Quantity); err != nil {
				return err
			}
		}
	}

	saved, err := s.allocations.Patch(ctx, id, patch)
	if err != nil {
		return translate(err)
	}
	cs := newChangeSet(model.EntityAllocation, id, &current.ContractID, principal.UserID, s.now())
	recordAllocationChanges(cs, *current, *saved)
	s.audit.record(ctx, cs)
	return nil
}

// ReleaseWarnings lists unsold allocations approaching their release
// date, for one contract or across all contracts when contractID is nil.
func (s *AllocationService) ReleaseWarnings(ctx context.Context, contractID *uuid.UUID) ([]inventory.ReleaseWarning, error) {
	filter := model.AllocationFilter{ContractID: contractID}
	all, err := s.allocations.List(ctx, filter, model.PageRequest{})
	if err != nil {
		return nil, err
	}
	return inventory.ReleaseWarnings(all, s.now(), s.horizonDays), nil
}

// normalize validates input for the allocation self, which is uuid.Nil
// for a new allocation.
func (s *AllocationService) normalize(ctx context.Context, contract *model.Contract, self uuid.UUID, input AllocationInput) (AllocationInput, error) {
	input.ProductName = strings.TrimSpace(input.ProductName)
	input.StartDate = inventory.DateOnly(input.StartDate)
	input.EndDate = inventory.DateOnly(input.EndDate)
	if input.ReleaseDate != nil {
		release := inventory.DateOnly(*input.ReleaseDate)
		input.ReleaseDate = &release
	}

	switch {
	case input.ProductName == "":
		return input, fmt.Errorf("%w: product_name is required", ErrInvalidInput)
	case !input.AllocationType.Valid():
		return input, fmt.Errorf("%w: unknown allocation_type %q", ErrInvalidInput, input.AllocationType)
	case input.StartDate.IsZero() || input.EndDate.IsZero():
		return input, fmt.Errorf("%w: start_date and end_date are required", ErrInvalidInput)
	case input.StartDate.After(input.EndDate):
		return input, fmt.Errorf("%w: start_date must be before or equal to end_date", ErrInvalidInput)
	case input.StartDate.Before(contract.ValidFrom) || input.EndDate.After(contract.ValidTo):
		return input, fmt.Errorf("%w: allocation dates must fall within the contract validity", ErrInvalidInput)
	case input.Booked < 0 || input.Held < 0:
		return input, fmt.Errorf("%w: booked and held must not be negative", ErrInvalidInput)
	case input.ReleaseDays < 0:
		return input, fmt.Errorf("%w: release_days must not be negative", ErrInvalidInput)
	case input.ReleaseDate != nil && input.ReleaseDate.After(input.StartDate):
		return input, fmt.Errorf("%w: release_date must not be after start_date", ErrInvalidInput)
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return input, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
		}
		if input.Booked+input.Held > *input.Quantity {
			return input, fmt.Errorf("%w: booked plus held exceeds quantity", ErrCapacityExceeded)
		}
	}

	if input.PoolID != nil {
		pool, err := s.pools.Get(ctx, *input.PoolID)
		if err != nil {
			if translate(err) == ErrNotFound {
				return input, fmt.Errorf("%w: pool not found", ErrInvalidInput)
			}
			return input, err
		}
		if pool.SupplierID != contract.SupplierID {
			return input, fmt.Errorf("%w: pool belongs to another supplier", ErrInvalidInput)
		}
		if err := ensurePoolCapacity(ctx, s.allocations, pool, self, input.Quantity); err != nil {
			return input, err
		}
	}
	return input, nil
}

// quantityGrows reports whether after offers more units than before. An
// unset quantity is unlimited.
func quantityGrows(before, after *int) bool {
	switch {
	case after == nil:
		return before != nil
	case before == nil:
		return false
	default:
		return *after > *before
	}
}

func recordAllocationChanges(cs *changeSet, before, after model.ContractAllocation) {
	cs.field(model.AuditActionUpdate, "pool_id", before.PoolID, after.PoolID)
	cs.field(model.AuditActionUpdate, "product_name", before.ProductName, after.ProductName)
	cs.field(model.AuditActionUpdate, "allocation_type", before.AllocationType, after.AllocationType)
	cs.field(model.AuditActionUpdate, "start_date", before.StartDate, after.StartDate)
	cs.field(model.AuditActionUpdate, "end_date", before.EndDate, after.EndDate)
	cs.field(model.AuditActionUpdate, "quantity", before.Quantity, after.Quantity)
	cs.field(model.AuditActionUpdate, "booked", before.Booked, after.Booked)
	cs.field(model.AuditActionUpdate, "held", before.Held, after.Held)
	cs.field(model.AuditActionUpdate, "release_days", before.ReleaseDays, after.ReleaseDays)
	cs.field(model.AuditActionUpdate, "release_date", before.ReleaseDate, after.ReleaseDate)
	cs.field(model.AuditActionUpdate, "is_blackout", before.IsBlackout, after.IsBlackout)
	cs.field(model.AuditActionUpdate, "is_stop_sell", before.IsStopSell, after.IsStopSell)
}
