package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

const allocationColumns = `
	a.id,
	a.contract_id,
	a.pool_id,
	a.product_name,
	a.allocation_type,
	a.start_date,
	a.end_date,
	a.quantity,
	a.booked,
	a.held,
	a.release_days,
	a.release_date,
	a.is_blackout,
	a.is_stop_sell,
	a.released_at,
	a.is_active,
	a.created_at,
	a.updated_at
`

// allocationStatusClauses mirrors inventory.Status in SQL so status
// filters can be paginated by the database.
var allocationStatusClauses = map[model.AllocationStatus]string{
	model.AllocationStatusBlackout:  "a.is_blackout",
	model.AllocationStatusStopSell:  "NOT a.is_blackout AND a.is_stop_sell",
	model.AllocationStatusFreesale:  "NOT a.is_blackout AND NOT a.is_stop_sell AND a.quantity IS NULL",
	model.AllocationStatusSoldOut:   "NOT a.is_blackout AND NOT a.is_stop_sell AND a.quantity IS NOT NULL AND a.quantity - a.booked - a.held <= 0",
	model.AllocationStatusAvailable: "NOT a.is_blackout AND NOT a.is_stop_sell AND a.quantity IS NOT NULL AND a.quantity - a.booked - a.held > 0",
}

type AllocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

func allocationConditions(filter model.AllocationFilter) conditions {
	var c conditions
	c.add("a.is_active")
	c.add("c.is_active")
	if filter.ContractID != nil {
		c.add("a.contract_id = ?", *filter.ContractID)
	}
	if filter.PoolID != nil {
		c.add("a.pool_id = ?", *filter.PoolID)
	}
	if filter.From != nil {
		c.add("a.end_date >= ?", *filter.From)
	}
	if filter.To != nil {
		c.add("a.start_date <= ?", *filter.To)
	}
	if clause, ok := allocationStatusClauses[filter.Status]; ok {
		c.add(clause)
	}
	return c
}

func (r *AllocationRepository) Count(ctx context.Context, filter model.AllocationFilter) (int64, error) {
	c := allocationConditions(filter)
	var total int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM contract_allocations a
		JOIN contracts c ON c.id = a.contract_id
	`+c.where(), c.args...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// List returns allocations ordered by start date. A zero page returns
// every match.
func (r *AllocationRepository) List(ctx context.Context, filter model.AllocationFilter, page model.PageRequest) ([]model.ContractAllocation, error) {
	c := allocationConditions(filter)
	query := `SELECT ` + allocationColumns + `
		FROM contract_allocations a
		JOIN contracts c ON c.id = a.contract_id
	` + c.where() + " ORDER BY a.start_date ASC, a.product_name ASC"
	limit, args := pageClause(page, c.args)

	var rows []model.ContractAllocation
	if err := r.db.WithContext(ctx).Raw(query+limit, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AllocationRepository) Get(ctx context.Context, id uuid.UUID) (*model.ContractAllocation, error) {
	var row model.ContractAllocation
	if err := r.db.WithContext(ctx).Raw(`SELECT `+allocationColumns+`
		FROM contract_allocations a
		WHERE a.id = ? AND a.is_active
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *AllocationRepository) Create(ctx context.Context, a model.ContractAllocation) (*model.ContractAllocation, error) {
	var id uuid.UUID
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO contract_allocations (
			contract_id,
			pool_id,
			product_name,
			allocation_type,
			start_date,
			end_date,
			quantity,
			booked,
			held,
			release_days,
			release_date,
			is_blackout,
			is_stop_sell
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		a.ContractID,
		a.PoolID,
		a.ProductName,
		a.AllocationType,
		a.StartDate,
		a.EndDate,
		a.Quantity,
		a.Booked,
		a.Held,
		a.ReleaseDays,
		a.ReleaseDate,
		a.IsBlackout,
		a.IsStopSell,
	).Scan(&id).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Update rewrites the descriptive columns of an allocation and moves the
// counters by the given deltas in one statement. The update is refused with ErrGuardFailed when the counters would go
// negative or exceed the new quantity, or when a released allocation
// would grow.
func (r *AllocationRepository) Update(ctx context.Context, a model.ContractAllocation, bookedDelta, heldDelta int) (*model.ContractAllocation, error) {
	query := `
		UPDATE contract_allocations
		SET
			pool_id = ?,
			product_name = ?,
			allocation_type = ?,
			start_date = ?,
			end_date = ?,
			quantity = ?,
			booked = booked + ?,
			held = held + ?,
			release_days = ?,
			release_date = ?,
			is_blackout = ?,
			is_stop_sell = ?,
			updated_at = NOW()
		WHERE id = ? AND is_active
			AND booked + ? >= 0
			AND held + ? >= 0
	`
	args := []any{
		a.PoolID,
		a.ProductName,
		a.AllocationType,
		a.StartDate,
		a.EndDate,
		a.Quantity,
		bookedDelta,
		heldDelta,
		a.ReleaseDays,
		a.ReleaseDate,
		a.IsBlackout,
		a.IsStopSell,
		a.ID,
		bookedDelta,
		heldDelta,
	}
	if a.Quantity != nil {
		query += ` AND booked + ? + held + ? <= ?
			AND (released_at IS NULL OR (quantity >= ? AND ? <= 0 AND ? <= 0))`
		args = append(args, bookedDelta, heldDelta, *a.Quantity, *a.Quantity, bookedDelta, heldDelta)
	} else {
		query += ` AND released_at IS NULL`
	}

	res := r.db.WithContext(ctx).Exec(query, args...)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.guardOrMissing(ctx, a.ID)
	}
	return r.Get(ctx, a.ID)
}

// Patch changes only the columns set in patch. A quantity change is
// guarded against the live counters and may not grow a released
// allocation.
func (r *AllocationRepository) Patch(ctx context.Context, id uuid.UUID, patch model.AllocationPatch) (*model.ContractAllocation, error) {
	var (
		sets []string
		args []any
	)
	if patch.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *patch.Quantity)
	}
	if patch.IsBlackout != nil {
		sets = append(sets, "is_blackout = ?")
		args = append(args, *patch.IsBlackout)
	}
	if patch.IsStopSell != nil {
		sets = append(sets, "is_stop_sell = ?")
		args = append(args, *patch.IsStopSell)
	}
	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE contract_allocations SET ` + strings.Join(sets, ", ") + `
		WHERE id = ? AND is_active`
	args = append(args, id)
	if patch.Quantity != nil {
		query += ` AND booked + held <= ?
			AND (released_at IS NULL OR quantity >= ?)`
		args = append(args, *patch.Quantity, *patch.Quantity)
	}

	res := r.db.WithContext(ctx).Exec(query, args...)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.guardOrMissing(ctx, id)
	}
	return r.Get(ctx, id)
}

func (r *AllocationRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE contract_allocations SET is_active = FALSE, updated_at = NOW()
		WHERE id = ? AND is_active
	`, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustCounters adds the deltas to booked and held in one statement. The
// update is refused with ErrGuardFailed when either counter would go
// negative or their sum would exceed quantity.
func (r *AllocationRepository) AdjustCounters(ctx context.Context, id uuid.UUID, bookedDelta, heldDelta int) (*model.ContractAllocation, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE contract_allocations
		SET booked = booked + ?, held = held + ?, updated_at = NOW()
		WHERE id = ? AND is_active
			AND booked + ? >= 0
			AND held + ? >= 0
			AND (quantity IS NULL OR booked + ? + held + ? <= quantity)
	`, bookedDelta, heldDelta, id, bookedDelta, heldDelta, bookedDelta, heldDelta)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.guardOrMissing(ctx, id)
	}
	return r.Get(ctx, id)
}

// Release returns unsold units to the supplier by shrinking quantity to
// what is booked or held.
func (r *AllocationRepository) Release(ctx context.Context, id uuid.UUID, at time.Time) (*model.ContractAllocation, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE contract_allocations
		SET quantity = booked + held, released_at = ?, updated_at = NOW()
		WHERE id = ? AND is_active
			AND released_at IS NULL
			AND quantity IS NOT NULL
	`, at, id)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.guardOrMissing(ctx, id)
	}
	return r.Get(ctx, id)
}

func (r *AllocationRepository) SetPool(ctx context.Context, id uuid.UUID, poolID *uuid.UUID) (*model.ContractAllocation, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE contract_allocations SET pool_id = ?, updated_at = NOW()
		WHERE id = ? AND is_active
	`, poolID, id)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, id)
}

func (r *AllocationRepository) guardOrMissing(ctx context.Context, id uuid.UUID) error {
	if _, err := r.Get(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}
		return err
	}
	return ErrGuardFailed
}
