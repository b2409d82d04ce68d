package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

type PoolRepository struct {
	db *gorm.DB
}

func NewPoolRepository(db *gorm.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) List(ctx context.Context, supplierID *uuid.UUID) ([]model.AllocationPool, error) {
	var c conditions
	c.add("is_active")
	if supplierID != nil {
		c.add("supplier_id = ?", *supplierID)
	}
	var rows []model.AllocationPool
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, supplier_id, name, description, capacity, is_active, created_at, updated_at
		FROM allocation_pools
	`+c.where()+" ORDER BY name ASC", c.args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PoolRepository) Get(ctx context.Context, id uuid.UUID) (*model.AllocationPool, error) {
	var row model.AllocationPool
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, supplier_id, name, description, capacity, is_active, created_at, updated_at
		FROM allocation_pools
		WHERE id = ? AND is_active
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *PoolRepository) Create(ctx context.Context, pool model.AllocationPool) (*model.AllocationPool, error) {
	var saved model.AllocationPool
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO allocation_pools (supplier_id, name, description, capacity)
		VALUES (?, ?, ?, ?)
		RETURNING id, supplier_id, name, description, capacity, is_active, created_at, updated_at
	`, pool.SupplierID, pool.Name, pool.Description, pool.Capacity).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *PoolRepository) Update(ctx context.Context, pool model.AllocationPool) (*model.AllocationPool, error) {
	var saved model.AllocationPool
	if err := r.db.WithContext(ctx).Raw(`
		UPDATE allocation_pools
		SET name = ?, description = ?, capacity = ?, updated_at = NOW()
		WHERE id = ? AND is_active
		RETURNING id, supplier_id, name, description, capacity, is_active, created_at, updated_at
	`, pool.Name, pool.Description, pool.Capacity, pool.ID).Scan(&saved).Error; err != nil {
		return nil, err
	}
	if saved.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}

// SoftDelete deactivates the pool and detaches its allocations.
func (r *PoolRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			UPDATE allocation_pools SET is_active = FALSE, updated_at = NOW()
			WHERE id = ? AND is_active
		`, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Exec(`
			UPDATE contract_allocations SET pool_id = NULL, updated_at = NOW()
			WHERE pool_id = ?
		`, id).Error
	})
}
