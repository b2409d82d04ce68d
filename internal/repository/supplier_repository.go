package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) List(ctx context.Context) ([]model.Supplier, error) {
	var rows []model.Supplier
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, code, email, is_active, created_at
		FROM suppliers
		WHERE is_active
		ORDER BY name ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SupplierRepository) Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var row model.Supplier
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, code, email, is_active, created_at
		FROM suppliers
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

func (r *SupplierRepository) ExistsCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM suppliers WHERE code = ?
	`, code).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SupplierRepository) Create(ctx context.Context, supplier model.Supplier) (*model.Supplier, error) {
	var saved model.Supplier
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO suppliers (name, code, email)
		VALUES (?, ?, ?)
		RETURNING id, name, code, email, is_active, created_at
	`, supplier.Name, supplier.Code, supplier.Email).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}
