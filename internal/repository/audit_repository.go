package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func auditConditions(filter model.AuditFilter) conditions {
	var c conditions
	if filter.EntityType != "" {
		c.add("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		c.add("entity_id = ?", *filter.EntityID)
	}
	if filter.ContractID != nil {
		c.add("contract_id = ?", *filter.ContractID)
	}
	if filter.Since != nil {
		c.add("changed_at >= ?", *filter.Since)
	}
	return c
}

// Create stores entries in a single transaction.
func (r *AuditRepository) Create(ctx context.Context, entries []model.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			if err := tx.Exec(`
				INSERT INTO audit_logs (
					entity_type,
					entity_id,
					contract_id,
					action,
					field_name,
					old_value,
					new_value,
					changed_by,
					changed_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, e.EntityType, e.EntityID, e.ContractID, e.Action, e.FieldName, e.OldValue, e.NewValue, e.ChangedBy, e.ChangedAt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AuditRepository) Count(ctx context.Context, filter model.AuditFilter) (int64, error) {
	c := auditConditions(filter)
	var total int64
	if err := r.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM audit_logs`+c.where(), c.args...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *AuditRepository) List(ctx context.Context, filter model.AuditFilter, page model.PageRequest) ([]model.AuditLog, error) {
	c := auditConditions(filter)
	query := `
		SELECT
			id,
			entity_type,
			entity_id,
			contract_id,
			action,
			field_name,
			old_value,
			new_value,
			changed_by,
			changed_at
		FROM audit_logs` + c.where() + " ORDER BY changed_at DESC, id ASC"
	limit, args := pageClause(page, c.args)

	var rows []model.AuditLog
	if err := r.db.WithContext(ctx).Raw(query+limit, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
