package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

const contractColumns = `
	c.id,
	c.supplier_id,
	s.name AS supplier_name,
	c.contract_number,
	c.name,
	c.contract_type,
	c.status,
	c.currency,
	c.valid_from,
	c.valid_to,
	c.commission_percent,
	c.notes,
	c.is_active,
	c.created_by,
	c.updated_by,
	c.created_at,
	c.updated_at
`

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func contractConditions(filter model.ContractFilter) conditions {
	var c conditions
	c.add("c.is_active")
	if filter.Status != "" {
		c.add("c.status = ?", filter.Status)
	}
	if filter.ContractType != "" {
		c.add("c.contract_type = ?", filter.ContractType)
	}
	if filter.SupplierID != nil {
		c.add("c.supplier_id = ?", *filter.SupplierID)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		c.add("(c.name ILIKE ? OR c.contract_number ILIKE ? OR s.name ILIKE ?)", pattern, pattern, pattern)
	}
	if filter.ActiveOn != nil {
		c.add("c.valid_from <= ? AND c.valid_to >= ?", *filter.ActiveOn, *filter.ActiveOn)
	}
	return c
}

func (r *ContractRepository) Count(ctx context.Context, filter model.ContractFilter) (int64, error) {
	c := contractConditions(filter)
	var total int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM contracts c
		JOIN suppliers s ON s.id = c.supplier_id
	`+c.where(), c.args...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ContractRepository) List(ctx context.Context, filter model.ContractFilter, page model.PageRequest) ([]model.Contract, error) {
	c := contractConditions(filter)
	query := `SELECT ` + contractColumns + `
		FROM contracts c
		JOIN suppliers s ON s.id = c.supplier_id
	` + c.where() + " ORDER BY c.valid_from DESC, c.contract_number ASC"
	limit, args := pageClause(page, c.args)

	var rows []model.Contract
	if err := r.db.WithContext(ctx).Raw(query+limit, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ContractRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var row model.Contract
	if err := r.db.WithContext(ctx).Raw(`SELECT `+contractColumns+`
		FROM contracts c
		JOIN suppliers s ON s.id = c.supplier_id
		WHERE c.id = ? AND c.is_active
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

// ExistsNumber reports whether an active contract other than exclude
// already uses number.
func (r *ContractRepository) ExistsNumber(ctx context.Context, number string, exclude uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM contracts
		WHERE contract_number = ? AND id <> ? AND is_active
	`, number, exclude).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ContractRepository) Create(ctx context.Context, contract model.Contract) (*model.Contract, error) {
	var id uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO contracts (
			supplier_id,
			contract_number,
			name,
			contract_type,
			status,
			currency,
			valid_from,
			valid_to,
			commission_percent,
			notes,
			created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		contract.SupplierID,
		contract.ContractNumber,
		contract.Name,
		contract.ContractType,
		contract.Status,
		contract.Currency,
		contract.ValidFrom,
		contract.ValidTo,
		contract.CommissionPercent,
		contract.Notes,
		contract.CreatedBy,
	).Scan(&id).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *ContractRepository) Update(ctx context.Context, contract model.Contract) (*model.Contract, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET
			supplier_id = ?,
			contract_number = ?,
			name = ?,
			contract_type = ?,
			status = ?,
			currency = ?,
			valid_from = ?,
			valid_to = ?,
			commission_percent = ?,
			notes = ?,
			updated_by = ?,
			updated_at = NOW()
		WHERE id = ? AND is_active
	`,
		contract.SupplierID,
		contract.ContractNumber,
		contract.Name,
		contract.ContractType,
		contract.Status,
		contract.Currency,
		contract.ValidFrom,
		contract.ValidTo,
		contract.CommissionPercent,
		contract.Notes,
		contract.UpdatedBy,
		contract.ID,
	)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, contract.ID)
}

func (r *ContractRepository) SoftDelete(ctx context.Context, id, by uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET is_active = FALSE, updated_by = ?, updated_at = NOW()
		WHERE id = ? AND is_active
	`, by, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ContractRepository) CountByStatus(ctx context.Context) (map[model.ContractStatus]int64, error) {
	var rows []struct {
		Status model.ContractStatus
		Total  int64
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) AS total
		FROM contracts
		WHERE is_active
		GROUP BY status
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[model.ContractStatus]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Total
	}
	return result, nil
}
