package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

const rateColumns = `
	id,
	contract_id,
	product_name,
	rate_plan_name,
	variant_name,
	board_basis,
	rate_type,
	currency,
	cost_price,
	sell_price,
	min_stay,
	valid_from,
	valid_to,
	is_active,
	created_at,
	updated_at
`

type RateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) *RateRepository {
	return &RateRepository{db: db}
}

func rateConditions(filter model.RateFilter) conditions {
	var c conditions
	c.add("is_active")
	c.add("contract_id = ?", filter.ContractID)
	if filter.ProductName != "" {
		c.add("product_name = ?", filter.ProductName)
	}
	if filter.ValidOn != nil {
		c.add("valid_from <= ? AND valid_to >= ?", *filter.ValidOn, *filter.ValidOn)
	}
	return c
}

func (r *RateRepository) Count(ctx context.Context, filter model.RateFilter) (int64, error) {
	c := rateConditions(filter)
	var total int64
	if err := r.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM selling_rates`+c.where(), c.args...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *RateRepository) List(ctx context.Context, filter model.RateFilter, page model.PageRequest) ([]model.SupplierRate, error) {
	c := rateConditions(filter)
	query := `SELECT ` + rateColumns + ` FROM selling_rates` + c.where() +
		" ORDER BY product_name ASC, rate_plan_name ASC, variant_name ASC, valid_from ASC"
	limit, args := pageClause(page, c.args)

	var rows []model.SupplierRate
	if err := r.db.WithContext(ctx).Raw(query+limit, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListVariant returns the active rates pricing the same contract,
// product, plan and variant as rate.
func (r *RateRepository) ListVariant(ctx context.Context, rate model.SupplierRate) ([]model.SupplierRate, error) {
	var rows []model.SupplierRate
	if err := r.db.WithContext(ctx).Raw(`SELECT `+rateColumns+`
		FROM selling_rates
		WHERE is_active
			AND contract_id = ?
			AND product_name = ?
			AND rate_plan_name = ?
			AND variant_name = ?
		ORDER BY valid_from ASC
	`, rate.ContractID, rate.ProductName, rate.RatePlanName, rate.VariantName).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *RateRepository) Get(ctx context.Context, id uuid.UUID) (*model.SupplierRate, error) {
	var row model.SupplierRate
	if err := r.db.WithContext(ctx).Raw(`SELECT `+rateColumns+`
		FROM selling_rates
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

func (r *RateRepository) Create(ctx context.Context, rate model.SupplierRate) (*model.SupplierRate, error) {
	var saved model.SupplierRate
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO selling_rates (
			contract_id,
			product_name,
			rate_plan_name,
			variant_name,
			board_basis,
			rate_type,
			currency,
			cost_price,
			sell_price,
			min_stay,
			valid_from,
			valid_to
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+rateColumns,
		rate.ContractID,
		rate.ProductName,
		rate.RatePlanName,
		rate.VariantName,
		rate.BoardBasis,
		rate.RateType,
		rate.Currency,
		rate.CostPrice,
		rate.SellPrice,
		rate.MinStay,
		rate.ValidFrom,
		rate.ValidTo,
	).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *RateRepository) Update(ctx context.Context, rate model.SupplierRate) (*model.SupplierRate, error) {
	var saved model.SupplierRate
	if err := r.db.WithContext(ctx).Raw(`
		UPDATE selling_rates
		SET
			product_name = ?,
			rate_plan_name = ?,
			variant_name = ?,
			board_basis = ?,
			rate_type = ?,
			currency = ?,
			cost_price = ?,
			sell_price = ?,
			min_stay = ?,
			valid_from = ?,
			valid_to = ?,
			updated_at = NOW()
		WHERE id = ? AND is_active
		RETURNING `+rateColumns,
		rate.ProductName,
		rate.RatePlanName,
		rate.VariantName,
		rate.BoardBasis,
		rate.RateType,
		rate.Currency,
		rate.CostPrice,
		rate.SellPrice,
		rate.MinStay,
		rate.ValidFrom,
		rate.ValidTo,
		rate.ID,
	).Scan(&saved).Error; err != nil {
		return nil, err
	}
	if saved.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}

func (r *RateRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE selling_rates SET is_active = FALSE, updated_at = NOW()
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
