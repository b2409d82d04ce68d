package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

const deadlineColumns = `
	d.id,
	d.contract_id,
	c.name AS contract_name,
	d.title,
	d.deadline_type,
	d.deadline_date,
	d.status,
	d.reminder_days_before,
	d.notes,
	d.completed_at,
	d.is_active,
	d.created_at,
	d.updated_at
`

type DeadlineRepository struct {
	db *gorm.DB
}

func NewDeadlineRepository(db *gorm.DB) *DeadlineRepository {
	return &DeadlineRepository{db: db}
}

func deadlineConditions(filter model.DeadlineFilter, now time.Time) conditions {
	var c conditions
	c.add("d.is_active")
	c.add("c.is_active")
	if filter.ContractID != nil {
		c.add("d.contract_id = ?", *filter.ContractID)
	}
	if filter.Status != "" {
		c.add("d.status = ?", filter.Status)
	}
	if filter.OverdueOnly {
		c.add("d.status = ? AND d.deadline_date < ?", model.DeadlineStatusPending, now)
	}
	if filter.DueWithin != nil {
		c.add("d.status = ? AND d.deadline_date >= ? AND d.deadline_date <= ?",
			model.DeadlineStatusPending, now, now.AddDate(0, 0, *filter.DueWithin))
	}
	return c
}

func (r *DeadlineRepository) Count(ctx context.Context, filter model.DeadlineFilter, now time.Time) (int64, error) {
	c := deadlineConditions(filter, now)
	var total int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM contract_deadlines d
		JOIN contracts c ON c.id = d.contract_id
	`+c.where(), c.args...).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *DeadlineRepository) List(ctx context.Context, filter model.DeadlineFilter, now time.Time, page model.PageRequest) ([]model.ContractDeadline, error) {
	c := deadlineConditions(filter, now)
	query := `SELECT ` + deadlineColumns + `
		FROM contract_deadlines d
		JOIN contracts c ON c.id = d.contract_id
	` + c.where() + " ORDER BY d.deadline_date ASC, d.title ASC"
	limit, args := pageClause(page, c.args)

	var rows []model.ContractDeadline
	if err := r.db.WithContext(ctx).Raw(query+limit, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DeadlineRepository) Get(ctx context.Context, id uuid.UUID) (*model.ContractDeadline, error) {
	var row model.ContractDeadline
	if err := r.db.WithContext(ctx).Raw(`SELECT `+deadlineColumns+`
		FROM contract_deadlines d
		JOIN contracts c ON c.id = d.contract_id
		WHERE d.id = ? AND d.is_active
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *DeadlineRepository) Create(ctx context.Context, d model.ContractDeadline) (*model.ContractDeadline, error) {
	var id uuid.UUID
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO contract_deadlines (
			contract_id,
			title,
			deadline_type,
			deadline_date,
			status,
			reminder_days_before,
			notes
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, d.ContractID, d.Title, d.DeadlineType, d.DeadlineDate, d.Status, d.ReminderDaysBefore, d.Notes).Scan(&id).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *DeadlineRepository) Update(ctx context.Context, d model.ContractDeadline) (*model.ContractDeadline, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE contract_deadlines
		SET
			title = ?,
			deadline_type = ?,
			deadline_date = ?,
			status = ?,
			reminder_days_before = ?,
			notes = ?,
			completed_at = ?,
			updated_at = NOW()
		WHERE id = ? AND is_active
	`, d.Title, d.DeadlineType, d.DeadlineDate, d.Status, d.ReminderDaysBefore, d.Notes, d.CompletedAt, d.ID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, d.ID)
}

func (r *DeadlineRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE contract_deadlines SET is_active = FALSE, updated_at = NOW()
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
