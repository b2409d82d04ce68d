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

type DeadlineService struct {
	deadlines DeadlineRepository
	contracts ContractRepository
	audit     auditTrail
	paging    Paging
	now       func() time.Time
}

func NewDeadlineService(deadlines DeadlineRepository, contracts ContractRepository, audit AuditRepository, paging Paging, log zerolog.Logger) *DeadlineService {
	return &DeadlineService{
		deadlines: deadlines,
		contracts: contracts,
		audit:     auditTrail{repo: audit, log: log},
		paging:    paging,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// DeadlineView is a deadline with its time-relative display values.
type DeadlineView struct {
	model.ContractDeadline
	IsOverdue   bool `json:"is_overdue"`
	DaysUntil   int  `json:"days_until"`
	ReminderDue bool `json:"reminder_due"`
}

func NewDeadlineView(d model.ContractDeadline, now time.Time) DeadlineView {
	return DeadlineView{
		ContractDeadline: d,
		IsOverdue:        d.IsOverdue(now),
		DaysUntil:        inventory.DaysUntil(d.DeadlineDate, now),
		ReminderDue:      d.InReminderWindow(now),
	}
}

type DeadlineInput struct {
	Title              string
	DeadlineType       model.DeadlineType
	DeadlineDate       time.Time
	Status             model.DeadlineStatus
	ReminderDaysBefore int
	Notes              string
}

func (s *DeadlineService) List(ctx context.Context, filter model.DeadlineFilter, page model.PageRequest) (model.Page[DeadlineView], error) {
	now := s.now()
	result, err := paginate(ctx, s.paging, page,
		func(ctx context.Context) (int64, error) { return s.deadlines.Count(ctx, filter, now) },
		func(ctx context.Context, req model.PageRequest) ([]model.ContractDeadline, error) {
			return s.deadlines.List(ctx, filter, now, req)
		},
	)
	if err != nil {
		return model.Page[DeadlineView]{}, err
	}
	return mapPage(result, func(d model.ContractDeadline) DeadlineView { return NewDeadlineView(d, now) }), nil
}

func (s *DeadlineService) Get(ctx context.Context, id uuid.UUID) (*DeadlineView, error) {
	d, err := s.deadlines.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	view := NewDeadlineView(*d, s.now())
	return &view, nil
}

func (s *DeadlineService) Create(ctx context.Context, principal model.Principal, contractID uuid.UUID, input DeadlineInput) (*DeadlineView, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.contracts.Get(ctx, contractID); err != nil {
		return nil, translate(err)
	}
	if input.Status == "" {
		input.Status = model.DeadlineStatusPending
	}
	input, err := normalizeDeadline(input)
	if err != nil {
		return nil, err
	}

	d := model.ContractDeadline{
		ContractID:         contractID,
		Title:              input.Title,
		DeadlineType:       input.DeadlineType,
		DeadlineDate:       input.DeadlineDate,
		Status:             input.Status,
		ReminderDaysBefore: input.ReminderDaysBefore,
		Notes:              input.Notes,
	}
	saved, err := s.deadlines.Create(ctx, d)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cs := newChangeSet(model.EntityDeadline, saved.ID, &contractID, principal.UserID, now)
	cs.event(model.AuditActionCreate)
	s.audit.record(ctx, cs)

	view := NewDeadlineView(*saved, now)
	return &view, nil
}

func (s *DeadlineService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input DeadlineInput) (*DeadlineView, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	current, err := s.deadlines.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if input.Status == "" {
		input.Status = current.Status
	}
	input, err = normalizeDeadline(input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next := *current
	next.Title = input.Title
	next.DeadlineType = input.DeadlineType
	next.DeadlineDate = input.DeadlineDate
	next.Status = input.Status
	next.ReminderDaysBefore = input.ReminderDaysBefore
	next.Notes = input.Notes
	switch {
	case next.Status == model.DeadlineStatusCompleted && current.CompletedAt == nil:
		next.CompletedAt = &now
	case next.Status != model.DeadlineStatusCompleted:
		next.CompletedAt = nil
	}

	saved, err := s.deadlines.Update(ctx, next)
	if err != nil {
		return nil, translate(err)
	}

	cs := newChangeSet(model.EntityDeadline, id, &current.ContractID, principal.UserID, now)
	cs.field(model.AuditActionUpdate, "title", current.Title, saved.Title)
	cs.field(model.AuditActionUpdate, "deadline_type", current.DeadlineType, saved.DeadlineType)
	cs.field(model.AuditActionUpdate, "deadline_date", current.DeadlineDate, saved.DeadlineDate)
	cs.field(model.AuditActionStatusChange, "status", current.Status, saved.Status)
	cs.field(model.AuditActionUpdate, "reminder_days_before", current.ReminderDaysBefore, saved.ReminderDaysBefore)
	cs.field(model.AuditActionUpdate, "notes", current.Notes, saved.Notes)
	s.audit.record(ctx, cs)

	view := NewDeadlineView(*saved, now)
	return &view, nil
}

// Complete marks a pending deadline as done.
func (s *DeadlineService) Complete(ctx context.Context, principal model.Principal, id uuid.UUID) (*DeadlineView, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	current, err := s.deadlines.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if current.Status != model.DeadlineStatusPending {
		return nil, fmt.Errorf("%w: deadline is %s", ErrConflict, current.Status)
	}

	now := s.now()
	next := *current
	next.Status = model.DeadlineStatusCompleted
	next.CompletedAt = &now
	saved, err := s.deadlines.Update(ctx, next)
	if err != nil {
		return nil, translate(err)
	}

	cs := newChangeSet(model.EntityDeadline, id, &current.ContractID, principal.UserID, now)
	cs.field(model.AuditActionStatusChange, "status", current.Status, saved.Status)
	s.audit.record(ctx, cs)

	view := NewDeadlineView(*saved, now)
	return &view, nil
}

func (s *DeadlineService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.CanWrite() {
		return ErrPermissionDenied
	}
	current, err := s.deadlines.Get(ctx, id)
	if err != nil {
		return translate(err)
	}
	if err := s.deadlines.SoftDelete(ctx, id); err != nil {
		return translate(err)
	}
	cs := newChangeSet(model.EntityDeadline, id, &current.ContractID, principal.UserID, s.now())
	cs.event(model.AuditActionDelete)
	s.audit.record(ctx, cs)
	return nil
}

func normalizeDeadline(input DeadlineInput) (DeadlineInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Notes = strings.TrimSpace(input.Notes)
	switch {
	case input.Title == "":
		return input, fmt.Errorf("%w: title is required", ErrInvalidInput)
	case !input.DeadlineType.Valid():
		return input, fmt.Errorf("%w: unknown deadline_type %q", ErrInvalidInput, input.DeadlineType)
	case !input.Status.Valid():
		return input, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
	case input.DeadlineDate.IsZero():
		return input, fmt.Errorf("%w: deadline_date is required", ErrInvalidInput)
	case input.ReminderDaysBefore < 0:
		return input, fmt.Errorf("%w: reminder_days_before must not be negative", ErrInvalidInput)
	}
	input.DeadlineDate = input.DeadlineDate.UTC()
	return input, nil
}
