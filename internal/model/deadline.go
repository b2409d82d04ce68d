package model

import (
	"time"

	"github.com/google/uuid"
)

type DeadlineType string

const (
	DeadlineTypeRelease     DeadlineType = "release"
	DeadlineTypePayment     DeadlineType = "payment"
	DeadlineTypeRoomingList DeadlineType = "rooming_list"
	DeadlineTypeOption      DeadlineType = "option"
	DeadlineTypeRenewal     DeadlineType = "renewal"
	DeadlineTypeOther       DeadlineType = "other"
)

func (t DeadlineType) Valid() bool {
	switch t {
	case DeadlineTypeRelease, DeadlineTypePayment, DeadlineTypeRoomingList,
		DeadlineTypeOption, DeadlineTypeRenewal, DeadlineTypeOther:
		return true
	}
	return false
}

type DeadlineStatus string

const (
	DeadlineStatusPending   DeadlineStatus = "pending"
	DeadlineStatusCompleted DeadlineStatus = "completed"
	DeadlineStatusMissed    DeadlineStatus = "missed"
	DeadlineStatusCancelled DeadlineStatus = "cancelled"
)

func (s DeadlineStatus) Valid() bool {
	switch s {
	case DeadlineStatusPending, DeadlineStatusCompleted, DeadlineStatusMissed, DeadlineStatusCancelled:
		return true
	}
	return false
}

type ContractDeadline struct {
	ID                 uuid.UUID      `json:"id"`
	ContractID         uuid.UUID      `json:"contract_id"`
	ContractName       string         `json:"contract_name,omitempty"`
	Title              string         `json:"title"`
	DeadlineType       DeadlineType   `json:"deadline_type"`
	DeadlineDate       time.Time      `json:"deadline_date"`
	Status             DeadlineStatus `json:"status"`
	ReminderDaysBefore int            `json:"reminder_days_before"`
	Notes              string         `json:"notes"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	IsActive           bool           `json:"is_active"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// IsOverdue reports whether a pending deadline has passed.
func (d ContractDeadline) IsOverdue(now time.Time) bool {
	return d.Status == DeadlineStatusPending && d.DeadlineDate.Before(now)
}

// InReminderWindow reports whether a pending deadline is within its
// reminder period and not yet overdue.
func (d ContractDeadline) InReminderWindow(now time.Time) bool {
	if d.Status != DeadlineStatusPending || d.IsOverdue(now) {
		return false
	}
	return !now.Before(d.DeadlineDate.AddDate(0, 0, -d.ReminderDaysBefore))
}

type DeadlineFilter struct {
	ContractID  *uuid.UUID
	Status      DeadlineStatus
	OverdueOnly bool
	DueWithin   *int
}
