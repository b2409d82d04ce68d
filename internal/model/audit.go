package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionCreate       AuditAction = "create"
	AuditActionUpdate       AuditAction = "update"
	AuditActionDelete       AuditAction = "delete"
	AuditActionStatusChange AuditAction = "status_change"
	AuditActionRelease      AuditAction = "release"
	AuditActionAdjust       AuditAction = "adjust"
)

const (
	EntityContract   = "contract"
	EntityDeadline   = "deadline"
	EntityAllocation = "allocation"
	EntityPool       = "pool"
	EntityRate       = "rate"
	EntitySupplier   = "supplier"
)

type AuditLog struct {
	ID         uuid.UUID   `json:"id"`
	EntityType string      `json:"entity_type"`
	EntityID   uuid.UUID   `json:"entity_id"`
	ContractID *uuid.UUID  `json:"contract_id,omitempty"`
	Action     AuditAction `json:"action"`
	FieldName  *string     `json:"field_name,omitempty"`
	OldValue   *string     `json:"old_value,omitempty"`
	NewValue   *string     `json:"new_value,omitempty"`
	ChangedBy  uuid.UUID   `json:"changed_by"`
	ChangedAt  time.Time   `json:"changed_at"`
}

type AuditFilter struct {
	EntityType string
	EntityID   *uuid.UUID
	ContractID *uuid.UUID
	Since      *time.Time
}
