package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

type AuditService struct {
	repo   AuditRepository
	paging Paging
}

func NewAuditService(repo AuditRepository, paging Paging) *AuditService {
	return &AuditService{repo: repo, paging: paging}
}

func (s *AuditService) List(ctx context.Context, filter model.AuditFilter, page model.PageRequest) (model.Page[model.AuditLog], error) {
	return paginate(ctx, s.paging, page,
		func(ctx context.Context) (int64, error) { return s.repo.Count(ctx, filter) },
		func(ctx context.Context, req model.PageRequest) ([]model.AuditLog, error) {
			return s.repo.List(ctx, filter, req)
		},
	)
}

// changeSet collects audit entries for one entity mutation.
type changeSet struct {
	entityType string
	entityID   uuid.UUID
	contractID *uuid.UUID
	by         uuid.UUID
	at         time.Time
	entries    []model.AuditLog
}

func newChangeSet(entityType string, entityID uuid.UUID, contractID *uuid.UUID, by uuid.UUID, at time.Time) *changeSet {
	return &changeSet{
		entityType: entityType,
		entityID:   entityID,
		contractID: contractID,
		by:         by,
		at:         at,
	}
}

func (c *changeSet) add(action model.AuditAction, field *string, oldValue, newValue *string) {
	c.entries = append(c.entries, model.AuditLog{
		EntityType: c.entityType,
		EntityID:   c.entityID,
		ContractID: c.contractID,
		Action:     action,
		FieldName:  field,
		OldValue:   oldValue,
		NewValue:   newValue,
		ChangedBy:  c.by,
		ChangedAt:  c.at,
	})
}

func (c *changeSet) event(action model.AuditAction) {
	c.add(action, nil, nil, nil)
}

// field records name when the formatted values differ.
func (c *changeSet) field(action model.AuditAction, name string, oldValue, newValue interface{}) {
	before, after := formatAuditValue(oldValue), formatAuditValue(newValue)
	if equalStringPtr(before, after) {
		return
	}
	field := name
	c.add(action, &field, before, after)
}

func (c *changeSet) empty() bool {
	return len(c.entries) == 0
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatAuditValue(v interface{}) *string {
	var s string
	switch val := v.(type) {
	case nil:
		return nil
	case *int:
		if val == nil {
			return nil
		}
		s = fmt.Sprintf("%d", *val)
	case *uuid.UUID:
		if val == nil {
			return nil
		}
		s = val.String()
	case *time.Time:
		if val == nil {
			return nil
		}
		s = val.UTC().Format(time.RFC3339)
	case time.Time:
		s = val.UTC().Format(time.RFC3339)
	case decimal.Decimal:
		s = val.String()
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprintf("%v", val)
	}
	return &s
}

// auditTrail persists change sets. Write failures are logged and do not
// fail the mutation that produced them.
type auditTrail struct {
	repo AuditRepository
	log  zerolog.Logger
}

func (t auditTrail) record(ctx context.Context, c *changeSet) {
	if t.repo == nil || c.empty() {
		return
	}
	if err := t.repo.Create(ctx, c.entries); err != nil {
		t.log.Error().Err(err).
			Str("entity_type", c.entityType).
			Str("entity_id", c.entityID.String()).
			Int("entries", len(c.entries)).
			Msg("failed to write audit log")
	}
}
