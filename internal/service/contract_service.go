package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/supplier-contracts/internal/inventory"
	"github.com/tripdesk/supplier-contracts/internal/model"
)

var maxCommission = decimal.NewFromInt(100)

type ContractService struct {
	contracts ContractRepository
	suppliers SupplierRepository
	audit     auditTrail
	paging    Paging
	now       func() time.Time
}

func NewContractService(contracts ContractRepository, suppliers SupplierRepository, audit AuditRepository, paging Paging, log zerolog.Logger) *ContractService {
	return &ContractService{
		contracts: contracts,
		suppliers: suppliers,
		audit:     auditTrail{repo: audit, log: log},
		paging:    paging,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type ContractInput struct {
	SupplierID        uuid.UUID
	ContractNumber    string
	Name              string
	ContractType      model.ContractType
	Status            model.ContractStatus
	Currency          string
	ValidFrom         time.Time
	ValidTo           time.Time
	CommissionPercent decimal.Decimal
	Notes             string
}

type SupplierInput struct {
	Name  string
	Code  string
	Email string
}

func (s *ContractService) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	suppliers, err := s.suppliers.List(ctx)
	if err != nil {
		return nil, err
	}
	if suppliers == nil {
		suppliers = []model.Supplier{}
	}
	return suppliers, nil
}

func (s *ContractService) CreateSupplier(ctx context.Context, principal model.Principal, input SupplierInput) (*model.Supplier, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if input.Name == "" || input.Code == "" {
		return nil, fmt.Errorf("%w: name and code are required", ErrInvalidInput)
	}
	exists, err := s.suppliers.ExistsCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: supplier code %s already exists", ErrConflict, input.Code)
	}

	supplier, err := s.suppliers.Create(ctx, model.Supplier{
		Name:  input.Name,
		Code:  input.Code,
		Email: strings.TrimSpace(input.Email),
	})
	if err != nil {
		return nil, err
	}

	cs := newChangeSet(model.EntitySupplier, supplier.ID, nil, principal.UserID, s.now())
	cs.event(model.AuditActionCreate)
	s.audit.record(ctx, cs)
	return supplier, nil
}

func (s *ContractService) List(ctx context.Context, filter model.ContractFilter, page model.PageRequest) (model.Page[model.Contract], error) {
	return paginate(ctx, s.paging, page,
		func(ctx context.Context) (int64, error) { return s.contracts.Count(ctx, filter) },
		func(ctx context.Context, req model.PageRequest) ([]model.Contract, error) {
			return s.contracts.List(ctx, filter, req)
		},
	)
}

func (s *ContractService) Get(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	contract, err := s.contracts.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return contract, nil
}

func (s *ContractService) Create(ctx context.Context, principal model.Principal, input ContractInput) (*model.Contract, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	if input.Status == "" {
		input.Status = model.ContractStatusDraft
	}
	if input.Status != model.ContractStatusDraft && input.Status != model.ContractStatusActive {
		return nil, fmt.Errorf("%w: new contracts must be draft or active", ErrInvalidInput)
	}
	input, err := s.normalize(ctx, input, uuid.Nil)
	if err != nil {
		return nil, err
	}

	contract, err := s.contracts.Create(ctx, model.Contract{
		SupplierID:        input.SupplierID,
		ContractNumber:    input.ContractNumber,
		Name:              input.Name,
		ContractType:      input.ContractType,
		Status:            input.Status,
		Currency:          input.Currency,
		ValidFrom:         input.ValidFrom,
		ValidTo:           input.ValidTo,
		CommissionPercent: input.CommissionPercent,
		Notes:             input.Notes,
		CreatedBy:         principal.UserID,
	})
	if err != nil {
		return nil, err
	}

	cs := newChangeSet(model.EntityContract, contract.ID, &contract.ID, principal.UserID, s.now())
	cs.event(model.AuditActionCreate)
	s.audit.record(ctx, cs)
	return contract, nil
}

// Update replaces the editable fields. Status changes go through
// ChangeStatus so transitions are checked.
func (s *ContractService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input ContractInput) (*model.Contract, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	current, err := s.contracts.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	input, err = s.normalize(ctx, input, id)
	if err != nil {
		return nil, err
	}

	next := *current
	next.SupplierID = input.SupplierID
	next.ContractNumber = input.ContractNumber
	next.Name = input.Name
	next.ContractType = input.ContractType
	next.Currency = input.Currency
	next.ValidFrom = input.ValidFrom
	next.ValidTo = input.ValidTo
	next.CommissionPercent = input.CommissionPercent
	next.Notes = input.Notes
	next.UpdatedBy = &principal.UserID

	updated, err := s.contracts.Update(ctx, next)
	if err != nil {
		return nil, translate(err)
	}

	cs := newChangeSet(model.EntityContract, id, &id, principal.UserID, s.now())
	cs.field(model.AuditActionUpdate, "supplier_id", current.SupplierID, updated.SupplierID)
	cs.field(model.AuditActionUpdate, "contract_number", current.ContractNumber, updated.ContractNumber)
	cs.field(model.AuditActionUpdate, "name", current.Name, updated.Name)
	cs.field(model.AuditActionUpdate, "contract_type", current.ContractType, updated.ContractType)
	cs.field(model.AuditActionUpdate, "currency", current.Currency, updated.Currency)
	cs.field(model.AuditActionUpdate, "valid_from", current.ValidFrom, updated.ValidFrom)
	cs.field(model.AuditActionUpdate, "valid_to", current.ValidTo, updated.ValidTo)
	cs.field(model.AuditActionUpdate, "commission_percent", current.CommissionPercent, updated.CommissionPercent)
	cs.field(model.AuditActionUpdate, "notes", current.Notes, updated.Notes)
	s.audit.record(ctx, cs)
	return updated, nil
}

func (s *ContractService) ChangeStatus(ctx context.Context, principal model.Principal, id uuid.UUID, status model.ContractStatus) (*model.Contract, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	current, err := s.contracts.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if current.Status == status {
		return current, nil
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: cannot move contract from %s to %s", ErrConflict, current.Status, status)
	}

	next := *current
	next.Status = status
	next.UpdatedBy = &principal.UserID
	updated, err := s.contracts.Update(ctx, next)
	if err != nil {
		return nil, translate(err)
	}

	cs := newChangeSet(model.EntityContract, id, &id, principal.UserID, s.now())
	cs.field(model.AuditActionStatusChange, "status", current.Status, updated.Status)
	s.audit.record(ctx, cs)
	return updated, nil
}

func (s *ContractService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if err := s.contracts.SoftDelete(ctx, id, principal.UserID); err != nil {
		return translate(err)
	}
	cs := newChangeSet(model.EntityContract, id, &id, principal.UserID, s.now())
	cs.event(model.AuditActionDelete)
	s.audit.record(ctx, cs)
	return nil
}

func (s *ContractService) normalize(ctx context.Context, input ContractInput, self uuid.UUID) (ContractInput, error) {
	input.ContractNumber = strings.TrimSpace(input.ContractNumber)
	input.Name = strings.TrimSpace(input.Name)
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	input.Notes = strings.TrimSpace(input.Notes)
	input.ValidFrom = inventory.DateOnly(input.ValidFrom)
	input.ValidTo = inventory.DateOnly(input.ValidTo)

	switch {
	case input.SupplierID == uuid.Nil:
		return input, fmt.Errorf("%w: supplier_id is required", ErrInvalidInput)
	case input.ContractNumber == "":
		return input, fmt.Errorf("%w: contract_number is required", ErrInvalidInput)
	case input.Name == "":
		return input, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case !input.ContractType.Valid():
		return input, fmt.Errorf("%w: unknown contract_type %q", ErrInvalidInput, input.ContractType)
	case !validCurrency(input.Currency):
		return input, fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidInput)
	case input.ValidFrom.IsZero() || input.ValidTo.IsZero():
		return input, fmt.Errorf("%w: validity dates are required", ErrInvalidInput)
	case input.ValidFrom.After(input.ValidTo):
		return input, fmt.Errorf("%w: valid_from must be before or equal to valid_to", ErrInvalidInput)
	case input.CommissionPercent.IsNegative() || input.CommissionPercent.GreaterThan(maxCommission):
		return input, fmt.Errorf("%w: commission_percent must be between 0 and 100", ErrInvalidInput)
	}

	if _, err := s.suppliers.Get(ctx, input.SupplierID); err != nil {
		if translate(err) == ErrNotFound {
			return input, fmt.Errorf("%w: supplier not found", ErrInvalidInput)
		}
		return input, err
	}

	exists, err := s.contracts.ExistsNumber(ctx, input.ContractNumber, self)
	if err != nil {
		return input, err
	}
	if exists {
		return input, fmt.Errorf("%w: contract number %s already exists", ErrConflict, input.ContractNumber)
	}
	return input, nil
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
