package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tripdesk/supplier-contracts/internal/inventory"
	"github.com/tripdesk/supplier-contracts/internal/model"
	"github.com/tripdesk/supplier-contracts/internal/repository"
)

var (
	testNow     = time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	testPaging  = Paging{DefaultSize: 20, MaxSize: 200}
	adminUser   = model.Principal{UserID: uuid.New(), Role: model.UserRoleAdmin}
	managerUser = model.Principal{UserID: uuid.New(), Role: model.UserRoleContractManager}
	viewerUser  = model.Principal{UserID: uuid.New(), Role: model.UserRoleViewer}
)

func fixedNow() time.Time { return testNow }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func pageSlice[T any](items []T, page model.PageRequest) []T {
	if page.Size <= 0 {
		return items
	}
	start := page.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type fakeSuppliers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Supplier
}

func newFakeSuppliers(rows ...model.Supplier) *fakeSuppliers {
	f := &fakeSuppliers{rows: map[uuid.UUID]model.Supplier{}}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeSuppliers) List(ctx context.Context) ([]model.Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Supplier
	for _, r := range f.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeSuppliers) Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (f *fakeSuppliers) ExistsCode(ctx context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if strings.EqualFold(r.Code, code) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSuppliers) Create(ctx context.Context, s model.Supplier) (*model.Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	s.IsActive = true
	f.rows[s.ID] = s
	return &s, nil
}

type fakeContracts struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Contract
}

func newFakeContracts(rows ...model.Contract) *fakeContracts {
	f := &fakeContracts{rows: map[uuid.UUID]model.Contract{}}
	for _, r := range rows {
		r.IsActive = true
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeContracts) matching(filter model.ContractFilter) []model.Contract {
	var out []model.Contract
	for _, r := range f.rows {
		if !r.IsActive {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.SupplierID != nil && r.SupplierID != *filter.SupplierID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContractNumber < out[j].ContractNumber })
	return out
}

func (f *fakeContracts) Count(ctx context.Context, filter model.ContractFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(filter))), nil
}

func (f *fakeContracts) List(ctx context.Context, filter model.ContractFilter, page model.PageRequest) ([]model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageSlice(f.matching(filter), page), nil
}

func (f *fakeContracts) Get(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (f *fakeContracts) ExistsNumber(ctx context.Context, number string, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.IsActive && r.ID != exclude && r.ContractNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeContracts) Create(ctx context.Context, c model.Contract) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	c.IsActive = true
	f.rows[c.ID] = c
	return &c, nil
}

func (f *fakeContracts) Update(ctx context.Context, c model.Contract) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[c.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.rows[c.ID] = c
	return &c, nil
}

func (f *fakeContracts) SoftDelete(ctx context.Context, id, by uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return gorm.ErrRecordNotFound
	}
	r.IsActive = false
	r.UpdatedBy = &by
	f.rows[id] = r
	return nil
}

func (f *fakeContracts) CountByStatus(ctx context.Context) (map[model.ContractStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[model.ContractStatus]int64{}
	for _, r := range f.rows {
		if r.IsActive {
			out[r.Status]++
		}
	}
	return out, nil
}

type fakeDeadlines struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.ContractDeadline
}

func newFakeDeadlines(rows ...model.ContractDeadline) *fakeDeadlines {
	f := &fakeDeadlines{rows: map[uuid.UUID]model.ContractDeadline{}}
	for _, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		r.IsActive = true
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeDeadlines) matching(filter model.DeadlineFilter, now time.Time) []model.ContractDeadline {
	var out []model.ContractDeadline
	for _, r := range f.rows {
		switch {
		case !r.IsActive:
			continue
		case filter.ContractID != nil && r.ContractID != *filter.ContractID:
			continue
		case filter.Status != "" && r.Status != filter.Status:
			continue
		case filter.OverdueOnly && !r.IsOverdue(now):
			continue
		case filter.DueWithin != nil && (r.Status != model.DeadlineStatusPending ||
			r.DeadlineDate.Before(now) || r.DeadlineDate.After(now.AddDate(0, 0, *filter.DueWithin))):
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeadlineDate.Before(out[j].DeadlineDate) })
	return out
}

func (f *fakeDeadlines) Count(ctx context.Context, filter model.DeadlineFilter, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(filter, now))), nil
}

func (f *fakeDeadlines) List(ctx context.Context, filter model.DeadlineFilter, now time.Time, page model.PageRequest) ([]model.ContractDeadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageSlice(f.matching(filter, now), page), nil
}

func (f *fakeDeadlines) Get(ctx context.Context, id uuid.UUID) (*model.ContractDeadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (f *fakeDeadlines) Create(ctx context.Context, d model.ContractDeadline) (*model.ContractDeadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = uuid.New()
	d.IsActive = true
	f.rows[d.ID] = d
	return &d, nil
}

func (f *fakeDeadlines) Update(ctx context.Context, d model.ContractDeadline) (*model.ContractDeadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[d.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.rows[d.ID] = d
	return &d, nil
}

func (f *fakeDeadlines) SoftDelete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return gorm.ErrRecordNotFound
	}
	r.IsActive = false
	f.rows[id] = r
	return nil
}

type fakeAllocations struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.ContractAllocation
}

func newFakeAllocations(rows ...model.ContractAllocation) *fakeAllocations {
	f := &fakeAllocations{rows: map[uuid.UUID]model.ContractAllocation{}}
	for _, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		r.IsActive = true
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeAllocations) matching(filter model.AllocationFilter) []model.ContractAllocation {
	var out []model.ContractAllocation
	for _, r := range f.rows {
		switch {
		case !r.IsActive:
			continue
		case filter.ContractID != nil && r.ContractID != *filter.ContractID:
			continue
		case filter.PoolID != nil && (r.PoolID == nil || *r.PoolID != *filter.PoolID):
			continue
		case filter.From != nil && r.EndDate.Before(*filter.From):
			continue
		case filter.To != nil && r.StartDate.After(*filter.To):
			continue
		case filter.Status != "" && inventory.Status(r) != filter.Status:
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out
}

func (f *fakeAllocations) Count(ctx context.Context, filter model.AllocationFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(filter))), nil
}

func (f *fakeAllocations) List(ctx context.Context, filter model.AllocationFilter, page model.PageRequest) ([]model.ContractAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageSlice(f.matching(filter), page), nil
}

func (f *fakeAllocations) Get(ctx context.Context, id uuid.UUID) (*model.ContractAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (f *fakeAllocations) Create(ctx context.Context, a model.ContractAllocation) (*model.ContractAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	a.IsActive = true
	f.rows[a.ID] = a
	return &a, nil
}

// Update mirrors the guarded UPDATE: descriptive columns are replaced
// while counters move by delta from the stored row.
func (f *fakeAllocations) Update(ctx context.Context, a model.ContractAllocation, bookedDelta, heldDelta int) (*model.ContractAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[a.ID]
	if !ok || !r.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	booked, held := r.Booked+bookedDelta, r.Held+heldDelta
	switch {
	case booked < 0 || held < 0:
		return nil, repository.ErrGuardFailed
	case a.Quantity != nil && booked+held > *a.Quantity:
		return nil, repository.ErrGuardFailed
	case r.ReleasedAt != nil && (a.Quantity == nil || *a.Quantity > *r.Quantity || bookedDelta > 0 || heldDelta > 0):
		return nil, repository.ErrGuardFailed
	}
	a.Booked, a.Held = booked, held
	a.ReleasedAt = r.ReleasedAt
	a.IsActive = true
	f.rows[a.ID] = a
	return &a, nil
}

func (f *fakeAllocations) Patch(ctx context.Context, id uuid.UUID, patch model.AllocationPatch) (*model.ContractAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	if q := patch.Quantity; q != nil {
		if r.Booked+r.Held > *q || (r.ReleasedAt != nil && *q > *r.Quantity) {
			return nil, repository.ErrGuardFailed
		}
		r.Quantity = intPtr(*q)
	}
	if patch.IsBlackout != nil {
		r.IsBlackout = *patch.IsBlackout
	}
	if patch.IsStopSell != nil {
		r.IsStopSell = *patch.IsStopSell
	}
	f.rows[id] = r
	return &r, nil
}

func (f *fakeAllocations) SoftDelete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return gorm.ErrRecordNotFound
	}
	r.IsActive = false
	f.rows[id] = r
	return nil
}

// AdjustCounters mirrors the guarded UPDATE of the postgres repository.
func (f *fakeAllocations) AdjustCounters(ctx context.Context, id uuid.UUID, bookedDelta, heldDelta int) (*model.ContractAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	booked, held := r.Booked+bookedDelta, r.Held+heldDelta
	if booked < 0 || held < 0 || (r.Quantity != nil && booked+held > *r.Quantity) {
		return nil, repository.ErrGuardFailed
	}
	r.Booked, r.Held = booked, held
	f.rows[id] = r
	return &r, nil
}

func (f *fakeAllocations) Release(ctx context.Context, id uuid.UUID, at time.Time) (*model.ContractAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	if r.ReleasedAt != nil || r.Quantity == nil {
		return nil, repository.ErrGuardFailed
	}
	q := r.Booked + r.Held
	r.Quantity = &q
	r.ReleasedAt = &at
	f.rows[id] = r
	return &r, nil
}

func (f *fakeAllocations) SetPool(ctx context.Context, id uuid.UUID, poolID *uuid.UUID) (*model.ContractAllocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	r.PoolID = poolID
	f.rows[id] = r
	return &r, nil
}

type fakePools struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.AllocationPool
}

func newFakePools(rows ...model.AllocationPool) *fakePools {
	f := &fakePools{rows: map[uuid.UUID]model.AllocationPool{}}
	for _, r := range rows {
		r.IsActive = true
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakePools) List(ctx context.Context, supplierID *uuid.UUID) ([]model.AllocationPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AllocationPool
	for _, r := range f.rows {
		if r.IsActive && (supplierID == nil || r.SupplierID == *supplierID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakePools) Get(ctx context.Context, id uuid.UUID) (*model.AllocationPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (f *fakePools) Create(ctx context.Context, p model.AllocationPool) (*model.AllocationPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	p.IsActive = true
	f.rows[p.ID] = p
	return &p, nil
}

func (f *fakePools) Update(ctx context.Context, p model.AllocationPool) (*model.AllocationPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.rows[p.ID] = p
	return &p, nil
}

func (f *fakePools) SoftDelete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return gorm.ErrRecordNotFound
	}
	r.IsActive = false
	f.rows[id] = r
	return nil
}

type fakeRates struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.SupplierRate
}

func newFakeRates(rows ...model.SupplierRate) *fakeRates {
	f := &fakeRates{rows: map[uuid.UUID]model.SupplierRate{}}
	for _, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		r.IsActive = true
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeRates) matching(filter model.RateFilter) []model.SupplierRate {
	var out []model.SupplierRate
	for _, r := range f.rows {
		switch {
		case !r.IsActive, r.ContractID != filter.ContractID:
			continue
		case filter.ProductName != "" && !strings.Contains(strings.ToLower(r.ProductName), strings.ToLower(filter.ProductName)):
			continue
		case filter.ValidOn != nil && (filter.ValidOn.Before(r.ValidFrom) || filter.ValidOn.After(r.ValidTo)):
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ValidFrom.Before(out[j].ValidFrom) })
	return out
}

func (f *fakeRates) Count(ctx context.Context, filter model.RateFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(filter))), nil
}

func (f *fakeRates) List(ctx context.Context, filter model.RateFilter, page model.PageRequest) ([]model.SupplierRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageSlice(f.matching(filter), page), nil
}

func (f *fakeRates) ListVariant(ctx context.Context, rate model.SupplierRate) ([]model.SupplierRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SupplierRate
	for _, r := range f.rows {
		if r.IsActive && r.SameVariant(rate) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRates) Get(ctx context.Context, id uuid.UUID) (*model.SupplierRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (f *fakeRates) Create(ctx context.Context, r model.SupplierRate) (*model.SupplierRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = uuid.New()
	r.IsActive = true
	f.rows[r.ID] = r
	return &r, nil
}

func (f *fakeRates) Update(ctx context.Context, r model.SupplierRate) (*model.SupplierRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[r.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.rows[r.ID] = r
	return &r, nil
}

func (f *fakeRates) SoftDelete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || !r.IsActive {
		return gorm.ErrRecordNotFound
	}
	r.IsActive = false
	f.rows[id] = r
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []model.AuditLog
	fail    bool
}

func (f *fakeAudit) Create(ctx context.Context, entries []model.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("audit store unavailable")
	}
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeAudit) Count(ctx context.Context, filter model.AuditFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.entries)), nil
}

func (f *fakeAudit) List(ctx context.Context, filter model.AuditFilter, page model.PageRequest) ([]model.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.AuditLog, len(f.entries))
	copy(out, f.entries)
	return pageSlice(out, page), nil
}

func (f *fakeAudit) fields(action model.AuditAction) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.entries {
		if e.Action != action {
			continue
		}
		if e.FieldName == nil {
			out = append(out, "")
			continue
		}
		out = append(out, *e.FieldName)
	}
	return out
}

// fixture wires every service to a shared set of fakes with one supplier
// and one active contract valid for 2026.
type fixture struct {
	supplier    model.Supplier
	contract    model.Contract
	suppliers   *fakeSuppliers
	contracts   *fakeContracts
	deadlines   *fakeDeadlines
	allocations *fakeAllocations
	pools       *fakePools
	rates       *fakeRates
	audit       *fakeAudit
}

func newFixture() *fixture {
	supplier := model.Supplier{ID: uuid.New(), Name: "Hotel Mar Azul", Code: "MARAZUL", IsActive: true}
	contract := model.Contract{
		ID:             uuid.New(),
		SupplierID:     supplier.ID,
		SupplierName:   supplier.Name,
		ContractNumber: "HC-2026-001",
		Name:           "Summer 2026",
		ContractType:   model.ContractTypeHotel,
		Status:         model.ContractStatusActive,
		Currency:       "EUR",
		ValidFrom:      date(2026, 1, 1),
		ValidTo:        date(2026, 12, 31),
	}
	return &fixture{
		supplier:    supplier,
		contract:    contract,
		suppliers:   newFakeSuppliers(supplier),
		contracts:   newFakeContracts(contract),
		deadlines:   newFakeDeadlines(),
		allocations: newFakeAllocations(),
		pools:       newFakePools(),
		rates:       newFakeRates(),
		audit:       &fakeAudit{},
	}
}

func (f *fixture) contractService() *ContractService {
	s := NewContractService(f.contracts, f.suppliers, f.audit, testPaging, zerolog.Nop())
	s.now = fixedNow
	return s
}

func (f *fixture) deadlineService() *DeadlineService {
	s := NewDeadlineService(f.deadlines, f.contracts, f.audit, testPaging, zerolog.Nop())
	s.now = fixedNow
	return s
}

func (f *fixture) allocationService() *AllocationService {
	s := NewAllocationService(f.allocations, f.contracts, f.pools, f.audit, testPaging, inventory.DefaultHorizonDays, zerolog.Nop())
	s.now = fixedNow
	return s
}

func (f *fixture) poolService() *PoolService {
	s := NewPoolService(f.pools, f.allocations, f.contracts, f.suppliers, f.audit, zerolog.Nop())
	s.now = fixedNow
	return s
}

func (f *fixture) rateService() *RateService {
	s := NewRateService(f.rates, f.contracts, f.audit, testPaging, zerolog.Nop())
	s.now = fixedNow
	return s
}

func (f *fixture) addAllocation(a model.ContractAllocation) model.ContractAllocation {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.ContractID == uuid.Nil {
		a.ContractID = f.contract.ID
	}
	if a.AllocationType == "" {
		a.AllocationType = model.AllocationTypeRoom
	}
	a.IsActive = true
	f.allocations.mu.Lock()
	f.allocations.rows[a.ID] = a
	f.allocations.mu.Unlock()
	return a
}
