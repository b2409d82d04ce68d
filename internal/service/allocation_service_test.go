package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/supplier-contracts/internal/inventory"
	"github.com/tripdesk/supplier-contracts/internal/model"
)

func allocationInput() AllocationInput {
	return AllocationInput{
		ProductName:    "Double sea view",
		AllocationType: model.AllocationTypeRoom,
		StartDate:      date(2026, 7, 1),
		EndDate:        date(2026, 7, 31),
		Quantity:       intPtr(10),
		Booked:         2,
		Held:           1,
		ReleaseDays:    14,
	}
}

func TestAllocationCreate(t *testing.T) {
	f := newFixture()
	view, err := f.allocationService().Create(context.Background(), managerUser, f.contract.ID, allocationInput())
	require.NoError(t, err)
	require.NotNil(t, view.Available)
	assert.Equal(t, 7, *view.Available)
	assert.Equal(t, model.AllocationStatusAvailable, view.Status)
	assert.InDelta(t, 30.0, view.Utilization, 0.001)
	require.NotNil(t, view.ReleaseOn)
	assert.Equal(t, "2026-06-17", *view.ReleaseOn)
}

func TestAllocationCreateValidation(t *testing.T) {
	foreignPool := model.AllocationPool{ID: uuid.New(), SupplierID: uuid.New(), Name: "Other"}
	tests := []struct {
		name   string
		mutate func(*AllocationInput)
		want   error
	}{
		{"end before start", func(in *AllocationInput) { in.EndDate = date(2026, 6, 1) }, ErrInvalidInput},
		{"outside contract", func(in *AllocationInput) { in.EndDate = date(2027, 1, 5) }, ErrInvalidInput},
		{"negative held", func(in *AllocationInput) { in.Held = -1 }, ErrInvalidInput},
		{"counters exceed quantity", func(in *AllocationInput) { in.Booked = 10 }, ErrCapacityExceeded},
		{"release after start", func(in *AllocationInput) { d := date(2026, 7, 2); in.ReleaseDate = &d }, ErrInvalidInput},
		{"unknown pool", func(in *AllocationInput) { id := uuid.New(); in.PoolID = &id }, ErrInvalidInput},
		{"pool of other supplier", func(in *AllocationInput) { in.PoolID = &foreignPool.ID }, ErrInvalidInput},
		{"unknown type", func(in *AllocationInput) { in.AllocationType = "cabin" }, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.pools = newFakePools(foreignPool)
			in := allocationInput()
			tt.mutate(&in)
			_, err := f.allocationService().Create(context.Background(), managerUser, f.contract.ID, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAllocationFreesaleCreate(t *testing.T) {
	f := newFixture()
	in := allocationInput()
	in.Quantity = nil
	in.Booked = 40
	view, err := f.allocationService().Create(context.Background(), managerUser, f.contract.ID, in)
	require.NoError(t, err)
	assert.Nil(t, view.Available)
	assert.Equal(t, model.AllocationStatusFreesale, view.Status)
	assert.Zero(t, view.Utilization)
}

func TestAllocationAdjustCounters(t *testing.T) {
	f := newFixture()
	a := f.addAllocation(model.ContractAllocation{
		ProductName: "Twin", StartDate: date(2026, 8, 1), EndDate: date(2026, 8, 10),
		Quantity: intPtr(10), Booked: 5, Held: 2,
	})
	svc := f.allocationService()
	ctx := context.Background()

	view, err := svc.AdjustCounters(ctx, managerUser, a.ID, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, view.Booked)
	assert.Equal(t, model.AllocationStatusSoldOut, view.Status)
	assert.Equal(t, []string{"booked"}, f.audit.fields(model.AuditActionAdjust))

	_, err = svc.AdjustCounters(ctx, managerUser, a.ID, 1, 0)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = svc.AdjustCounters(ctx, managerUser, a.ID, 0, -3)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	view, err = svc.AdjustCounters(ctx, managerUser, a.ID, -2, -1)
	require.NoError(t, err)
	assert.Equal(t, 6, view.Booked)
	assert.Equal(t, 1, view.Held)

	_, err = svc.AdjustCounters(ctx, managerUser, a.ID, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AdjustCounters(ctx, viewerUser, a.ID, 1, 0)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.AdjustCounters(ctx, managerUser, uuid.New(), 1, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllocationRelease(t *testing.T) {
	f := newFixture()
	a := f.addAllocation(model.ContractAllocation{
		ProductName: "Suite", StartDate: date(2026, 6, 20), EndDate: date(2026, 6, 30),
		Quantity: intPtr(10), Booked: 4, Held: 1,
	})
	freesale := f.addAllocation(model.ContractAllocation{
		ProductName: "Standard", StartDate: date(2026, 6, 20), EndDate: date(2026, 6, 30),
	})
	svc := f.allocationService()
	ctx := context.Background()

	view, err := svc.Release(ctx, managerUser, a.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Quantity)
	assert.Equal(t, 5, *view.Quantity)
	require.NotNil(t, view.ReleasedAt)
	assert.Equal(t, testNow, *view.ReleasedAt)
	assert.Equal(t, model.AllocationStatusSoldOut, view.Status)
	assert.Equal(t, []string{"quantity"}, f.audit.fields(model.AuditActionRelease))

	_, err = svc.Release(ctx, managerUser, a.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Release(ctx, managerUser, freesale.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AdjustCounters(ctx, managerUser, a.ID, 1, 0)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAllocationBulkUpdate(t *testing.T) {
	f := newFixture()
	first := f.addAllocation(model.ContractAllocation{ProductName: "A", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 5), Quantity: intPtr(5), Booked: 1})
	second := f.addAllocation(model.ContractAllocation{ProductName: "B", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 5), Quantity: intPtr(5), Booked: 4})
	missing := uuid.New()
	svc := f.allocationService()
	ctx := context.Background()

	stop := true
	result, err := svc.BulkUpdate(ctx, managerUser, []uuid.UUID{first.ID, second.ID, missing, first.ID}, model.AllocationPatch{IsStopSell: &stop})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, missing, result.Failed[0].ID)
	assert.Contains(t, result.Failed[0].Error, "not found")

	got, err := svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AllocationStatusStopSell, got.Status)

	result, err = svc.BulkUpdate(ctx, managerUser, []uuid.UUID{first.ID, second.ID}, model.AllocationPatch{Quantity: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, second.ID, result.Failed[0].ID)

	_, err = svc.BulkUpdate(ctx, managerUser, []uuid.UUID{first.ID}, model.AllocationPatch{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.BulkUpdate(ctx, managerUser, nil, model.AllocationPatch{IsStopSell: &stop})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.BulkUpdate(ctx, viewerUser, []uuid.UUID{first.ID}, model.AllocationPatch{IsStopSell: &stop})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAllocationReleaseWarnings(t *testing.T) {
	f := newFixture()
	soon := date(2026, 6, 12)
	later := date(2026, 6, 16)
	far := date(2026, 9, 1)
	urgent := f.addAllocation(model.ContractAllocation{ProductName: "soon", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 2), Quantity: intPtr(10), Booked: 2, ReleaseDate: &soon})
	f.addAllocation(model.ContractAllocation{ProductName: "later", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 2), Quantity: intPtr(10), ReleaseDate: &later})
	f.addAllocation(model.ContractAllocation{ProductName: "far", StartDate: date(2026, 9, 10), EndDate: date(2026, 9, 12), Quantity: intPtr(10), ReleaseDate: &far})
	f.addAllocation(model.ContractAllocation{ProductName: "blackout", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 2), Quantity: intPtr(10), ReleaseDate: &soon, IsBlackout: true})
	f.addAllocation(model.ContractAllocation{ProductName: "full", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 2), Quantity: intPtr(2), Booked: 2, ReleaseDate: &soon})

	warnings, err := f.allocationService().ReleaseWarnings(context.Background(), &f.contract.ID)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, urgent.ID, warnings[0].Allocation.ID)
	assert.Equal(t, 2, warnings[0].DaysUntil)
	assert.Equal(t, 8, warnings[0].Unsold)
	assert.Equal(t, inventory.UrgencyCritical, warnings[0].Urgency)
	assert.Equal(t, inventory.UrgencyHigh, warnings[1].Urgency)
}

func TestAllocationReleaseLapsed(t *testing.T) {
	f := newFixture()
	lapsed := date(2026, 6, 5)
	yesterday := date(2026, 6, 9)
	old := f.addAllocation(model.ContractAllocation{ProductName: "old", StartDate: date(2026, 6, 20), EndDate: date(2026, 6, 25), Quantity: intPtr(6), Booked: 2, ReleaseDate: &lapsed})
	grace := f.addAllocation(model.ContractAllocation{ProductName: "grace", StartDate: date(2026, 6, 20), EndDate: date(2026, 6, 25), Quantity: intPtr(6), ReleaseDate: &yesterday})

	released, err := f.allocationService().ReleaseLapsed(context.Background())
	require.NoError(t, err)
	require.Len(t, released, 1)
	assert.Equal(t, old.ID, released[0].ID)
	assert.Equal(t, 2, *released[0].Quantity)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, uuid.Nil, f.audit.entries[0].ChangedBy)

	still, err := f.allocations.Get(context.Background(), grace.ID)
	require.NoError(t, err)
	assert.Nil(t, still.ReleasedAt)
}

func TestAllocationListStatusFilter(t *testing.T) {
	f := newFixture()
	f.addAllocation(model.ContractAllocation{ProductName: "open", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 2), Quantity: intPtr(3)})
	f.addAllocation(model.ContractAllocation{ProductName: "gone", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 2), Quantity: intPtr(3), Booked: 3})
	svc := f.allocationService()

	page, err := svc.List(context.Background(), model.AllocationFilter{ContractID: &f.contract.ID, Status: model.AllocationStatusSoldOut}, model.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "gone", page.Items[0].ProductName)

	_, err = svc.List(context.Background(), model.AllocationFilter{Status: "closed"}, model.PageRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAllocationPoolCapacity(t *testing.T) {
	f := newFixture()
	pool := model.AllocationPool{ID: uuid.New(), SupplierID: f.supplier.ID, Name: "Shared July", Capacity: intPtr(10)}
	f.pools = newFakePools(pool)
	member := f.addAllocation(model.ContractAllocation{
		PoolID: &pool.ID, ProductName: "Twin", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 9), Quantity: intPtr(5),
	})
	svc := f.allocationService()
	ctx := context.Background()

	in := allocationInput()
	in.PoolID = &pool.ID
	in.Quantity = intPtr(50)
	_, err := svc.Create(ctx, managerUser, f.contract.ID, in)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	in.Quantity = intPtr(5)
	second, err := svc.Create(ctx, managerUser, f.contract.ID, in)
	require.NoError(t, err)

	// the allocation's own stored quantity is not counted twice
	in.ProductName = "Double garden view"
	_, err = svc.Update(ctx, managerUser, second.ID, in)
	require.NoError(t, err)

	in.Quantity = intPtr(6)
	_, err = svc.Update(ctx, managerUser, second.ID, in)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	result, err := svc.BulkUpdate(ctx, managerUser, []uuid.UUID{member.ID}, model.AllocationPatch{Quantity: intPtr(40)})
	require.NoError(t, err)
	assert.Empty(t, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Error, "capacity")

	result, err = svc.BulkUpdate(ctx, managerUser, []uuid.UUID{member.ID}, model.AllocationPatch{Quantity: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{member.ID}, result.Succeeded)

	detail, err := f.poolService().Get(ctx, pool.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, detail.Summary.Quantity)
}

// bookingDuringRead commits a booking right after the first read, the way
// a concurrent AdjustCounters call would.
type bookingDuringRead struct {
	*fakeAllocations
	once   sync.Once
	booked int
}

func (b *bookingDuringRead) Get(ctx context.Context, id uuid.UUID) (*model.ContractAllocation, error) {
	row, err := b.fakeAllocations.Get(ctx, id)
	b.once.Do(func() {
		if err == nil {
			_, _ = b.fakeAllocations.AdjustCounters(ctx, id, b.booked, 0)
		}
	})
	return row, err
}

func TestAllocationWritesKeepConcurrentBookings(t *testing.T) {
	ctx := context.Background()
	stop := true
	tests := []struct {
		name       string
		write      func(*AllocationService, uuid.UUID) error
		wantErr    error
		wantBooked int
		wantStop   bool
	}{
		{
			name: "bulk stop-sell",
			write: func(svc *AllocationService, id uuid.UUID) error {
				result, err := svc.BulkUpdate(ctx, managerUser, []uuid.UUID{id}, model.AllocationPatch{IsStopSell: &stop})
				if err == nil && len(result.Failed) > 0 {
					err = errors.New(result.Failed[0].Error)
				}
				return err
			},
			wantBooked: 5,
			wantStop:   true,
		},
		{
			name: "full update",
			write: func(svc *AllocationService, id uuid.UUID) error {
				in := allocationInput()
				in.IsStopSell = true
				_, err := svc.Update(ctx, managerUser, id, in)
				return err
			},
			wantBooked: 5,
			wantStop:   true,
		},
		{
			name: "update shrinking below live counters",
			write: func(svc *AllocationService, id uuid.UUID) error {
				in := allocationInput()
				in.Quantity = intPtr(4)
				_, err := svc.Update(ctx, managerUser, id, in)
				return err
			},
			wantErr:    ErrCapacityExceeded,
			wantBooked: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			a := f.addAllocation(model.ContractAllocation{
				ProductName: "Double sea view", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 31),
				Quantity: intPtr(10), Booked: 2, Held: 1, ReleaseDays: 14,
			})
			repo := &bookingDuringRead{fakeAllocations: f.allocations, booked: 3}
			svc := NewAllocationService(repo, f.contracts, f.pools, f.audit, testPaging, inventory.DefaultHorizonDays, zerolog.Nop())
			svc.now = fixedNow

			err := tt.write(svc, a.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			got, err := f.allocations.Get(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBooked, got.Booked)
			assert.Equal(t, 1, got.Held)
			assert.Equal(t, tt.wantStop, got.IsStopSell)
		})
	}
}

func TestAllocationReleasedOnlyShrinks(t *testing.T) {
	f := newFixture()
	releasedAt := testNow.Add(-time.Hour)
	a := f.addAllocation(model.ContractAllocation{
		ProductName: "Double sea view", StartDate: date(2026, 7, 1), EndDate: date(2026, 7, 31),
		Quantity: intPtr(5), Booked: 4, Held: 1, ReleaseDays: 14, ReleasedAt: &releasedAt,
	})
	svc := f.allocationService()
	ctx := context.Background()

	in := allocationInput()
	in.Quantity = intPtr(5)
	in.Booked = 4
	in.Held = 1

	grow := in
	grow.Quantity = intPtr(8)
	_, err := svc.Update(ctx, managerUser, a.ID, grow)
	assert.ErrorIs(t, err, ErrConflict)

	unlimited := in
	unlimited.Quantity = nil
	_, err = svc.Update(ctx, managerUser, a.ID, unlimited)
	assert.ErrorIs(t, err, ErrConflict)

	rebook := in
	rebook.Booked = 5
	rebook.Held = 0
	_, err = svc.Update(ctx, managerUser, a.ID, rebook)
	assert.ErrorIs(t, err, ErrConflict)

	cancel := in
	cancel.Booked = 3
	view, err := svc.Update(ctx, managerUser, a.ID, cancel)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Booked)
	require.NotNil(t, view.ReleasedAt)

	result, err := svc.BulkUpdate(ctx, managerUser, []uuid.UUID{a.ID}, model.AllocationPatch{Quantity: intPtr(9)})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Error, "released")

	result, err = svc.BulkUpdate(ctx, managerUser, []uuid.UUID{a.ID}, model.AllocationPatch{Quantity: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID}, result.Succeeded)

	warnings, err := svc.ReleaseWarnings(ctx, &f.contract.ID)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}
