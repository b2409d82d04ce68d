package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

func intPtr(v int) *int { return &v }

func TestAvailable(t *testing.T) {
	a := model.ContractAllocation{Quantity: intPtr(10), Booked: 4, Held: 3}
	available, ok := Available(a)
	assert.True(t, ok)
	assert.Equal(t, 3, available)

	_, ok = Available(model.ContractAllocation{Booked: 2})
	assert.False(t, ok)

	oversold := model.ContractAllocation{Quantity: intPtr(5), Booked: 6}
	available, _ = Available(oversold)
	assert.Equal(t, -1, available)
	assert.Equal(t, 0, Unsold(oversold))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name  string
		alloc model.ContractAllocation
		want  model.AllocationStatus
	}{
		{"available", model.ContractAllocation{Quantity: intPtr(10), Booked: 2}, model.AllocationStatusAvailable},
		{"exactly sold out", model.ContractAllocation{Quantity: intPtr(10), Booked: 8, Held: 2}, model.AllocationStatusSoldOut},
		{"oversold", model.ContractAllocation{Quantity: intPtr(3), Booked: 5}, model.AllocationStatusSoldOut},
		{"zero quantity", model.ContractAllocation{Quantity: intPtr(0)}, model.AllocationStatusSoldOut},
		{"freesale", model.ContractAllocation{Booked: 100}, model.AllocationStatusFreesale},
		{"blackout wins over sold out", model.ContractAllocation{Quantity: intPtr(1), Booked: 1, IsBlackout: true}, model.AllocationStatusBlackout},
		{"stop sell", model.ContractAllocation{Quantity: intPtr(10), IsStopSell: true}, model.AllocationStatusStopSell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.alloc))
		})
	}
}

func TestUtilization(t *testing.T) {
	assert.Equal(t, 50.0, Utilization(model.ContractAllocation{Quantity: intPtr(10), Booked: 3, Held: 2}))
	assert.Equal(t, 33.3, Utilization(model.ContractAllocation{Quantity: intPtr(3), Booked: 1}))
	assert.Equal(t, 100.0, Utilization(model.ContractAllocation{Quantity: intPtr(4), Booked: 9}))
	assert.Equal(t, 0.0, Utilization(model.ContractAllocation{Quantity: intPtr(0), Booked: 9}))
	assert.Equal(t, 0.0, Utilization(model.ContractAllocation{Booked: 9}))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.ContractAllocation{
		{Quantity: intPtr(10), Booked: 5, Held: 1},
		{Quantity: intPtr(10), Booked: 10},
		{Booked: 7},
	})
	assert.Equal(t, 3, s.Allocations)
	assert.Equal(t, 1, s.Freesale)
	assert.Equal(t, 1, s.SoldOut)
	assert.Equal(t, 20, s.Quantity)
	assert.Equal(t, 15, s.Booked)
	assert.Equal(t, 1, s.Held)
	assert.Equal(t, 4, s.Available)
	assert.Equal(t, 80.0, s.Utilization)
}

func TestNewView(t *testing.T) {
	v := NewView(model.ContractAllocation{Quantity: intPtr(8), Booked: 2})
	if assert.NotNil(t, v.Available) {
		assert.Equal(t, 6, *v.Available)
	}
	assert.Equal(t, model.AllocationStatusAvailable, v.Status)
	assert.Nil(t, v.ReleaseOn)

	free := NewView(model.ContractAllocation{})
	assert.Nil(t, free.Available)
	assert.Equal(t, model.AllocationStatusFreesale, free.Status)
}
