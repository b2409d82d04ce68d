// Package inventory holds the display computations over allocation
// buckets: availability, status, utilization and release warnings.
package inventory

import (
	"math"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

// Available returns quantity - booked - held. ok is false for freesale
// allocations, which have no quantity.
func Available(a model.ContractAllocation) (available int, ok bool) {
	if a.Quantity == nil {
		return 0, false
	}
	return *a.Quantity - a.Booked - a.Held, true
}

// Unsold is the non-negative count of units neither booked nor held.
func Unsold(a model.ContractAllocation) int {
	available, ok := Available(a)
	if !ok || available < 0 {
		return 0
	}
	return available
}

func Status(a model.ContractAllocation) model.AllocationStatus {
	switch {
	case a.IsBlackout:
		return model.AllocationStatusBlackout
	case a.IsStopSell:
		return model.AllocationStatusStopSell
	}
	available, ok := Available(a)
	if !ok {
		return model.AllocationStatusFreesale
	}
	if available <= 0 {
		return model.AllocationStatusSoldOut
	}
	return model.AllocationStatusAvailable
}

// Utilization is the booked plus held share of quantity as a percentage,
// clamped to [0, 100] and rounded to one decimal place.
func Utilization(a model.ContractAllocation) float64 {
	if a.Quantity == nil {
		return 0
	}
	return percent(a.Booked+a.Held, *a.Quantity)
}

func percent(used, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(used) / float64(total) * 100
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return math.Round(p*10) / 10
}

// Summary aggregates counters over allocations that have a quantity.
// Freesale allocations are counted but do not contribute to totals.
type Summary struct {
	Allocations int     `json:"allocations"`
	Freesale    int     `json:"freesale"`
	SoldOut     int     `json:"sold_out"`
	Quantity    int     `json:"quantity"`
	Booked      int     `json:"booked"`
	Held        int     `json:"held"`
	Available   int     `json:"available"`
	Utilization float64 `json:"utilization"`
}

func Summarize(allocs []model.ContractAllocation) Summary {
	var s Summary
	for _, a := range allocs {
		s.Allocations++
		if a.Quantity == nil {
			s.Freesale++
			continue
		}
		if Status(a) == model.AllocationStatusSoldOut {
			s.SoldOut++
		}
		s.Quantity += *a.Quantity
		s.Booked += a.Booked
		s.Held += a.Held
		s.Available += Unsold(a)
	}
	s.Utilization = percent(s.Booked+s.Held, s.Quantity)
	return s
}

// View is an allocation with its derived display values.
type View struct {
	model.ContractAllocation
	Available   *int                   `json:"available"`
	Status      model.AllocationStatus `json:"status"`
	Utilization float64                `json:"utilization"`
	ReleaseOn   *string                `json:"release_on,omitempty"`
}

func NewView(a model.ContractAllocation) View {
	v := View{
		ContractAllocation: a,
		Status:             Status(a),
		Utilization:        Utilization(a),
	}
	if available, ok := Available(a); ok {
		v.Available = &available
	}
	if release, ok := ReleaseDate(a); ok {
		formatted := release.Format(dateLayout)
		v.ReleaseOn = &formatted
	}
	return v
}

func NewViews(allocs []model.ContractAllocation) []View {
	views := make([]View, 0, len(allocs))
	for _, a := range allocs {
		views = append(views, NewView(a))
	}
	return views
}
