package inventory

import (
	"sort"
	"time"

	"github.com/tripdesk/supplier-contracts/internal/model"
)

const (
	dateLayout = "2006-01-02"

	// DefaultHorizonDays is how far ahead release warnings look.
	DefaultHorizonDays = 30
	// OverdueGraceDays is how many days past release a warning is still
	// surfaced before the allocation counts as lapsed.
	OverdueGraceDays = 1
)

type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
)

func ClassifyUrgency(daysUntil int) Urgency {
	switch {
	case daysUntil <= 3:
		return UrgencyCritical
	case daysUntil <= 7:
		return UrgencyHigh
	default:
		return UrgencyMedium
	}
}

// ReleaseDate is the explicit release date when set, otherwise the
// start date minus the release period. Zero release days release on the
// start date. ok is false only when the allocation has no start date.
func ReleaseDate(a model.ContractAllocation) (time.Time, bool) {
	if a.ReleaseDate != nil && !a.ReleaseDate.IsZero() {
		return DateOnly(*a.ReleaseDate), true
	}
	if a.ReleaseDays >= 0 && !a.StartDate.IsZero() {
		return DateOnly(a.StartDate).AddDate(0, 0, -a.ReleaseDays), true
	}
	return time.Time{}, false
}

// DaysUntil counts calendar days from now to date in UTC. Negative when
// date has passed.
func DaysUntil(date, now time.Time) int {
	return int(DateOnly(date).Sub(DateOnly(now)).Hours() / 24)
}

func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type ReleaseWarning struct {
	Allocation  model.ContractAllocation `json:"allocation"`
	ReleaseDate time.Time                `json:"release_date"`
	DaysUntil   int                      `json:"days_until"`
	Unsold      int                      `json:"unsold"`
	Urgency     Urgency                  `json:"urgency"`
}

// ReleaseWarnings returns the allocations whose release date falls within
// [-OverdueGraceDays, horizonDays] of now and that still hold unsold
// units, most urgent first.
func ReleaseWarnings(allocs []model.ContractAllocation, now time.Time, horizonDays int) []ReleaseWarning {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	warnings := make([]ReleaseWarning, 0)
	for _, a := range allocs {
		if !releasable(a) {
			continue
		}
		release, ok := ReleaseDate(a)
		if !ok {
			continue
		}
		days := DaysUntil(release, now)
		if days < -OverdueGraceDays || days > horizonDays {
			continue
		}
		warnings = append(warnings, ReleaseWarning{
			Allocation:  a,
			ReleaseDate: release,
			DaysUntil:   days,
			Unsold:      Unsold(a),
			Urgency:     ClassifyUrgency(days),
		})
	}
	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].DaysUntil != warnings[j].DaysUntil {
			return warnings[i].DaysUntil < warnings[j].DaysUntil
		}
		return warnings[i].Unsold > warnings[j].Unsold
	})
	return warnings
}

// Lapsed returns allocations whose release date passed more than
// OverdueGraceDays ago and that still hold unsold units.
func Lapsed(allocs []model.ContractAllocation, now time.Time) []model.ContractAllocation {
	var result []model.ContractAllocation
	for _, a := range allocs {
		if !releasable(a) {
			continue
		}
		release, ok := ReleaseDate(a)
		if !ok {
			continue
		}
		if DaysUntil(release, now) < -OverdueGraceDays {
			result = append(result, a)
		}
	}
	return result
}

// CountByUrgency tallies warnings per urgency level.
func CountByUrgency(warnings []ReleaseWarning) map[Urgency]int {
	counts := map[Urgency]int{
		UrgencyCritical: 0,
		UrgencyHigh:     0,
		UrgencyMedium:   0,
	}
	for _, w := range warnings {
		counts[w.Urgency]++
	}
	return counts
}

func releasable(a model.ContractAllocation) bool {
	if !a.IsActive || a.ReleasedAt != nil || a.IsBlackout || a.IsStopSell {
		return false
	}
	return Unsold(a) > 0
}
