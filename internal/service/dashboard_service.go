package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tripdesk/supplier-contracts/internal/inventory"
	"github.com/tripdesk/supplier-contracts/internal/model"
)

const (
	dashboardDeadlineDays  = 14
	dashboardListLimit     = 10
	dashboardWarningsLimit = 20
)

type DashboardService struct {
	contracts   ContractRepository
	deadlines   DeadlineRepository
	allocations AllocationRepository
	horizonDays int
	now         func() time.Time
}

func NewDashboardService(contracts ContractRepository, deadlines DeadlineRepository, allocations AllocationRepository, horizonDays int) *DashboardService {
	return &DashboardService{
		contracts:   contracts,
		deadlines:   deadlines,
		allocations: allocations,
		horizonDays: horizonDays,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type Dashboard struct {
	GeneratedAt       time.Time                    `json:"generated_at"`
	ContractsByStatus map[model.ContractStatus]int64 `json:"contracts_by_status"`
	ActiveContracts   int64                        `json:"active_contracts"`
	OverdueCount      int64                        `json:"overdue_count"`
	Overdue           []DeadlineView               `json:"overdue"`
	UpcomingCount     int64                        `json:"upcoming_count"`
	Upcoming          []DeadlineView               `json:"upcoming"`
	ReleaseWarnings   []inventory.ReleaseWarning   `json:"release_warnings"`
	WarningsByUrgency map[inventory.Urgency]int    `json:"warnings_by_urgency"`
	Inventory         inventory.Summary            `json:"inventory"`
}

// Build loads the dashboard sections concurrently. Any failing section
// fails the whole dashboard.
func (s *DashboardService) Build(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	d := &Dashboard{GeneratedAt: now}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.contracts.CountByStatus(gctx)
		if err != nil {
			return err
		}
		d.ContractsByStatus = counts
		d.ActiveContracts = counts[model.ContractStatusActive]
		return nil
	})

	g.Go(func() error {
		filter := model.DeadlineFilter{OverdueOnly: true}
		total, items, err := s.deadlineSection(gctx, filter, now)
		if err != nil {
			return err
		}
		d.OverdueCount, d.Overdue = total, items
		return nil
	})

	g.Go(func() error {
		days := dashboardDeadlineDays
		filter := model.DeadlineFilter{DueWithin: &days}
		total, items, err := s.deadlineSection(gctx, filter, now)
		if err != nil {
			return err
		}
		d.UpcomingCount, d.Upcoming = total, items
		return nil
	})

	g.Go(func() error {
		all, err := s.allocations.List(gctx, model.AllocationFilter{}, model.PageRequest{})
		if err != nil {
			return err
		}
		warnings := inventory.ReleaseWarnings(all, now, s.horizonDays)
		d.WarningsByUrgency = inventory.CountByUrgency(warnings)
		if len(warnings) > dashboardWarningsLimit {
			warnings = warnings[:dashboardWarningsLimit]
		}
		d.ReleaseWarnings = warnings
		d.Inventory = inventory.Summarize(all)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) deadlineSection(ctx context.Context, filter model.DeadlineFilter, now time.Time) (int64, []DeadlineView, error) {
	total, err := s.deadlines.Count(ctx, filter, now)
	if err != nil {
		return 0, nil, err
	}
	rows, err := s.deadlines.List(ctx, filter, now, model.PageRequest{Page: 1, Size: dashboardListLimit})
	if err != nil {
		return 0, nil, err
	}
	views := make([]DeadlineView, 0, len(rows))
	for _, row := range rows {
		views = append(views, NewDeadlineView(row, now))
	}
	return total, views, nil
}
