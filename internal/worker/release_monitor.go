package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tripdesk/supplier-contracts/internal/inventory"
	"github.com/tripdesk/supplier-contracts/internal/model"
)

type ReleaseSource interface {
	ReleaseWarnings(ctx context.Context, contractID *uuid.UUID) ([]inventory.ReleaseWarning, error)
	ReleaseLapsed(ctx context.Context) ([]model.ContractAllocation, error)
}

// ReleaseMonitor periodically reports allocations nearing their release
// date and, when enabled, returns lapsed unsold units to suppliers.
type ReleaseMonitor struct {
	source     ReleaseSource
	interval   time.Duration
	autoReturn bool
	log        zerolog.Logger
}

func NewReleaseMonitor(source ReleaseSource, interval time.Duration, autoReturn bool, log zerolog.Logger) *ReleaseMonitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReleaseMonitor{
		source:     source,
		interval:   interval,
		autoReturn: autoReturn,
		log:        log.With().Str("component", "release-monitor").Logger(),
	}
}

// Run scans once immediately and then on every tick until ctx is done.
func (m *ReleaseMonitor) Run(ctx context.Context) error {
	m.log.Info().Dur("interval", m.interval).Bool("auto_return", m.autoReturn).Msg("release monitor started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if _, err := m.Scan(ctx); err != nil && ctx.Err() == nil {
			m.log.Error().Err(err).Msg("release scan failed")
		}
		select {
		case <-ctx.Done():
			m.log.Info().Msg("release monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

type ScanResult struct {
	Warnings int
	Counts   map[inventory.Urgency]int
	Released int
}

func (m *ReleaseMonitor) Scan(ctx context.Context) (ScanResult, error) {
	warnings, err := m.source.ReleaseWarnings(ctx, nil)
	if err != nil {
		return ScanResult{}, err
	}
	result := ScanResult{
		Warnings: len(warnings),
		Counts:   inventory.CountByUrgency(warnings),
	}

	for _, w := range warnings {
		if w.Urgency != inventory.UrgencyCritical {
			continue
		}
		m.log.Warn().
			Str("allocation_id", w.Allocation.ID.String()).
			Str("contract_id", w.Allocation.ContractID.String()).
			Str("product", w.Allocation.ProductName).
			Int("days_until", w.DaysUntil).
			Int("unsold", w.Unsold).
			Msg("allocation release is imminent")
	}

	if m.autoReturn {
		released, err := m.source.ReleaseLapsed(ctx)
		if err != nil {
			return result, err
		}
		result.Released = len(released)
	}

	m.log.Info().
		Int("warnings", result.Warnings).
		Int("critical", result.Counts[inventory.UrgencyCritical]).
		Int("high", result.Counts[inventory.UrgencyHigh]).
		Int("medium", result.Counts[inventory.UrgencyMedium]).
		Int("released", result.Released).
		Msg("release scan finished")
	return result, nil
}
