// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/detection"
	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/metrics"
	"github.com/tomtom215/cohortlens/internal/thresholds"
	"github.com/tomtom215/cohortlens/internal/trend"
)

// Report kinds, used as the metrics and logging label.
const (
	KindDaily     = "daily"
	KindWeekly    = "weekly"
	KindSource    = "source"
	KindOfferwall = "offerwall"
)

const daysPerWeek = 7

// ErrDateGrouping is returned when a period-over-period report is asked to
// group by date. Keys from two different days would never pair, so every key
// would be listed as new and never alerted.
var ErrDateGrouping = errors.New("date is the comparison axis and cannot be a grouping dimension")

func checkComparable(dims cohort.Dimensions) error {
	if dims.Has(cohort.DimDate) {
		return fmt.Errorf("group by %v: %w", dims, ErrDateGrouping)
	}
	return nil
}

// Settings controls windows, horizons and tolerances of the reports.
type Settings struct {
	DailyTolerance        float64
	WeeklyTolerance       float64
	WeeklyHorizon         cohort.Horizon
	DailyGroupBy          cohort.Dimensions
	WeeklyGroupBy         cohort.Dimensions
	SourceLookbackWeeks   int
	OfferwallLookbackDays int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		DailyTolerance:        trend.DefaultTolerance,
		WeeklyTolerance:       trend.DefaultTolerance,
		WeeklyHorizon:         cohort.D7,
		DailyGroupBy:          cohort.Dimensions{cohort.DimSource},
		WeeklyGroupBy:         cohort.Dimensions{cohort.DimSource, cohort.DimCampaignType},
		SourceLookbackWeeks:   8,
		OfferwallLookbackDays: 30,
	}
}

// Service fetches rows and assembles reports. It holds no per-run state and
// may serve concurrent calls.
type Service struct {
	fetcher  Fetcher
	cfg      thresholds.Config
	settings Settings
	engine   *detection.Engine
	now      func() time.Time
}

// NewService creates a report service. A nil engine uses the default detectors.
func NewService(fetcher Fetcher, cfg thresholds.Config, settings Settings, engine *detection.Engine) *Service {
	if engine == nil {
		engine = detection.NewDefaultEngine()
	}
	return &Service{
		fetcher:  fetcher,
		cfg:      cfg,
		settings: settings,
		engine:   engine,
		now:      time.Now,
	}
}

// defaultDay resolves a zero date to yesterday, the latest complete day.
func (s *Service) defaultDay(t time.Time) time.Time {
	if t.IsZero() {
		return cohort.Day(s.now()).AddDate(0, 0, -1)
	}
	return cohort.Day(t)
}

// Daily compares date with the day before. A zero date means yesterday.
func (s *Service) Daily(ctx context.Context, date time.Time) (*DailyReport, error) {
	return run(ctx, KindDaily, func(ctx context.Context) (*DailyReport, error) {
		if err := checkComparable(s.settings.DailyGroupBy); err != nil {
			return nil, err
		}
		day := s.defaultDay(date)
		current := cohort.LastNDays(day, 1)
		previous := current.Previous()

		cur, err := s.fetcher.FetchAggregates(ctx, current, s.settings.DailyGroupBy)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", current, err)
		}
		prev, err := s.fetcher.FetchAggregates(ctx, previous, s.settings.DailyGroupBy)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", previous, err)
		}
		logging.Ctx(ctx).Debug().Int("current_rows", len(cur)).Int("previous_rows", len(prev)).Msg("daily rows fetched")

		return DailyHealth(ctx, DailyInput{
			Date:      day,
			Previous:  prev,
			Current:   cur,
			Tolerance: s.settings.DailyTolerance,
		}, s.cfg, s.engine)
	})
}

// Weekly compares the seven days ending on weekEnd with the seven days
// before. A zero weekEnd means yesterday.
func (s *Service) Weekly(ctx context.Context, weekEnd time.Time) (*WeeklyReport, error) {
	return run(ctx, KindWeekly, func(ctx context.Context) (*WeeklyReport, error) {
		if err := checkComparable(s.settings.WeeklyGroupBy); err != nil {
			return nil, err
		}
		week2 := cohort.LastNDays(s.defaultDay(weekEnd), daysPerWeek)
		week1 := week2.Previous()

		cur, err := s.fetcher.FetchAggregates(ctx, week2, s.settings.WeeklyGroupBy)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", week2, err)
		}
		prev, err := s.fetcher.FetchAggregates(ctx, week1, s.settings.WeeklyGroupBy)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", week1, err)
		}

		return WeeklyCohort(WeeklyInput{
			Week1:     week1,
			Week2:     week2,
			Previous:  prev,
			Current:   cur,
			Horizon:   s.settings.WeeklyHorizon,
			Tolerance: s.settings.WeeklyTolerance,
		}, s.cfg)
	})
}

// Source builds the deep dive for one source over weeks weeks ending on asOf.
// Non-positive weeks uses the configured lookback; a zero asOf means yesterday.
func (s *Service) Source(ctx context.Context, source string, weeks int, asOf time.Time) (*SourceReport, error) {
	return run(ctx, KindSource, func(ctx context.Context) (*SourceReport, error) {
		if source == "" {
			return nil, errors.New("source name is required")
		}
		if weeks <= 0 {
			weeks = s.settings.SourceLookbackWeeks
		}
		end := s.defaultDay(asOf)
		windows := make([]cohort.DateRange, 0, weeks)
		for i := 0; i < weeks; i++ {
			windows = append(windows, cohort.LastNDays(end.AddDate(0, 0, -daysPerWeek*i), daysPerWeek))
		}
		span := cohort.DateRange{Start: windows[len(windows)-1].Start, End: windows[0].End}

		rows, err := s.fetcher.FetchAggregates(ctx, span, cohort.Dimensions{cohort.DimDate, cohort.DimSource})
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", span, err)
		}

		return SourceDeepDive(SourceInput{
			Source:    source,
			Weeks:     windows,
			Rows:      rows,
			Horizon:   s.settings.WeeklyHorizon,
			Tolerance: s.settings.WeeklyTolerance,
		})
	})
}

// Offerwall builds the chapter funnel over days days ending on asOf.
// Non-positive days uses the configured lookback; a zero asOf means yesterday.
func (s *Service) Offerwall(ctx context.Context, days int, asOf time.Time) (*OfferwallReport, error) {
	return run(ctx, KindOfferwall, func(ctx context.Context) (*OfferwallReport, error) {
		if days <= 0 {
			days = s.settings.OfferwallLookbackDays
		}
		window := cohort.LastNDays(s.defaultDay(asOf), days)

		rows, err := s.fetcher.FetchChapterFunnel(ctx, window)
		if err != nil {
			return nil, fmt.Errorf("fetch chapters %s: %w", window, err)
		}
		return OfferwallChapters(window, rows, s.cfg)
	})
}

// run tags ctx with a correlation ID and the report kind, then logs and
// records the outcome of build.
func run[T any](ctx context.Context, kind string, build func(context.Context) (T, error)) (T, error) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	ctx = logging.ContextWithReport(ctx, kind)
	log := logging.Ctx(ctx)

	start := time.Now()
	log.Info().Msg("report started")

	out, err := build(ctx)
	elapsed := time.Since(start)
	metrics.RecordReport(kind, elapsed, err)
	if err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Msg("report failed")
		return out, err
	}
	log.Info().Dur("duration", elapsed).Msg("report completed")
	return out, nil
}
