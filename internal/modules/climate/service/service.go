package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/modules/climate/types"
	"climate-api/internal/validation"
)

const (
	dateLayout = "2006-01-02"
	// trailingWindowDays is a fixed day count, not a calendar year.
	trailingWindowDays = 365

	// NoMatchMessage is the body text served when ErrNoMatch reaches a client.
	NoMatchMessage = "Temperature data not found for the given date(s)."
)

var (
	// ErrNoMatch means a date or date range selected zero observations.
	ErrNoMatch = errors.New("no observations matched")
	// ErrMalformedDate means a start or end date is not a real YYYY-MM-DD date.
	ErrMalformedDate = errors.New("malformed date")
)

type Options struct {
	// StrictDates rejects start/end values that are not valid YYYY-MM-DD
	// dates. When false they are compared against stored dates as raw strings.
	StrictDates bool
}

type Service struct {
	repository repository.ClimateRepository
	opts       Options
}

func NewService(repository repository.ClimateRepository, opts Options) *Service {
	return &Service{repository: repository, opts: opts}
}

// TrailingYearAnchor returns the most recent observation date minus 365 days.
func (s *Service) TrailingYearAnchor(ctx context.Context) (string, error) {
	maxDate, err := s.repository.MaxDate(ctx)
	if err != nil {
		return "", err
	}
	t, err := time.Parse(dateLayout, maxDate)
	if err != nil {
		return "", fmt.Errorf("parse most recent date %q: %w", maxDate, err)
	}
	return t.AddDate(0, 0, -trailingWindowDays).Format(dateLayout), nil
}

// PrecipitationReport maps each date in the trailing year to one
// precipitation value. Several stations report per date; the row folded
// last (store order: date, then insertion) overwrites the others.
func (s *Service) PrecipitationReport(ctx context.Context) (map[string]*float64, error) {
	rows, err := s.precipitationSinceAnchor(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*float64, len(rows))
	for _, row := range rows {
		out[row.Date] = row.Precipitation
	}
	return out, nil
}

// PrecipitationListReport keeps every reading for a date, in store order.
func (s *Service) PrecipitationListReport(ctx context.Context) (map[string][]*float64, error) {
	rows, err := s.precipitationSinceAnchor(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]*float64)
	for _, row := range rows {
		out[row.Date] = append(out[row.Date], row.Precipitation)
	}
	return out, nil
}

func (s *Service) precipitationSinceAnchor(ctx context.Context) ([]types.PrecipitationObservation, error) {
	anchor, err := s.TrailingYearAnchor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repository.ObservationsSince(ctx, anchor)
}

func (s *Service) StationList(ctx context.Context) ([]string, error) {
	return s.repository.StationIdentifiers(ctx)
}

// TemperatureObservationsReport returns one record per observation in the
// trailing year.
func (s *Service) TemperatureObservationsReport(ctx context.Context) ([]types.TemperatureObservation, error) {
	anchor, err := s.TrailingYearAnchor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repository.ObservationsSinceTemps(ctx, anchor)
}

type statsQuery struct {
	Start string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	End   *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// TemperatureStatsReport returns min/avg/max temperature for start..end
// (both inclusive; end nil means open ended). Zero matching rows, which
// includes start > end, yields ErrNoMatch.
func (s *Service) TemperatureStatsReport(ctx context.Context, start string, end *string) (types.TemperatureStatsReport, error) {
	if s.opts.StrictDates {
		if err := validation.Struct(statsQuery{Start: start, End: end}); err != nil {
			return types.TemperatureStatsReport{}, fmt.Errorf("%w: %v", ErrMalformedDate, err)
		}
	}

	stats, ok, err := s.repository.TemperatureStats(ctx, start, end)
	if err != nil {
		return types.TemperatureStatsReport{}, err
	}
	if !ok {
		return types.TemperatureStatsReport{}, ErrNoMatch
	}
	return types.TemperatureStatsReport{
		StartDate:          start,
		EndDate:            end,
		MinTemperature:     stats.Min,
		AverageTemperature: stats.Avg,
		MaxTemperature:     stats.Max,
	}, nil
}
