package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"climate-api/internal/modules/climate/types"
)

//go:embed sql/get-max-date.sql
var getMaxDateSQL string

//go:embed sql/get-precipitation-since.sql
var getPrecipitationSinceSQL string

//go:embed sql/get-temperatures-since.sql
var getTemperaturesSinceSQL string

//go:embed sql/get-station-ids.sql
var getStationIDsSQL string

//go:embed sql/get-temperature-stats.sql
var getTemperatureStatsSQL string

// ErrEmptyDataset is returned by MaxDate when there are no observations.
var ErrEmptyDataset = errors.New("no observations in dataset")

// ClimateRepository is the read-only view over the observation tables.
// Absence of rows is never an error: range queries return empty slices
// and TemperatureStats reports ok == false.
type ClimateRepository interface {
	MaxDate(ctx context.Context) (string, error)
	ObservationsSince(ctx context.Context, since string) ([]types.PrecipitationObservation, error)
	ObservationsSinceTemps(ctx context.Context, since string) ([]types.TemperatureObservation, error)
	StationIdentifiers(ctx context.Context) ([]string, error)
	TemperatureStats(ctx context.Context, start string, end *string) (stats types.TemperatureStats, ok bool, err error)
}

type repositoryImpl struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

// withConn runs fn on a connection taken from the pool for this call only.
// The connection goes back to the pool on every return path.
func (r *repositoryImpl) withConn(ctx context.Context, name string, fn func(conn *sqlx.Conn) error) error {
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("%s: acquire connection: %w", name, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Error("release connection", "query", name, "error", err)
		}
	}()
	return fn(conn)
}

func (r *repositoryImpl) MaxDate(ctx context.Context) (string, error) {
	var maxDate sql.NullString
	err := r.withConn(ctx, "max date", func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &maxDate, getMaxDateSQL)
	})
	if err != nil {
		return "", err
	}
	if !maxDate.Valid {
		return "", ErrEmptyDataset
	}
	return maxDate.String, nil
}

func (r *repositoryImpl) ObservationsSince(ctx context.Context, since string) ([]types.PrecipitationObservation, error) {
	out := []types.PrecipitationObservation{}
	err := r.withConn(ctx, "precipitation since", func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &out, getPrecipitationSinceSQL, since)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) ObservationsSinceTemps(ctx context.Context, since string) ([]types.TemperatureObservation, error) {
	out := []types.TemperatureObservation{}
	err := r.withConn(ctx, "temperatures since", func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &out, getTemperaturesSinceSQL, since)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repositoryImpl) StationIdentifiers(ctx context.Context) ([]string, error) {
	out := []string{}
	err := r.withConn(ctx, "station ids", func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &out, getStationIDsSQL)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type statsRow struct {
	N   int             `db:"n"`
	Min sql.NullFloat64 `db:"min_tobs"`
	Avg sql.NullFloat64 `db:"avg_tobs"`
	Max sql.NullFloat64 `db:"max_tobs"`
}

func (r *repositoryImpl) TemperatureStats(ctx context.Context, start string, end *string) (types.TemperatureStats, bool, error) {
	var endArg any
	if end != nil {
		endArg = *end
	}

	var row statsRow
	err := r.withConn(ctx, "temperature stats", func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &row, getTemperatureStatsSQL, start, endArg, endArg)
	})
	if err != nil {
		return types.TemperatureStats{}, false, err
	}
	if row.N == 0 || !row.Min.Valid || !row.Avg.Valid || !row.Max.Valid {
		return types.TemperatureStats{}, false, nil
	}
	return types.TemperatureStats{
		Min: row.Min.Float64,
		Avg: row.Avg.Float64,
		Max: row.Max.Float64,
	}, true, nil
}
