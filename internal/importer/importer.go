// Package importer loads the Hawaii climate CSV exports into the observation
// tables. The server never writes; this is the only path that populates
// the store.
package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"climate-api/internal/modules/climate/types"
	"climate-api/internal/validation"
)

const (
	insertMeasurementSQL = `INSERT INTO measurement (station, date, prcp, tobs)
VALUES (:station, :date, :prcp, :tobs)`
	upsertStationSQL = `INSERT INTO station (station, name, latitude, longitude, elevation)
VALUES (:station, :name, :latitude, :longitude, :elevation)
ON CONFLICT(station) DO UPDATE SET
	name = excluded.name,
	latitude = excluded.latitude,
	longitude = excluded.longitude,
	elevation = excluded.elevation`
)

type Options struct {
	// Replace deletes existing measurements before loading, so a re-import
	// does not duplicate rows. Stations are always upserted.
	Replace bool
}

type Result struct {
	Stations     int
	Measurements int
}

// measurementKey and stationKey carry the validation rules for the
// columns that identify a row.
type measurementKey struct {
	Station string `json:"station" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
}

type stationKey struct {
	Station string `json:"station" validate:"required"`
}

// Import parses both files fully, then writes everything in one
// transaction. Nothing is written if any row is invalid.
func Import(ctx context.Context, db *sqlx.DB, measurements, stations io.Reader, opts Options) (Result, error) {
	stationRows, err := parseStations(stations)
	if err != nil {
		return Result{}, fmt.Errorf("stations: %w", err)
	}
	measurementRows, err := parseMeasurements(measurements)
	if err != nil {
		return Result{}, fmt.Errorf("measurements: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Error("import rollback", "error", rbErr)
		}
	}()

	if opts.Replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM measurement`); err != nil {
			return Result{}, fmt.Errorf("clear measurements: %w", err)
		}
	}

	stationStmt, err := tx.PrepareNamedContext(ctx, upsertStationSQL)
	if err != nil {
		return Result{}, fmt.Errorf("prepare station insert: %w", err)
	}
	defer stationStmt.Close()
	for _, s := range stationRows {
		if _, err := stationStmt.ExecContext(ctx, s); err != nil {
			return Result{}, fmt.Errorf("insert station %s: %w", s.ID, err)
		}
	}

	measurementStmt, err := tx.PrepareNamedContext(ctx, insertMeasurementSQL)
	if err != nil {
		return Result{}, fmt.Errorf("prepare measurement insert: %w", err)
	}
	defer measurementStmt.Close()
	for _, m := range measurementRows {
		if _, err := measurementStmt.ExecContext(ctx, m); err != nil {
			return Result{}, fmt.Errorf("insert measurement %s %s: %w", m.StationID, m.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}
	return Result{Stations: len(stationRows), Measurements: len(measurementRows)}, nil
}

func parseMeasurements(r io.Reader) ([]types.Observation, error) {
	var out []types.Observation
	err := readCSV(r, []string{"station", "date", "tobs"}, func(line int, get func(string) string) error {
		key := measurementKey{Station: get("station"), Date: get("date")}
		if err := validation.Struct(key); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		prcp, err := parseOptionalFloat(get("prcp"))
		if err != nil {
			return fmt.Errorf("line %d: invalid prcp: %w", line, err)
		}
		tobs, err := strconv.ParseFloat(get("tobs"), 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid tobs: %w", line, err)
		}
		out = append(out, types.Observation{
			StationID:     key.Station,
			Date:          key.Date,
			Precipitation: prcp,
			Temperature:   tobs,
		})
		return nil
	})
	return out, err
}

func parseStations(r io.Reader) ([]types.Station, error) {
	var out []types.Station
	err := readCSV(r, []string{"station"}, func(line int, get func(string) string) error {
		key := stationKey{Station: get("station")}
		if err := validation.Struct(key); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		row := types.Station{ID: key.Station, Name: get("name")}
		var err error
		if row.Latitude, err = parseOptionalFloat(get("latitude")); err != nil {
			return fmt.Errorf("line %d: invalid latitude: %w", line, err)
		}
		if row.Longitude, err = parseOptionalFloat(get("longitude")); err != nil {
			return fmt.Errorf("line %d: invalid longitude: %w", line, err)
		}
		if row.Elevation, err = parseOptionalFloat(get("elevation")); err != nil {
			return fmt.Errorf("line %d: invalid elevation: %w", line, err)
		}
		out = append(out, row)
		return nil
	})
	return out, err
}

// readCSV maps header names (case-insensitive) to columns and calls fn for
// each record. Columns not in required may be absent; get returns "" then.
func readCSV(r io.Reader, required []string, fn func(line int, get func(string) string) error) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty file")
		}
		return fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("missing %q column", col)
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line, _ := reader.FieldPos(0)
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if err := fn(line, get); err != nil {
			return err
		}
	}
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
