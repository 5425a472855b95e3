package types

// Observation is one station's reading for one date. Date is a zero-padded
// YYYY-MM-DD string, so string order is chronological order.
type Observation struct {
	ID            int64    `db:"id"`
	StationID     string   `db:"station"`
	Date          string   `db:"date"`
	Precipitation *float64 `db:"prcp"`
	Temperature   float64  `db:"tobs"`
}

// Station carries descriptive metadata; only ID is served by the API.
type Station struct {
	ID        string   `db:"station"`
	Name      string   `db:"name"`
	Latitude  *float64 `db:"latitude"`
	Longitude *float64 `db:"longitude"`
	Elevation *float64 `db:"elevation"`
}

type PrecipitationObservation struct {
	Date          string   `db:"date"`
	Precipitation *float64 `db:"prcp"`
}

type TemperatureObservation struct {
	Date        string  `db:"date" json:"date"`
	Temperature float64 `db:"tobs" json:"tobs"`
}

// TemperatureStats are computed over a single matching row set.
type TemperatureStats struct {
	Min float64
	Avg float64
	Max float64
}

// TemperatureStatsReport is the /api/v1.0/{start}[/{end}] payload.
type TemperatureStatsReport struct {
	StartDate          string  `json:"start_date"`
	EndDate            *string `json:"end_date"`
	MinTemperature     float64 `json:"min_temperature"`
	AverageTemperature float64 `json:"average_temperature"`
	MaxTemperature     float64 `json:"max_temperature"`
}
