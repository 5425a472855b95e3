package importer

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-api/internal/migrate"
)

const stationsCSV = `station,name,latitude,longitude,elevation
USC00519397,"WAIKIKI 717.2, HI US",21.2716,-157.8168,3
USC00513117,"KANEOHE 838.1, HI US",21.4234,-157.8015,14.6
`

const measurementsCSV = `station,date,prcp,tobs
USC00519397,2010-01-01,0.08,65
USC00519397,2010-01-02,,63
USC00513117,2010-01-01,0.28,67
`

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", filepath.Join(t.TempDir(), "hawaii.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = migrate.Run(context.Background(), db)
	require.NoError(t, err)
	return db
}

func count(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func TestImport(t *testing.T) {
	db := setupDB(t)

	res, err := Import(context.Background(), db, strings.NewReader(measurementsCSV), strings.NewReader(stationsCSV), Options{})
	require.NoError(t, err)
	assert.Equal(t, Result{Stations: 2, Measurements: 3}, res)

	assert.Equal(t, 2, count(t, db, "station"))
	assert.Equal(t, 3, count(t, db, "measurement"))

	var prcp []sql.NullFloat64
	require.NoError(t, db.Select(&prcp, `SELECT prcp FROM measurement WHERE station = 'USC00519397' ORDER BY date`))
	require.Len(t, prcp, 2)
	assert.Equal(t, sql.NullFloat64{Float64: 0.08, Valid: true}, prcp[0])
	assert.False(t, prcp[1].Valid, "empty prcp is stored as NULL")

	var name string
	require.NoError(t, db.Get(&name, `SELECT name FROM station WHERE station = 'USC00519397'`))
	assert.Equal(t, "WAIKIKI 717.2, HI US", name)
}

func TestImport_Reimport(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := Import(ctx, db, strings.NewReader(measurementsCSV), strings.NewReader(stationsCSV), Options{})
	require.NoError(t, err)

	t.Run("stations are upserted", func(t *testing.T) {
		_, err := Import(ctx, db, strings.NewReader("station,date,tobs\n"), strings.NewReader(stationsCSV), Options{})
		require.NoError(t, err)
		assert.Equal(t, 2, count(t, db, "station"))
	})

	t.Run("replace clears measurements", func(t *testing.T) {
		_, err := Import(ctx, db, strings.NewReader(measurementsCSV), strings.NewReader(stationsCSV), Options{Replace: true})
		require.NoError(t, err)
		assert.Equal(t, 3, count(t, db, "measurement"))
	})
}

func TestImport_RejectsInvalidRows(t *testing.T) {
	tests := []struct {
		name         string
		measurements string
		stations     string
		wantErr      string
	}{
		{
			name:         "unpadded date",
			measurements: "station,date,prcp,tobs\nUSC00519397,2010-1-01,0.08,65\n",
			stations:     stationsCSV,
			wantErr:      "line 2",
		},
		{
			name:         "missing tobs",
			measurements: "station,date,prcp,tobs\nUSC00519397,2010-01-01,0.08,\n",
			stations:     stationsCSV,
			wantErr:      "invalid tobs",
		},
		{
			name:         "bad prcp",
			measurements: "station,date,prcp,tobs\nUSC00519397,2010-01-01,wet,65\n",
			stations:     stationsCSV,
			wantErr:      "invalid prcp",
		},
		{
			name:         "missing station column",
			measurements: "date,prcp,tobs\n2010-01-01,0.08,65\n",
			stations:     stationsCSV,
			wantErr:      `missing "station" column`,
		},
		{
			name:         "empty stations file",
			measurements: measurementsCSV,
			stations:     "",
			wantErr:      "empty file",
		},
		{
			name:         "blank station id",
			measurements: measurementsCSV,
			stations:     "station,name\n,NOWHERE\n",
			wantErr:      "station is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			_, err := Import(context.Background(), db, strings.NewReader(tt.measurements), strings.NewReader(tt.stations), Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Zero(t, count(t, db, "measurement"), "nothing is written on failure")
			assert.Zero(t, count(t, db, "station"))
		})
	}
}

func TestParseOptionalFloat(t *testing.T) {
	v, err := parseOptionalFloat("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = parseOptionalFloat("1.79")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 1.79, *v)

	_, err = parseOptionalFloat("n/a")
	assert.Error(t, err)
}
