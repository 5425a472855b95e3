package httpapi

import (
	"net/http"

	"github.com/jmoiron/sqlx"
)

// NewMux returns a mux with the operational routes. metrics may be nil,
// in which case /metrics is not served.
func NewMux(db *sqlx.DB, metrics *Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	return mux
}
