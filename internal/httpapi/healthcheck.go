package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"climate-api/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	db *sqlx.DB
}

func NewHealthchecker(db *sqlx.DB) healthchecker {
	return &healthcheckerImpl{db: db}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	var ok int
	if err := h.db.GetContext(r.Context(), &ok, `SELECT 1`); err != nil {
		slog.Error("failed to check database connectivity", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to check database connectivity")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, db *sqlx.DB) {
	healthchecker := NewHealthchecker(db)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
