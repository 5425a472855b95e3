package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"climate-api/internal/modules/climate/service"
	"climate-api/internal/modules/climate/views"
	"climate-api/internal/utils"
)

func (c *climateControllerImpl) handleWelcome(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := views.RenderWelcome(&buf, views.DefaultWelcomeData()); err != nil {
		slog.Error("welcome template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	if c.listPrecipitation {
		report, err := c.service.PrecipitationListReport(r.Context())
		if err != nil {
			writeServiceError(w, r, "precipitation", err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, report)
		return
	}

	report, err := c.service.PrecipitationReport(r.Context())
	if err != nil {
		writeServiceError(w, r, "precipitation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, report)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.StationList(r.Context())
	if err != nil {
		writeServiceError(w, r, "stations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTemperatureObservations(w http.ResponseWriter, r *http.Request) {
	observations, err := c.service.TemperatureObservationsReport(r.Context())
	if err != nil {
		writeServiceError(w, r, "temperature observations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, observations)
}

func (c *climateControllerImpl) handleTemperatureStats(w http.ResponseWriter, r *http.Request) {
	start, end := parseDateRange(r)
	report, err := c.service.TemperatureStatsReport(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, r, "temperature stats", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, report)
}

// writeServiceError maps service errors to responses. Anything that is not
// a client error is logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, what string, err error) {
	switch {
	case errors.Is(err, service.ErrMalformedDate):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoMatch):
		utils.WriteErrorMessage(w, http.StatusNotFound, service.NoMatchMessage)
	default:
		slog.Error(what+" failed", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load "+what)
	}
}
