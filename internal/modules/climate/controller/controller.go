package controller

import (
	"net/http"

	"climate-api/internal/modules/climate/service"
)

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service *service.Service
	// listPrecipitation serves every reading per date instead of the last one.
	listPrecipitation bool
}

func NewClimateController(service *service.Service, listPrecipitation bool) ClimateController {
	return &climateControllerImpl{service: service, listPrecipitation: listPrecipitation}
}

// RegisterRoutes wires the API. Literal segments win over {start}, so
// /api/v1.0/stations never reaches the stats handler.
func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleWelcome)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTemperatureObservations)
	mux.HandleFunc("GET /api/v1.0/{start}", c.handleTemperatureStats)
	mux.HandleFunc("GET /api/v1.0/{start}/{end}", c.handleTemperatureStats)
}
