package climate

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"climate-api/internal/modules/climate/controller"
	"climate-api/internal/modules/climate/repository"
	"climate-api/internal/modules/climate/service"
)

type Options struct {
	StrictDates       bool
	ListPrecipitation bool
}

func RegisterFeature(mux *http.ServeMux, db *sqlx.DB, opts Options) {
	climateRepository := repository.NewRepository(db)
	climateService := service.NewService(climateRepository, service.Options{StrictDates: opts.StrictDates})
	climateController := controller.NewClimateController(climateService, opts.ListPrecipitation)
	climateController.RegisterRoutes(mux)
}
