package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"climate-api/internal/config"
	"climate-api/internal/db"
	"climate-api/internal/httpapi"
	"climate-api/internal/migrate"
	"climate-api/internal/modules/climate"
	climateviews "climate-api/internal/modules/climate/views"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"sqliteLogSQL", cfg.SQLiteLogSQL,
		"dateValidation", cfg.DateValidation,
		"precipitationMode", cfg.PrecipitationMode,
		"metricsEnabled", cfg.MetricsEnabled,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	applied, err := migrate.Run(ctx, dbConn)
	if err != nil {
		return err
	}
	slog.Info("schema ready", "migrationsApplied", applied)

	var ok int
	if err := dbConn.GetContext(ctx, &ok, `SELECT 1`); err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	slog.Info("database connection successful")

	if err := climateviews.LoadTemplates(); err != nil {
		return err
	}

	var metrics *httpapi.Metrics
	if cfg.MetricsEnabled {
		metrics = httpapi.NewMetrics(dbConn.DB)
	}
	mux := httpapi.NewMux(dbConn, metrics)
	climate.RegisterFeature(mux, dbConn, climate.Options{
		StrictDates:       cfg.StrictDates(),
		ListPrecipitation: cfg.PrecipitationMode == config.PrecipitationModeList,
	})

	srv := httpapi.NewServer(cfg, mux, metrics)
	return serve(ctx, srv)
}

// serve runs srv until ctx is done or the listener fails, then drains
// in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
