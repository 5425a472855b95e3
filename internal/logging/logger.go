package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"climate-api/internal/config"
)

// New builds the process logger. Dev builds get coloured, source-annotated
// output; anything else logs JSON with build metadata attached.
func New(cfg config.Config, version string, appName string) *slog.Logger {
	return newWithWriter(os.Stdout, cfg, version, appName)
}

func newWithWriter(w io.Writer, cfg config.Config, version string, appName string) *slog.Logger {
	if version == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.AppEnv == "prod",
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}
