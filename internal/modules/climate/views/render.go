package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var welcomeTmpl *template.Template

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	welcomeTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// RouteLink is one entry in the welcome page route list.
type RouteLink struct {
	Label string
	Path  string
}

type WelcomeData struct {
	Title string
	// Links are routes that can be followed as is.
	Links []RouteLink
	// Templates are routes that need date segments filled in.
	Templates []RouteLink
}

func DefaultWelcomeData() *WelcomeData {
	return &WelcomeData{
		Title: "Honolulu, Hawaii Climate API",
		Links: []RouteLink{
			{Label: "Precipitation", Path: "/api/v1.0/precipitation"},
			{Label: "Stations", Path: "/api/v1.0/stations"},
			{Label: "Temperature Observations", Path: "/api/v1.0/tobs"},
		},
		Templates: []RouteLink{
			{Label: "For temperature data from a specific start date", Path: "/api/v1.0/start_date"},
			{Label: "For temperature data within a date range", Path: "/api/v1.0/start_date/end_date"},
		},
	}
}

func RenderWelcome(w io.Writer, data *WelcomeData) error {
	if welcomeTmpl == nil {
		return errors.New("welcome template not loaded: call views.LoadTemplates during startup")
	}
	return welcomeTmpl.ExecuteTemplate(w, "welcome.html", data)
}
