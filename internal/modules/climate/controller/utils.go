package controller

import "net/http"

// parseDateRange reads the {start} and optional {end} path segments.
// end is nil for the open-ended route.
func parseDateRange(r *http.Request) (start string, end *string) {
	start = r.PathValue("start")
	if e := r.PathValue("end"); e != "" {
		end = &e
	}
	return start, end
}
