package router

import (
	"net/http"
	"slices"

	"github.com/shandysiswandi/shield/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in
// app.maintenance.endpoints, either as "/path" or "METHOD /path". The list is
// re-read on every request.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg != nil && underMaintenance(cfg.GetArray("app.maintenance.endpoints"), r.Method, matchedRoutePath(r)) {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func underMaintenance(endpoints []string, method, route string) bool {
	return slices.Contains(endpoints, route) || slices.Contains(endpoints, method+" "+route)
}
