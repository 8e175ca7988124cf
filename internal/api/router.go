package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-osc/internal/auth"
	"github.com/nerrad567/gray-logic-osc/internal/panel"
)

// healthCheckTimeout bounds each component check in the health endpoint.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Browser drop monitor. The page itself is public; its data needs a token.
	r.Get("/monitor", http.RedirectHandler("/monitor/", http.StatusMovedPermanently).ServeHTTP)
	r.Handle("/monitor/*", http.StripPrefix("/monitor", panel.Handler(s.cfg.PanelDir)))

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// WebSocket (auth via ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermDiagnosticsRead))
				r.Get("/metrics", s.handleMetrics)
				r.Get("/routes", s.handleRoutes)
				r.Get("/switcher", s.handleSwitcherState)
				r.Get("/drops", s.handleListDrops)
				r.Get("/drops/summary", s.handleDropSummary)
				r.Get("/audit", s.handleListAudit)
			})

			r.With(s.requirePermission(auth.PermStreamSubscribe)).
				Post("/auth/ws-ticket", s.handleWSTicket)

			r.With(s.requirePermission(auth.PermOSCDispatch)).
				Post("/dispatch", s.handleDispatch)
		})
	})

	return r
}

// handleHealth reports overall status and the result of each component
// check. Any failing check turns the response into a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	slices.Sort(names)

	status := "ok"
	components := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := s.checks[name].HealthCheck(ctx)
		cancel()
		if err != nil {
			components[name] = err.Error()
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}
