// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/handlers"
	"github.com/portalcipa/cipa-server/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, svc handlers.Services) *http.ServeMux {
	mux := http.NewServeMux()
	svc = svc.WithDefaults()

	// Initialize handlers
	settingsHandler := handlers.NewSettingsHandler(db, cfg, svc)
	employeeHandler := handlers.NewEmployeeHandler(db, cfg, svc)
	registrationHandler := handlers.NewRegistrationHandler(db, cfg, svc)
	votingHandler := handlers.NewVotingHandler(db, cfg, svc)
	dashboardHandler := handlers.NewDashboardHandler(db, cfg, svc)
	resultsHandler := handlers.NewResultsHandler(db, cfg, svc)
	documentHandler := handlers.NewDocumentHandler(db, cfg, svc)
	assistantHandler := handlers.NewAssistantHandler(db, cfg, svc)

	public := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithMetrics(svc.Metrics, middleware.WithLogging(h)))
	}
	admin := func(pattern string, h http.HandlerFunc) {
		public(pattern, middleware.RequireAdmin(db, cfg.AdminKeySalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", svc.Metrics.Handler())

	// Settings, timeline and session
	public("GET /settings", settingsHandler.GetSettings)
	admin("PATCH /settings", settingsHandler.UpdateSettings)
	public("GET /timeline", settingsHandler.GetTimeline)
	admin("PUT /timeline", settingsHandler.ReplaceTimeline)
	public("GET /timeline.ics", settingsHandler.TimelineCalendar)
	public("GET /schedule/status", settingsHandler.ScheduleStatus)
	public("GET /auth/me", settingsHandler.Me)
	admin("POST /admin/reset", settingsHandler.Reset)

	// Employee roster (admin)
	admin("GET /employees", employeeHandler.ListEmployees)
	admin("POST /employees", employeeHandler.CreateEmployee)
	admin("PATCH /employees/{id}", employeeHandler.UpdateEmployee)
	admin("DELETE /employees/{id}", employeeHandler.DeleteEmployee)
	admin("POST /employees/import/preview", employeeHandler.PreviewImport)
	admin("POST /employees/import", employeeHandler.Import)
	admin("GET /employees/import/template", employeeHandler.ImportTemplate)

	// Candidate registration
	public("GET /registrations", registrationHandler.ListRegistrations)
	public("GET /registrations/{id}", registrationHandler.GetRegistration)
	public("POST /registrations", registrationHandler.CreateRegistration)
	admin("DELETE /registrations/{id}", registrationHandler.DeleteRegistration)

	// Voting booth (public)
	public("GET /voting/status", votingHandler.GetStatus)
	public("GET /voting/candidates", votingHandler.ListCandidates)
	public("POST /voting/identify", votingHandler.Identify)
	public("POST /voting/votes", votingHandler.CastVote)

	// Dashboard and results (admin)
	admin("GET /dashboard", dashboardHandler.GetStats)
	admin("GET /dashboard/voters", dashboardHandler.ListVoters)
	admin("GET /dashboard/voters.xlsx", dashboardHandler.ExportVoters)
	admin("GET /results", resultsHandler.GetResults)

	// Printable documents; election and minutes check admin credentials themselves
	public("GET /documents/{kind}", documentHandler.GetDocument)

	// Assistant (admin)
	admin("POST /assistant/chat", assistantHandler.Chat)
	admin("POST /assistant/report-intro", assistantHandler.ReportIntro)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Portal CIPA API v1"))
	})

	return mux
}
