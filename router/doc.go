// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Portal CIPA API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, services)

Every route except /health and /metrics is wrapped in request metrics and
logging. Admin routes additionally pass through middleware.RequireAdmin
(X-Admin-Email and X-Admin-Key headers).

# Endpoints

Operational:

	GET /health
	GET /metrics

Settings and timeline:

	GET   /settings         - Settings plus current_user_role
	PATCH /settings         - Partial update (admin)
	GET   /timeline         - Events with evaluated windows
	PUT   /timeline         - Replace events (admin)
	GET   /timeline.ics     - iCalendar feed
	GET   /schedule/status  - Window status for ?keyword=
	GET   /auth/me          - Role of the caller
	POST  /admin/reset      - Clear election data (admin)

Roster (admin):

	GET    /employees
	POST   /employees
	PATCH  /employees/{id}
	DELETE /employees/{id}
	POST   /employees/import/preview
	POST   /employees/import
	GET    /employees/import/template

Registration:

	GET    /registrations
	GET    /registrations/{id}
	POST   /registrations       - Gated by the registration window
	DELETE /registrations/{id}  - Admin

Voting booth (gated by the voting window):

	GET  /voting/status
	GET  /voting/candidates
	POST /voting/identify - Returns a booth token
	POST /voting/votes    - Requires X-Booth-Token

Reports (admin):

	GET /dashboard
	GET /dashboard/voters
	GET /dashboard/voters.xlsx
	GET /results

Documents and assistant:

	GET  /documents/{kind}?format=html|pdf
	POST /assistant/chat          - Admin
	POST /assistant/report-intro  - Admin
*/
package router
