// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Portal CIPA API.

# Handler Types

Each handler is a struct with database, config, and service dependencies:

  - SettingsHandler: Settings, timeline, schedule status, reset
  - EmployeeHandler: Roster CRUD and spreadsheet import
  - RegistrationHandler: Candidate registration
  - VotingHandler: Voter identification and vote casting
  - DashboardHandler: Turnout statistics and voter list
  - ResultsHandler: Ranked election results
  - DocumentHandler: Ballots, timeline, reports, and minutes
  - AssistantHandler: Generated answers and report text

Handlers are created via constructor functions:

	votingHandler := handlers.NewVotingHandler(db, cfg, services)

Services carries the optional integrations (mail, PDF, assistant, metrics,
clock). Zero fields fall back to no-op implementations.

# Schedule Gating

Registration and voting only succeed while their timeline window is open.
A closed window answers 403 with:

	{"error": "schedule_closed", "message": "...", "dates": "..."}

The window comes from the first timeline event whose activity mentions
"inscriç" (registration) or "votação" (voting), evaluated in the configured
timezone.

# Voting Flow

	POST /voting/identify → Identify (returns booth_token)
	POST /voting/votes    → CastVote (X-Booth-Token header)

A matricula votes at most once. Restricted and inactive employees cannot
vote or register.

# Administration

Admin operations require the X-Admin-Email and X-Admin-Key headers. Keys
are derived from the email with the admin salt.
*/
package handlers
