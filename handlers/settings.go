// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/portalcipa/cipa-server/auth"
	"github.com/portalcipa/cipa-server/calendar"
	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/middleware"
	"github.com/portalcipa/cipa-server/models"
	"github.com/portalcipa/cipa-server/schedule"
)

const resetMandate = "Novo Mandato"

type SettingsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	svc Services
}

func NewSettingsHandler(db *sql.DB, cfg cliparse.Config, svc Services) *SettingsHandler {
	return &SettingsHandler{db: db, cfg: cfg, svc: svc.WithDefaults()}
}

// requestRole reports whether the request carries valid admin credentials
func requestRole(r *http.Request, db *sql.DB, cfg cliparse.Config) (string, string) {
	email, err := middleware.AdminEmail(r, db, cfg.AdminKeySalt)
	if err != nil {
		return models.RoleUser, ""
	}
	return models.RoleAdmin, email
}

// GetSettings handles GET /settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := loadSettings(r.Context(), h.db, h.svc.now(h.cfg))
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	settings.CurrentUserRole, _ = requestRole(r, h.db, h.cfg)
	middleware.JSONResponse(w, http.StatusOK, settings)
}

// UpdateSettings handles PATCH /settings.
// Top-level keys present in the body replace the stored values.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, middleware.MaxBodyBytes))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	var patch map[string]json.RawMessage
	if err := json.Unmarshal(body, &patch); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	delete(patch, "current_user_role")

	now := h.svc.now(h.cfg)
	current, err := loadSettings(r.Context(), h.db, now)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	merged, err := mergeSettings(current, patch)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if merged.BallotsPerPage < 1 || merged.BallotsPerPage > 4 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ballots_per_page must be between 1 and 4")
		return
	}
	if merged.ReportConfig.ElectedCount < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "elected_count must not be negative")
		return
	}
	if merged.TimelineEvents, err = normalizeEvents(merged.TimelineEvents); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := saveSettings(r.Context(), h.db, merged, now); err != nil {
		slog.Error("failed to save settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	admin, _ := middleware.AdminFromContext(r.Context())
	slog.Info("settings updated", "admin", admin, "keys", len(patch))

	merged.CurrentUserRole = models.RoleAdmin
	middleware.JSONResponse(w, http.StatusOK, merged)
}

// mergeSettings replaces the top-level fields of current named in patch
func mergeSettings(current models.AppSettings, patch map[string]json.RawMessage) (models.AppSettings, error) {
	data, err := json.Marshal(current)
	if err != nil {
		return current, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return current, err
	}
	for k, v := range patch {
		fields[k] = v
	}

	data, err = json.Marshal(fields)
	if err != nil {
		return current, err
	}

	var merged models.AppSettings
	if err := json.Unmarshal(data, &merged); err != nil {
		return current, fmt.Errorf("invalid settings: %w", err)
	}
	return merged, nil
}

// normalizeEvents assigns ids to new events and rejects unnamed ones
func normalizeEvents(events []schedule.Event) ([]schedule.Event, error) {
	out := make([]schedule.Event, len(events))
	for i, ev := range events {
		ev.Activity = strings.TrimSpace(ev.Activity)
		if ev.Activity == "" {
			return nil, fmt.Errorf("event %d: activity is required", i+1)
		}
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		out[i] = ev
	}
	return out, nil
}

func timelineEntries(events []schedule.Event, now time.Time) []models.TimelineEntry {
	entries := make([]models.TimelineEntry, len(events))
	for i, ev := range events {
		win := schedule.Parse(ev.DateTime, now)
		entry := models.TimelineEntry{Event: ev, IsOpen: win.Open}
		if !win.Start.IsZero() {
			start, end := win.Start, win.End
			entry.Start, entry.End = &start, &end
		}
		entries[i] = entry
	}
	return entries
}

// GetTimeline handles GET /timeline
func (h *SettingsHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	now := h.svc.now(h.cfg)
	settings, err := loadSettings(r.Context(), h.db, now)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TimelineResponse{
		Mandate: settings.Mandate,
		Events:  timelineEntries(settings.TimelineEvents, now),
	})
}

// ReplaceTimeline handles PUT /timeline
func (h *SettingsHandler) ReplaceTimeline(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTimelineRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	events, err := normalizeEvents(req.Events)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	now := h.svc.now(h.cfg)
	settings, err := loadSettings(r.Context(), h.db, now)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	settings.TimelineEvents = events
	if err := saveSettings(r.Context(), h.db, settings, now); err != nil {
		slog.Error("failed to save timeline", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save timeline")
		return
	}

	slog.Info("timeline replaced", "events", len(events))

	middleware.JSONResponse(w, http.StatusOK, models.TimelineResponse{
		Mandate: settings.Mandate,
		Events:  timelineEntries(events, now),
	})
}

// TimelineCalendar handles GET /timeline.ics
func (h *SettingsHandler) TimelineCalendar(w http.ResponseWriter, r *http.Request) {
	now := h.svc.now(h.cfg)
	settings, err := loadSettings(r.Context(), h.db, now)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	name := settings.DocumentTitle + " " + settings.Mandate
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cronograma-cipa.ics"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, calendar.Export(name, settings.TimelineEvents, now))
}

// ScheduleStatus handles GET /schedule/status?keyword=
func (h *SettingsHandler) ScheduleStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keyword := q.Get("keyword")
	notStarted, ended := schedule.VotingNotStarted, schedule.VotingEnded

	switch {
	case keyword == "":
		keyword = schedule.KeywordVoting
	case strings.Contains(strings.ToLower(keyword), schedule.KeywordRegistration):
		notStarted, ended = schedule.RegistrationNotStarted, schedule.RegistrationEnded
	}
	if v := q.Get("not_started"); v != "" {
		notStarted = v
	}
	if v := q.Get("ended"); v != "" {
		ended = v
	}

	now := h.svc.now(h.cfg)
	settings, err := loadSettings(r.Context(), h.db, now)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK,
		schedule.Evaluate(settings.TimelineEvents, keyword, notStarted, ended, now))
}

// Me handles GET /auth/me
func (h *SettingsHandler) Me(w http.ResponseWriter, r *http.Request) {
	role, email := requestRole(r, h.db, h.cfg)
	middleware.JSONResponse(w, http.StatusOK, models.MeResponse{Role: role, Email: email})
}

// Reset handles POST /admin/reset.
// Clears the roster, registrations and votes and starts a new mandate.
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.svc.now(h.cfg)

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	for _, table := range []string{"vote", "registration", "employee"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			slog.Error("failed to clear table", "table", table, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset data")
			return
		}
	}

	settings, err := loadSettings(ctx, tx, now)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	settings.Mandate = resetMandate
	settings.TimelineEvents = schedule.DefaultEvents()

	if err := saveSettings(ctx, tx, settings, now); err != nil {
		slog.Error("failed to save settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset data")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit reset", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset data")
		return
	}

	admin, _ := middleware.AdminFromContext(ctx)
	slog.Warn("election data reset", "admin", admin)

	settings.CurrentUserRole = models.RoleAdmin
	middleware.JSONResponse(w, http.StatusOK, settings)
}

// EnsureSettings stores the default settings, overlaid with seed, when none exist yet
func EnsureSettings(ctx context.Context, db *sql.DB, seed *cliparse.Seed, now time.Time) error {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM app_settings WHERE id = 1`).Scan(&one)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check settings: %w", err)
	}

	settings := models.DefaultSettings(now)
	if seed != nil {
		if seed.CompanyName != "" {
			settings.CompanyName = seed.CompanyName
		}
		if seed.PortalTitle != "" {
			settings.PortalTitle = seed.PortalTitle
		}
		if seed.Mandate != "" {
			settings.Mandate = seed.Mandate
		}
		if seed.ElectedCount > 0 {
			settings.ReportConfig.ElectedCount = seed.ElectedCount
		}
		if len(seed.TimelineEvents) > 0 {
			if settings.TimelineEvents, err = normalizeEvents(seed.TimelineEvents); err != nil {
				return err
			}
		}
	}

	if err := saveSettings(ctx, db, settings, now); err != nil {
		return err
	}
	slog.Info("settings initialised", "company", settings.CompanyName, "mandate", settings.Mandate)
	return nil
}

// EnsureAdmins registers each email as administrator, ignoring existing ones
func EnsureAdmins(ctx context.Context, db *sql.DB, emails []string, now time.Time) error {
	for _, email := range emails {
		email = auth.NormalizeEmail(email)
		if email == "" {
			continue
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO app_admin (email, created_at) VALUES ($1, $2)
			ON CONFLICT (email) DO NOTHING
		`, email, now.UTC())
		if err != nil {
			return fmt.Errorf("add admin %s: %w", email, err)
		}
	}
	return nil
}
