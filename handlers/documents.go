// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/portalcipa/cipa-server/assistant"
	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/middleware"
	"github.com/portalcipa/cipa-server/models"
	"github.com/portalcipa/cipa-server/render"
	"github.com/portalcipa/cipa-server/schedule"
)

// Document kinds served by GET /documents/{kind}
const (
	KindBallot               = "ballot"
	KindTimeline             = "timeline"
	KindElection             = "election"
	KindMinutes              = "minutes"
	KindMinutesExtraordinary = "minutes-extraordinary"
	kindRegistrationPrefix   = "registration-"
)

const (
	defaultAttendanceRows = 6
	blankVotingDate       = "___/___/___"
)

var errUnknownKind = errors.New("unknown document kind")

type DocumentHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	svc Services
}

func NewDocumentHandler(db *sql.DB, cfg cliparse.Config, svc Services) *DocumentHandler {
	return &DocumentHandler{db: db, cfg: cfg, svc: svc.WithDefaults()}
}

// adminOnly reports whether a document kind exposes results or internal records
func adminOnly(kind string) bool {
	switch kind {
	case KindElection, KindMinutes, KindMinutesExtraordinary:
		return true
	}
	return false
}

// GetDocument handles GET /documents/{kind}?format=html|pdf
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	if format != "html" && format != "pdf" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "format must be html or pdf")
		return
	}

	if adminOnly(kind) {
		if _, err := middleware.AdminEmail(r, h.db, h.cfg.AdminKeySalt); err != nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin credentials")
			return
		}
	}

	if format == "pdf" && h.svc.PDF == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "PDF rendering is not enabled")
		return
	}

	name, data, err := h.build(r, kind)
	if errors.Is(err, errUnknownKind) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown document")
		return
	}
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Registration not found")
		return
	}
	if err != nil {
		slog.Error("failed to build document", "error", err, "kind", kind)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	html, err := h.svc.Templates.Render(name, data)
	if err != nil {
		slog.Error("failed to render document", "error", err, "kind", kind)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render document")
		return
	}

	if format == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(html)
		return
	}

	pdf, err := h.svc.PDF.PDF(r.Context(), html)
	if err != nil {
		slog.Error("failed to print document", "error", err, "kind", kind)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// build loads the data for kind and returns the template name to render
func (h *DocumentHandler) build(r *http.Request, kind string) (string, any, error) {
	ctx := r.Context()
	now := h.svc.now(h.cfg)

	settings, err := loadSettings(ctx, h.db, now)
	if err != nil {
		return "", nil, err
	}
	page := render.Page{Settings: settings}

	switch kind {
	case KindBallot:
		candidates, err := approvedCandidates(ctx, h.db)
		if err != nil {
			return "", nil, err
		}
		page.Title = "Cédula Oficial de Votação"
		return render.Ballot, render.BallotPage{
			Page:       page,
			Candidates: candidates,
			VotingDate: votingDate(settings.TimelineEvents),
			Ballots:    render.BallotCount(settings.BallotsPerPage),
		}, nil

	case KindTimeline:
		page.Title = "Cronograma Eleitoral"
		return render.Timeline, render.TimelinePage{
			Page:   page,
			Events: timelineEntries(settings.TimelineEvents, now),
		}, nil

	case KindElection:
		results, err := electionResults(ctx, h.db, settings)
		if err != nil {
			return "", nil, err
		}
		intro := assistant.FallbackReportIntro
		if r.URL.Query().Get("ai_intro") == "true" {
			prompt := assistant.ReportIntroPrompt(settings.CompanyName, len(results.Results), results.TotalVotes)
			intro = assistant.Ask(ctx, h.svc.Assistant, prompt, assistant.FallbackReportIntro, assistant.FallbackReportIntro)
		}
		page.Title = "Ata de Eleição"
		return render.Election, render.ElectionPage{Page: page, Intro: intro, Results: results}, nil

	case KindMinutes, KindMinutesExtraordinary:
		rows := settings.ReportConfig.MeetingData.AttendanceRows
		if rows <= 0 {
			rows = defaultAttendanceRows
		}
		page.Title = "Ata de Reunião"
		return render.Minutes, render.MinutesPage{
			Page:           page,
			Extraordinary:  kind == KindMinutesExtraordinary,
			AttendanceRows: rows,
		}, nil
	}

	if id, ok := strings.CutPrefix(kind, kindRegistrationPrefix); ok && id != "" {
		views, err := registrationViews(ctx, h.db, "WHERE r.id = $1", id)
		if err != nil {
			return "", nil, err
		}
		if len(views) == 0 {
			return "", nil, sql.ErrNoRows
		}
		view := views[0]
		if role, _ := requestRole(r, h.db, h.cfg); role != models.RoleAdmin {
			view.Employee.Matricula, view.Employee.Email = "", ""
		}
		page.Title = "Ficha de Inscrição"
		return render.Registration, render.RegistrationPage{Page: page, Registration: view}, nil
	}

	return "", nil, errUnknownKind
}

// votingDate is the schedule text of the voting event, or a blank to fill by hand
func votingDate(events []schedule.Event) string {
	for _, ev := range events {
		if strings.Contains(strings.ToLower(ev.Activity), schedule.KeywordVoting) && ev.DateTime != "" {
			return ev.DateTime
		}
	}
	return blankVotingDate
}

