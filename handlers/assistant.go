// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/portalcipa/cipa-server/assistant"
	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/middleware"
	"github.com/portalcipa/cipa-server/models"
)

const maxChatMessage = 4000

type AssistantHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	svc Services
}

func NewAssistantHandler(db *sql.DB, cfg cliparse.Config, svc Services) *AssistantHandler {
	return &AssistantHandler{db: db, cfg: cfg, svc: svc.WithDefaults()}
}

// Chat handles POST /assistant/chat
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(req.Message) > maxChatMessage {
		middleware.ErrorResponse(w, http.StatusBadRequest, "message is too long")
		return
	}

	ctx := r.Context()
	settings, err := loadSettings(ctx, h.db, h.svc.now(h.cfg))
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	snapshot := assistant.ElectionContext{CompanyName: settings.CompanyName, Mandate: settings.Mandate}
	for _, c := range []struct {
		dst   *int
		query string
	}{
		{&snapshot.Employees, `SELECT COUNT(*) FROM employee`},
		{&snapshot.Registrations, `SELECT COUNT(*) FROM registration`},
		{&snapshot.Votes, `SELECT COUNT(*) FROM vote`},
	} {
		if *c.dst, err = countRows(ctx, h.db, c.query); err != nil {
			slog.Error("failed to count election data", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	reply := assistant.Ask(ctx, h.svc.Assistant, assistant.ChatPrompt(snapshot, req.Message),
		assistant.FallbackChat, assistant.FallbackEmptyReply)
	middleware.JSONResponse(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

// ReportIntro handles POST /assistant/report-intro
func (h *AssistantHandler) ReportIntro(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := loadSettings(ctx, h.db, h.svc.now(h.cfg))
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	results, err := electionResults(ctx, h.db, settings)
	if err != nil {
		slog.Error("failed to compute results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	prompt := assistant.ReportIntroPrompt(settings.CompanyName, len(results.Results), results.TotalVotes)
	reply := assistant.Ask(ctx, h.svc.Assistant, prompt, assistant.FallbackReportIntro, assistant.FallbackReportIntro)
	middleware.JSONResponse(w, http.StatusOK, models.ChatResponse{Reply: reply})
}
