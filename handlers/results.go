// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/middleware"
	"github.com/portalcipa/cipa-server/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	svc Services
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, svc Services) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg, svc: svc.WithDefaults()}
}

// electionResults ranks approved candidates by votes, ties broken by name.
// The first electedCount are elected.
func electionResults(ctx context.Context, q queryer, settings models.AppSettings) (models.ElectionResults, error) {
	res := models.ElectionResults{
		Mandate:      settings.Mandate,
		ElectedCount: settings.ReportConfig.ElectedCount,
		Results:      []models.CandidateResult{},
	}

	rows, err := q.QueryContext(ctx, `
		SELECT e.id, r.id, e.nome, e.matricula, e.setor, e.cargo, r.membership_type, COUNT(v.id)
		FROM registration r
		JOIN employee e ON e.id = r.employee_id
		LEFT JOIN vote v ON v.candidate_id = e.id
		WHERE r.status = $1
		GROUP BY e.id, r.id, e.nome, e.matricula, e.setor, e.cargo, r.membership_type
		ORDER BY COUNT(v.id) DESC, e.nome
	`, models.RegistrationApproved)
	if err != nil {
		return res, fmt.Errorf("query results: %w", err)
	}

	for rows.Next() {
		var c models.CandidateResult
		if err := rows.Scan(&c.EmployeeID, &c.RegistrationID, &c.Nome, &c.Matricula, &c.Setor, &c.Cargo,
			&c.MembershipType, &c.Votes); err != nil {
			rows.Close()
			return res, fmt.Errorf("scan result: %w", err)
		}
		c.Rank = len(res.Results) + 1
		c.Elected = c.Rank <= res.ElectedCount
		res.Results = append(res.Results, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return res, err
	}
	rows.Close()

	res.TotalVotes, err = countRows(ctx, q, `SELECT COUNT(*) FROM vote`)
	return res, err
}

// GetResults handles GET /results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	settings, err := loadSettings(r.Context(), h.db, h.svc.now(h.cfg))
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	results, err := electionResults(r.Context(), h.db, settings)
	if err != nil {
		slog.Error("failed to compute results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}
