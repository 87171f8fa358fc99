// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/middleware"
	"github.com/portalcipa/cipa-server/models"
	"github.com/portalcipa/cipa-server/schedule"
	"github.com/portalcipa/cipa-server/spreadsheet"
)

const votersPerPage = 10

type DashboardHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	svc Services
}

func NewDashboardHandler(db *sql.DB, cfg cliparse.Config, svc Services) *DashboardHandler {
	return &DashboardHandler{db: db, cfg: cfg, svc: svc.WithDefaults()}
}

func percentage(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// GetStats handles GET /dashboard
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.svc.now(h.cfg)

	var stats models.DashboardStats
	counts := []struct {
		dst   *int
		query string
		args  []any
	}{
		{&stats.TotalEmployees, `SELECT COUNT(*) FROM employee`, nil},
		{&stats.Aptos, `SELECT COUNT(*) FROM employee WHERE status = $1 AND NOT is_restricted`, []any{models.StatusActive}},
		{&stats.Restritos, `SELECT COUNT(*) FROM employee WHERE is_restricted`, nil},
		{&stats.TotalRegistrations, `SELECT COUNT(*) FROM registration WHERE status = $1`, []any{models.RegistrationApproved}},
		{&stats.TotalVotes, `SELECT COUNT(*) FROM vote`, nil},
	}
	for _, c := range counts {
		n, err := countRows(ctx, h.db, c.query, c.args...)
		if err != nil {
			slog.Error("failed to compute dashboard counts", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		*c.dst = n
	}

	stats.AptosPercentage = percentage(stats.Aptos, stats.TotalEmployees)
	stats.RestritosPercentage = percentage(stats.Restritos, stats.TotalEmployees)
	stats.VotesPercentage = percentage(stats.TotalVotes, stats.Aptos)

	var err error
	stats.VotesBySector, err = sectorCounts(ctx, h.db, `
		SELECT e.setor, COUNT(*) FROM vote v
		JOIN employee e ON e.matricula = v.voter_matricula
		WHERE e.setor <> ''
		GROUP BY e.setor
		ORDER BY COUNT(*) DESC, e.setor
	`)
	if err != nil {
		slog.Error("failed to count votes by sector", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	stats.RegistrationsBySector, err = sectorCounts(ctx, h.db, `
		SELECT e.setor, COUNT(*) FROM registration r
		JOIN employee e ON e.id = r.employee_id
		WHERE r.status = $1 AND e.setor <> ''
		GROUP BY e.setor
		ORDER BY COUNT(*) DESC, e.setor
	`, models.RegistrationApproved)
	if err != nil {
		slog.Error("failed to count registrations by sector", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var last time.Time
	err = h.db.QueryRowContext(ctx, `SELECT cast_at FROM vote ORDER BY cast_at DESC LIMIT 1`).Scan(&last)
	switch {
	case err == nil:
		last = last.In(now.Location())
		stats.LastVoteAt = &last
		stats.LastVoteAgo = humanize.RelTime(last, now, "ago", "from now")
	case err != sql.ErrNoRows:
		slog.Error("failed to query last vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	settings, err := loadSettings(ctx, h.db, now)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	stats.VotingStatus = schedule.VotingStatus(settings.TimelineEvents, now)
	stats.RegistrationStatus = schedule.RegistrationStatus(settings.TimelineEvents, now)

	middleware.JSONResponse(w, http.StatusOK, stats)
}

func sectorCounts(ctx context.Context, q queryer, query string, args ...any) ([]models.SectorCount, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []models.SectorCount{}
	for rows.Next() {
		var c models.SectorCount
		if err := rows.Scan(&c.Setor, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// voters lists employees who have voted, sorted by name.
// search matches name, matrícula or sector.
func voters(ctx context.Context, q queryer, search string, limit, offset int) ([]models.Employee, int, error) {
	const filter = `
		FROM employee e
		WHERE e.matricula IN (SELECT voter_matricula FROM vote)
		  AND (LOWER(e.nome) LIKE $1 OR LOWER(e.matricula) LIKE $1 OR LOWER(e.setor) LIKE $1)`
	pattern := "%" + strings.ToLower(strings.TrimSpace(search)) + "%"

	total, err := countRows(ctx, q, `SELECT COUNT(*)`+filter, pattern)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT e.id, e.matricula, e.nome, e.setor, e.cargo, e.email, e.status, e.is_restricted, e.created_at` +
		filter + ` ORDER BY e.nome, e.matricula`
	args := []any{pattern}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query voters: %w", err)
	}
	defer rows.Close()

	list := []models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan voter: %w", err)
		}
		list = append(list, e)
	}
	return list, total, rows.Err()
}

// ListVoters handles GET /dashboard/voters?search=&page=
func (h *DashboardHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	list, total, err := voters(r.Context(), h.db, r.URL.Query().Get("search"), votersPerPage, (page-1)*votersPerPage)
	if err != nil {
		slog.Error("failed to list voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoterListResponse{
		Voters:     list,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, votersPerPage),
	})
}

// ExportVoters handles GET /dashboard/voters.xlsx
func (h *DashboardHandler) ExportVoters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.svc.now(h.cfg)

	list, _, err := voters(ctx, h.db, "", 0, 0)
	if err != nil {
		slog.Error("failed to list voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	settings, err := loadSettings(ctx, h.db, now)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows := make([][]interface{}, len(list))
	for i, v := range list {
		rows[i] = []interface{}{strings.ToUpper(v.Nome), v.Matricula, strings.ToUpper(v.Setor)}
	}

	filename := "Relatorio_Votantes_CIPA_" + strings.ReplaceAll(settings.Mandate, "/", "-") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	headers := []string{"NOME DO COLABORADOR", "MATRÍCULA", "SETOR / DEPARTAMENTO"}
	if err := spreadsheet.WriteTable(w, "Votantes", headers, rows, []float64{40, 15, 30}); err != nil {
		slog.Error("failed to write voters export", "error", err)
	}
}
