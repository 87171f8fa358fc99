// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/portalcipa/cipa-server/auth"
	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/models"
	"github.com/portalcipa/cipa-server/schedule"
)

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// loadSettings returns the stored settings over the defaults.
// Stored top-level keys replace the default value whole, maps included.
func loadSettings(ctx context.Context, q queryer, now time.Time) (models.AppSettings, error) {
	defaults := models.DefaultSettings(now)

	var data string
	err := q.QueryRowContext(ctx, `SELECT data FROM app_settings WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return defaults, nil
	}
	if err != nil {
		return defaults, fmt.Errorf("query settings: %w", err)
	}

	var stored map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return defaults, fmt.Errorf("decode settings: %w", err)
	}
	delete(stored, "current_user_role")

	settings, err := mergeSettings(defaults, stored)
	if err != nil {
		return defaults, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

func saveSettings(ctx context.Context, q queryer, s models.AppSettings, now time.Time) error {
	s.CurrentUserRole = ""
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO app_settings (id, data, updated_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, string(data), now.UTC())
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

const employeeColumns = `id, matricula, nome, setor, cargo, email, status, is_restricted, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(s scanner) (models.Employee, error) {
	var e models.Employee
	err := s.Scan(&e.ID, &e.Matricula, &e.Nome, &e.Setor, &e.Cargo, &e.Email, &e.Status, &e.IsRestricted, &e.CreatedAt)
	return e, err
}

func getEmployee(ctx context.Context, q queryer, id string) (models.Employee, error) {
	row := q.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employee WHERE id = $1`, id)
	return scanEmployee(row)
}

// findEmployeeByMatricula matches case-insensitively on the trimmed value
func findEmployeeByMatricula(ctx context.Context, q queryer, matricula string) (models.Employee, error) {
	row := q.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employee WHERE LOWER(matricula) = $1`,
		strings.ToLower(strings.TrimSpace(matricula)))
	return scanEmployee(row)
}

// registrationViews lists registrations joined with their employee,
// filtered by an optional WHERE clause.
func registrationViews(ctx context.Context, q queryer, where string, args ...any) ([]models.RegistrationView, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT r.id, r.employee_id, r.status, r.membership_type, r.created_at,
		       e.id, e.matricula, e.nome, e.setor, e.cargo, e.email, e.status, e.is_restricted, e.created_at
		FROM registration r
		JOIN employee e ON e.id = r.employee_id
		`+where+`
		ORDER BY r.created_at DESC, e.nome
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	views := []models.RegistrationView{}
	for rows.Next() {
		var v models.RegistrationView
		e := &v.Employee
		if err := rows.Scan(&v.ID, &v.EmployeeID, &v.Status, &v.MembershipType, &v.CreatedAt,
			&e.ID, &e.Matricula, &e.Nome, &e.Setor, &e.Cargo, &e.Email, &e.Status, &e.IsRestricted, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		v.Protocol = auth.ProtocolCode(v.ID)
		views = append(views, v)
	}
	return views, rows.Err()
}

// approvedCandidates lists candidates holding an approved registration, sorted by name.
// Matrícula is left out: the list is public and the matrícula opens the booth.
func approvedCandidates(ctx context.Context, q queryer) ([]models.Candidate, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT e.id, r.id, e.nome, e.setor, e.cargo, r.membership_type
		FROM registration r
		JOIN employee e ON e.id = r.employee_id
		WHERE r.status = $1
		ORDER BY e.nome
	`, models.RegistrationApproved)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.EmployeeID, &c.RegistrationID, &c.Nome, &c.Setor, &c.Cargo, &c.MembershipType); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func countRows(ctx context.Context, q queryer, query string, args ...any) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func totalPages(total, perPage int) int {
	if total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// TimelineLoader returns a function reading the stored timeline events.
// Used by background jobs that evaluate the schedule outside a request.
func TimelineLoader(db *sql.DB, cfg cliparse.Config, svc Services) func(ctx context.Context) ([]schedule.Event, error) {
	svc = svc.WithDefaults()
	return func(ctx context.Context) ([]schedule.Event, error) {
		settings, err := loadSettings(ctx, db, svc.now(cfg))
		if err != nil {
			return nil, err
		}
		return settings.TimelineEvents, nil
	}
}
