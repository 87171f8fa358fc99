// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/portalcipa/cipa-server/auth"
	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/db"
	"github.com/portalcipa/cipa-server/middleware"
	"github.com/portalcipa/cipa-server/models"
	"github.com/portalcipa/cipa-server/notify"
	"github.com/portalcipa/cipa-server/schedule"
)

// ErrScheduleClosed is the error code of a 403 caused by a closed window
const ErrScheduleClosed = "schedule_closed"

type RegistrationHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	svc Services
}

func NewRegistrationHandler(db *sql.DB, cfg cliparse.Config, svc Services) *RegistrationHandler {
	return &RegistrationHandler{db: db, cfg: cfg, svc: svc.WithDefaults()}
}

func closedResponse(w http.ResponseWriter, status schedule.Status) {
	middleware.JSONResponse(w, http.StatusForbidden, models.ScheduleClosedResponse{
		Error:   ErrScheduleClosed,
		Message: status.Message,
		Dates:   status.Dates,
	})
}

// ListRegistrations handles GET /registrations.
// Only administrators see matrícula and email.
func (h *RegistrationHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	views, err := registrationViews(r.Context(), h.db, "")
	if err != nil {
		slog.Error("failed to list registrations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if role, _ := requestRole(r, h.db, h.cfg); role == models.RoleAdmin {
		middleware.JSONResponse(w, http.StatusOK, views)
		return
	}
	public := make([]models.PublicRegistration, len(views))
	for i, v := range views {
		public[i] = v.Public()
	}
	middleware.JSONResponse(w, http.StatusOK, public)
}

// GetRegistration handles GET /registrations/{id}
func (h *RegistrationHandler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	view, err := h.view(r.Context(), r.PathValue("id"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Registration not found")
		return
	}
	if err != nil {
		slog.Error("failed to query registration", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if role, _ := requestRole(r, h.db, h.cfg); role == models.RoleAdmin {
		middleware.JSONResponse(w, http.StatusOK, view)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view.Public())
}

func (h *RegistrationHandler) view(ctx context.Context, id string) (models.RegistrationView, error) {
	views, err := registrationViews(ctx, h.db, "WHERE r.id = $1", id)
	if err != nil {
		return models.RegistrationView{}, err
	}
	if len(views) == 0 {
		return models.RegistrationView{}, sql.ErrNoRows
	}
	return views[0], nil
}

// CreateRegistration handles POST /registrations.
// Only accepted while the registration window is open.
func (h *RegistrationHandler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CreateRegistrationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.EmployeeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "employee_id is required")
		return
	}
	if req.MembershipType == "" {
		req.MembershipType = models.MembershipPrimary
	}
	if req.MembershipType != models.MembershipPrimary && req.MembershipType != models.MembershipAlternate {
		middleware.ErrorResponse(w, http.StatusBadRequest, "membership_type must be primary or alternate")
		return
	}

	now := h.svc.now(h.cfg)
	settings, err := loadSettings(ctx, h.db, now)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status := schedule.RegistrationStatus(settings.TimelineEvents, now); !status.Open {
		closedResponse(w, status)
		return
	}

	employee, err := getEmployee(ctx, h.db, req.EmployeeID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Colaborador não encontrado.")
		return
	}
	if err != nil {
		slog.Error("failed to query employee", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !employee.Eligible() {
		middleware.ErrorResponse(w, http.StatusForbidden, "Colaborador inapto para candidatura (inativo ou com restrição NR-5).")
		return
	}

	reg := models.Registration{
		ID:             uuid.NewString(),
		EmployeeID:     employee.ID,
		Status:         models.RegistrationApproved,
		MembershipType: req.MembershipType,
		CreatedAt:      now.UTC(),
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO registration (id, employee_id, status, membership_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, reg.ID, reg.EmployeeID, reg.Status, reg.MembershipType, reg.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Colaborador já inscrito.")
			return
		}
		slog.Error("failed to insert registration", "error", err, "employee_id", employee.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Erro ao registrar candidatura.")
		return
	}

	h.svc.Metrics.RegistrationCreated()
	view := models.RegistrationView{Registration: reg, Protocol: auth.ProtocolCode(reg.ID), Employee: employee}
	slog.Info("registration created", "registration_id", reg.ID, "employee_id", employee.ID, "protocol", view.Protocol)

	if email := strings.TrimSpace(employee.Email); email != "" {
		msg := notify.RegistrationConfirmation(email, employee.Nome, view.Protocol, reg.MembershipType, settings.Mandate)
		if err := h.svc.Notifier.Send(ctx, msg); err != nil {
			slog.Warn("failed to send registration confirmation", "error", err, "registration_id", reg.ID)
		}
	}

	middleware.JSONResponse(w, http.StatusCreated, view)
}

// DeleteRegistration handles DELETE /registrations/{id}.
// Votes cast for the candidate are removed with the registration.
func (h *RegistrationHandler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var employeeID string
	err = tx.QueryRowContext(ctx, `SELECT employee_id FROM registration WHERE id = $1`, id).Scan(&employeeID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Registration not found")
		return
	}
	if err != nil {
		slog.Error("failed to query registration", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM vote WHERE candidate_id = $1`, employeeID)
	if err != nil {
		slog.Error("failed to delete candidate votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete registration")
		return
	}
	votes, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, `DELETE FROM registration WHERE id = $1`, id); err != nil {
		slog.Error("failed to delete registration", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete registration")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit registration delete", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete registration")
		return
	}

	slog.Info("registration deleted", "registration_id", id, "employee_id", employeeID, "votes_removed", votes)
	w.WriteHeader(http.StatusNoContent)
}
