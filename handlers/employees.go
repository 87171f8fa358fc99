// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/portalcipa/cipa-server/assistant"
	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/db"
	"github.com/portalcipa/cipa-server/middleware"
	"github.com/portalcipa/cipa-server/models"
	"github.com/portalcipa/cipa-server/spreadsheet"
)

const (
	employeesPerPage = 15
	importBatchSize  = 50
	maxUploadBytes   = 32 << 20
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EmployeeHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	svc Services
}

func NewEmployeeHandler(db *sql.DB, cfg cliparse.Config, svc Services) *EmployeeHandler {
	return &EmployeeHandler{db: db, cfg: cfg, svc: svc.WithDefaults()}
}

func validStatus(s string) bool {
	switch s {
	case models.StatusActive, models.StatusInactive, models.StatusPending:
		return true
	}
	return false
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ListEmployees handles GET /employees?search=&setor=&page=
func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	search := "%" + strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search"))) + "%"
	setor := r.URL.Query().Get("setor")
	page := pageParam(r)

	const filter = `
		WHERE (LOWER(nome) LIKE $1 OR LOWER(matricula) LIKE $1 OR LOWER(cargo) LIKE $1)
		  AND ($2 = '' OR setor = $2)`

	total, err := countRows(ctx, h.db, `SELECT COUNT(*) FROM employee`+filter, search, setor)
	if err != nil {
		slog.Error("failed to count employees", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employee`+filter+`
		ORDER BY nome, matricula
		LIMIT $3 OFFSET $4
	`, search, setor, employeesPerPage, (page-1)*employeesPerPage)
	if err != nil {
		slog.Error("failed to query employees", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	employees := []models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			rows.Close()
			slog.Error("failed to scan employee", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		employees = append(employees, e)
	}
	rows.Close()

	sectors, err := h.sectors(ctx)
	if err != nil {
		slog.Error("failed to query sectors", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.EmployeeListResponse{
		Employees:  employees,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, employeesPerPage),
		Sectors:    sectors,
	})
}

func (h *EmployeeHandler) sectors(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT setor FROM employee WHERE setor <> '' ORDER BY setor`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sectors := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}

// CreateEmployee handles POST /employees
func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEmployeeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	e := models.Employee{
		ID:           uuid.NewString(),
		Matricula:    models.NormalizeMatricula(req.Matricula),
		Nome:         strings.TrimSpace(req.Nome),
		Setor:        strings.TrimSpace(req.Setor),
		Cargo:        strings.TrimSpace(req.Cargo),
		Email:        strings.TrimSpace(req.Email),
		Status:       req.Status,
		IsRestricted: req.IsRestricted,
		CreatedAt:    h.svc.Clock().UTC(),
	}
	if e.Status == "" {
		e.Status = models.StatusActive
	}

	if e.Nome == "" || e.Matricula == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nome and matricula are required")
		return
	}
	if !validStatus(e.Status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid status")
		return
	}

	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO employee (`+employeeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.Matricula, e.Nome, e.Setor, e.Cargo, e.Email, e.Status, e.IsRestricted, e.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Matrícula já cadastrada.")
			return
		}
		slog.Error("failed to insert employee", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	slog.Info("employee created", "employee_id", e.ID, "matricula", e.Matricula)
	middleware.JSONResponse(w, http.StatusCreated, e)
}

// UpdateEmployee handles PATCH /employees/{id}
func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	var req models.UpdateEmployeeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	e, err := getEmployee(r.Context(), h.db, id)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Employee not found")
		return
	}
	if err != nil {
		slog.Error("failed to query employee", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&e.Matricula, req.Matricula)
	set(&e.Nome, req.Nome)
	set(&e.Setor, req.Setor)
	set(&e.Cargo, req.Cargo)
	set(&e.Email, req.Email)
	set(&e.Status, req.Status)
	e.Matricula = models.NormalizeMatricula(e.Matricula)
	if req.IsRestricted != nil {
		e.IsRestricted = *req.IsRestricted
	}

	if e.Nome == "" || e.Matricula == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nome and matricula are required")
		return
	}
	if !validStatus(e.Status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid status")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		UPDATE employee
		SET matricula = $1, nome = $2, setor = $3, cargo = $4, email = $5, status = $6, is_restricted = $7
		WHERE id = $8
	`, e.Matricula, e.Nome, e.Setor, e.Cargo, e.Email, e.Status, e.IsRestricted, e.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Matrícula já cadastrada.")
			return
		}
		slog.Error("failed to update employee", "error", err, "employee_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update employee")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, e)
}

// DeleteEmployee handles DELETE /employees/{id}.
// Registrations and votes received as a candidate cascade.
func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	res, err := h.db.ExecContext(r.Context(), `DELETE FROM employee WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to delete employee", "error", err, "employee_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete employee")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Employee not found")
		return
	}

	slog.Info("employee deleted", "employee_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// readUpload parses the multipart "file" field as a spreadsheet
func readUpload(w http.ResponseWriter, r *http.Request) (*spreadsheet.Sheet, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "file is required")
		return nil, false
	}
	defer file.Close()

	sheet, err := spreadsheet.Read(file)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Arquivo inválido: "+err.Error())
		return nil, false
	}
	return sheet, true
}

// PreviewImport handles POST /employees/import/preview
func (h *EmployeeHandler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	sheet, ok := readUpload(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, spreadsheet.Preview(sheet))
}

// Import handles POST /employees/import.
// Valid rows are upserted by matrícula. Rows whose normalised cargo is listed
// in restricted_cargo are imported as restricted.
func (h *EmployeeHandler) Import(w http.ResponseWriter, r *http.Request) {
	sheet, ok := readUpload(w, r)
	if !ok {
		return
	}

	restricted := make(map[string]bool)
	for _, c := range r.MultipartForm.Value["restricted_cargo"] {
		restricted[spreadsheet.NormalizeCargoKey(c)] = true
	}

	records := spreadsheet.Extract(sheet, spreadsheet.MapHeaders(sheet.Headers))
	summary := models.ImportSummary{Total: len(records), FailedRecords: []models.FailedRecord{}}

	var valid []spreadsheet.Record
	for _, rec := range records {
		if rec.Valid() {
			valid = append(valid, rec)
		} else {
			summary.FailedRecords = append(summary.FailedRecords, rec.Failed())
		}
	}

	now := h.svc.Clock().UTC()
	var imported []spreadsheet.Record
	for start := 0; start < len(valid); start += importBatchSize {
		batch := valid[start:min(start+importBatchSize, len(valid))]
		if err := h.upsertBatch(r.Context(), batch, restricted, now); err != nil {
			slog.Error("failed to import batch", "error", err, "first_row", batch[0].Row)
			for _, rec := range batch {
				rec.Errors = append(rec.Errors, "Falha ao gravar no banco de dados")
				summary.FailedRecords = append(summary.FailedRecords, rec.Failed())
			}
			continue
		}
		imported = append(imported, batch...)
	}

	summary.Success = len(imported)
	summary.Failed = len(summary.FailedRecords)

	if len(imported) > 0 {
		summary.Analysis = h.analyse(r.Context(), imported)
	}

	slog.Info("employees imported", "total", summary.Total, "success", summary.Success, "failed", summary.Failed)
	middleware.JSONResponse(w, http.StatusOK, summary)
}

// upsertBatch writes one batch in a transaction. Existing matrículas keep their id,
// compared after NormalizeMatricula.
func (h *EmployeeHandler) upsertBatch(ctx context.Context, batch []spreadsheet.Record, restricted map[string]bool, now time.Time) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, rec := range batch {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO employee (`+employeeColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (matricula) DO UPDATE SET
				nome = excluded.nome,
				setor = excluded.setor,
				cargo = excluded.cargo,
				email = excluded.email,
				status = excluded.status,
				is_restricted = excluded.is_restricted
		`, rec.EmployeeID(), models.NormalizeMatricula(rec.Matricula), rec.Nome, rec.Setor, rec.Cargo, rec.Email,
			models.StatusActive, restricted[spreadsheet.NormalizeCargoKey(rec.Cargo)], now)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (h *EmployeeHandler) analyse(ctx context.Context, imported []spreadsheet.Record) string {
	settings, err := loadSettings(ctx, h.db, h.svc.now(h.cfg))
	if err != nil {
		slog.Warn("failed to load settings for import analysis", "error", err)
		return assistant.FallbackImport
	}

	sectors := make([]string, len(imported))
	roles := make([]string, len(imported))
	for i, rec := range imported {
		sectors[i], roles[i] = rec.Setor, rec.Cargo
	}

	prompt := assistant.ImportAnalysisPrompt(settings.CompanyName, len(imported), sectors, roles)
	return assistant.Ask(ctx, h.svc.Assistant, prompt, assistant.FallbackImport, assistant.DefaultImport)
}

// ImportTemplate handles GET /employees/import/template
func (h *EmployeeHandler) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="modelo_importacao_cipa.xlsx"`)
	if err := spreadsheet.WriteTemplate(w); err != nil {
		slog.Error("failed to write import template", "error", err)
	}
}
