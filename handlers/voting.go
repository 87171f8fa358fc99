// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
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
	"github.com/portalcipa/cipa-server/schedule"
)

// Booth messages shown to voters
const (
	MsgVoterNotFound = "Matrícula não encontrada em nossa base."
	MsgRestricted    = "Matrícula com restrição ativa (NR-5)."
	MsgInactive      = "Colaborador inativo."
	MsgAlreadyVoted  = "Seu voto já foi computado."
	MsgVoteRecorded  = "Voto registrado com sucesso."
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	svc Services
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, svc Services) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg, svc: svc.WithDefaults()}
}

func (h *VotingHandler) status(r *http.Request) (schedule.Status, error) {
	now := h.svc.now(h.cfg)
	settings, err := loadSettings(r.Context(), h.db, now)
	if err != nil {
		return schedule.Status{}, err
	}
	return schedule.VotingStatus(settings.TimelineEvents, now), nil
}

// GetStatus handles GET /voting/status
func (h *VotingHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.status(r)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, status)
}

// ListCandidates handles GET /voting/candidates
func (h *VotingHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := approvedCandidates(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to list candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// checkVoter applies the booth rules in order and writes the rejection.
// Returns the employee only when the voter may vote now.
func (h *VotingHandler) checkVoter(w http.ResponseWriter, r *http.Request, matricula string) (models.Employee, bool) {
	status, err := h.status(r)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Employee{}, false
	}
	if !status.Open {
		closedResponse(w, status)
		return models.Employee{}, false
	}

	voter, err := findEmployeeByMatricula(r.Context(), h.db, matricula)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, MsgVoterNotFound)
		return voter, false
	}
	if err != nil {
		slog.Error("failed to query voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return voter, false
	}

	if voter.IsRestricted {
		middleware.ErrorResponse(w, http.StatusForbidden, MsgRestricted)
		return voter, false
	}
	if voter.Status != models.StatusActive {
		middleware.ErrorResponse(w, http.StatusForbidden, MsgInactive)
		return voter, false
	}

	var voted bool
	err = h.db.QueryRowContext(r.Context(), `
		SELECT EXISTS(SELECT 1 FROM vote WHERE LOWER(voter_matricula) = $1)
	`, strings.ToLower(voter.Matricula)).Scan(&voted)
	if err != nil {
		slog.Error("failed to check existing vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return voter, false
	}
	if voted {
		middleware.ErrorResponse(w, http.StatusConflict, MsgAlreadyVoted)
		return voter, false
	}

	return voter, true
}

// Identify handles POST /voting/identify
func (h *VotingHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var req models.IdentifyVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Matricula) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "matricula is required")
		return
	}

	voter, ok := h.checkVoter(w, r, req.Matricula)
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.IdentifyVoterResponse{
		Voter: models.VoterSummary{
			Matricula: voter.Matricula,
			Nome:      voter.Nome,
			Setor:     voter.Setor,
		},
		BoothToken: auth.GenerateBoothToken(voter.Matricula, h.cfg.BoothTokenSalt),
	})
}

// CastVote handles POST /voting/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(middleware.HeaderBoothToken)
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Booth-Token header required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Matricula) == "" || req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "matricula and candidate_id are required")
		return
	}

	if err := auth.ValidateBoothToken(req.Matricula, token, h.cfg.BoothTokenSalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid booth token")
		return
	}

	voter, ok := h.checkVoter(w, r, req.Matricula)
	if !ok {
		return
	}

	var approved bool
	err := h.db.QueryRowContext(r.Context(), `
		SELECT EXISTS(SELECT 1 FROM registration WHERE employee_id = $1 AND status = $2)
	`, req.CandidateID, models.RegistrationApproved).Scan(&approved)
	if err != nil {
		slog.Error("failed to check candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !approved {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Candidato inválido.")
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.BoothTokenSalt)
	userAgent := r.UserAgent()
	vote := models.Vote{
		ID:             uuid.NewString(),
		CandidateID:    req.CandidateID,
		VoterMatricula: voter.Matricula,
		CastAt:         h.svc.Clock().UTC(),
		IPHash:         &ipHash,
		UserAgent:      &userAgent,
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO vote (id, candidate_id, voter_matricula, cast_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, vote.ID, vote.CandidateID, vote.VoterMatricula, vote.CastAt, vote.IPHash, vote.UserAgent)
	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, MsgAlreadyVoted)
			return
		}
		slog.Error("failed to insert vote", "error", err, "matricula", voter.Matricula)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Erro ao computar voto.")
		return
	}

	h.svc.Metrics.VoteCast()
	slog.Info("vote cast", "vote_id", vote.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:  vote.ID,
		Message: MsgVoteRecorded,
	})
}
