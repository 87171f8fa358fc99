package models

import (
	"strings"
	"time"

	"github.com/portalcipa/cipa-server/schedule"
)

// Employee status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// Registration status constants
const (
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
	RegistrationPending  = "pending"
)

// Membership type constants
const (
	MembershipPrimary   = "primary"
	MembershipAlternate = "alternate"
)

// Role constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Request types

type CreateEmployeeRequest struct {
	Matricula    string `json:"matricula"`
	Nome         string `json:"nome"`
	Setor        string `json:"setor"`
	Cargo        string `json:"cargo"`
	Email        string `json:"email"`
	Status       string `json:"status"`
	IsRestricted bool   `json:"is_restricted"`
}

// nil fields are left untouched
type UpdateEmployeeRequest struct {
	Matricula    *string `json:"matricula"`
	Nome         *string `json:"nome"`
	Setor        *string `json:"setor"`
	Cargo        *string `json:"cargo"`
	Email        *string `json:"email"`
	Status       *string `json:"status"`
	IsRestricted *bool   `json:"is_restricted"`
}

type CreateRegistrationRequest struct {
	EmployeeID     string `json:"employee_id"`
	MembershipType string `json:"membership_type"`
}

type IdentifyVoterRequest struct {
	Matricula string `json:"matricula"`
}

type CastVoteRequest struct {
	Matricula   string `json:"matricula"`
	CandidateID string `json:"candidate_id"`
}

type UpdateTimelineRequest struct {
	Events []schedule.Event `json:"events"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

// Response types

type EmployeeListResponse struct {
	Employees  []Employee `json:"employees"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Sectors    []string   `json:"sectors"`
}

type IdentifyVoterResponse struct {
	Voter      VoterSummary `json:"voter"`
	BoothToken string       `json:"booth_token"`
}

type VoterSummary struct {
	Matricula string `json:"matricula"`
	Nome      string `json:"nome"`
	Setor     string `json:"setor"`
}

type CastVoteResponse struct {
	VoteID  string `json:"vote_id"`
	Message string `json:"message"`
}

type ScheduleClosedResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Dates   string `json:"dates"`
}

type TimelineEntry struct {
	schedule.Event
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
	IsOpen bool       `json:"is_open"`
}

type TimelineResponse struct {
	Mandate string          `json:"mandate"`
	Events  []TimelineEntry `json:"events"`
}

type MeResponse struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type VoterListResponse struct {
	Voters     []Employee `json:"voters"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}

// Domain types

type Employee struct {
	ID           string    `json:"id"`
	Matricula    string    `json:"matricula"`
	Nome         string    `json:"nome"`
	Setor        string    `json:"setor"`
	Cargo        string    `json:"cargo"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	IsRestricted bool      `json:"is_restricted"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeMatricula trims and upper-cases m so "a-10 " and "A-10" name the same employee
func NormalizeMatricula(m string) string {
	return strings.ToUpper(strings.TrimSpace(m))
}

// Eligible reports whether the employee may vote or run as a candidate
func (e Employee) Eligible() bool {
	return e.Status == StatusActive && !e.IsRestricted
}

type Registration struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employee_id"`
	Status         string    `json:"status"`
	MembershipType string    `json:"membership_type"`
	CreatedAt      time.Time `json:"created_at"`
}

type RegistrationView struct {
	Registration
	Protocol string   `json:"protocol"`
	Employee Employee `json:"employee"`
}

// Public hides the matrícula and email of the candidate.
// The matrícula is the booth credential.
func (v RegistrationView) Public() PublicRegistration {
	return PublicRegistration{
		Registration: v.Registration,
		Protocol:     v.Protocol,
		Employee: CandidateProfile{
			ID:    v.Employee.ID,
			Nome:  v.Employee.Nome,
			Setor: v.Employee.Setor,
			Cargo: v.Employee.Cargo,
		},
	}
}

type CandidateProfile struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Setor string `json:"setor"`
	Cargo string `json:"cargo"`
}

type PublicRegistration struct {
	Registration
	Protocol string           `json:"protocol"`
	Employee CandidateProfile `json:"employee"`
}

type Vote struct {
	ID             string    `json:"id"`
	CandidateID    string    `json:"candidate_id"`
	VoterMatricula string    `json:"voter_matricula"`
	CastAt         time.Time `json:"cast_at"`
	IPHash         *string   `json:"-"` // Never expose in JSON
	UserAgent      *string   `json:"-"` // Never expose in JSON
}

type Candidate struct {
	EmployeeID     string `json:"employee_id"`
	RegistrationID string `json:"registration_id"`
	Nome           string `json:"nome"`
	Matricula      string `json:"matricula,omitempty"` // results only
	Setor          string `json:"setor"`
	Cargo          string `json:"cargo"`
	MembershipType string `json:"membership_type"`
}

// Dashboard and results

type SectorCount struct {
	Setor string `json:"setor"`
	Count int    `json:"count"`
}

type DashboardStats struct {
	TotalEmployees        int             `json:"total_employees"`
	Aptos                 int             `json:"aptos"`
	Restritos             int             `json:"restritos"`
	TotalRegistrations    int             `json:"total_registrations"`
	TotalVotes            int             `json:"total_votes"`
	AptosPercentage       int             `json:"aptos_percentage"`
	RestritosPercentage   int             `json:"restritos_percentage"`
	VotesPercentage       int             `json:"votes_percentage"`
	VotesBySector         []SectorCount   `json:"votes_by_sector"`
	RegistrationsBySector []SectorCount   `json:"registrations_by_sector"`
	LastVoteAt            *time.Time      `json:"last_vote_at,omitempty"`
	LastVoteAgo           string          `json:"last_vote_ago,omitempty"`
	VotingStatus          schedule.Status `json:"voting_status"`
	RegistrationStatus    schedule.Status `json:"registration_status"`
}

type CandidateResult struct {
	Candidate
	Votes   int  `json:"votes"`
	Rank    int  `json:"rank"` // 1-indexed
	Elected bool `json:"elected"`
}

type ElectionResults struct {
	Mandate      string            `json:"mandate"`
	ElectedCount int               `json:"elected_count"`
	TotalVotes   int               `json:"total_votes"`
	Results      []CandidateResult `json:"results"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
