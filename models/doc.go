// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateEmployeeRequest: matricula, nome, setor, cargo, email, status
  - UpdateEmployeeRequest: same fields as pointers (partial update)
  - CreateRegistrationRequest: employee_id, membership_type
  - IdentifyVoterRequest: matricula
  - CastVoteRequest: matricula, candidate_id
  - UpdateTimelineRequest: events
  - ChatRequest: message

# Response Types

  - EmployeeListResponse: paginated employees and distinct sectors
  - IdentifyVoterResponse: voter summary and booth_token
  - CastVoteResponse: vote_id, message
  - ScheduleClosedResponse: error, message, dates
  - TimelineResponse: events with their evaluated windows
  - ImportSummary / ImportPreview: spreadsheet import results
  - ErrorResponse: error, message

# Domain Types

  - Employee: roster entry identified by matricula
  - Registration: candidacy of an employee (one per employee)
  - Vote: one per voter matricula, candidate_id is the employee id
  - AppSettings: portal configuration stored as one JSON document
  - DashboardStats, ElectionResults: derived views

# Constants

Employee status:

	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"

Registration status:

	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
	RegistrationPending  = "pending"

Membership:

	MembershipPrimary   = "primary"   // titular
	MembershipAlternate = "alternate" // suplente
*/
package models
