// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/portalcipa/cipa-server/middleware"
	"github.com/portalcipa/cipa-server/models"
	"github.com/portalcipa/cipa-server/testutil"
)

// TestFullElectionWorkflow tests the complete end-to-end workflow:
// 1. Admin adds employees
// 2. Two employees register as candidates
// 3. Voters identify at the booth
// 4. Voters cast votes
// 5. A second vote by the same matricula is refused
// 6. Verify dashboard and results
func TestFullElectionWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	svc := testServices()
	notifier := &recordingNotifier{}
	svc.Notifier = notifier
	withTimeline(t, db, openTimeline)
	admin := testutil.CreateTestAdmin(t, db, cfg, "rh@acme.com.br")

	employeeHandler := NewEmployeeHandler(db, cfg, svc)
	registrationHandler := NewRegistrationHandler(db, cfg, svc)
	votingHandler := NewVotingHandler(db, cfg, svc)
	dashboardHandler := NewDashboardHandler(db, cfg, svc)
	resultsHandler := NewResultsHandler(db, cfg, svc)

	// Step 1: Create employees
	people := []models.CreateEmployeeRequest{
		{Matricula: "1001", Nome: "Ana Souza", Setor: "Produção", Cargo: "Operadora", Email: "ana@acme.com.br"},
		{Matricula: "1002", Nome: "Bruno Lima", Setor: "Manutenção", Cargo: "Mecânico"},
		{Matricula: "1003", Nome: "Carla Dias", Setor: "Produção", Cargo: "Operadora"},
		{Matricula: "1004", Nome: "Davi Rocha", Setor: "Logística", Cargo: "Conferente"},
	}
	ids := make(map[string]string, len(people))
	for _, p := range people {
		w := httptest.NewRecorder()
		employeeHandler.CreateEmployee(w, testutil.MakeRequest("POST", "/employees", p, admin))
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 1 - Create employee %s failed: %d - %s", p.Matricula, w.Code, w.Body.String())
		}
		var e models.Employee
		testutil.AssertJSON(t, w, &e)
		ids[p.Matricula] = e.ID
	}
	t.Logf("Step 1 - Created %d employees", len(ids))

	// Step 2: Register candidates
	for _, matricula := range []string{"1001", "1002"} {
		w := httptest.NewRecorder()
		body := models.CreateRegistrationRequest{EmployeeID: ids[matricula]}
		registrationHandler.CreateRegistration(w, testutil.MakeRequest("POST", "/registrations", body, nil))
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 2 - Register %s failed: %d - %s", matricula, w.Code, w.Body.String())
		}
	}
	if len(notifier.sent) != 1 || notifier.sent[0].To != "ana@acme.com.br" {
		t.Errorf("Step 2 - Expected one confirmation to ana@acme.com.br, got %+v", notifier.sent)
	}

	w := httptest.NewRecorder()
	votingHandler.ListCandidates(w, httptest.NewRequest("GET", "/voting/candidates", nil))
	var candidates []models.Candidate
	testutil.AssertJSON(t, w, &candidates)
	if len(candidates) != 2 {
		t.Fatalf("Step 2 - Expected 2 candidates, got %d", len(candidates))
	}

	// Steps 3 and 4: identify and vote
	ballots := map[string]string{
		"1001": ids["1002"],
		"1002": ids["1002"],
		"1003": ids["1001"],
	}
	tokens := make(map[string]string, len(ballots))
	for voter, candidate := range ballots {
		w := httptest.NewRecorder()
		votingHandler.Identify(w, testutil.MakeRequest("POST", "/voting/identify", models.IdentifyVoterRequest{Matricula: voter}, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Step 3 - Identify %s failed: %d - %s", voter, w.Code, w.Body.String())
		}
		var identified models.IdentifyVoterResponse
		testutil.AssertJSON(t, w, &identified)
		tokens[voter] = identified.BoothToken

		w = httptest.NewRecorder()
		body := models.CastVoteRequest{Matricula: voter, CandidateID: candidate}
		headers := map[string]string{middleware.HeaderBoothToken: identified.BoothToken}
		votingHandler.CastVote(w, testutil.MakeRequest("POST", "/voting/votes", body, headers))
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 4 - Vote by %s failed: %d - %s", voter, w.Code, w.Body.String())
		}
	}

	// Step 5: second vote is refused
	w = httptest.NewRecorder()
	body := models.CastVoteRequest{Matricula: "1003", CandidateID: ids["1002"]}
	headers := map[string]string{middleware.HeaderBoothToken: tokens["1003"]}
	votingHandler.CastVote(w, testutil.MakeRequest("POST", "/voting/votes", body, headers))
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Step 6: dashboard and results
	w = httptest.NewRecorder()
	dashboardHandler.GetStats(w, testutil.MakeRequest("GET", "/dashboard", nil, admin))
	var stats models.DashboardStats
	testutil.AssertJSON(t, w, &stats)
	if stats.TotalEmployees != 4 || stats.TotalRegistrations != 2 || stats.TotalVotes != 3 {
		t.Errorf("Step 6 - Unexpected stats: %+v", stats)
	}
	if stats.VotesPercentage != 75 {
		t.Errorf("Step 6 - Expected 75%% turnout, got %d", stats.VotesPercentage)
	}

	w = httptest.NewRecorder()
	resultsHandler.GetResults(w, testutil.MakeRequest("GET", "/results", nil, admin))
	var results models.ElectionResults
	testutil.AssertJSON(t, w, &results)
	if results.TotalVotes != 3 || len(results.Results) != 2 {
		t.Fatalf("Step 6 - Unexpected results: %+v", results)
	}
	first := results.Results[0]
	if first.Nome != "Bruno Lima" || first.Votes != 2 || first.Rank != 1 || !first.Elected {
		t.Errorf("Step 6 - Expected Bruno Lima first with 2 votes, got %+v", first)
	}
	if results.Results[1].Votes != 1 {
		t.Errorf("Step 6 - Expected runner-up with 1 vote, got %+v", results.Results[1])
	}

	got := scrape(t, svc)
	if !strings.Contains(got, "cipa_registrations_total 2") || !strings.Contains(got, "cipa_votes_total 3") {
		t.Errorf("Step 6 - Counters not updated:\n%s", got)
	}
}
