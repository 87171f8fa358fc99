package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/portalcipa/cipa-server/assistant"
	"github.com/portalcipa/cipa-server/models"
	"github.com/portalcipa/cipa-server/testutil"
)

func TestCreateEmployee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEmployeeHandler(db, testutil.GetTestConfig(), testServices())

	tests := []struct {
		name           string
		body           models.CreateEmployeeRequest
		expectedStatus int
	}{
		{"valid employee", models.CreateEmployeeRequest{Matricula: "1001", Nome: "Ana Souza", Setor: "RH", Cargo: "Analista"}, http.StatusCreated},
		{"duplicate matricula", models.CreateEmployeeRequest{Matricula: "1001", Nome: "Outra Pessoa"}, http.StatusConflict},
		{"missing nome", models.CreateEmployeeRequest{Matricula: "1002"}, http.StatusBadRequest},
		{"missing matricula", models.CreateEmployeeRequest{Nome: "Sem Matrícula"}, http.StatusBadRequest},
		{"invalid status", models.CreateEmployeeRequest{Matricula: "1003", Nome: "X", Status: "fired"}, http.StatusBadRequest},
		{"lower-case matricula", models.CreateEmployeeRequest{Matricula: " ab-20 ", Nome: "Beto"}, http.StatusCreated},
		{"same matricula in other case", models.CreateEmployeeRequest{Matricula: "AB-20", Nome: "Outro Beto"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.CreateEmployee(w, testutil.MakeRequest("POST", "/employees", tt.body, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var e models.Employee
				testutil.AssertJSON(t, w, &e)
				if e.ID == "" || e.Status != models.StatusActive {
					t.Errorf("Unexpected employee: %+v", e)
				}
				if e.Matricula != models.NormalizeMatricula(tt.body.Matricula) {
					t.Errorf("Expected normalized matricula, got %q", e.Matricula)
				}
			}
		})
	}
}

func TestListEmployees(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEmployeeHandler(db, testutil.GetTestConfig(), testServices())

	for i := 1; i <= 20; i++ {
		setor := "Produção"
		if i%4 == 0 {
			setor = "Logística"
		}
		testutil.CreateTestEmployee(t, db, models.Employee{
			Matricula: fmt.Sprintf("%04d", i),
			Nome:      fmt.Sprintf("Colaborador %02d", i),
			Setor:     setor,
			Cargo:     "Operador",
		})
	}
	testutil.CreateTestEmployee(t, db, models.Employee{Matricula: "9999", Nome: "Beatriz Lima", Setor: "RH", Cargo: "Analista de RH"})
	testutil.CreateTestEmployee(t, db, models.Employee{Matricula: "8888", Nome: "JOÃO DA SILVA", Setor: "RH", Cargo: "Técnico"})

	tests := []struct {
		name      string
		query     string
		wantTotal int
		wantCount int
		wantPages int
	}{
		{"first page", "", 22, 15, 2},
		{"second page", "?page=2", 22, 7, 2},
		{"accented name lower case", "?search=jo%C3%A3o", 1, 1, 1},
		{"accented name upper case", "?search=JO%C3%83O", 1, 1, 1},
		{"accented cargo", "?search=T%C3%89CNICO", 1, 1, 1},
		{"search by name", "?search=beatriz", 1, 1, 1},
		{"search by cargo", "?search=ANALISTA", 1, 1, 1},
		{"search by matricula", "?search=0012", 1, 1, 1},
		{"filter by sector", "?setor=Log%C3%ADstica", 5, 5, 1},
		{"no match", "?search=zzz", 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ListEmployees(w, testutil.MakeRequest("GET", "/employees"+tt.query, nil, nil))
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.EmployeeListResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Total != tt.wantTotal || len(resp.Employees) != tt.wantCount || resp.TotalPages != tt.wantPages {
				t.Errorf("Got total=%d count=%d pages=%d", resp.Total, len(resp.Employees), resp.TotalPages)
			}
			if len(resp.Sectors) != 3 {
				t.Errorf("Expected 3 sectors, got %v", resp.Sectors)
			}
		})
	}
}

func TestUpdateEmployee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEmployeeHandler(db, testutil.GetTestConfig(), testServices())

	e := testutil.CreateTestEmployee(t, db, models.Employee{Matricula: "2001", Nome: "Carlos", Setor: "TI"})
	testutil.CreateTestEmployee(t, db, models.Employee{Matricula: "2002", Nome: "Diana"})

	restricted := true
	other := "2002"
	blank := ""

	tests := []struct {
		name           string
		id             string
		body           models.UpdateEmployeeRequest
		expectedStatus int
	}{
		{"toggle restriction", e.ID, models.UpdateEmployeeRequest{IsRestricted: &restricted}, http.StatusOK},
		{"duplicate matricula", e.ID, models.UpdateEmployeeRequest{Matricula: &other}, http.StatusConflict},
		{"blank nome", e.ID, models.UpdateEmployeeRequest{Nome: &blank}, http.StatusBadRequest},
		{"not found", "missing", models.UpdateEmployeeRequest{IsRestricted: &restricted}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("PATCH", "/employees/"+tt.id, tt.body, nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()
			handler.UpdateEmployee(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	var isRestricted bool
	db.QueryRow(`SELECT is_restricted FROM employee WHERE id = $1`, e.ID).Scan(&isRestricted)
	if !isRestricted {
		t.Error("Expected restriction to be stored")
	}
}

func TestDeleteEmployee_Cascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEmployeeHandler(db, testutil.GetTestConfig(), testServices())

	candidate := testutil.CreateTestEmployee(t, db, models.Employee{Matricula: "3001", Nome: "Eduardo"})
	testutil.CreateTestRegistration(t, db, candidate.ID)
	testutil.CastTestVote(t, db, candidate.ID, "3002", testNow)

	req := testutil.MakeRequest("DELETE", "/employees/"+candidate.ID, nil, nil)
	req.SetPathValue("id", candidate.ID)
	w := httptest.NewRecorder()
	handler.DeleteEmployee(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	var regs, votes int
	db.QueryRow(`SELECT COUNT(*) FROM registration`).Scan(&regs)
	db.QueryRow(`SELECT COUNT(*) FROM vote`).Scan(&votes)
	if regs != 0 || votes != 0 {
		t.Errorf("Expected cascade, got %d registrations and %d votes", regs, votes)
	}

	w = httptest.NewRecorder()
	handler.DeleteEmployee(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

var importHeaders = []string{"Matrícula", "Nome do Colaborador", "Setor", "Cargo", "E-mail"}

func TestPreviewImport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEmployeeHandler(db, cfg, testServices())

	file := xlsxFile(t, importHeaders, [][]interface{}{
		{"1", "Ana", "RH", "Analista", "ana@acme.com"},
		{"2", "Bruno", "Produção", "Técnico", ""},
		{"3", "Carla", "Produção", "TÉCNICA", ""},
		{"", "Sem Matrícula", "RH", "Analista", ""},
	})

	w := httptest.NewRecorder()
	handler.PreviewImport(w, uploadRequest(t, "/employees/import/preview", file, nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var p models.ImportPreview
	testutil.AssertJSON(t, w, &p)
	if p.ValidRows != 3 || len(p.InvalidRows) != 1 {
		t.Errorf("Expected 3 valid and 1 invalid, got %d and %d", p.ValidRows, len(p.InvalidRows))
	}
	if p.Mapping["Nome do Colaborador"] != "nome" {
		t.Errorf("Unexpected mapping: %v", p.Mapping)
	}
	if len(p.CargoGroups) != 2 {
		t.Errorf("Expected técnico/técnica to share a group, got %+v", p.CargoGroups)
	}
}

func TestImport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	gen := &fakeGenerator{reply: "Importação concluída com ampla representatividade."}
	svc := testServices()
	svc.Assistant = gen
	handler := NewEmployeeHandler(db, cfg, svc)

	existing := testutil.CreateTestEmployee(t, db, models.Employee{Matricula: "1", Nome: "Nome Antigo", Setor: "RH", Cargo: "Analista"})
	xavier := testutil.CreateTestEmployee(t, db, models.Employee{Matricula: "X-9", Nome: "Xavier", Setor: "RH"})

	rows := [][]interface{}{
		{"1", "Ana Atualizada", "RH", "Analista", "ana@acme.com"},
		{"2", "Bruno", "Produção", "Técnico", ""},
		{"3", "Carla", "Produção", "Técnica", ""},
		{"4", "", "Produção", "Operador", ""},
		{" x-9", "Xavier Souza", "RH", "Analista", ""},
	}
	for i := 5; i < 5+importBatchSize; i++ {
		rows = append(rows, []interface{}{fmt.Sprint(i), fmt.Sprintf("Pessoa %d", i), "Logística", "Auxiliar", ""})
	}
	file := xlsxFile(t, importHeaders, rows)

	req := uploadRequest(t, "/employees/import", file, map[string][]string{
		"restricted_cargo": {"TECNICA"},
	}, nil)
	w := httptest.NewRecorder()
	handler.Import(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var summary models.ImportSummary
	testutil.AssertJSON(t, w, &summary)
	if summary.Total != len(rows) || summary.Success != len(rows)-1 || summary.Failed != 1 {
		t.Errorf("Unexpected summary: total=%d success=%d failed=%d", summary.Total, summary.Success, summary.Failed)
	}
	if len(summary.FailedRecords) != 1 || summary.FailedRecords[0].Row != 4 {
		t.Errorf("Unexpected failed records: %+v", summary.FailedRecords)
	}
	if summary.Analysis != gen.reply {
		t.Errorf("Expected analysis from assistant, got %q", summary.Analysis)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "Minha Empresa S.A.") {
		t.Errorf("Unexpected prompts: %v", gen.prompts)
	}

	var id, nome string
	db.QueryRow(`SELECT id, nome FROM employee WHERE matricula = '1'`).Scan(&id, &nome)
	if id != existing.ID || nome != "Ana Atualizada" {
		t.Errorf("Expected upsert to keep id and update name, got id=%s nome=%s", id, nome)
	}

	var total int
	db.QueryRow(`SELECT COUNT(*) FROM employee WHERE LOWER(matricula) = 'x-9'`).Scan(&total)
	db.QueryRow(`SELECT id, nome FROM employee WHERE matricula = 'X-9'`).Scan(&id, &nome)
	if total != 1 || id != xavier.ID || nome != "Xavier Souza" {
		t.Errorf("Expected lower-case matricula to update X-9, got count=%d id=%s nome=%s", total, id, nome)
	}

	var restricted int
	db.QueryRow(`SELECT COUNT(*) FROM employee WHERE is_restricted`).Scan(&restricted)
	if restricted != 2 {
		t.Errorf("Expected both técnico spellings restricted, got %d", restricted)
	}
}

func TestImport_AssistantUnavailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEmployeeHandler(db, testutil.GetTestConfig(), testServices())

	file := xlsxFile(t, importHeaders, [][]interface{}{{"1", "Ana", "RH", "Analista", ""}})
	w := httptest.NewRecorder()
	handler.Import(w, uploadRequest(t, "/employees/import", file, nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var summary models.ImportSummary
	testutil.AssertJSON(t, w, &summary)
	if summary.Analysis != assistant.FallbackImport {
		t.Errorf("Expected fallback analysis, got %q", summary.Analysis)
	}
}

func TestImport_MissingFile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEmployeeHandler(db, testutil.GetTestConfig(), testServices())

	w := httptest.NewRecorder()
	handler.Import(w, testutil.MakeRequest("POST", "/employees/import", map[string]string{"a": "b"}, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestImportTemplate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewEmployeeHandler(db, testutil.GetTestConfig(), testServices())

	w := httptest.NewRecorder()
	handler.ImportTemplate(w, testutil.MakeRequest("GET", "/employees/import/template", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("Template is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil || len(rows) != 3 || rows[0][0] != "MATRICULA" {
		t.Errorf("Unexpected template rows: %v (%v)", rows, err)
	}
}
