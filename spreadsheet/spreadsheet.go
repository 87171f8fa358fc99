// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/portalcipa/cipa-server/models"
)

// Import fields a header can map to
const (
	FieldID        = "id"
	FieldMatricula = "matricula"
	FieldNome      = "nome"
	FieldSetor     = "setor"
	FieldCargo     = "cargo"
	FieldEmail     = "email"
)

var ErrNoHeader = errors.New("spreadsheet has no header row")

// Sheet is the first worksheet of a workbook: trimmed headers and one map per non-blank row
type Sheet struct {
	Headers []string
	Rows    []map[string]string
}

// Read parses an XLSX workbook. Blank headers are skipped, blank rows dropped.
func Read(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	type column struct {
		index int
		name  string
	}
	var cols []column
	for i, h := range rows[0] {
		if h = strings.TrimSpace(h); h != "" {
			cols = append(cols, column{i, h})
		}
	}
	if len(cols) == 0 {
		return nil, ErrNoHeader
	}

	sheet := &Sheet{}
	for _, c := range cols {
		sheet.Headers = append(sheet.Headers, c.name)
	}

	for _, raw := range rows[1:] {
		row := make(map[string]string, len(cols))
		blank := true
		for _, c := range cols {
			var v string
			if c.index < len(raw) {
				v = strings.TrimSpace(raw[c.index])
			}
			if v != "" {
				blank = false
			}
			row[c.name] = v
		}
		if !blank {
			sheet.Rows = append(sheet.Rows, row)
		}
	}

	return sheet, nil
}

// MapHeaders guesses the import field of each header.
// Unrecognised headers map to "".
func MapHeaders(headers []string) map[string]string {
	mapping := make(map[string]string, len(headers))
	for _, header := range headers {
		mapping[header] = fieldFor(fold(header))
	}
	return mapping
}

func fieldFor(h string) string {
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(h, s) {
				return true
			}
		}
		return false
	}
	is := func(words ...string) bool {
		for _, w := range words {
			if h == w {
				return true
			}
		}
		return false
	}

	switch {
	case is("id", "uuid", "code", "codigo", "identificador"):
		return FieldID
	case has("matricula", "funcional") || is("mat", "registro", "re", "cracha"):
		return FieldMatricula
	case has("nome", "funcionario", "colaborador") || is("name", "employee"):
		return FieldNome
	case has("setor", "departamento", "area") || is("cc", "unidade", "centro de custo"):
		return FieldSetor
	case has("cargo", "funcao", "posicao") || is("role", "job", "occupation"):
		return FieldCargo
	case has("mail", "correio", "endereco eletronico") || is("usuario", "login"):
		return FieldEmail
	}
	return ""
}

// Record is one data row after mapping
type Record struct {
	Row       int // 1-indexed, header excluded
	ID        string
	Matricula string
	Nome      string
	Setor     string
	Cargo     string
	Email     string
	Values    map[string]string
	Errors    []string
}

func (r Record) Valid() bool { return len(r.Errors) == 0 }

// Failed converts the record for an import report
func (r Record) Failed() models.FailedRecord {
	return models.FailedRecord{Row: r.Row, Values: r.Values, Errors: r.Errors}
}

// Extract applies the mapping to every row and validates the required fields
func Extract(sheet *Sheet, mapping map[string]string) []Record {
	records := make([]Record, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		rec := Record{Row: i + 1, Values: row}
		for header, field := range mapping {
			v := row[header]
			switch field {
			case FieldID:
				rec.ID = v
			case FieldMatricula:
				rec.Matricula = v
			case FieldNome:
				rec.Nome = v
			case FieldSetor:
				rec.Setor = v
			case FieldCargo:
				rec.Cargo = v
			case FieldEmail:
				rec.Email = v
			}
		}
		rec.Errors = validate(rec)
		records = append(records, rec)
	}
	return records
}

func validate(r Record) []string {
	var errs []string
	if r.Matricula == "" {
		errs = append(errs, "Matrícula vazia")
	}
	if r.Nome == "" {
		errs = append(errs, "Nome vazio")
	}
	if r.Setor == "" {
		errs = append(errs, "Setor vazio")
	}
	if r.Cargo == "" {
		errs = append(errs, "Cargo vazio")
	}
	return errs
}

// EmployeeID returns the row's id when it is a valid UUID, otherwise a fresh one
func (r Record) EmployeeID() string {
	if id, err := uuid.Parse(r.ID); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// CargoGroups lists the distinct normalised job titles of the valid records.
// The label is the longest spelling seen, upper-cased.
func CargoGroups(records []Record) []models.CargoGroup {
	labels := make(map[string]string)
	for _, r := range records {
		if !r.Valid() || r.Cargo == "" {
			continue
		}
		key := NormalizeCargoKey(r.Cargo)
		if cur, ok := labels[key]; !ok || len(r.Cargo) > len(cur) {
			labels[key] = strings.ToUpper(r.Cargo)
		}
	}

	groups := make([]models.CargoGroup, 0, len(labels))
	for k, l := range labels {
		groups = append(groups, models.CargoGroup{Key: k, Label: l})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Label < groups[j].Label })
	return groups
}

// Preview summarises a parsed sheet before import
func Preview(sheet *Sheet) models.ImportPreview {
	mapping := MapHeaders(sheet.Headers)
	records := Extract(sheet, mapping)

	p := models.ImportPreview{
		Headers:     sheet.Headers,
		Mapping:     mapping,
		InvalidRows: []models.FailedRecord{},
		CargoGroups: CargoGroups(records),
	}
	for _, r := range records {
		if r.Valid() {
			p.ValidRows++
		} else {
			p.InvalidRows = append(p.InvalidRows, r.Failed())
		}
	}
	return p
}
