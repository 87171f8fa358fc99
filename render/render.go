// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/portalcipa/cipa-server/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Document names
const (
	Ballot       = "ballot"
	Timeline     = "timeline"
	Election     = "election"
	Minutes      = "minutes"
	Registration = "registration"
)

// Page carries what every document header needs
type Page struct {
	Title    string
	Subtitle string
	Settings models.AppSettings
}

type BallotPage struct {
	Page
	Candidates []models.Candidate
	VotingDate string
	Ballots    []int
}

type TimelinePage struct {
	Page
	Events []models.TimelineEntry
}

type ElectionPage struct {
	Page
	Intro   string
	Results models.ElectionResults
}

type MinutesPage struct {
	Page
	Extraordinary  bool
	AttendanceRows int
}

type RegistrationPage struct {
	Page
	Registration models.RegistrationView
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
	// date turns 2006-01-02 into 02/01/2006, other text is left alone
	"date": func(s string) string {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return s
		}
		return t.Format("02/01/2006")
	},
	"logo": func(s string) template.URL {
		if strings.HasPrefix(s, "data:image/") {
			return template.URL(s)
		}
		return ""
	},
	"color": func(s string) template.CSS {
		if hexColor.MatchString(s) {
			return template.CSS(s)
		}
		return "#1e40af"
	},
}

// Templates renders the printable documents
type Templates struct {
	tmpl *template.Template
}

func New() (*Templates, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Templates{tmpl: tmpl}, nil
}

// MustNew is New for package-level setup
func MustNew() *Templates {
	t, err := New()
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the named document into HTML
func (t *Templates) Render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// BallotCount clamps ballots per page to the supported layouts (1, 2 or 4)
func BallotCount(perPage int) []int {
	switch {
	case perPage >= 4:
		perPage = 4
	case perPage == 3:
		perPage = 2
	case perPage < 1:
		perPage = 2
	}
	ballots := make([]int, perPage)
	for i := range ballots {
		ballots[i] = i + 1
	}
	return ballots
}
