package models

import (
	"time"

	"github.com/portalcipa/cipa-server/schedule"
)

type MeetingData struct {
	Number              string `json:"number" yaml:"number"`
	Date                string `json:"date" yaml:"date"`
	StartTime           string `json:"start_time" yaml:"start_time"`
	EndTime             string `json:"end_time" yaml:"end_time"`
	Local               string `json:"local" yaml:"local"`
	MembersPresent      string `json:"members_present" yaml:"members_present"`
	Agenda              string `json:"agenda" yaml:"agenda"`
	Deliberations       string `json:"deliberations" yaml:"deliberations"`
	ExtraordinaryReason string `json:"extraordinary_reason" yaml:"extraordinary_reason"`
	AttendanceRows      int    `json:"attendance_rows,omitempty" yaml:"attendance_rows"`
	SignatoriesCount    int    `json:"signatories_count,omitempty" yaml:"signatories_count"`
}

type ReportConfig struct {
	ElectedCount int         `json:"elected_count" yaml:"elected_count"`
	MeetingData  MeetingData `json:"meeting_data" yaml:"meeting_data"`
}

// AppSettings is stored as a single JSON document.
// CurrentUserRole is computed per request and never persisted.
type AppSettings struct {
	CompanyName            string            `json:"company_name"`
	PortalTitle            string            `json:"portal_title"`
	PortalSubtitle         string            `json:"portal_subtitle"`
	DocumentTitle          string            `json:"document_title"`
	LogoBase64             string            `json:"logo_base64,omitempty"`
	Mandate                string            `json:"mandate"`
	BallotsPerPage         int               `json:"ballots_per_page"`
	ThemeColor             string            `json:"theme_color"`
	MenuOrder              []string          `json:"menu_order"`
	TabIcons               map[string]string `json:"tab_icons"`
	VotingScreenLogoBase64 string            `json:"voting_screen_logo_base64,omitempty"`
	VotingScreenTitle      string            `json:"voting_screen_title"`
	VotingScreenSubtitle   string            `json:"voting_screen_subtitle"`
	TimelineEvents         []schedule.Event  `json:"timeline_events"`
	ReportConfig           ReportConfig      `json:"report_config"`
	CurrentUserRole        string            `json:"current_user_role,omitempty"`
}

// DefaultSettings returns the settings used before anything is saved
func DefaultSettings(now time.Time) AppSettings {
	return AppSettings{
		CompanyName:    "Minha Empresa S.A.",
		PortalTitle:    "Portal CIPA",
		PortalSubtitle: "Gestão de Eleições NR-5",
		DocumentTitle:  "Processo Eleitoral CIPA",
		Mandate:        "2024/2025",
		BallotsPerPage: 2,
		ThemeColor:     "#1e40af",
		MenuOrder: []string{
			"dashboard", "gestao", "inscricao", "votar", "cedula",
			"cronograma", "relatorio", "layouts", "ai_assistant", "upload",
		},
		TabIcons: map[string]string{
			"dashboard":    "LayoutDashboard",
			"gestao":       "Users",
			"inscricao":    "FileEdit",
			"votar":        "Vote",
			"cedula":       "ScrollText",
			"cronograma":   "CalendarClock",
			"relatorio":    "BarChart",
			"layouts":      "Settings",
			"ai_assistant": "Sparkles",
			"upload":       "Upload",
		},
		VotingScreenTitle:    "Entrar na Urna",
		VotingScreenSubtitle: "Identificação Obrigatória",
		TimelineEvents:       schedule.DefaultEvents(),
		ReportConfig: ReportConfig{
			ElectedCount: 3,
			MeetingData: MeetingData{
				Number:              "1",
				Date:                now.Format("2006-01-02"),
				StartTime:           "09:00",
				EndTime:             "10:00",
				Local:               "Sala de Reuniões 1",
				MembersPresent:      "Membros da CIPA (Titulares e Suplentes)",
				Agenda:              "1. Leitura e aprovação da ata anterior;\n2. Análise dos acidentes ocorridos no mês;\n3. Discussão sobre novos EPIs.",
				Deliberations:       "Ficou definido que a próxima inspeção ocorrerá no dia 15.",
				ExtraordinaryReason: "Acidente grave ocorrido no setor de produção.",
			},
		},
	}
}

// Import types

type FailedRecord struct {
	Row    int               `json:"row"` // 1-indexed data row, header excluded
	Values map[string]string `json:"values"`
	Errors []string          `json:"errors"`
}

type ImportSummary struct {
	Total         int            `json:"total"`
	Success       int            `json:"success"`
	Failed        int            `json:"failed"`
	FailedRecords []FailedRecord `json:"failed_records"`
	Analysis      string         `json:"analysis,omitempty"`
}

type CargoGroup struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type ImportPreview struct {
	Headers     []string          `json:"headers"`
	Mapping     map[string]string `json:"mapping"`
	ValidRows   int               `json:"valid_rows"`
	InvalidRows []FailedRecord    `json:"invalid_rows"`
	CargoGroups []CargoGroup      `json:"cargo_groups"`
}
