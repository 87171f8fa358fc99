// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"strings"
	"time"
)

// Keywords and messages used to gate registration and voting
const (
	KeywordVoting       = "votação"
	KeywordRegistration = "inscriç"

	VotingNotStarted       = "A votação ainda não foi iniciada."
	VotingEnded            = "O período de votação está encerrado."
	RegistrationNotStarted = "O período de inscrições ainda não iniciou."
	RegistrationEnded      = "O período de inscrições já foi encerrado."
)

// Event is a single entry of the election timeline.
// DateTime is free text written by an administrator and is never validated.
type Event struct {
	ID       string `json:"id" yaml:"id"`
	Activity string `json:"activity" yaml:"activity"`
	DateTime string `json:"date_time" yaml:"date_time"`
	Icon     string `json:"icon" yaml:"icon"`
	Color    string `json:"color" yaml:"color"`
	Bg       string `json:"bg" yaml:"bg"`
}

// Window is the interval described by an event's DateTime.
// A zero Start or End means that bound is absent.
type Window struct {
	Start time.Time
	End   time.Time
	Open  bool
}

// Bounded reports whether any date could be parsed
func (w Window) Bounded() bool {
	return !w.Start.IsZero()
}

// Status is the outcome of gating an action on a timeline event
type Status struct {
	Open    bool   `json:"is_open"`
	Message string `json:"message"`
	Dates   string `json:"dates"`
}

// Parse builds the window for text using the default tokenizer
func Parse(text string, now time.Time) Window {
	return ParseWith(DefaultTokenizer, text, now)
}

// ParseWith builds the window for text as seen at now.
//
// Dates without a year take now's year, so a schedule left over from a
// previous election reopens every year. Dates are built in now's location.
func ParseWith(tok Tokenizer, text string, now time.Time) Window {
	tokens := tok.Tokenize(text)
	if len(tokens.Dates) == 0 {
		return Window{Open: true}
	}

	loc := now.Location()
	year := now.Year()

	first := tokens.Dates[0]
	last := tokens.Dates[len(tokens.Dates)-1]

	var start, end time.Time
	switch n := len(tokens.Times); {
	case n >= 2:
		start = first.at(tokens.Times[0], year, loc)
		end = last.at(tokens.Times[n-1], year, loc)
	case n == 1:
		start = first.at(tokens.Times[0], year, loc)
		end = last.endOfDay(year, loc)
	default:
		start = first.startOfDay(year, loc)
		end = last.endOfDay(year, loc)
	}

	return Window{
		Start: start,
		End:   end,
		Open:  !now.Before(start) && !now.After(end),
	}
}

// Evaluate finds the first event whose activity contains keyword
// (case-insensitive) and reports whether now falls inside its window.
// No matching event, or an event without dates, is always open.
func Evaluate(events []Event, keyword, notStarted, ended string, now time.Time) Status {
	needle := strings.ToLower(keyword)

	for _, ev := range events {
		if !strings.Contains(strings.ToLower(ev.Activity), needle) {
			continue
		}

		w := Parse(ev.DateTime, now)
		status := Status{Open: w.Open, Dates: ev.DateTime}
		if !w.Open {
			if !w.Start.IsZero() && now.Before(w.Start) {
				status.Message = notStarted
			} else if !w.End.IsZero() && now.After(w.End) {
				status.Message = ended
			}
		}
		return status
	}

	return Status{Open: true}
}

// VotingStatus gates the voting booth
func VotingStatus(events []Event, now time.Time) Status {
	return Evaluate(events, KeywordVoting, VotingNotStarted, VotingEnded, now)
}

// RegistrationStatus gates candidate registration
func RegistrationStatus(events []Event, now time.Time) Status {
	return Evaluate(events, KeywordRegistration, RegistrationNotStarted, RegistrationEnded, now)
}

// DefaultEvents returns the timeline of a typical election calendar
func DefaultEvents() []Event {
	return []Event{
		{ID: "00000000-0000-4000-8000-000000000001", Activity: "Comunicação oficial com o sindicato", DateTime: "01/03/2023, 10:00", Icon: "MessageSquare", Color: "text-sky-600", Bg: "bg-sky-50"},
		{ID: "00000000-0000-4000-8000-000000000002", Activity: "Inscrições", DateTime: "06/03/2023 - 17/03/2023, 09:00-17:00", Icon: "FileEdit", Color: "text-indigo-600", Bg: "bg-indigo-50"},
		{ID: "00000000-0000-4000-8000-000000000003", Activity: "Período de Votação", DateTime: "27/03/2023, 08:00 - 17:00", Icon: "Vote", Color: "text-blue-600", Bg: "bg-blue-50"},
		{ID: "00000000-0000-4000-8000-000000000004", Activity: "Contagem dos votos", DateTime: "27/03/2023, 17:30", Icon: "Calculator", Color: "text-slate-600", Bg: "bg-slate-50"},
		{ID: "00000000-0000-4000-8000-000000000005", Activity: "Treinamento da NR-5", DateTime: "06/03/2023 - 17/03/2023, 09:00-17:00", Icon: "BookOpen", Color: "text-amber-600", Bg: "bg-amber-50"},
		{ID: "00000000-0000-4000-8000-000000000006", Activity: "Instalação e Posse da CIPA", DateTime: "10/04/2023, 14:00", Icon: "Award", Color: "text-emerald-600", Bg: "bg-emerald-50"},
	}
}
