package schedule

import (
	"testing"
	"time"
)

var brt = time.FixedZone("BRT", -3*60*60)

func at(year int, month time.Month, day, hour, min, sec, msec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, msec*int(time.Millisecond), brt)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantDates []DateToken
		wantTimes []TimeToken
	}{
		{
			name: "empty",
			text: "",
		},
		{
			name:      "date without year",
			text:      "27/03",
			wantDates: []DateToken{{Day: 27, Month: 3}},
		},
		{
			name:      "date range with times",
			text:      "06/03/2023 - 17/03/2023, 09:00-17:00",
			wantDates: []DateToken{{Day: 6, Month: 3, Year: 2023, HasYear: true}, {Day: 17, Month: 3, Year: 2023, HasYear: true}},
			wantTimes: []TimeToken{{Hour: 9}, {Hour: 17}},
		},
		{
			name:      "times only",
			text:      "das 08:00 às 12:30",
			wantTimes: []TimeToken{{Hour: 8}, {Hour: 12, Minute: 30}},
		},
		{
			name:      "out of range values are kept",
			text:      "32/13",
			wantDates: []DateToken{{Day: 32, Month: 13}},
		},
		{
			name: "single digit day is not a date",
			text: "7/3 8:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RegexTokenizer{}.Tokenize(tt.text)

			if len(got.Dates) != len(tt.wantDates) {
				t.Fatalf("Tokenize(%q) dates = %v, want %v", tt.text, got.Dates, tt.wantDates)
			}
			for i := range got.Dates {
				if got.Dates[i] != tt.wantDates[i] {
					t.Errorf("date[%d] = %+v, want %+v", i, got.Dates[i], tt.wantDates[i])
				}
			}

			if len(got.Times) != len(tt.wantTimes) {
				t.Fatalf("Tokenize(%q) times = %v, want %v", tt.text, got.Times, tt.wantTimes)
			}
			for i := range got.Times {
				if got.Times[i] != tt.wantTimes[i] {
					t.Errorf("time[%d] = %+v, want %+v", i, got.Times[i], tt.wantTimes[i])
				}
			}
		})
	}
}

func TestParse(t *testing.T) {
	now := at(2025, time.June, 10, 12, 0, 0, 0)

	tests := []struct {
		name      string
		text      string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "one date whole day",
			text:      "27/03",
			wantStart: at(2025, time.March, 27, 0, 0, 0, 0),
			wantEnd:   at(2025, time.March, 27, 23, 59, 59, 999),
		},
		{
			name:      "one date one time",
			text:      "01/03/2023, 10:00",
			wantStart: at(2023, time.March, 1, 10, 0, 0, 0),
			wantEnd:   at(2023, time.March, 1, 23, 59, 59, 999),
		},
		{
			name:      "one date two times",
			text:      "27/03/2023, 08:00 - 17:00",
			wantStart: at(2023, time.March, 27, 8, 0, 0, 0),
			wantEnd:   at(2023, time.March, 27, 17, 0, 0, 0),
		},
		{
			name:      "one date three times uses first and last",
			text:      "27/03/2023 08:00, pausa 12:00, até 17:00",
			wantStart: at(2023, time.March, 27, 8, 0, 0, 0),
			wantEnd:   at(2023, time.March, 27, 17, 0, 0, 0),
		},
		{
			name:      "two dates no time",
			text:      "06/03/2023 - 17/03/2023",
			wantStart: at(2023, time.March, 6, 0, 0, 0, 0),
			wantEnd:   at(2023, time.March, 17, 23, 59, 59, 999),
		},
		{
			name:      "two dates one time",
			text:      "06/03/2023 a 17/03/2023 a partir das 09:00",
			wantStart: at(2023, time.March, 6, 9, 0, 0, 0),
			wantEnd:   at(2023, time.March, 17, 23, 59, 59, 999),
		},
		{
			name:      "two dates two times",
			text:      "06/03/2023 - 17/03/2023, 09:00-17:00",
			wantStart: at(2023, time.March, 6, 9, 0, 0, 0),
			wantEnd:   at(2023, time.March, 17, 17, 0, 0, 0),
		},
		{
			name:      "three dates uses first and last",
			text:      "01/04, 15/04 e 30/04",
			wantStart: at(2025, time.April, 1, 0, 0, 0, 0),
			wantEnd:   at(2025, time.April, 30, 23, 59, 59, 999),
		},
		{
			name:      "out of range date rolls over",
			text:      "32/12/2024",
			wantStart: at(2025, time.January, 1, 0, 0, 0, 0),
			wantEnd:   at(2025, time.January, 1, 23, 59, 59, 999),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Parse(tt.text, now)
			if !w.Bounded() {
				t.Fatalf("Parse(%q) returned an unbounded window", tt.text)
			}
			if !w.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", w.Start, tt.wantStart)
			}
			if !w.End.Equal(tt.wantEnd) {
				t.Errorf("End = %v, want %v", w.End, tt.wantEnd)
			}
		})
	}
}

func TestParse_NoDatesIsAlwaysOpen(t *testing.T) {
	now := at(2025, time.June, 10, 12, 0, 0, 0)

	for _, text := range []string{"", "a definir", "08:00 - 17:00", "1/2/3", "sem data, 23:00"} {
		w := Parse(text, now)
		if !w.Open {
			t.Errorf("Parse(%q).Open = false, want true", text)
		}
		if w.Bounded() || !w.End.IsZero() {
			t.Errorf("Parse(%q) = %+v, want no bounds", text, w)
		}
	}
}

func TestParse_OpenIsInclusive(t *testing.T) {
	text := "27/03/2023, 08:00 - 17:00"

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", at(2023, time.March, 27, 7, 59, 59, 999), false},
		{"at start", at(2023, time.March, 27, 8, 0, 0, 0), true},
		{"inside", at(2023, time.March, 27, 12, 0, 0, 0), true},
		{"at end", at(2023, time.March, 27, 17, 0, 0, 0), true},
		{"after end", at(2023, time.March, 27, 17, 0, 0, 1), false},
		{"next day", at(2023, time.March, 28, 9, 0, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(text, tt.now).Open; got != tt.want {
				t.Errorf("Open at %v = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestParse_YearFollowsNow(t *testing.T) {
	in2025 := Parse("27/03", at(2025, time.January, 1, 0, 0, 0, 0))
	in2026 := Parse("27/03", at(2026, time.January, 1, 0, 0, 0, 0))

	if in2025.Start.Year() != 2025 || in2025.End.Year() != 2025 {
		t.Errorf("evaluated in 2025: got %v - %v", in2025.Start, in2025.End)
	}
	if in2026.Start.Year() != 2026 || in2026.End.Year() != 2026 {
		t.Errorf("evaluated in 2026: got %v - %v", in2026.Start, in2026.End)
	}
}

func TestParse_Idempotent(t *testing.T) {
	now := at(2023, time.March, 27, 9, 30, 0, 0)
	text := "06/03/2023 - 17/03/2023, 09:00-17:00"

	a := Parse(text, now)
	b := Parse(text, now)
	if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) || a.Open != b.Open {
		t.Errorf("Parse is not deterministic: %+v vs %+v", a, b)
	}
}

func TestParse_UsesLocationOfNow(t *testing.T) {
	now := time.Date(2023, time.March, 27, 12, 0, 0, 0, time.UTC)
	w := Parse("27/03/2023, 08:00 - 17:00", now)

	if w.Start.Location() != time.UTC {
		t.Errorf("Start location = %v, want UTC", w.Start.Location())
	}
}

type fixedTokenizer Tokens

func (f fixedTokenizer) Tokenize(string) Tokens { return Tokens(f) }

func TestParseWith_CustomTokenizer(t *testing.T) {
	tok := fixedTokenizer{
		Dates: []DateToken{{Day: 5, Month: 5, Year: 2024, HasYear: true}},
		Times: []TimeToken{{Hour: 10}, {Hour: 11}},
	}
	now := at(2024, time.May, 5, 10, 30, 0, 0)

	w := ParseWith(tok, "ignored", now)
	if !w.Open {
		t.Errorf("expected window to be open at %v, got %+v", now, w)
	}
	if !w.End.Equal(at(2024, time.May, 5, 11, 0, 0, 0)) {
		t.Errorf("End = %v", w.End)
	}
}

func TestEvaluate(t *testing.T) {
	events := []Event{
		{Activity: "Inscrições", DateTime: "06/03/2023 - 17/03/2023, 09:00-17:00"},
		{Activity: "Período de Votação", DateTime: "27/03/2023, 08:00 - 17:00"},
		{Activity: "Treinamento", DateTime: "a definir"},
	}
	const pre, post = "not started", "ended"

	tests := []struct {
		name    string
		keyword string
		now     time.Time
		want    Status
	}{
		{
			name:    "voting before start",
			keyword: "votação",
			now:     at(2023, time.March, 27, 7, 0, 0, 0),
			want:    Status{Open: false, Message: pre, Dates: "27/03/2023, 08:00 - 17:00"},
		},
		{
			name:    "voting open",
			keyword: "votação",
			now:     at(2023, time.March, 27, 10, 0, 0, 0),
			want:    Status{Open: true, Dates: "27/03/2023, 08:00 - 17:00"},
		},
		{
			name:    "voting after end",
			keyword: "VOTAÇÃO",
			now:     at(2023, time.March, 27, 18, 0, 0, 0),
			want:    Status{Open: false, Message: post, Dates: "27/03/2023, 08:00 - 17:00"},
		},
		{
			name:    "registration partial keyword",
			keyword: "inscriç",
			now:     at(2023, time.March, 20, 10, 0, 0, 0),
			want:    Status{Open: false, Message: post, Dates: "06/03/2023 - 17/03/2023, 09:00-17:00"},
		},
		{
			name:    "event without dates is open",
			keyword: "treinamento",
			now:     at(2023, time.March, 20, 10, 0, 0, 0),
			want:    Status{Open: true, Dates: "a definir"},
		},
		{
			name:    "no matching event",
			keyword: "posse",
			now:     at(2023, time.March, 20, 10, 0, 0, 0),
			want:    Status{Open: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(events, tt.keyword, pre, post, tt.now)
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %+v, want %+v", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestEvaluate_FirstMatchWins(t *testing.T) {
	events := []Event{
		{Activity: "Votação simulada", DateTime: ""},
		{Activity: "Período de Votação", DateTime: "27/03/2023, 08:00 - 17:00"},
	}

	got := Evaluate(events, "votação", "pre", "post", at(2023, time.March, 1, 0, 0, 0, 0))
	if !got.Open || got.Dates != "" {
		t.Errorf("expected first event to govern, got %+v", got)
	}
}

func TestEvaluate_EmptyEvents(t *testing.T) {
	got := Evaluate(nil, "votação", "pre", "post", time.Now())
	if got != (Status{Open: true}) {
		t.Errorf("Evaluate(nil) = %+v", got)
	}
}

func TestGates(t *testing.T) {
	events := DefaultEvents()

	voting := VotingStatus(events, at(2023, time.March, 27, 7, 0, 0, 0))
	if voting.Open || voting.Message != VotingNotStarted {
		t.Errorf("VotingStatus = %+v", voting)
	}

	reg := RegistrationStatus(events, at(2023, time.March, 10, 10, 0, 0, 0))
	if !reg.Open || reg.Message != "" {
		t.Errorf("RegistrationStatus = %+v", reg)
	}

	reg = RegistrationStatus(events, at(2023, time.March, 1, 10, 0, 0, 0))
	if reg.Open || reg.Message != RegistrationNotStarted {
		t.Errorf("RegistrationStatus before start = %+v", reg)
	}
}

func TestDefaultEvents(t *testing.T) {
	events := DefaultEvents()
	if len(events) != 6 {
		t.Fatalf("expected 6 default events, got %d", len(events))
	}

	seen := map[string]bool{}
	for _, ev := range events {
		if ev.ID == "" || seen[ev.ID] {
			t.Errorf("event %q has empty or duplicate id", ev.Activity)
		}
		seen[ev.ID] = true
	}
}
