// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"regexp"
	"strconv"
	"time"
)

// DateToken is a DD/MM or DD/MM/YYYY match
type DateToken struct {
	Day     int
	Month   int
	Year    int
	HasYear bool
}

// TimeToken is an HH:MM match
type TimeToken struct {
	Hour   int
	Minute int
}

// Tokens holds every date and time found in a text, in order of appearance
type Tokens struct {
	Dates []DateToken
	Times []TimeToken
}

// Tokenizer extracts date and time tokens from free text
type Tokenizer interface {
	Tokenize(text string) Tokens
}

// DefaultTokenizer is used by Parse and Evaluate
var DefaultTokenizer Tokenizer = RegexTokenizer{}

var (
	dateRe = regexp.MustCompile(`(\d{2})/(\d{2})(?:/(\d{4}))?`)
	timeRe = regexp.MustCompile(`(\d{2}):(\d{2})`)
)

// RegexTokenizer matches two-digit day/month pairs and two-digit clock times.
// Values are not range checked: 32/13 is returned as is and rolls over when
// turned into a time.Time.
type RegexTokenizer struct{}

func (RegexTokenizer) Tokenize(text string) Tokens {
	var tokens Tokens

	for _, m := range dateRe.FindAllStringSubmatch(text, -1) {
		d := DateToken{Day: atoi(m[1]), Month: atoi(m[2])}
		if m[3] != "" {
			d.Year = atoi(m[3])
			d.HasYear = true
		}
		tokens.Dates = append(tokens.Dates, d)
	}

	for _, m := range timeRe.FindAllStringSubmatch(text, -1) {
		tokens.Times = append(tokens.Times, TimeToken{Hour: atoi(m[1]), Minute: atoi(m[2])})
	}

	return tokens
}

// atoi is only fed regex digit groups
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func (d DateToken) year(current int) int {
	if d.HasYear {
		return d.Year
	}
	return current
}

func (d DateToken) at(t TimeToken, current int, loc *time.Location) time.Time {
	return time.Date(d.year(current), time.Month(d.Month), d.Day, t.Hour, t.Minute, 0, 0, loc)
}

func (d DateToken) startOfDay(current int, loc *time.Location) time.Time {
	return time.Date(d.year(current), time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

func (d DateToken) endOfDay(current int, loc *time.Location) time.Time {
	return time.Date(d.year(current), time.Month(d.Month), d.Day, 23, 59, 59, int(999*time.Millisecond), loc)
}
