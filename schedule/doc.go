// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package schedule turns free-text timeline entries into time windows and
decides whether a gated action (registration, voting) is currently allowed.

# Parsing

Administrators describe each activity in plain text, for example:

	"27/03/2023, 08:00 - 17:00"
	"06/03/2023 - 17/03/2023, 09:00-17:00"
	"10/04, 14:00"

Parse extracts DD/MM[/YYYY] dates and HH:MM times and builds a window:

	w := schedule.Parse("27/03/2023, 08:00 - 17:00", now)
	// w.Start = 2023-03-27 08:00, w.End = 2023-03-27 17:00

Only the first and last date, and the first and last time, are used.
A single time with no closing time runs until 23:59:59.999 of the last date.
Dates without a year take the year of now.

# Fail-open

Text with no date at all produces an unbounded window that is always open.
A malformed or missing schedule never locks anyone out.

# Gating

Evaluate looks up the first event whose activity contains a keyword:

	st := schedule.Evaluate(events, schedule.KeywordVoting,
		schedule.VotingNotStarted, schedule.VotingEnded, now)
	if !st.Open {
		// st.Message explains why, st.Dates echoes the raw schedule text
	}

The current time is always a parameter; nothing in this package reads the
clock.

# Tokenizers

Parsing goes through the Tokenizer interface. RegexTokenizer is the default
and accepts out-of-range values such as 32/13, which roll over into the
next month or year.
*/
package schedule
