// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package calendar exports the election timeline as an iCalendar feed.
package calendar

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/portalcipa/cipa-server/schedule"
)

const productID = "-//Portal CIPA//Cronograma Eleitoral//PT-BR"

// Export builds a VCALENDAR with one VEVENT per event whose schedule text
// contains a date. Undated events cannot be placed on a calendar and are skipped.
// Windows are evaluated at now, in now's location.
func Export(name string, events []schedule.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)

	for _, ev := range events {
		w := schedule.Parse(ev.DateTime, now)
		if !w.Bounded() {
			continue
		}

		uid := ev.ID
		if uid == "" {
			uid = ev.Activity
		}
		vevent := cal.AddEvent(uid + "@portal-cipa")
		vevent.SetDtStampTime(now)
		vevent.SetSummary(ev.Activity)
		vevent.SetDescription(ev.DateTime)
		vevent.SetStartAt(w.Start)
		vevent.SetEndAt(w.End)
	}

	return cal.Serialize()
}
