// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"time"

	"github.com/portalcipa/cipa-server/assistant"
	"github.com/portalcipa/cipa-server/cliparse"
	"github.com/portalcipa/cipa-server/metrics"
	"github.com/portalcipa/cipa-server/notify"
	"github.com/portalcipa/cipa-server/render"
)

// Services are the collaborators shared by every handler.
// Nil fields are replaced by WithDefaults.
type Services struct {
	Metrics   *metrics.Metrics
	Notifier  notify.Notifier
	Templates *render.Templates
	PDF       render.PDFRenderer // nil disables PDF output
	Assistant assistant.Generator
	Clock     func() time.Time
}

func (s Services) WithDefaults() Services {
	if s.Metrics == nil {
		s.Metrics = metrics.New()
	}
	if s.Notifier == nil {
		s.Notifier = notify.Nop{}
	}
	if s.Templates == nil {
		s.Templates = render.MustNew()
	}
	if s.Assistant == nil {
		s.Assistant = assistant.Unavailable{}
	}
	if s.Clock == nil {
		s.Clock = time.Now
	}
	return s
}

// now is the current time in the configured election timezone
func (s Services) now(cfg cliparse.Config) time.Time {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return s.Clock().In(loc)
}
