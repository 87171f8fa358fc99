// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics exposes Prometheus instrumentation on a private registry.

	cipa_http_requests_total{route,code}
	cipa_http_request_duration_seconds{route}
	cipa_votes_total
	cipa_registrations_total
	cipa_schedule_window_open{activity}

Routes are labelled with the matched mux pattern, never the raw path.
*/
package metrics
