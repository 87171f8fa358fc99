// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package watcher re-evaluates the voting and registration windows on a cron
// schedule, publishing each state to a gauge and logging open/close transitions.
package watcher
