// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Portal CIPA API server.

Portal CIPA runs the election of an internal accident-prevention commission
(CIPA, NR-5): employee roster, candidate registration, a voting booth,
printable documents, and results. Registration and voting are gated by
free-text windows in the configurable election timeline, evaluated in the
configured timezone.

# Starting the Server

The server reads a .env file when present, then environment variables or
CLI flags:

	DATABASE_URL=cipa.db ADMIN_KEY_SALT=... BOOTH_TOKEN_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

Print the key of an administrator and exit:

	go run . -print-admin-key rh@empresa.com.br

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - BOOTH_TOKEN_SALT (--booth-salt): Secret for voting booth tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - TIMEZONE (-tz): Schedule timezone (default: America/Sao_Paulo)
  - SEED_FILE (-seed): YAML with first-run settings and admins
  - ADMIN_EMAILS: Comma separated administrator emails
  - LOG_LEVEL: debug, info, warn, error
  - PDF_ENABLED, CHROME_TIMEOUT: PDF documents through headless Chrome
  - MAILGUN_DOMAIN, MAILGUN_API_KEY, MAILGUN_FROM: Registration emails
  - GEMINI_API_KEY, GEMINI_MODEL: Election assistant
  - WATCH_CRON: Schedule watcher interval (default: @every 1m)

# Architecture

  - schedule: Timeline window parsing and evaluation
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, admin auth, JSON helpers
  - models: Request/response and domain types
  - auth: Admin keys, booth tokens, hashes
  - db: Connections and goose migrations
  - cliparse: Configuration, .env, seed file, logging
  - spreadsheet: Roster import and exports
  - render: HTML documents and PDF conversion
  - calendar, notify, assistant, metrics, watcher: Integrations

See package documentation for each component.
*/
package main
