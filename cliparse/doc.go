// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line arguments, environment, seed files,
and logging setup.

# Configuration

ParseFlags returns a Config struct with all settings:

	cliparse.LoadDotEnv() // optional .env in the working directory
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type (sqlite or postgres)
	-tz               Timezone for schedule evaluation
	-seed             YAML seed file
	-admin-salt       Admin key salt
	-booth-salt       Booth token salt
	-print-admin-key  Print the admin key for an email and exit

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p (default 3318)
	DATABASE_URL     → -d (required)
	DATABASE_TYPE    → -t (default sqlite)
	TIMEZONE         → -tz (default America/Sao_Paulo)
	SEED_FILE        → -seed
	ADMIN_KEY_SALT   → -admin-salt (required)
	BOOTH_TOKEN_SALT → -booth-salt (required)

Environment only:

	ADMIN_EMAILS      comma separated administrator emails
	LOG_LEVEL         debug, info, warn, error
	PDF_ENABLED       render PDFs with headless Chrome
	CHROME_TIMEOUT    per-document render timeout (default 30s)
	MAILGUN_DOMAIN    registration confirmation emails
	MAILGUN_API_KEY
	MAILGUN_FROM
	GEMINI_API_KEY    AI assistant
	GEMINI_MODEL      (default gemini-2.5-flash)
	WATCH_CRON        schedule watcher spec (default @every 1m)

CLI flags take precedence over environment variables, and variables already
set in the process take precedence over .env files.

# Seed File

LoadSeed reads values used only when no settings are stored yet:

	company_name: Metalúrgica Exemplo Ltda.
	mandate: 2025/2026
	elected_count: 4
	admin_emails: [rh@empresa.com.br]
	timeline_events:
	  - activity: Período de Votação
	    date_time: 10/04/2025, 08:00 - 17:00

# Logging

SetupLogging installs a text slog handler when stderr is a terminal and a
JSON handler otherwise.
*/
package cliparse
