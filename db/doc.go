// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and manages its schema.

# Connecting

Open accepts the configured database type and URL:

	conn, err := db.Open(db.TypeSQLite, "cipa.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

SQLite connections get foreign_keys and busy_timeout pragmas and are
limited to a single open connection.

# Migrations

Schema changes live in migrations/*.sql, embedded in the binary and applied
with goose:

	if err := db.Migrate(ctx, conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

The SQL is written to run unchanged on PostgreSQL and SQLite.

# Tables

  - employee: roster, unique matricula
  - registration: one candidacy per employee
  - vote: one vote per voter_matricula, candidate_id points at employee
  - app_settings: single row (id = 1) holding the settings JSON
  - app_admin: emails allowed to administer the portal

# Relationships

	employee (1) ──< (0..1) registration
	employee (1) ──< (N) vote (as candidate)

Deleting an employee removes their registration and the votes cast for them.

# Constraint Errors

IsUniqueViolation recognises duplicate-key errors from both drivers so
handlers can answer 409 Conflict.
*/
package db
