// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/portalcipa/cipa-server/auth"
)

const (
	HeaderAdminEmail = "X-Admin-Email"
	HeaderAdminKey   = "X-Admin-Key"
	HeaderBoothToken = "X-Booth-Token"
)

var (
	ErrMissingCredentials = errors.New("missing admin credentials")
	ErrNotAdmin           = errors.New("email is not an administrator")
)

type adminKey struct{}

// AdminEmail authenticates the admin headers of a request.
// The key must match the email and the email must be listed in app_admin.
func AdminEmail(r *http.Request, db *sql.DB, salt string) (string, error) {
	email := auth.NormalizeEmail(r.Header.Get(HeaderAdminEmail))
	key := r.Header.Get(HeaderAdminKey)
	if email == "" || key == "" {
		return "", ErrMissingCredentials
	}

	if err := auth.ValidateAdminKey(email, key, salt); err != nil {
		return "", err
	}

	var one int
	err := db.QueryRowContext(r.Context(), `SELECT 1 FROM app_admin WHERE email = $1`, email).Scan(&one)
	if err == sql.ErrNoRows {
		return "", ErrNotAdmin
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up admin: %w", err)
	}

	return email, nil
}

// RequireAdmin rejects requests without valid admin credentials.
// The authenticated email is available through AdminFromContext.
func RequireAdmin(db *sql.DB, salt string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, err := AdminEmail(r, db, salt)
		switch {
		case errors.Is(err, ErrMissingCredentials), errors.Is(err, auth.ErrInvalidAdminKey):
			ErrorResponse(w, http.StatusUnauthorized, "Invalid admin credentials")
			return
		case errors.Is(err, ErrNotAdmin):
			ErrorResponse(w, http.StatusForbidden, "Email is not an administrator")
			return
		case err != nil:
			slog.Error("failed to authenticate admin", "error", err)
			ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), adminKey{}, email)))
	}
}

// AdminFromContext returns the email stored by RequireAdmin
func AdminFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(adminKey{}).(string)
	return email, ok
}
