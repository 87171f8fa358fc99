// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request completion with method, path, status, and duration_ms.
Responses with a 5xx status are logged at warn level.

# Metrics

WithMetrics reports every request to a RequestObserver, labelled with the
mux pattern that matched (r.Pattern):

	mux.HandleFunc("POST /voting/votes",
		middleware.WithMetrics(m, middleware.WithLogging(h.CastVote)))

# Admin Authentication

Admin routes require two headers:

	X-Admin-Email: rh@empresa.com.br
	X-Admin-Key:   <auth.GenerateAdminKey(email, salt)>

and the email must be listed in app_admin:

	mux.HandleFunc("DELETE /employees/{id}",
		middleware.RequireAdmin(db, cfg.AdminKeySalt, h.DeleteEmployee))

Missing or invalid credentials answer 401, an unlisted email 403.
Handlers that only adapt their output to the caller use AdminEmail directly.

# CORS Middleware

	server := http.Server{Handler: middleware.CORS(mux)}

Allows GET, POST, PUT, PATCH, DELETE, OPTIONS with headers Content-Type,
Authorization, X-Admin-Email, X-Admin-Key, X-Booth-Token.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "Employee not found")

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

Bodies above MaxBodyBytes are rejected.

# Client IP

GetClientIP checks X-Forwarded-For, then X-Real-IP, then RemoteAddr.
The result is hashed with auth.HashIP before it is stored with a vote.
*/
package middleware
