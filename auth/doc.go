// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin keys, booth tokens, and hashing utilities.

# Admin Keys

Admin keys use HMAC-SHA256 over the administrator's email:

	adminKey := auth.GenerateAdminKey("rh@empresa.com.br", salt)
	err := auth.ValidateAdminKey(email, adminKey, salt)

The key is URL-safe base64 encoded without padding. The email is trimmed and
lower-cased first, so "RH@Empresa.com.br" and "rh@empresa.com.br" share a key.
Keys are never stored; the server prints one with -print-admin-key.

A valid key alone does not make a request admin: the email must also be
listed in the app_admin table (see middleware.IsAdmin).

# Booth Tokens

Voter identification returns a booth token bound to the matricula:

	token := auth.GenerateBoothToken(matricula, salt)

Casting a vote requires the same token in the X-Booth-Token header, so a
vote cannot be submitted for a matricula that never passed identification.
Booth tokens and admin keys are signed in separate namespaces.

# IP Hashing

IP addresses are hashed before storage with each vote:

	ipHash := auth.HashIP(clientIP, salt)

Returns the first 8 bytes as hex (16 chars).

# Protocol Codes

ProtocolCode gives the short code printed on registration forms:

	auth.ProtocolCode("3f2a9c1e-...") // "3F2A9C1E"
*/
package auth
