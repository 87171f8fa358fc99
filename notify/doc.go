// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify sends email notifications.

Mailgun is used when MAILGUN_DOMAIN and MAILGUN_API_KEY are set; otherwise
the server installs Nop. Messages are plain text and get an HTML version
with escaped content on send:

	n := notify.NewMailgun(domain, apiKey, from, settings.CompanyName)
	err := n.Send(ctx, notify.RegistrationConfirmation(email, nome, protocol, membership, mandate))

Delivery failures are returned to the caller, which logs them without
failing the request that triggered the email.
*/
package notify
