// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// Message is a plain-text email; an HTML version is generated on send
type Message struct {
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Nop drops every message
type Nop struct{}

func (Nop) Send(ctx context.Context, msg Message) error {
	slog.Debug("notification skipped", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Mailgun sends messages through the Mailgun API
type Mailgun struct {
	mg      mailgun.Mailgun
	from    string
	company string
}

func NewMailgun(domain, apiKey, from, company string) *Mailgun {
	return &Mailgun{
		mg:      mailgun.NewMailgun(domain, apiKey),
		from:    from,
		company: company,
	}
}

func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	mail := mailgun.NewMessage(
		m.from,
		msg.Subject,
		msg.Body, // plain text fallback
		msg.To,
	)
	mail.SetHTML(HTMLBody(msg.Subject, msg.Body, m.company))

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, _, err := m.mg.Send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	slog.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// HTMLBody wraps escaped plain text in a minimal branded layout
func HTMLBody(subject, body, company string) string {
	text := strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>%s</title></head>
<body style="font-family: Arial, sans-serif; background: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: #fff; border-radius: 8px; overflow: hidden;">
    <div style="background: #1e40af; color: #fff; padding: 20px; text-align: center;">
      <h1 style="margin: 0; font-size: 20px;">%s</h1>
    </div>
    <div style="padding: 24px;">%s</div>
    <div style="background: #f8f9fa; padding: 12px; text-align: center; font-size: 12px; color: #666;">
      %s · Portal CIPA. Mensagem automática, não responda.
    </div>
  </div>
</body>
</html>`,
		html.EscapeString(subject),
		html.EscapeString(subject),
		text,
		html.EscapeString(company),
	)
}

// RegistrationConfirmation is sent to a candidate after registering
func RegistrationConfirmation(to, nome, protocol, membership, mandate string) Message {
	category := "Membro Titular"
	if membership == "alternate" {
		category = "Membro Suplente"
	}
	return Message{
		To:      to,
		Subject: "Inscrição CIPA confirmada - protocolo " + protocol,
		Body: fmt.Sprintf("Olá, %s.\n\nSua candidatura para a CIPA (mandato %s) foi registrada.\n"+
			"Categoria: %s\nProtocolo: %s\n\nGuarde este protocolo para consultas futuras.",
			nome, mandate, category, protocol),
	}
}
