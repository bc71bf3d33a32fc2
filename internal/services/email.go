package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/huddlehq/huddle/backend/internal/config"
	"github.com/huddlehq/huddle/backend/pkg/logger"
)

// EmailService sends transactional mail over SMTP. When disabled it
// logs and drops messages so the rest of the system never blocks on a
// mail server.
type EmailService struct {
	cfg         config.EmailConfig
	frontendURL string
}

func NewEmailService(cfg config.EmailConfig, frontendURL string) *EmailService {
	return &EmailService{cfg: cfg, frontendURL: frontendURL}
}

// Deliver sends one email. It is the processor behind the task queue.
func (s *EmailService) Deliver(task EmailTask) error {
	if !s.cfg.Enabled {
		logger.Info().Str("to", task.To).Str("subject", task.Subject).
			Msg("Email disabled, dropping message")
		return nil
	}

	contentType := "text/plain; charset=UTF-8"
	if task.HTML {
		contentType = "text/html; charset=UTF-8"
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", task.To))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", task.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: %s\r\n", contentType))
	msg.WriteString("\r\n")
	msg.WriteString(task.Body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	if s.cfg.UseTLS {
		err = s.sendTLS(addr, auth, task.To, msg.String())
	} else {
		err = smtp.SendMail(addr, auth, s.cfg.From, []string{task.To}, []byte(msg.String()))
	}
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", task.To, err)
	}
	logger.Info().Str("to", task.To).Str("subject", task.Subject).Msg("Email sent")
	return nil
}

// sendTLS speaks SMTP over an implicit TLS connection (port 465 style
// servers, where STARTTLS is not offered).
func (s *EmailService) sendTLS(addr string, auth smtp.Auth, to, message string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	return w.Close()
}

// InviteEmail builds the invite notification for a workspace invite.
func (s *EmailService) InviteEmail(to, inviterName, workspaceName, token, customMessage string) EmailTask {
	link := fmt.Sprintf("%s/invites/%s", s.frontendURL, token)
	var custom string
	if customMessage != "" {
		custom = fmt.Sprintf(`<blockquote style="color:#555;border-left:3px solid #ccc;padding-left:12px;">%s</blockquote>`, customMessage)
	}
	body := fmt.Sprintf(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto;">
  <h2>You've been invited to %s</h2>
  <p>%s invited you to join the <strong>%s</strong> workspace.</p>
  %s
  <p><a href="%s" style="display:inline-block;background:#4f46e5;color:#fff;padding:10px 20px;border-radius:6px;text-decoration:none;">Accept invitation</a></p>
  <p style="color:#888;font-size:13px;">This invitation expires in 7 days. If you weren't expecting it, you can ignore this email.</p>
</div>`, workspaceName, inviterName, workspaceName, custom, link)

	return EmailTask{
		To:      to,
		Subject: fmt.Sprintf("Invitation to join %s", workspaceName),
		Body:    body,
		HTML:    true,
	}
}

// RecoveryEmail builds the account-recovery message.
func (s *EmailService) RecoveryEmail(to, token string) EmailTask {
	link := fmt.Sprintf("%s/account/recover/%s", s.frontendURL, token)
	body := fmt.Sprintf(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto;">
  <h2>Recover your account</h2>
  <p>We received a request to recover your account. Click the link below within 24 hours to restore it.</p>
  <p><a href="%s" style="display:inline-block;background:#4f46e5;color:#fff;padding:10px 20px;border-radius:6px;text-decoration:none;">Recover account</a></p>
  <p style="color:#888;font-size:13px;">If you didn't request this, no action is needed. Your account stays scheduled for permanent deletion at the end of the grace period.</p>
</div>`, link)

	return EmailTask{
		To:      to,
		Subject: "Account recovery",
		Body:    body,
		HTML:    true,
	}
}
