// internal/pkg/email/smtp.go
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// buildMessage renders headers and body in wire format
func (s *Service) buildMessage(email *Email) []byte {
	headers := [][2]string{
		{"From", s.from()},
		{"To", strings.Join(email.To, ", ")},
		{"Subject", email.Subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/html; charset="utf-8"`},
	}
	if s.config.ReplyTo != "" {
		headers = append(headers, [2]string{"Reply-To", s.config.ReplyTo})
	}

	var msg bytes.Buffer
	for _, h := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n")
	msg.WriteString(email.HTMLContent)
	return msg.Bytes()
}

// sendSMTPEmail sends email over SMTP
func (s *Service) sendSMTPEmail(email *Email) error {
	if s.config.SMTPHost == "" || s.config.SMTPUsername == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host or username")
	}

	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	serverAddr := net.JoinHostPort(s.config.SMTPHost, strconv.Itoa(s.config.SMTPPort))
	msg := s.buildMessage(email)

	if s.config.SMTPUseTLS {
		return s.sendSMTPWithTLS(serverAddr, auth, email.To, msg)
	}
	return smtp.SendMail(serverAddr, auth, s.config.FromEmail, email.To, msg)
}

// sendSMTPWithTLS sends email over an implicit TLS connection
func (s *Service) sendSMTPWithTLS(serverAddr string, auth smtp.Auth, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", serverAddr, &tls.Config{ServerName: s.config.SMTPHost})
	if err != nil {
		return fmt.Errorf("failed to create TLS connection: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", addr, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send DATA command: %w", err)
	}
	if _, err := writer.Write(msg); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write email content: %w", err)
	}
	return writer.Close()
}
