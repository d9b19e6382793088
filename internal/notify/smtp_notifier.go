package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"mbti-bot/internal/domain"
)

// SMTPNotifier envia el reporte final via SMTP.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	useTLS   bool
}

func NewSMTPNotifier(host string, port int, username, password, from, fromName string, useTLS bool) (*SMTPNotifier, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPNotifier{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		useTLS:   useTLS,
	}, nil
}

func (n *SMTPNotifier) SendReport(_ context.Context, to string, report domain.Report) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("to address is required")
	}

	subject := fmt.Sprintf("Your personality type: %s", report.Result.FullCode())
	msg := buildMessage(n.from, n.fromName, to, subject, FormatReport(report))
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	if n.useTLS {
		conn, err := tls.Dial("tcp", addr, &tls.Config{
			ServerName: n.host,
		})
		if err != nil {
			return err
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, n.host)
		if err != nil {
			return err
		}
		defer client.Quit()

		if auth != nil {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
		if err := client.Mail(n.from); err != nil {
			return err
		}
		if err := client.Rcpt(to); err != nil {
			return err
		}
		writer, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := writer.Write([]byte(msg)); err != nil {
			_ = writer.Close()
			return err
		}
		return writer.Close()
	}

	return smtp.SendMail(addr, auth, n.from, []string{to}, []byte(msg))
}

// FormatReport renderiza el reporte como texto plano, replicando el desglose
// del embed original.
func FormatReport(report domain.Report) string {
	var b strings.Builder
	name := report.Result.Username
	if name == "" {
		name = report.Result.UserID
	}
	fmt.Fprintf(&b, "%s, your personality type is %s.\n\n", name, report.Result.FullCode())
	if report.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", report.Description)
	}
	if report.Previous != nil {
		fmt.Fprintf(&b, "Previous result: %s\n", report.Previous.FullCode())
	}
	if len(report.TopMatches) > 0 {
		fmt.Fprintf(&b, "Most compatible types: %s\n", strings.Join(report.TopMatches, ", "))
	}
	fmt.Fprintf(&b, "\nScore breakdown:\n")
	fmt.Fprintf(&b, "- Main questions average (max 1.2): %.2f\n", report.MainAverage)
	fmt.Fprintf(&b, "- Subtype questions average (max 0.9): %.2f\n", report.SubtypeAverage)
	fmt.Fprintf(&b, "=> Classified as %q (%s) based on these averages.\n",
		report.Result.Subtype, report.SubtypeReason)
	return b.String()
}

func buildMessage(from, fromName, to, subject, body string) string {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
	}

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
