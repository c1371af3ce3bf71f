package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/rsmonitor/internal/models"
)

type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     []string
}

// NewEmailNotifier builds the SMTP channel. The dialer upgrades to TLS when
// the server offers STARTTLS and authenticates only when credentials are set.
func NewEmailNotifier(host string, port int, username, password, from string, to []string) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		to:     to,
	}
}

func (e *EmailNotifier) Name() string { return "email" }

func (e *EmailNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.to...)
	m.SetHeader("Subject", fmt.Sprintf("[RS Systems Alert] %s: %s",
		strings.ToUpper(string(alert.Severity)), alert.Title))
	m.SetBody("text/plain", plainBody(alert))
	m.AddAlternative("text/html", htmlBody(alert))

	if err := e.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send alert email: %v", err)
	}

	return nil
}

func plainBody(alert *models.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n\n", strings.ToUpper(string(alert.Severity)), alert.Title)
	fmt.Fprintf(&b, "Component: %s\n", alert.Component)
	fmt.Fprintf(&b, "Message: %s\n", alert.Message)
	if alert.ActualValue != nil {
		fmt.Fprintf(&b, "Actual Value: %s\n", formatValue(*alert.ActualValue))
	}
	if alert.ThresholdValue != nil {
		fmt.Fprintf(&b, "Threshold: %s\n", formatValue(*alert.ThresholdValue))
	}
	fmt.Fprintf(&b, "Time: %s\n", alert.CreatedAt.Format(time.RFC1123))
	b.WriteString("\nRS Systems Health Monitor\n")
	return b.String()
}

func htmlBody(alert *models.Alert) string {
	var values strings.Builder
	if alert.ActualValue != nil {
		fmt.Fprintf(&values, "<p><strong>Actual Value:</strong> %s</p>\n", formatValue(*alert.ActualValue))
	}
	if alert.ThresholdValue != nil {
		fmt.Fprintf(&values, "<p><strong>Threshold:</strong> %s</p>\n", formatValue(*alert.ThresholdValue))
	}

	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; margin: 0;">
<div style="background-color: %s; color: white; padding: 12px 16px;">
<h2 style="margin: 0;">%s: %s</h2>
</div>
<div style="padding: 16px;">
<p><strong>Component:</strong> %s</p>
<p>%s</p>
%s<p><strong>Time:</strong> %s</p>
<hr>
<p style="color: #6c757d; font-size: 12px;">RS Systems Health Monitor</p>
</div>
</body>
</html>`,
		bannerColor(alert.Severity),
		strings.ToUpper(string(alert.Severity)), alert.Title,
		alert.Component,
		alert.Message,
		values.String(),
		alert.CreatedAt.Format("2006-01-02 15:04:05"))
}

func bannerColor(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "#dc3545"
	case models.SeverityWarning:
		return "#ffc107"
	default:
		return "#28a745"
	}
}
