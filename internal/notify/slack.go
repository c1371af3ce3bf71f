package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/slack-go/slack"

	"github.com/rsmonitor/internal/models"
)

type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
}

func NewSlackNotifier(webhookURL, channel, username string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		username:   username,
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	attachment := slack.Attachment{
		Color: getAlertColor(alert.Severity),
		Title: fmt.Sprintf("%s: %s", strings.ToUpper(string(alert.Severity)), alert.Title),
		Text:  alert.Message,
		Fields: []slack.AttachmentField{
			{Title: "Component", Value: alert.Component, Short: true},
			{Title: "Time", Value: alert.CreatedAt.Format("2006-01-02 15:04:05"), Short: true},
		},
		Footer: "RS Systems Health Monitor",
		Ts:     json.Number(strconv.FormatInt(alert.CreatedAt.Unix(), 10)),
	}

	// Value fields only make sense as a pair.
	if alert.ActualValue != nil && alert.ThresholdValue != nil {
		attachment.Fields = append(attachment.Fields,
			slack.AttachmentField{Title: "Actual Value", Value: formatValue(*alert.ActualValue), Short: true},
			slack.AttachmentField{Title: "Threshold", Value: formatValue(*alert.ThresholdValue), Short: true},
		)
	}

	msg := &slack.WebhookMessage{
		Channel:   s.channel,
		Username:  s.username,
		IconEmoji: getAlertEmoji(alert.Severity),
		Text:      fmt.Sprintf("Alert: %s", alert.Title),
		Attachments: []slack.Attachment{
			attachment,
		},
	}

	if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return fmt.Errorf("failed to post slack webhook: %v", err)
	}

	return nil
}

func getAlertColor(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "danger"
	case models.SeverityWarning:
		return "warning"
	case models.SeverityInfo:
		return "good"
	default:
		return "#808080"
	}
}

func getAlertEmoji(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return ":red_circle:"
	case models.SeverityWarning:
		return ":warning:"
	default:
		return ":information_source:"
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
