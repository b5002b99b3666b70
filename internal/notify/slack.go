package notify

import (
	"context"
	"fmt"
	"net/http"
)

type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewSlackNotifier(webhookURL string, client *http.Client) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL, client: newHTTPClient(client)}
}

func (s *SlackNotifier) Name() string {
	return "slack"
}

func (s *SlackNotifier) Notify(ctx context.Context, n LeadNotification) error {
	return postJSON(ctx, s.client, s.Name(), s.webhookURL, slackPayload(n))
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

func slackPayload(n LeadNotification) slackMessage {
	headline := fmt.Sprintf("New high-value lead: %s (score %d)", valueOrDash(n.Name), n.Score)

	field := func(label, value string) slackText {
		return slackText{Type: "mrkdwn", Text: fmt.Sprintf("*%s:*\n%s", label, valueOrDash(value))}
	}

	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: headline}},
		{
			Type: "section",
			Fields: []slackText{
				field("Email", n.Email),
				field("Company", n.Company),
				field("Service", n.Service),
				field("Budget", n.Budget),
				field("Timeline", n.Timeline),
				field("Source", n.Source),
			},
		},
	}

	if n.Message != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "> " + truncate(n.Message, 500)},
		})
	}
	if n.AdminURL != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("<%s|Open lead #%d>", n.AdminURL, n.LeadID)},
		})
	}

	return slackMessage{Text: headline, Blocks: blocks}
}
