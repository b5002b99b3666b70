package notify

import (
	"context"
	"fmt"
	"net/http"
)

// Embed colors by score band.
const (
	discordColorHot  = 0xE74C3C
	discordColorWarm = 0xF39C12
	discordColorCool = 0x3498DB
)

type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewDiscordNotifier(webhookURL string, client *http.Client) *DiscordNotifier {
	return &DiscordNotifier{webhookURL: webhookURL, client: newHTTPClient(client)}
}

func (d *DiscordNotifier) Name() string {
	return "discord"
}

func (d *DiscordNotifier) Notify(ctx context.Context, n LeadNotification) error {
	return postJSON(ctx, d.client, d.Name(), d.webhookURL, discordPayload(n))
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields"`
}

type discordMessage struct {
	Content string         `json:"content"`
	Embeds  []discordEmbed `json:"embeds"`
}

func discordColor(score int) int {
	switch {
	case score >= 85:
		return discordColorHot
	case score >= 70:
		return discordColorWarm
	default:
		return discordColorCool
	}
}

func discordPayload(n LeadNotification) discordMessage {
	field := func(name, value string) discordField {
		return discordField{Name: name, Value: valueOrDash(value), Inline: true}
	}

	return discordMessage{
		Content: fmt.Sprintf("New high-value lead (score %d)", n.Score),
		Embeds: []discordEmbed{{
			Title:       valueOrDash(n.Name),
			Description: truncate(n.Message, 1000),
			URL:         n.AdminURL,
			Color:       discordColor(n.Score),
			Fields: []discordField{
				field("Email", n.Email),
				field("Company", n.Company),
				field("Phone", n.Phone),
				field("Service", n.Service),
				field("Budget", n.Budget),
				field("Timeline", n.Timeline),
				field("Source", n.Source),
				field("Score", fmt.Sprintf("%d", n.Score)),
			},
		}},
	}
}
