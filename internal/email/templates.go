package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	TemplateContactConfirmation     = "contact-confirmation"
	TemplateContactAdminAlert       = "contact-admin-alert"
	TemplateLeadMagnetDelivery      = "lead-magnet-delivery"
	TemplateNewsletterWelcome       = "newsletter-welcome"
	TemplateGDPRVerification        = "gdpr-verification"
	TemplateGDPRErasureConfirmation = "gdpr-erasure-confirmation"
	TemplateSequenceStep            = "sequence-step"
)

//go:embed templates/*
var templateFS embed.FS

var subjects = map[string]string{
	TemplateContactConfirmation:     "We received your message",
	TemplateContactAdminAlert:       "New contact: {{.Name}}{{if .HighValue}} [score {{.Score}}]{{end}}",
	TemplateLeadMagnetDelivery:      "Your download: {{.ResourceTitle}}",
	TemplateNewsletterWelcome:       "Welcome to the HDS newsletter",
	TemplateGDPRVerification:        "Confirm your privacy request",
	TemplateGDPRErasureConfirmation: "Your data has been deleted",
	TemplateSequenceStep:            "{{.Heading}}",
}

// TemplateData is shared by every template; each one reads only the fields it needs.
type TemplateData struct {
	Subject        string
	SiteURL        string
	UnsubscribeURL string

	FirstName string
	Name      string
	Email     string
	Company   string
	Phone     string
	Service   string
	Budget    string
	Timeline  string
	Message   string
	Score     int
	HighValue bool
	LeadID    uint

	ResourceTitle string
	Heading       string
	Paragraphs    []string
	ActionURL     string
	ActionLabel   string
	ExpiresAt     string
	Count         int64
}

type compiledTemplate struct {
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

type Templates struct {
	byName map[string]compiledTemplate
}

// DisplayName title-cases a first name for greetings ("aDA" -> "Ada").
func DisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	// Casers keep state and are not shared between goroutines.
	return cases.Title(language.English).String(strings.ToLower(name))
}

func greeting(firstName string) string {
	if n := DisplayName(firstName); n != "" {
		return "Hi " + n + ","
	}
	return "Hi there,"
}

func LoadTemplates() (*Templates, error) {
	funcs := map[string]any{"greeting": greeting, "title": DisplayName}

	t := &Templates{byName: make(map[string]compiledTemplate, len(subjects))}
	for name, subject := range subjects {
		subjectTmpl, err := texttemplate.New(name + ".subject").Parse(subject)
		if err != nil {
			return nil, fmt.Errorf("email: parse subject %s: %w", name, err)
		}

		htmlTmpl, err := htmltemplate.New(name).Funcs(htmltemplate.FuncMap(funcs)).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("email: parse html %s: %w", name, err)
		}

		textTmpl, err := texttemplate.New(name+".txt").Funcs(texttemplate.FuncMap(funcs)).
			ParseFS(templateFS, "templates/"+name+".txt")
		if err != nil {
			return nil, fmt.Errorf("email: parse text %s: %w", name, err)
		}

		t.byName[name] = compiledTemplate{subject: subjectTmpl, html: htmlTmpl, text: textTmpl}
	}

	return t, nil
}

func MustLoadTemplates() *Templates {
	t, err := LoadTemplates()
	if err != nil {
		panic(err)
	}
	return t
}

// Compose renders the named template into a Message addressed to `to`.
func (t *Templates) Compose(name string, to string, data TemplateData) (Message, error) {
	compiled, ok := t.byName[name]
	if !ok {
		return Message{}, fmt.Errorf("email: unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := compiled.subject.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("email: render subject %s: %w", name, err)
	}
	data.Subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := compiled.html.ExecuteTemplate(&buf, "layout", data); err != nil {
		return Message{}, fmt.Errorf("email: render html %s: %w", name, err)
	}
	html := buf.String()

	buf.Reset()
	if err := compiled.text.ExecuteTemplate(&buf, name+".txt", data); err != nil {
		return Message{}, fmt.Errorf("email: render text %s: %w", name, err)
	}

	return Message{
		To:       []string{to},
		Subject:  data.Subject,
		HTML:     html,
		Text:     strings.TrimSpace(buf.String()) + "\n",
		Template: name,
	}, nil
}
