package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplates_AllNamesRender(t *testing.T) {
	templates := MustLoadTemplates()

	for name := range subjects {
		t.Run(name, func(t *testing.T) {
			msg, err := templates.Compose(name, "ada@example.com", TemplateData{
				SiteURL:       "https://hudsondigitalsolutions.com",
				FirstName:     "ada",
				Name:          "Ada Lovelace",
				Heading:       "A quick idea",
				ResourceTitle: "SEO Starter Guide",
				Paragraphs:    []string{"First.", "Second."},
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"ada@example.com"}, msg.To)
			assert.Equal(t, name, msg.Template)
			assert.NotEmpty(t, msg.Subject)
			assert.Contains(t, msg.HTML, "<!DOCTYPE html>")
			assert.NotEmpty(t, msg.Text)
			assert.NotContains(t, msg.Text, "<no value>")
		})
	}
}

func TestCompose_GreetingIsTitleCased(t *testing.T) {
	msg, err := MustLoadTemplates().Compose(TemplateLeadMagnetDelivery, "x@example.com", TemplateData{
		FirstName:     "mARY ann",
		ResourceTitle: "SaaS Launch Playbook",
		ActionURL:     "https://hudsondigitalsolutions.com/downloads/saas-launch-playbook.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "Your download: SaaS Launch Playbook", msg.Subject)
	assert.Contains(t, msg.Text, "Hi Mary Ann,")
	assert.Contains(t, msg.HTML, "Hi Mary Ann,")
	assert.Contains(t, msg.HTML, `href="https://hudsondigitalsolutions.com/downloads/saas-launch-playbook.pdf"`)
}

func TestCompose_EscapesHTML(t *testing.T) {
	msg, err := MustLoadTemplates().Compose(TemplateContactAdminAlert, "admin@example.com", TemplateData{
		Name:    "Eve",
		Message: "<script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.Text, "<script>alert(1)</script>")
}

func TestCompose_AnonymousGreeting(t *testing.T) {
	msg, err := MustLoadTemplates().Compose(TemplateNewsletterWelcome, "x@example.com", TemplateData{})
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "Hi there,")
}

func TestCompose_UnknownTemplate(t *testing.T) {
	_, err := MustLoadTemplates().Compose("nope", "x@example.com", TemplateData{})
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "", DisplayName("  "))
	assert.Equal(t, "Grace", DisplayName("GRACE"))
}
