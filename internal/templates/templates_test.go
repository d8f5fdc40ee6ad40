package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/clubs/internal/catalog"
	"github.com/jjenkins/clubs/internal/contactform"
	"github.com/jjenkins/clubs/internal/joinform"
	"github.com/jjenkins/clubs/internal/model"
	"github.com/jjenkins/clubs/internal/navigator"
	"github.com/jjenkins/clubs/internal/service"
	"github.com/jjenkins/clubs/internal/validate"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func club(t *testing.T, id string) *model.Club {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	c, ok := cat.Lookup(id)
	require.True(t, ok)
	return &c
}

func TestIndexDirectory(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	html := renderString(t, Index(Page{
		Clubs: cat.All(),
		Stats: service.NewStatsService(cat).Calculate(),
	}))

	assert.Contains(t, html, `data-view="directory"`)
	assert.Contains(t, html, `action="/clubs/tridev"`)
	assert.Contains(t, html, `action="/clubs/astrophiles"`)
	assert.Contains(t, html, "<dd>42</dd>")
	assert.NotContains(t, html, `id="learn-more"`)
	assert.NotContains(t, html, `class="overlay"`)
}

func TestIndexDetailHasMailto(t *testing.T) {
	html := renderString(t, Index(Page{State: navigator.State{SelectedClub: club(t, "tridev")}}))

	assert.Contains(t, html, `data-view="detail"`)
	assert.Contains(t, html, `href="mailto:`)
	assert.Contains(t, html, "subject=Question%20about%20TriDev")
	assert.Contains(t, html, `action="/join"`)
}

func TestIndexJoinSuccessLinks(t *testing.T) {
	html := renderString(t, Index(Page{State: navigator.State{SelectedClub: club(t, "tridev"), JoinSucceeded: true}}))

	assert.Contains(t, html, `data-view="join_success"`)
	assert.Contains(t, html, "Welcome to TriDev!")
	assert.Contains(t, html, `href="https://chat.whatsapp.com/tridev-oakridge" target="_blank" rel="noopener noreferrer"`)
	assert.Contains(t, html, `href="https://www.linkedin.com/groups/tridev-oakridge" target="_blank"`)
}

func TestIndexJoinSuccessWithoutNetworkLink(t *testing.T) {
	html := renderString(t, Index(Page{State: navigator.State{SelectedClub: club(t, "astrophiles"), JoinSucceeded: true}}))

	assert.Contains(t, html, "chat.whatsapp.com/astrophiles-oakridge")
	assert.NotContains(t, html, "linkedin")
}

func TestJoinFormErrorsAndBusyState(t *testing.T) {
	v := joinform.View{
		Club:   *club(t, "astrophiles"),
		Draft:  model.JoinApplication{FirstName: "Ada", Grade: model.Grade11},
		Errors: validate.Errors{model.FieldEmail: "Please enter a valid email address"},
		Notice: joinform.FailureNotice,
	}

	html := renderString(t, JoinForm(v))
	assert.Contains(t, html, `value="Ada"`)
	assert.Contains(t, html, `<p id="err-email" class="error">Please enter a valid email address</p>`)
	assert.Contains(t, html, `<option value="11" selected>`)
	assert.Contains(t, html, `name="email" type="email" value="" aria-invalid`)
	assert.NotContains(t, html, `name="firstName" type="text" value="Ada" aria-invalid`)
	assert.Contains(t, html, `role="alert"`)
	assert.Contains(t, html, "Submit Application")

	v.Submitting = true
	html = renderString(t, JoinForm(v))
	assert.Contains(t, html, "Submitting...")
	assert.Contains(t, html, "disabled")
}

func TestIndexEscapesCatalogText(t *testing.T) {
	c := model.Club{
		ID:              "chess",
		Name:            "<script>alert(1)</script>",
		LeadershipEmail: "lead@example.org",
		ChatURL:         "javascript:alert(1)",
	}

	html := renderString(t, Index(Page{State: navigator.State{SelectedClub: &c, JoinSucceeded: true}}))

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, html, `href="javascript:`)
	assert.Contains(t, html, `href="mailto:lead@example.org?subject=`)
}

func TestIndexTitle(t *testing.T) {
	assert.Contains(t, renderString(t, Index(Page{})), "<title>Oakridge Clubs</title>")
	assert.Contains(t, renderString(t, Index(Page{Title: "Clubs Fair"})), "<title>Clubs Fair</title>")
}

func TestFieldError(t *testing.T) {
	assert.Equal(t, `<p id="err-phone" class="error"></p>`, renderString(t, FieldError("phone", "")))
	assert.Equal(t, `<p id="err-phone" class="error">Phone number is required</p>`,
		renderString(t, FieldError("phone", "Phone number is required")))
}

func TestContactModal(t *testing.T) {
	closed := renderString(t, ContactModal(contactform.View{}))
	assert.Contains(t, closed, `id="contact-modal"`)
	assert.NotContains(t, closed, "<form")

	open := renderString(t, ContactModal(contactform.View{
		Open:  true,
		Club:  club(t, "astrophiles"),
		Draft: model.ContactInquiry{Subject: "Inquiry about Astrophiles"},
	}))
	assert.Contains(t, open, "Contact Astrophiles")
	assert.Contains(t, open, SchoolPhone)
	assert.Contains(t, open, `value="Inquiry about Astrophiles"`)
	assert.Contains(t, open, `name="bot-field"`)

	ack := renderString(t, ContactModal(contactform.View{Open: true, Succeeded: true}))
	assert.Contains(t, ack, "Message Sent!")
	assert.Contains(t, ack, `hx-get="/contact"`)
	assert.NotContains(t, ack, `action="/contact/submit"`)
}

func TestIndexLearnMoreOverlay(t *testing.T) {
	html := renderString(t, Index(Page{State: navigator.State{LearnMoreOpen: true}}))

	assert.Contains(t, html, `id="learn-more"`)
	assert.Contains(t, html, "How to Join a Club")
	assert.Contains(t, html, "Attend First Meeting")
}
