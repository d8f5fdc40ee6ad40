package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jjenkins/clubs/internal/catalog"
	"github.com/jjenkins/clubs/internal/contactform"
	"github.com/jjenkins/clubs/internal/service"
	"github.com/jjenkins/clubs/internal/visitor"
)

const cookieName = "clubs_session"

type testSite struct {
	app      *fiber.App
	site     *Site
	join     *service.Fake
	contact  *service.Fake
	sessions *session.Store
	timers   []func()
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func newTestSite(t *testing.T, sessions *session.Store) *testSite {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	if sessions == nil {
		sessions = session.New(session.Config{
			KeyLookup:    "cookie:" + cookieName,
			KeyGenerator: uuid.NewString,
		})
	}

	ts := &testSite{join: service.NewFake(), contact: service.NewFake(), sessions: sessions}
	logger := zaptest.NewLogger(t)
	registry := visitor.NewRegistry(visitor.Deps{
		Catalog:          cat,
		JoinSubmitter:    ts.join,
		ContactSubmitter: ts.contact,
		Token:            "shared-token",
		AfterFunc: func(d time.Duration, fn func()) contactform.Timer {
			ts.timers = append(ts.timers, fn)
			return noopTimer{}
		},
		Logger: logger,
	})

	ts.site = &Site{
		Catalog:  cat,
		Registry: registry,
		Sessions: sessions,
		Stats:    service.NewStatsService(cat).Calculate(),
		Logger:   logger,
	}
	ts.app = fiber.New()
	Register(ts.app, ts.site)
	return ts
}

// browser keeps the session cookie between requests
type browser struct {
	t      *testing.T
	app    *fiber.App
	cookie string
	htmx   bool
}

func (ts *testSite) browser(t *testing.T) *browser {
	return &browser{t: t, app: ts.app}
}

func (b *browser) do(method, target string, form url.Values, headers map[string]string) (*http.Response, string) {
	b.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if b.cookie != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: b.cookie})
	}
	if b.htmx {
		req.Header.Set("HX-Request", "true")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, c := range resp.Cookies() {
		if c.Name == cookieName && c.Value != "" {
			b.cookie = c.Value
		}
	}

	raw, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(raw)
}

func (b *browser) get(target string) (*http.Response, string) {
	return b.do(http.MethodGet, target, nil, nil)
}

func (b *browser) post(target string, form url.Values) (*http.Response, string) {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, target, form, nil)
}

func (b *browser) screen() string {
	b.t.Helper()
	resp, html := b.get("/")
	require.Equal(b.t, http.StatusOK, resp.StatusCode)
	return html
}

func validApplication() url.Values {
	return url.Values{
		"club":       {"tridev"},
		"firstName":  {"Ada"},
		"lastName":   {"Lovelace"},
		"email":      {"ada@example.org"},
		"phone":      {"9876543210"},
		"studentId":  {"OIS-042"},
		"grade":      {"11"},
		"experience": {""},
		"motivation": {"I like building things"},
	}
}

func openJoinForm(t *testing.T, b *browser, club string) {
	t.Helper()
	resp, _ := b.post("/clubs/"+club, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp, _ = b.post("/join", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestHomeStartsAtDirectory(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)

	html := b.screen()

	assert.Contains(t, html, `data-view="directory"`)
	assert.Contains(t, html, "TriDev")
	assert.Contains(t, html, "Astrophiles")
	assert.NotEmpty(t, b.cookie)
}

func TestSelectClubShowsDetail(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)

	resp, _ := b.post("/clubs/tridev", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	html := b.screen()
	assert.Contains(t, html, `data-view="detail"`)
	assert.Contains(t, html, `id="detail-tridev"`)
}

func TestSelectUnknownClub(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)

	resp, _ := b.post("/clubs/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, b.screen(), `data-view="directory"`)
}

func TestJoinWithoutClubIsConflict(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)

	resp, _ := b.post("/join", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestJoinSubmitEmptyShowsErrorsWithoutNetwork(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	openJoinForm(t, b, "tridev")

	resp, html := b.post("/join/submit", url.Values{"club": {"tridev"}})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, html, "First name is required")
	assert.Contains(t, html, "Please select your grade")
	assert.Contains(t, html, "Please tell us why you want to join")
	assert.Equal(t, 0, ts.join.Calls())
}

func TestJoinSubmitBadEmail(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	openJoinForm(t, b, "tridev")

	form := validApplication()
	form.Set("email", "not-an-email")
	resp, html := b.post("/join/submit", form)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, html, "Please enter a valid email address")
	assert.NotContains(t, html, "is required")
	assert.Equal(t, 0, ts.join.Calls())
}

func TestJoinSubmitSuccessShowsSameClub(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	openJoinForm(t, b, "tridev")

	resp, _ := b.post("/join/submit", validApplication())
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	html := b.screen()
	assert.Contains(t, html, `data-view="join_success"`)
	assert.Contains(t, html, `id="join-success" data-club="tridev"`)

	require.Equal(t, 1, ts.join.Calls())
	payload := ts.join.Last()
	assert.Equal(t, "tridev", payload["club"])
	assert.Equal(t, "shared-token", payload["token"])
	assert.Equal(t, "Ada", payload["firstName"])
	assert.Equal(t, "11", payload["grade"])
}

func TestJoinSubmitTransportFailureKeepsDraft(t *testing.T) {
	ts := newTestSite(t, nil)
	ts.join.Err = errors.New("boom")
	b := ts.browser(t)
	openJoinForm(t, b, "tridev")

	resp, html := b.post("/join/submit", validApplication())
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, html, `role="alert"`)

	html = b.screen()
	assert.Contains(t, html, `data-view="join_form"`)
	assert.Contains(t, html, `value="Ada"`)
}

func TestJoinSubmitStaleClubIsConflict(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	openJoinForm(t, b, "astrophiles")

	resp, _ := b.post("/join/submit", validApplication())

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 0, ts.join.Calls())
}

func TestJoinSubmitTwiceSendsOnce(t *testing.T) {
	ts := newTestSite(t, nil)
	ts.join.Gate = make(chan struct{})
	b := ts.browser(t)
	openJoinForm(t, b, "tridev")

	other := &browser{t: t, app: ts.app, cookie: b.cookie}
	first := make(chan int, 1)
	go func() {
		resp, _ := other.post("/join/submit", validApplication())
		first <- resp.StatusCode
	}()
	<-ts.join.Started()

	resp, html := b.post("/join/submit", validApplication())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, html, "Submitting...")

	close(ts.join.Gate)
	assert.Equal(t, http.StatusSeeOther, <-first)
	assert.Equal(t, 1, ts.join.Calls())
}

func TestJoinFieldClearsErrorForHTMX(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	openJoinForm(t, b, "tridev")

	resp, _ := b.post("/join/submit", url.Values{"club": {"tridev"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	b.htmx = true
	resp, html := b.do(http.MethodPost, "/join/field", url.Values{"email": {"a"}}, map[string]string{"HX-Trigger-Name": "email"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `<p id="err-email" class="error"></p>`, html)

	b.htmx = false
	html = b.screen()
	assert.Contains(t, html, `value="a"`)
	assert.Contains(t, html, "First name is required")
}

func TestJoinFieldHTMXWithoutTriggerRedirects(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	openJoinForm(t, b, "tridev")
	b.htmx = true

	resp, html := b.post("/join/field", url.Values{"firstName": {"Ada"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("HX-Redirect"))
	assert.NotContains(t, html, `id="err-"`)

	b.htmx = false
	assert.Contains(t, b.screen(), `value="Ada"`)
}

func TestJoinSubmitHTMXReturnsFormFragment(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	openJoinForm(t, b, "tridev")
	b.htmx = true

	resp, html := b.post("/join/submit", url.Values{"club": {"tridev"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, html, `id="join-form"`)
	assert.NotContains(t, html, "<!doctype html>")

	resp, _ = b.post("/join/submit", validApplication())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("HX-Redirect"))
}

func TestGoHomeFromJoinForm(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	openJoinForm(t, b, "tridev")

	resp, _ := b.post("/home", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, b.screen(), `data-view="directory"`)

	resp, _ = b.post("/join/submit", validApplication())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 0, ts.join.Calls())
}

func TestDeepLinkIntoSuccess(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)

	resp, _ := b.get("/?club=Astrophiles&success=true")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	html := b.screen()
	assert.Contains(t, html, `data-view="join_success"`)
	assert.Contains(t, html, `data-club="astrophiles"`)
	assert.Equal(t, 0, ts.join.Calls())
}

func TestDeepLinkReplacesExistingState(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	openJoinForm(t, b, "tridev")

	resp, _ := b.get("/?club=astrophiles&success=true")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	html := b.screen()
	assert.Contains(t, html, `data-club="astrophiles"`)
	assert.Contains(t, html, `data-view="join_success"`)
}

func TestDeepLinkUnknownClubShowsDirectory(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)

	resp, html := b.get("/?club=doesnotexist&success=true")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, html, `data-view="directory"`)
}

func TestDeepLinkWithoutSuccessFlagIsIgnored(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)

	resp, html := b.get("/?club=tridev")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, html, `data-view="directory"`)
}

func TestNavigationSurvivesRegistryLoss(t *testing.T) {
	first := newTestSite(t, nil)
	b := first.browser(t)
	resp, _ := b.post("/clubs/astrophiles", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	restarted := newTestSite(t, first.sessions)
	b.app = restarted.app

	html := b.screen()
	assert.Contains(t, html, `data-view="detail"`)
	assert.Contains(t, html, `id="detail-astrophiles"`)
}

func TestContactFlow(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	b.htmx = true

	resp, html := b.post("/contact/open", url.Values{"club": {"tridev"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, html, `value="Inquiry about TriDev"`)

	resp, html = b.post("/contact/submit", url.Values{"name": {""}, "email": {"x"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, html, "Name is required")
	assert.Contains(t, html, "Please enter a valid email address")
	assert.Equal(t, 0, ts.contact.Calls())

	resp, html = b.post("/contact/submit", url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.org"},
		"message": {"When do you meet?"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, html, "Message Sent!")
	require.Equal(t, 1, ts.contact.Calls())
	assert.Equal(t, "Inquiry about TriDev", ts.contact.Last()["subject"])

	require.Len(t, ts.timers, 1)
	ts.timers[0]()

	_, html = b.get("/contact")
	assert.NotContains(t, html, "<form")
}

func TestContactHoneypotIsAcknowledgedButNotSent(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	b.htmx = true

	b.post("/contact/open", nil)
	resp, html := b.post("/contact/submit", url.Values{
		"name":      {"Bot"},
		"email":     {"bot@example.org"},
		"subject":   {"Hi"},
		"message":   {"Buy now"},
		"bot-field": {"filled"},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, html, "Message Sent!")
	assert.Equal(t, 0, ts.contact.Calls())
}

func TestContactTransportFailureIsNotShown(t *testing.T) {
	ts := newTestSite(t, nil)
	ts.contact.Err = errors.New("down")
	b := ts.browser(t)
	b.htmx = true

	b.post("/contact/open", nil)
	resp, html := b.post("/contact/submit", url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.org"},
		"subject": {"Hello"},
		"message": {"Hi"},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, html, "Message Sent!")
}

func TestContactSubmitWhileClosed(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)

	resp, _ := b.post("/contact/submit", url.Values{"name": {"Ada"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestContactResubmitDuringAcknowledgment(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	b.htmx = true

	b.post("/contact/open", nil)
	inquiry := url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.org"},
		"subject": {"Hello"},
		"message": {"Hi"},
	}
	resp, _ := b.post("/contact/submit", inquiry)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, html := b.post("/contact/submit", inquiry)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, html, "Message Sent!")
	assert.Equal(t, 1, ts.contact.Calls())
	assert.Len(t, ts.timers, 1)
}

func TestContactOverlayKeepsPrimaryView(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)

	b.post("/clubs/tridev", nil)
	resp, _ := b.post("/contact/open", url.Values{"club": {"tridev"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	html := b.screen()
	assert.Contains(t, html, `data-view="detail"`)
	assert.Contains(t, html, `name="bot-field"`)

	b.post("/contact/close", nil)
	assert.NotContains(t, b.screen(), `name="bot-field"`)
}

func TestLearnMoreOverlay(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)

	b.post("/learn-more/open", nil)
	assert.Contains(t, b.screen(), "How to Join a Club")

	b.post("/learn-more/close", nil)
	assert.NotContains(t, b.screen(), "How to Join a Club")
}

func TestHealth(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	b.screen()

	resp, body := b.get("/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","clubs":2,"visitors":1}`, body)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestSite(t, nil)
	b := ts.browser(t)
	b.screen()

	resp, body := b.get("/metrics")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "clubs_active_visitors")
}
