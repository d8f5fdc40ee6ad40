package joinform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jjenkins/clubs/internal/model"
	"github.com/jjenkins/clubs/internal/service"
)

var testClub = model.Club{ID: "astrophiles", Name: "Astrophiles", LeadershipEmail: "lead@example.org"}

type harness struct {
	form      *Form
	fake      *service.Fake
	successes []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{fake: service.NewFake()}
	h.form = New(testClub, Options{
		Token:     "shared-token",
		Submitter: h.fake,
		OnSuccess: func(clubID string) { h.successes = append(h.successes, clubID) },
		Logger:    zaptest.NewLogger(t),
	})
	return h
}

func fill(t *testing.T, f *Form) {
	t.Helper()
	values := map[string]string{
		model.FieldFirstName:  "Ada",
		model.FieldLastName:   "Lovelace",
		model.FieldEmail:      "ada@example.org",
		model.FieldPhone:      "12345",
		model.FieldStudentID:  "S-1",
		model.FieldGrade:      "10",
		model.FieldMotivation: "Stars",
	}
	for k, v := range values {
		require.NoError(t, f.Set(k, v))
	}
}

func TestSubmitEmptyReportsAllErrorsWithoutNetwork(t *testing.T) {
	h := newHarness(t)

	err := h.form.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)

	view := h.form.View()
	assert.Len(t, view.Errors, 7)
	assert.Equal(t, 0, h.fake.Calls())
	assert.Empty(t, h.successes)
	assert.False(t, view.Submitting)
}

func TestSubmitBadEmailBlocksSubmission(t *testing.T) {
	h := newHarness(t)
	fill(t, h.form)
	require.NoError(t, h.form.Set(model.FieldEmail, "not-an-email"))

	err := h.form.Submit(context.Background())
	require.ErrorIs(t, err, ErrInvalid)

	view := h.form.View()
	assert.Len(t, view.Errors, 1)
	assert.True(t, view.Errors.Has(model.FieldEmail))
	assert.Equal(t, 0, h.fake.Calls())
}

func TestSetClearsOnlyThatFieldsError(t *testing.T) {
	h := newHarness(t)
	require.ErrorIs(t, h.form.Submit(context.Background()), ErrInvalid)

	require.NoError(t, h.form.Set(model.FieldFirstName, "A"))

	view := h.form.View()
	assert.False(t, view.Errors.Has(model.FieldFirstName))
	assert.True(t, view.Errors.Has(model.FieldLastName))
	assert.True(t, view.Errors.Has(model.FieldEmail))
	assert.Len(t, view.Errors, 6)
}

func TestSetUnknownField(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.form.Set("club", "tridev"), ErrUnknownField)
	assert.Equal(t, "astrophiles", h.form.View().Draft.ClubID)
}

func TestSubmitSuccess(t *testing.T) {
	h := newHarness(t)
	fill(t, h.form)
	require.NoError(t, h.form.Set(model.FieldExperience, "Owns a telescope"))

	require.NoError(t, h.form.Submit(context.Background()))

	assert.Equal(t, []string{"astrophiles"}, h.successes)
	assert.Equal(t, 1, h.fake.Calls())
	assert.Equal(t, map[string]string{
		"token":      "shared-token",
		"firstName":  "Ada",
		"lastName":   "Lovelace",
		"email":      "ada@example.org",
		"studentId":  "S-1",
		"phone":      "12345",
		"grade":      "10",
		"club":       "astrophiles",
		"experience": "Owns a telescope",
		"motivation": "Stars",
	}, h.fake.Last())

	assert.False(t, h.form.Mounted())
	assert.False(t, h.form.Submitting())

	// the session is over, nothing is sent twice
	assert.ErrorIs(t, h.form.Submit(context.Background()), ErrUnmounted)
	assert.Equal(t, 1, h.fake.Calls())
	assert.Len(t, h.successes, 1)
}

func TestSubmitTransportFailureKeepsDraft(t *testing.T) {
	h := newHarness(t)
	h.fake.Err = service.ErrTransport
	fill(t, h.form)

	err := h.form.Submit(context.Background())
	require.ErrorIs(t, err, service.ErrTransport)

	view := h.form.View()
	assert.Equal(t, FailureNotice, view.Notice)
	assert.Equal(t, "Ada", view.Draft.FirstName)
	assert.False(t, view.Submitting)
	assert.True(t, h.form.Mounted())
	assert.Empty(t, h.successes)

	// user resubmits once the endpoint is back
	h.fake.Err = nil
	require.NoError(t, h.form.Submit(context.Background()))
	assert.Equal(t, 2, h.fake.Calls())
	assert.Equal(t, []string{"astrophiles"}, h.successes)
}

func TestSubmitTwiceIssuesOneCall(t *testing.T) {
	h := newHarness(t)
	h.fake.Gate = make(chan struct{})
	fill(t, h.form)

	done := make(chan error, 1)
	go func() { done <- h.form.Submit(context.Background()) }()

	select {
	case <-h.fake.Started():
	case <-time.After(time.Second):
		t.Fatal("submission never started")
	}

	assert.True(t, h.form.Submitting())
	assert.ErrorIs(t, h.form.Submit(context.Background()), ErrInFlight)

	close(h.fake.Gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.fake.Calls())
	assert.Equal(t, []string{"astrophiles"}, h.successes)
}

func TestUnmountDuringSubmissionDiscardsResult(t *testing.T) {
	h := newHarness(t)
	h.fake.Gate = make(chan struct{})
	fill(t, h.form)

	done := make(chan error, 1)
	go func() { done <- h.form.Submit(context.Background()) }()
	<-h.fake.Started()

	h.form.Unmount()
	close(h.fake.Gate)

	err := <-done
	assert.True(t, errors.Is(err, ErrUnmounted))
	assert.Empty(t, h.successes)
	assert.False(t, h.form.Submitting())
}
