// Package joinform holds the membership application draft for one club and
// submits it to the script endpoint.
package joinform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jjenkins/clubs/internal/metrics"
	"github.com/jjenkins/clubs/internal/model"
	"github.com/jjenkins/clubs/internal/service"
	"github.com/jjenkins/clubs/internal/validate"
)

// TokenField is the payload key carrying the shared credential
const TokenField = "token"

// FailureNotice is shown when the endpoint could not be reached
const FailureNotice = "Sorry, we couldn't submit your application. Please check your connection and try again."

const formLabel = "join"

var (
	ErrInvalid      = errors.New("application has invalid fields")
	ErrInFlight     = errors.New("application is already being submitted")
	ErrUnmounted    = errors.New("join form is no longer active")
	ErrUnknownField = errors.New("unknown join form field")
)

// Options configures a Form
type Options struct {
	Token     string
	Submitter service.Submitter
	// OnSuccess runs once, after the endpoint accepted the application
	OnSuccess func(clubID string)
	Logger    *zap.Logger
}

// Form is one join form session for a single club
type Form struct {
	club      model.Club
	token     string
	submitter service.Submitter
	onSuccess func(clubID string)
	logger    *zap.Logger

	mu         sync.Mutex
	draft      model.JoinApplication
	errors     validate.Errors
	notice     string
	submitting bool
	mounted    bool
}

// View is a point-in-time copy of the form state for rendering
type View struct {
	Club       model.Club
	Draft      model.JoinApplication
	Errors     validate.Errors
	Notice     string
	Submitting bool
}

// New mounts an empty form for club
func New(club model.Club, opts Options) *Form {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Form{
		club:      club,
		token:     opts.Token,
		submitter: opts.Submitter,
		onSuccess: opts.OnSuccess,
		logger:    logger.With(zap.String("club", club.ID)),
		draft:     model.JoinApplication{ClubID: club.ID},
		errors:    validate.Errors{},
		mounted:   true,
	}
}

// ClubID returns the club this form applies to
func (f *Form) ClubID() string {
	return f.club.ID
}

// Set updates one field and clears that field's error
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.draft.Set(field, value) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	f.errors.Clear(field)
	return nil
}

// View returns a copy of the current state
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	return View{
		Club:       f.club,
		Draft:      f.draft,
		Errors:     f.errors.Clone(),
		Notice:     f.notice,
		Submitting: f.submitting,
	}
}

// Submitting reports whether a submission is in flight
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Mounted reports whether the form is still active
func (f *Form) Mounted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mounted
}

// Unmount discards the form. A submission still in flight completes, but its
// result is no longer applied.
func (f *Form) Unmount() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mounted = false
}

// Submit validates the draft and, if valid, delivers it. At most one submission
// is in flight per form.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.mounted {
		f.mu.Unlock()
		return ErrUnmounted
	}
	if f.submitting {
		f.mu.Unlock()
		metrics.Submissions.WithLabelValues(formLabel, metrics.OutcomeInFlight).Inc()
		return ErrInFlight
	}

	f.notice = ""
	errs := validate.Join(f.draft)
	if !errs.Empty() {
		f.errors = errs
		f.mu.Unlock()
		metrics.Submissions.WithLabelValues(formLabel, metrics.OutcomeInvalid).Inc()
		return ErrInvalid
	}

	f.errors = validate.Errors{}
	f.submitting = true
	payload := f.payload()
	f.mu.Unlock()
	defer f.finish()

	submissionID := uuid.NewString()
	f.logger.Info("submitting application", zap.String("submission_id", submissionID))

	start := time.Now()
	err := f.submitter.Submit(ctx, payload)
	metrics.SubmissionDuration.WithLabelValues(formLabel).Observe(time.Since(start).Seconds())

	f.mu.Lock()
	if !f.mounted {
		f.mu.Unlock()
		f.logger.Info("discarding submission result for inactive form",
			zap.String("submission_id", submissionID), zap.Error(err))
		return ErrUnmounted
	}
	if err != nil {
		f.notice = FailureNotice
		f.mu.Unlock()
		metrics.Submissions.WithLabelValues(formLabel, metrics.OutcomeTransport).Inc()
		f.logger.Error("application submission failed",
			zap.String("submission_id", submissionID), zap.Error(err))
		return fmt.Errorf("failed to submit application: %w", err)
	}
	// a delivered application ends this form session
	f.mounted = false
	f.mu.Unlock()

	metrics.Submissions.WithLabelValues(formLabel, metrics.OutcomeSuccess).Inc()
	f.logger.Info("application submitted", zap.String("submission_id", submissionID))

	if f.onSuccess != nil {
		f.onSuccess(f.club.ID)
	}
	return nil
}

// finish clears the in-flight flag once the submission outcome has been applied
func (f *Form) finish() {
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
}

func (f *Form) payload() map[string]string {
	return map[string]string{
		TokenField:            f.token,
		model.FieldFirstName:  f.draft.FirstName,
		model.FieldLastName:   f.draft.LastName,
		model.FieldEmail:      f.draft.Email,
		model.FieldStudentID:  f.draft.StudentID,
		model.FieldPhone:      f.draft.Phone,
		model.FieldGrade:      string(f.draft.Grade),
		model.FieldClub:       f.draft.ClubID,
		model.FieldExperience: f.draft.Experience,
		model.FieldMotivation: f.draft.Motivation,
	}
}
