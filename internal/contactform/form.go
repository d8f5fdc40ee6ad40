// Package contactform implements the contact modal: a club-aware inquiry form
// forwarded to the form-hosting backend.
package contactform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/clubs/internal/metrics"
	"github.com/jjenkins/clubs/internal/model"
	"github.com/jjenkins/clubs/internal/service"
	"github.com/jjenkins/clubs/internal/validate"
)

// DefaultAutoClose is how long the acknowledgment stays up before the modal closes
const DefaultAutoClose = 3 * time.Second

const formLabel = "contact"

var (
	ErrInvalid      = errors.New("inquiry has invalid fields")
	ErrClosed       = errors.New("contact form is not open")
	ErrInFlight     = errors.New("inquiry is already being sent")
	ErrAcknowledged = errors.New("inquiry was already sent")
	ErrUnknownField = errors.New("unknown contact form field")
)

// Timer is the part of *time.Timer the form needs
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d
type AfterFunc func(d time.Duration, f func()) Timer

// Options configures a Form
type Options struct {
	Submitter service.Submitter
	AutoClose time.Duration
	// OnClose runs when the acknowledgment auto-closes the modal
	OnClose   func()
	AfterFunc AfterFunc
	Logger    *zap.Logger
}

// Form is the contact modal state of one visitor
type Form struct {
	submitter service.Submitter
	autoClose time.Duration
	onClose   func()
	afterFunc AfterFunc
	logger    *zap.Logger

	mu             sync.Mutex
	open           bool
	club           *model.Club
	defaultSubject string
	draft          model.ContactInquiry
	errors         validate.Errors
	submitting     bool
	succeeded      bool
	generation     uint64
	timer          Timer
}

// View is a point-in-time copy of the form state for rendering
type View struct {
	Open       bool
	Club       *model.Club
	Draft      model.ContactInquiry
	Errors     validate.Errors
	Submitting bool
	Succeeded  bool
}

// New creates a closed contact form
func New(opts Options) *Form {
	f := &Form{
		submitter: opts.Submitter,
		autoClose: opts.AutoClose,
		onClose:   opts.OnClose,
		afterFunc: opts.AfterFunc,
		logger:    opts.Logger,
		errors:    validate.Errors{},
	}
	if f.autoClose <= 0 {
		f.autoClose = DefaultAutoClose
	}
	if f.afterFunc == nil {
		f.afterFunc = func(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	return f
}

// Open shows the modal. With a club, the subject defaults to an inquiry about
// that club; the default is fixed until the next Open.
func (f *Form) Open(club *model.Club) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopTimer()
	f.generation++
	f.open = true
	f.club = nil
	f.defaultSubject = ""
	if club != nil {
		c := club.Clone()
		f.club = &c
		f.defaultSubject = c.InquirySubject()
	}
	f.reset()
}

// Close hides the modal without submitting
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopTimer()
	f.generation++
	f.open = false
	f.succeeded = false
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

	v := View{
		Open:       f.open,
		Draft:      f.draft,
		Errors:     f.errors.Clone(),
		Submitting: f.submitting,
		Succeeded:  f.succeeded,
	}
	if f.club != nil {
		c := f.club.Clone()
		v.Club = &c
	}
	return v
}

// Submit validates the inquiry and forwards it. Only validation problems are
// reported; delivery failures belong to the form host and are logged.
// A non-empty honeypot marks the request as automated: it is acknowledged but
// never forwarded.
func (f *Form) Submit(ctx context.Context, honeypot string) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.submitting {
		f.mu.Unlock()
		metrics.Submissions.WithLabelValues(formLabel, metrics.OutcomeInFlight).Inc()
		return ErrInFlight
	}
	if f.succeeded {
		// the draft is only cleared when the acknowledgment closes
		f.mu.Unlock()
		return ErrAcknowledged
	}

	errs := validate.Contact(f.draft)
	if !errs.Empty() {
		f.errors = errs
		f.mu.Unlock()
		metrics.Submissions.WithLabelValues(formLabel, metrics.OutcomeInvalid).Inc()
		return ErrInvalid
	}

	f.errors = validate.Errors{}
	f.submitting = true
	gen := f.generation
	fields := map[string]string{
		model.FieldName:    f.draft.Name,
		model.FieldEmail:   f.draft.Email,
		model.FieldSubject: f.draft.Subject,
		model.FieldMessage: f.draft.Message,
	}
	f.mu.Unlock()

	f.forward(ctx, fields, honeypot)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if gen != f.generation {
		// closed or reopened while sending
		return nil
	}
	f.succeeded = true
	f.stopTimer()
	f.timer = f.afterFunc(f.autoClose, func() { f.finish(gen) })
	return nil
}

func (f *Form) forward(ctx context.Context, fields map[string]string, honeypot string) {
	if honeypot != "" {
		metrics.Submissions.WithLabelValues(formLabel, metrics.OutcomeSpam).Inc()
		f.logger.Info("dropping contact submission with filled honeypot")
		return
	}

	start := time.Now()
	err := f.submitter.Submit(ctx, fields)
	metrics.SubmissionDuration.WithLabelValues(formLabel).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Submissions.WithLabelValues(formLabel, metrics.OutcomeTransport).Inc()
		f.logger.Warn("contact submission was not delivered", zap.Error(err))
		return
	}
	metrics.Submissions.WithLabelValues(formLabel, metrics.OutcomeSuccess).Inc()
}

// finish ends the acknowledgment: fields reset and the modal closes
func (f *Form) finish(gen uint64) {
	f.mu.Lock()
	if gen != f.generation || !f.succeeded {
		f.mu.Unlock()
		return
	}
	f.generation++
	f.succeeded = false
	f.open = false
	f.timer = nil
	f.reset()
	onClose := f.onClose
	f.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

func (f *Form) reset() {
	f.draft = model.ContactInquiry{Subject: f.defaultSubject}
	f.errors = validate.Errors{}
	f.succeeded = false
}

func (f *Form) stopTimer() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
