// Package visitor keeps the live navigator and form instances of each browser session.
package visitor

import (
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/clubs/internal/catalog"
	"github.com/jjenkins/clubs/internal/contactform"
	"github.com/jjenkins/clubs/internal/joinform"
	"github.com/jjenkins/clubs/internal/model"
	"github.com/jjenkins/clubs/internal/navigator"
	"github.com/jjenkins/clubs/internal/service"
)

// Deps are shared by every visitor
type Deps struct {
	Catalog          *catalog.Catalog
	JoinSubmitter    service.Submitter
	ContactSubmitter service.Submitter
	Token            string
	AutoClose        time.Duration
	AfterFunc        contactform.AfterFunc
	Logger           *zap.Logger
}

// Visitor ties one navigator to the forms it opens and closes
type Visitor struct {
	ID      string
	Nav     *navigator.Navigator
	Contact *contactform.Form

	deps   *Deps
	logger *zap.Logger

	mu       sync.Mutex
	join     *joinform.Form
	lastSeen time.Time
}

func newVisitor(id string, nav *navigator.Navigator, deps *Deps, now time.Time) *Visitor {
	v := &Visitor{
		ID:       id,
		Nav:      nav,
		deps:     deps,
		logger:   deps.Logger.With(zap.String("visitor", id)),
		lastSeen: now,
	}
	v.Contact = contactform.New(contactform.Options{
		Submitter: deps.ContactSubmitter,
		AutoClose: deps.AutoClose,
		OnClose:   nav.CloseContact,
		AfterFunc: deps.AfterFunc,
		Logger:    v.logger,
	})

	// overlays restored from a snapshot need a form behind them
	if s := nav.State(); s.ContactOpen {
		v.Contact.Open(s.ContactClub)
	}
	return v
}

// Mount applies the page-load deep link, see navigator.Navigator.Mount
func (v *Visitor) Mount(params url.Values) bool {
	return v.Nav.Mount(params)
}

// SelectClub shows a club's detail screen
func (v *Visitor) SelectClub(id string) error {
	if err := v.Nav.SelectClub(id); err != nil {
		return err
	}
	v.dropJoin()
	return nil
}

// RequestJoin opens a fresh join form for the selected club
func (v *Visitor) RequestJoin() (*joinform.Form, error) {
	club, err := v.Nav.RequestJoin()
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.join != nil {
		v.join.Unmount()
	}
	v.join = v.newJoinForm(club)
	return v.join, nil
}

// Join returns the join form when the navigator is on the join screen.
// After a restart the draft is gone, so an empty form is mounted in its place.
func (v *Visitor) Join() *joinform.Form {
	s := v.Nav.State()
	if s.View() != navigator.JoinForm {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.join == nil || v.join.ClubID() != s.SelectedClub.ID || !v.join.Mounted() {
		v.join = v.newJoinForm(*s.SelectedClub)
	}
	return v.join
}

// GoHome returns to the directory and discards any join form
func (v *Visitor) GoHome() {
	v.Nav.GoHome()
	v.dropJoin()
}

// OpenContact opens the contact overlay, about a club when clubID is set
func (v *Visitor) OpenContact(clubID string) error {
	club, err := v.Nav.OpenContact(clubID)
	if err != nil {
		return err
	}
	v.Contact.Open(club)
	return nil
}

// CloseContact hides the contact overlay
func (v *Visitor) CloseContact() {
	v.Nav.CloseContact()
	v.Contact.Close()
}

// OpenLearnMore shows the informational overlay
func (v *Visitor) OpenLearnMore() {
	v.Nav.OpenLearnMore()
}

// CloseLearnMore hides the informational overlay
func (v *Visitor) CloseLearnMore() {
	v.Nav.CloseLearnMore()
}

func (v *Visitor) newJoinForm(club model.Club) *joinform.Form {
	return joinform.New(club, joinform.Options{
		Token:     v.deps.Token,
		Submitter: v.deps.JoinSubmitter,
		OnSuccess: v.joinSucceeded,
		Logger:    v.logger,
	})
}

func (v *Visitor) joinSucceeded(clubID string) {
	if !v.Nav.SubmitSucceeded(clubID) {
		v.logger.Info("join succeeded after the visitor left the form", zap.String("club", clubID))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	// a successful form unmounts itself; a newer form may already be in its place
	if v.join != nil && !v.join.Mounted() {
		v.join = nil
	}
}

func (v *Visitor) dropJoin() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.join != nil {
		v.join.Unmount()
		v.join = nil
	}
}

func (v *Visitor) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *Visitor) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

func (v *Visitor) discard() {
	v.dropJoin()
	v.Contact.Close()
}
