// Package navigator is the state machine that decides which screen a visitor sees.
//
// The primary view is one of Directory, Detail, JoinForm or JoinSuccess. The contact
// and learn-more overlays are independent of it. There is no history: GoHome always
// returns to the directory.
package navigator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/jjenkins/clubs/internal/catalog"
	"github.com/jjenkins/clubs/internal/metrics"
	"github.com/jjenkins/clubs/internal/model"
)

// Deep-link query parameters
const (
	ParamClub    = "club"
	ParamSuccess = "success"
)

// View identifies the primary screen
type View int

const (
	Directory View = iota
	Detail
	JoinForm
	JoinSuccess
)

func (v View) String() string {
	switch v {
	case Detail:
		return "detail"
	case JoinForm:
		return "join_form"
	case JoinSuccess:
		return "join_success"
	default:
		return "directory"
	}
}

var (
	ErrUnknownClub = errors.New("unknown club")
	ErrNoClub      = errors.New("no club selected")
)

// State is the full navigation state. Club pointers are copies of catalog entries.
type State struct {
	SelectedClub  *model.Club
	JoinFormOpen  bool
	JoinSucceeded bool
	ContactOpen   bool
	ContactClub   *model.Club
	LearnMoreOpen bool
}

// View derives the primary screen from the state
func (s State) View() View {
	switch {
	case s.SelectedClub == nil:
		return Directory
	case s.JoinFormOpen:
		return JoinForm
	case s.JoinSucceeded:
		return JoinSuccess
	default:
		return Detail
	}
}

// Navigator owns one visitor's navigation state
type Navigator struct {
	catalog *catalog.Catalog

	mu      sync.Mutex
	state   State
	mounted bool
}

func New(cat *catalog.Catalog) *Navigator {
	return &Navigator{catalog: cat}
}

// State returns a copy of the current state
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return copyState(n.state)
}

// Mount applies the initial page-load parameters. It runs once per navigator;
// later calls do nothing. A success deep link for a known club starts at
// JoinSuccess for that club, an unknown club is ignored. The return value is
// true when the deep link was applied and its parameters should be stripped
// from the URL.
//
// A deep-linked success screen is cosmetic: it does not prove that an
// application was submitted.
func (n *Navigator) Mount(params url.Values) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.mounted {
		return false
	}
	n.mounted = true

	id := params.Get(ParamClub)
	if id == "" || params.Get(ParamSuccess) != "true" {
		return false
	}

	club, ok := n.catalog.Lookup(id)
	if !ok {
		metrics.DeepLinks.WithLabelValues("false").Inc()
		return false
	}
	metrics.DeepLinks.WithLabelValues("true").Inc()

	n.state.SelectedClub = &club
	n.state.JoinFormOpen = false
	n.state.JoinSucceeded = true
	n.transitioned()
	return true
}

func (n *Navigator) Mounted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mounted
}

func (n *Navigator) SelectClub(id string) error {
	club, ok := n.catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClub, id)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.state.SelectedClub = &club
	n.state.JoinFormOpen = false
	n.state.JoinSucceeded = false
	n.transitioned()
	return nil
}

// RequestJoin opens the join form for the selected club
func (n *Navigator) RequestJoin() (model.Club, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state.SelectedClub == nil {
		return model.Club{}, ErrNoClub
	}
	n.state.JoinFormOpen = true
	n.state.JoinSucceeded = false
	n.transitioned()
	return *n.state.SelectedClub, nil
}

// SubmitSucceeded moves from the join form to the success screen. It only
// applies while the join form for clubID is open, so a late result never shows
// success for another club.
func (n *Navigator) SubmitSucceeded(clubID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state.View() != JoinForm || n.state.SelectedClub.ID != clubID {
		return false
	}
	n.state.JoinFormOpen = false
	n.state.JoinSucceeded = true
	n.transitioned()
	return true
}

// GoHome returns to the directory. Overlays are left alone.
func (n *Navigator) GoHome() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.state.SelectedClub = nil
	n.state.JoinFormOpen = false
	n.state.JoinSucceeded = false
	n.transitioned()
}

// OpenContact shows the contact overlay, optionally about a club
func (n *Navigator) OpenContact(clubID string) (*model.Club, error) {
	var club *model.Club
	if clubID != "" {
		c, ok := n.catalog.Lookup(clubID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownClub, clubID)
		}
		club = &c
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.state.ContactOpen = true
	n.state.ContactClub = club
	return copyClub(club), nil
}

func (n *Navigator) CloseContact() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state.ContactOpen = false
	n.state.ContactClub = nil
}

func (n *Navigator) OpenLearnMore() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state.LearnMoreOpen = true
}

func (n *Navigator) CloseLearnMore() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state.LearnMoreOpen = false
}

func (n *Navigator) transitioned() {
	metrics.Transitions.WithLabelValues(n.state.View().String()).Inc()
}

// Snapshot is the serialisable form of a State; clubs are kept by identifier
type Snapshot struct {
	SelectedClub  string `json:"selected_club,omitempty"`
	JoinFormOpen  bool   `json:"join_form_open,omitempty"`
	JoinSucceeded bool   `json:"join_succeeded,omitempty"`
	ContactOpen   bool   `json:"contact_open,omitempty"`
	ContactClub   string `json:"contact_club,omitempty"`
	LearnMoreOpen bool   `json:"learn_more_open,omitempty"`
}

// Snapshot captures the state for the session store
func (n *Navigator) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := Snapshot{
		JoinFormOpen:  n.state.JoinFormOpen,
		JoinSucceeded: n.state.JoinSucceeded,
		ContactOpen:   n.state.ContactOpen,
		LearnMoreOpen: n.state.LearnMoreOpen,
	}
	if n.state.SelectedClub != nil {
		s.SelectedClub = n.state.SelectedClub.ID
	}
	if n.state.ContactClub != nil {
		s.ContactClub = n.state.ContactClub.ID
	}
	return s
}

// Restore creates an already-mounted navigator from a snapshot. Clubs that are no
// longer in the catalog fall back to the directory.
func Restore(cat *catalog.Catalog, s Snapshot) *Navigator {
	n := &Navigator{catalog: cat, mounted: true}

	if club, ok := cat.Lookup(s.SelectedClub); ok && s.SelectedClub != "" {
		n.state.SelectedClub = &club
		n.state.JoinFormOpen = s.JoinFormOpen
		n.state.JoinSucceeded = s.JoinSucceeded
	}
	n.state.ContactOpen = s.ContactOpen
	if club, ok := cat.Lookup(s.ContactClub); ok && s.ContactClub != "" {
		n.state.ContactClub = &club
	}
	n.state.LearnMoreOpen = s.LearnMoreOpen
	return n
}

func (s Snapshot) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode navigation snapshot: %w", err)
	}
	return string(b), nil
}

// DecodeSnapshot parses a snapshot produced by Encode
func DecodeSnapshot(data string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode navigation snapshot: %w", err)
	}
	return s, nil
}

func copyState(s State) State {
	s.SelectedClub = copyClub(s.SelectedClub)
	s.ContactClub = copyClub(s.ContactClub)
	return s
}

func copyClub(c *model.Club) *model.Club {
	if c == nil {
		return nil
	}
	cp := c.Clone()
	return &cp
}
