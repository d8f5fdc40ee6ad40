package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/clubs/internal/model"
)

func fixtureClubs() []model.Club {
	return []model.Club{
		{ID: "chess", Name: "Chess", LeadershipEmail: "chess@example.org", Members: 10,
			Activities: []model.Activity{{Title: "Tournaments"}}},
		{ID: "robotics", Name: "Robotics", LeadershipEmail: "robots@example.org", Members: 5},
	}
}

func TestDefaultCatalogIdentifiersAreUnique(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)
	require.Positive(t, cat.Len())

	seen := make(map[string]bool)
	for _, club := range cat.All() {
		key := strings.ToLower(club.ID)
		assert.False(t, seen[key], "duplicate identifier %q", club.ID)
		seen[key] = true
		assert.NotEmpty(t, club.LeadershipEmail, "club %q has no leadership email", club.ID)
	}
}

func TestDefaultCatalogContainsAstrophiles(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	club, ok := cat.Lookup("Astrophiles")
	require.True(t, ok)
	assert.Equal(t, "astrophiles", club.ID)
	assert.Equal(t, "Astrophiles", club.Name)
	assert.Len(t, club.Activities, 5)
	assert.NotEmpty(t, club.ChatURL)
}

func TestNewRejectsDuplicateIdentifiers(t *testing.T) {
	clubs := append(fixtureClubs(), model.Club{ID: "CHESS", Name: "Chess Two", LeadershipEmail: "x@example.org"})

	_, err := New(clubs)
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestNewRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name string
		club model.Club
	}{
		{name: "missing id", club: model.Club{Name: "x", LeadershipEmail: "x@example.org"}},
		{name: "missing email", club: model.Club{ID: "x", Name: "x"}},
		{name: "negative members", club: model.Club{ID: "x", Name: "x", LeadershipEmail: "x@example.org", Members: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]model.Club{tt.club})
			assert.ErrorIs(t, err, ErrInvalidClub)
		})
	}
}

func TestLookup(t *testing.T) {
	cat, err := New(fixtureClubs())
	require.NoError(t, err)

	club, ok := cat.Lookup(" Robotics ")
	require.True(t, ok)
	assert.Equal(t, "robotics", club.ID)

	_, ok = cat.Lookup("doesnotexist")
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	cat, err := New(fixtureClubs())
	require.NoError(t, err)

	all := cat.All()
	all[0].Name = "mutated"
	all[0].Activities[0].Title = "mutated"

	club, _ := cat.Lookup("chess")
	assert.Equal(t, "Chess", club.Name)
	assert.Equal(t, "Tournaments", club.Activities[0].Title)
	assert.Equal(t, 15, cat.TotalMembers())

	club.Activities[0].Title = "changed through lookup"
	again, _ := cat.Lookup("chess")
	assert.Equal(t, "Tournaments", again.Activities[0].Title)
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "bad email",
			doc: `clubs:
  - {id: a, name: A, description: d, meeting_day: Mon, meeting_time: "1", location: x, members: 1, advisor: x, leadership: x, leadership_email: nope}`,
		},
		{
			name: "negative members",
			doc: `clubs:
  - {id: a, name: A, description: d, meeting_day: Mon, meeting_time: "1", location: x, members: -3, advisor: x, leadership: x, leadership_email: a@b.co}`,
		},
		{
			name: "unknown key",
			doc: `clubs:
  - {id: a, name: A, description: d, meeting_day: Mon, meeting_time: "1", location: x, members: 1, advisor: x, leadership: x, leadership_email: a@b.co, colour: red}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestLoadRejectsDuplicatesAfterSchema(t *testing.T) {
	doc := `clubs:
  - {id: a, name: A, description: d, meeting_day: Mon, meeting_time: "1", location: x, members: 1, advisor: x, leadership: x, leadership_email: a@b.co}
  - {id: A, name: B, description: d, meeting_day: Mon, meeting_time: "1", location: x, members: 1, advisor: x, leadership: x, leadership_email: b@b.co}`

	_, err := Load(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrDuplicateID)
}
