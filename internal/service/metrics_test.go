package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/clubs/internal/catalog"
	"github.com/jjenkins/clubs/internal/model"
)

func TestStatsServiceCalculate(t *testing.T) {
	cat, err := catalog.New([]model.Club{
		{ID: "a", Name: "Chess", Members: 5, MeetingDay: "Mondays", LeadershipEmail: "a@example.org"},
		{ID: "b", Name: "Robotics", Members: 30, MeetingDay: "Fridays", LeadershipEmail: "b@example.org"},
		{ID: "c", Name: "Debate", Members: 12, MeetingDay: "Mondays", LeadershipEmail: "c@example.org"},
	})
	require.NoError(t, err)

	stats := NewStatsService(cat).Calculate()

	assert.Equal(t, 3, stats.TotalClubs)
	assert.Equal(t, 47, stats.TotalMembers)
	assert.Equal(t, "Robotics", stats.LargestClub)
	assert.Equal(t, 30, stats.LargestClubMembers)
	assert.Equal(t, []string{"Mondays", "Fridays"}, stats.MeetingDays)
}

func TestStatsServiceDefaultCatalog(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	stats := NewStatsService(cat).Calculate()

	assert.Equal(t, 2, stats.TotalClubs)
	assert.Equal(t, 42, stats.TotalMembers)
	assert.Equal(t, "TriDev", stats.LargestClub)
}

func TestStatsServiceEmptyCatalog(t *testing.T) {
	cat, err := catalog.New(nil)
	require.NoError(t, err)

	stats := NewStatsService(cat).Calculate()

	assert.Zero(t, stats.TotalClubs)
	assert.Empty(t, stats.LargestClub)
}
