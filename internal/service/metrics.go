package service

import (
	"github.com/jjenkins/clubs/internal/catalog"
)

// StatsService calculates directory-wide figures from the catalog
type StatsService struct {
	catalog *catalog.Catalog
}

// NewStatsService creates a new StatsService
func NewStatsService(cat *catalog.Catalog) *StatsService {
	return &StatsService{catalog: cat}
}

// DirectoryStats represents the figures shown above the club grid
type DirectoryStats struct {
	TotalClubs         int
	TotalMembers       int
	LargestClub        string
	LargestClubMembers int
	MeetingDays        []string
}

// Calculate computes the stats. The catalog is immutable, so the result only
// needs to be computed once per catalog.
func (s *StatsService) Calculate() DirectoryStats {
	stats := DirectoryStats{
		TotalClubs:   s.catalog.Len(),
		TotalMembers: s.catalog.TotalMembers(),
	}

	seen := make(map[string]bool)
	for _, c := range s.catalog.All() {
		if c.Members > stats.LargestClubMembers || stats.LargestClub == "" {
			stats.LargestClub = c.Name
			stats.LargestClubMembers = c.Members
		}
		if c.MeetingDay != "" && !seen[c.MeetingDay] {
			seen[c.MeetingDay] = true
			stats.MeetingDays = append(stats.MeetingDays, c.MeetingDay)
		}
	}

	return stats
}
