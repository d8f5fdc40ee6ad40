package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jjenkins/clubs/internal/model"
)

var (
	// ErrDuplicateID is returned when two clubs share an identifier
	ErrDuplicateID = errors.New("duplicate club identifier")
	// ErrInvalidClub is returned when a club record is missing required data
	ErrInvalidClub = errors.New("invalid club record")
)

// Catalog is the immutable, ordered set of clubs shown by the directory
type Catalog struct {
	clubs []model.Club
	index map[string]int
}

// New builds a Catalog from the given records.
// Identifiers are compared case-insensitively and must be unique.
func New(clubs []model.Club) (*Catalog, error) {
	c := &Catalog{
		clubs: make([]model.Club, len(clubs)),
		index: make(map[string]int, len(clubs)),
	}

	for i, club := range clubs {
		if strings.TrimSpace(club.ID) == "" {
			return nil, fmt.Errorf("%w: club %d has no identifier", ErrInvalidClub, i)
		}
		if strings.TrimSpace(club.LeadershipEmail) == "" {
			return nil, fmt.Errorf("%w: club %q has no leadership email", ErrInvalidClub, club.ID)
		}
		if club.Members < 0 {
			return nil, fmt.Errorf("%w: club %q has a negative member count", ErrInvalidClub, club.ID)
		}

		key := normalize(club.ID)
		if _, exists := c.index[key]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, club.ID)
		}

		club.Activities = append([]model.Activity(nil), club.Activities...)
		c.clubs[i] = club
		c.index[key] = i
	}

	return c, nil
}

// All returns the clubs in catalog order
func (c *Catalog) All() []model.Club {
	out := make([]model.Club, len(c.clubs))
	for i, club := range c.clubs {
		out[i] = club.Clone()
	}
	return out
}

// Len returns the number of clubs
func (c *Catalog) Len() int {
	return len(c.clubs)
}

// Lookup finds a club by identifier
func (c *Catalog) Lookup(id string) (model.Club, bool) {
	i, ok := c.index[normalize(id)]
	if !ok {
		return model.Club{}, false
	}
	return c.clubs[i].Clone(), true
}

// TotalMembers sums the member counts of every club
func (c *Catalog) TotalMembers() int {
	total := 0
	for _, club := range c.clubs {
		total += club.Members
	}
	return total
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
