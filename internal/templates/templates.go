// Package templates renders the club directory screens as templ components.
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

import (
	"github.com/jjenkins/clubs/internal/contactform"
	"github.com/jjenkins/clubs/internal/joinform"
	"github.com/jjenkins/clubs/internal/model"
	"github.com/jjenkins/clubs/internal/navigator"
	"github.com/jjenkins/clubs/internal/service"
)

// School contact details shown in the club panel of the contact modal
const (
	SchoolPhone  = "+91 80 2562 5888"
	ResponseTime = "24–48 hours"
)

const defaultTitle = "Oakridge Clubs"

var benefits = []model.Activity{
	{Title: "Build Connections", Description: "Meet like-minded students who share your interests and passions."},
	{Title: "Develop Skills", Description: "Gain practical experience and develop both technical and soft skills."},
	{Title: "Leadership", Description: "Take on leadership roles and organize events and activities."},
	{Title: "Pursue Passions", Description: "Explore your interests in a supportive and encouraging environment."},
	{Title: "Regular Activities", Description: "Participate in weekly meetings, workshops, and special events."},
	{Title: "Campus Community", Description: "Be part of the vibrant campus life at Oakridge International School."},
}

var steps = []model.Activity{
	{Title: "Browse Available Clubs", Description: "Explore our club directory to find clubs that match your interests."},
	{Title: "Submit Application", Description: "Fill out the membership application form with your details and motivation."},
	{Title: "Attend First Meeting", Description: "Join your first club meeting and start participating in activities."},
}

// Page holds everything the full page needs
type Page struct {
	Title   string
	Stats   service.DirectoryStats
	Clubs   []model.Club
	State   navigator.State
	Join    *joinform.View
	Contact contactform.View
}

// Screen names the primary view for the layout
func (p Page) Screen() string {
	return p.State.View().String()
}

func (p Page) PageTitle() string {
	if p.Title == "" {
		return defaultTitle
	}
	return p.Title
}
