package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClubMailto(t *testing.T) {
	club := Club{Name: "TriDev", LeadershipEmail: "lead@example.org"}

	assert.Equal(t, "mailto:lead@example.org?subject=Question%20about%20TriDev", club.MailtoQuestion())
	assert.Equal(t, club.MailtoQuestion(), club.MailtoAdvisor())

	club.AdvisorEmail = "advisor@example.org"
	assert.Equal(t, "mailto:advisor@example.org?subject=Question%20about%20TriDev", club.MailtoAdvisor())
}

func TestClubMailtoEscapesAddress(t *testing.T) {
	club := Club{Name: "TriDev", LeadershipEmail: "lead@example.org?cc=all@example.org"}

	assert.Equal(t, "mailto:lead@example.org%3Fcc=all@example.org?subject=Question%20about%20TriDev", club.MailtoQuestion())
}

func TestClubCloneDoesNotShareActivities(t *testing.T) {
	club := Club{ID: "tridev", Activities: []Activity{{Title: "Hackathons"}}}

	cp := club.Clone()
	cp.Activities[0].Title = "changed"

	assert.Equal(t, "Hackathons", club.Activities[0].Title)
	assert.Nil(t, Club{}.Clone().Activities)
}

func TestClubSubjects(t *testing.T) {
	club := Club{Name: "Astrophiles"}

	assert.Equal(t, "Inquiry about Astrophiles", club.InquirySubject())
	assert.Equal(t, "Question about Astrophiles", club.QuestionSubject())
}

func TestGradeValid(t *testing.T) {
	for _, g := range Grades {
		assert.True(t, g.Valid(), string(g))
	}
	assert.False(t, Grade("").Valid())
	assert.False(t, Grade("8").Valid())
	assert.False(t, Grade("13").Valid())
}

func TestJoinApplicationSet(t *testing.T) {
	var app JoinApplication

	assert.True(t, app.Set(FieldFirstName, "Ada"))
	assert.True(t, app.Set(FieldGrade, "11"))
	assert.False(t, app.Set("favouriteColour", "blue"))
	assert.False(t, app.Set(FieldClub, "tridev"))

	assert.Equal(t, "Ada", app.FirstName)
	assert.Equal(t, Grade11, app.Grade)
	assert.Empty(t, app.ClubID)
}
