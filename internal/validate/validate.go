// Package validate checks form drafts and reports every failing field at once.
package validate

import (
	"regexp"
	"strings"

	"github.com/jjenkins/clubs/internal/model"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Errors maps a field name to its error message. Fields without an error are absent.
type Errors map[string]string

// Empty reports whether there are no errors
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Has reports whether field has an error
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Get returns the message for field, or ""
func (e Errors) Get(field string) string {
	return e[field]
}

// Clear removes the error for a single field
func (e Errors) Clear(field string) {
	delete(e, field)
}

// Clone returns an independent copy
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Email reports whether s has the basic text@text.text shape
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

func required(errs Errors, field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = msg
	}
}

func email(errs Errors, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		errs[model.FieldEmail] = "Email is required"
	case !Email(value):
		errs[model.FieldEmail] = "Please enter a valid email address"
	}
}

// Join validates a membership application
func Join(app model.JoinApplication) Errors {
	errs := Errors{}

	required(errs, model.FieldFirstName, app.FirstName, "First name is required")
	required(errs, model.FieldLastName, app.LastName, "Last name is required")
	email(errs, app.Email)
	required(errs, model.FieldPhone, app.Phone, "Phone number is required")
	required(errs, model.FieldStudentID, app.StudentID, "Student ID is required")
	if !app.Grade.Valid() {
		errs[model.FieldGrade] = "Please select your grade"
	}
	required(errs, model.FieldMotivation, app.Motivation, "Please tell us why you want to join")
	required(errs, model.FieldClub, app.ClubID, "Club is required")

	return errs
}

// Contact validates a contact inquiry
func Contact(q model.ContactInquiry) Errors {
	errs := Errors{}

	required(errs, model.FieldName, q.Name, "Name is required")
	email(errs, q.Email)
	required(errs, model.FieldSubject, q.Subject, "Subject is required")
	required(errs, model.FieldMessage, q.Message, "Message is required")

	return errs
}
