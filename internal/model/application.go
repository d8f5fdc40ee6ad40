package model

// Grade is one of the secondary-school year levels accepted by the join form
type Grade string

const (
	Grade9  Grade = "9"
	Grade10 Grade = "10"
	Grade11 Grade = "11"
	Grade12 Grade = "12"
)

// Grades lists the accepted grades in display order
var Grades = []Grade{Grade9, Grade10, Grade11, Grade12}

// Valid reports whether g is one of the accepted grades
func (g Grade) Valid() bool {
	for _, v := range Grades {
		if g == v {
			return true
		}
	}
	return false
}

// Join form field names, shared by the validator, the form and the views
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldStudentID  = "studentId"
	FieldGrade      = "grade"
	FieldExperience = "experience"
	FieldMotivation = "motivation"
	FieldClub       = "club"
)

// Contact form field names
const (
	FieldName    = "name"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// JoinApplication is the draft of a membership application for one club.
// It only lives for the duration of one join form session.
type JoinApplication struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	StudentID  string
	Grade      Grade
	Experience string
	Motivation string
	ClubID     string
}

// Set assigns a field by name; unknown names return false
func (a *JoinApplication) Set(field, value string) bool {
	switch field {
	case FieldFirstName:
		a.FirstName = value
	case FieldLastName:
		a.LastName = value
	case FieldEmail:
		a.Email = value
	case FieldPhone:
		a.Phone = value
	case FieldStudentID:
		a.StudentID = value
	case FieldGrade:
		a.Grade = Grade(value)
	case FieldExperience:
		a.Experience = value
	case FieldMotivation:
		a.Motivation = value
	default:
		return false
	}
	return true
}

// ContactInquiry is the draft of a contact form message
type ContactInquiry struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Set assigns a field by name; unknown names return false
func (q *ContactInquiry) Set(field, value string) bool {
	switch field {
	case FieldName:
		q.Name = value
	case FieldEmail:
		q.Email = value
	case FieldSubject:
		q.Subject = value
	case FieldMessage:
		q.Message = value
	default:
		return false
	}
	return true
}
