package model

import (
	"fmt"
	"net/url"
	"strings"
)

// Activity is a single titled entry in a club's activity list
type Activity struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Club represents one entry of the club catalog.
// Visual attributes (Icon, Color, Gradient, Image) are passed through to the views untouched.
type Club struct {
	ID              string     `yaml:"id" json:"id"`
	Name            string     `yaml:"name" json:"name"`
	Description     string     `yaml:"description" json:"description"`
	FullDescription string     `yaml:"full_description" json:"full_description"`
	Icon            string     `yaml:"icon" json:"icon"`
	Color           string     `yaml:"color" json:"color"`
	Gradient        string     `yaml:"gradient" json:"gradient"`
	Image           string     `yaml:"image" json:"image"`
	MeetingDay      string     `yaml:"meeting_day" json:"meeting_day"`
	MeetingTime     string     `yaml:"meeting_time" json:"meeting_time"`
	NextMeeting     string     `yaml:"next_meeting" json:"next_meeting"`
	Location        string     `yaml:"location" json:"location"`
	Members         int        `yaml:"members" json:"members"`
	Advisor         string     `yaml:"advisor" json:"advisor"`
	AdvisorEmail    string     `yaml:"advisor_email" json:"advisor_email,omitempty"`
	Leadership      string     `yaml:"leadership" json:"leadership"`
	LeadershipEmail string     `yaml:"leadership_email" json:"leadership_email"`
	ChatURL         string     `yaml:"chat_url" json:"chat_url,omitempty"`
	NetworkURL      string     `yaml:"network_url" json:"network_url,omitempty"`
	Activities      []Activity `yaml:"activities" json:"activities"`
}

// QuestionSubject is the subject used for mail sent to the club leadership
func (c Club) QuestionSubject() string {
	return "Question about " + c.Name
}

// InquirySubject is the default contact form subject for this club
func (c Club) InquirySubject() string {
	return "Inquiry about " + c.Name
}

// MailtoQuestion builds the mailto URI for the leadership contact
func (c Club) MailtoQuestion() string {
	return mailto(c.LeadershipEmail, c.QuestionSubject())
}

// MailtoAdvisor builds the mailto URI for the advisor, falling back to the leadership contact
func (c Club) MailtoAdvisor() string {
	if c.AdvisorEmail == "" {
		return c.MailtoQuestion()
	}
	return mailto(c.AdvisorEmail, c.QuestionSubject())
}

// Clone returns a copy that shares no backing arrays with c
func (c Club) Clone() Club {
	if c.Activities != nil {
		c.Activities = append([]Activity(nil), c.Activities...)
	}
	return c
}

// HasCommunityLinks reports whether any outbound community link is set
func (c Club) HasCommunityLinks() bool {
	return c.ChatURL != "" || c.NetworkURL != ""
}

func mailto(address, subject string) string {
	// mail clients do not decode '+' as a space
	q := strings.ReplaceAll(url.QueryEscape(subject), "+", "%20")
	return fmt.Sprintf("mailto:%s?subject=%s", url.PathEscape(address), q)
}
