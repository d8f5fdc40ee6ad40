package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeTransport = "transport_error"
	OutcomeInFlight  = "in_flight"
	OutcomeSpam      = "spam"
)

var (
	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubs_form_submissions_total",
			Help: "Form submission attempts by form and outcome",
		},
		[]string{"form", "outcome"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "clubs_form_submission_duration_seconds",
			Help: "Time spent delivering a submission to the external endpoint",
		},
		[]string{"form"},
	)

	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubs_navigation_transitions_total",
			Help: "Navigator transitions by target view",
		},
		[]string{"view"},
	)

	DeepLinks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubs_deep_links_total",
			Help: "Success deep links seen at mount, by whether the club resolved",
		},
		[]string{"resolved"},
	)

	ActiveVisitors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubs_active_visitors",
			Help: "Visitors currently held in the registry",
		},
	)
)
