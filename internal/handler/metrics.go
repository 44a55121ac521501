package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "weave_registrations_total",
		Help: "Number of successful user registrations.",
	})

	chaptersGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weave_chapters_generated_total",
		Help: "Number of chapters generated, labeled by provenance.",
	}, []string{"source"})

	storiesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weave_stories_created_total",
		Help: "Number of stories created, labeled by provenance.",
	}, []string{"source"})
)
