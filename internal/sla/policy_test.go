package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-stack/complaint-service/internal/domain"
)

func TestDueAtPerPriority(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		priority domain.PriorityLevel
		window   time.Duration
	}{
		{domain.PriorityLow, 72 * time.Hour},
		{domain.PriorityMedium, 48 * time.Hour},
		{domain.PriorityHigh, 24 * time.Hour},
		{domain.PriorityEmergency, 4 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(string(tc.priority), func(t *testing.T) {
			dueAt, err := DueAt(tc.priority, anchor)
			require.NoError(t, err)
			assert.Equal(t, anchor.Add(tc.window), dueAt)
		})
	}
}

func TestWindowUnknownPriority(t *testing.T) {
	_, err := Window(domain.PriorityLevel("URGENT"))
	require.Error(t, err)
}

func TestClassifyAtAnchorIsOnTime(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for _, priority := range []domain.PriorityLevel{
		domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityEmergency,
	} {
		dueAt, err := DueAt(priority, anchor)
		require.NoError(t, err)
		assert.Equal(t, domain.SLAOnTime, Classify(dueAt, anchor),
			"a fresh %s complaint must start ON_TIME", priority)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	dueAt := time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want domain.SLAStatus
	}{
		{"well before deadline", dueAt.Add(-30 * time.Hour), domain.SLAOnTime},
		{"exactly four hours out", dueAt.Add(-4 * time.Hour), domain.SLAOnTime},
		{"inside warning window", dueAt.Add(-4*time.Hour + time.Second), domain.SLAWarning},
		{"one hour left", dueAt.Add(-time.Hour), domain.SLAWarning},
		{"exactly at deadline", dueAt, domain.SLAWarning},
		{"just past deadline", dueAt.Add(time.Second), domain.SLABreached},
		{"long past deadline", dueAt.Add(90 * time.Hour), domain.SLABreached},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(dueAt, tc.now))
		})
	}
}

func TestAnchorPrefersAssignment(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	assigned := created.Add(2 * time.Hour)

	assert.Equal(t, created, Anchor(nil, created))
	assert.Equal(t, assigned, Anchor(&assigned, created))
}

func TestLowPriorityScenario(t *testing.T) {
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	dueAt, err := DueAt(domain.PriorityLow, created)
	require.NoError(t, err)
	require.Equal(t, created.Add(72*time.Hour), dueAt)

	assert.Equal(t, domain.SLAOnTime, Classify(dueAt, created.Add(24*time.Hour)))
	assert.Equal(t, domain.SLAWarning, Classify(dueAt, created.Add(69*time.Hour)))
	assert.Equal(t, domain.SLABreached, Classify(dueAt, created.Add(73*time.Hour)))
}
