package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wliublackruvy/agent-based-dev/internal/clock"
)

func TestReal_Now(t *testing.T) {
	before := time.Now()
	got := clock.Real{}.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestStepped_Advances(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := clock.NewStepped(start, 2*time.Second)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(2*time.Second), c.Now())
	assert.Equal(t, start.Add(4*time.Second), c.Now())
}
