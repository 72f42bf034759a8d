package health

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckerStatuses(t *testing.T) {
	c := NewChecker()

	// No checks registered yet
	assert.Equal(t, StatusHealthy, c.GetOverallStatus())

	c.RunCheck("database", func() error { return nil })
	assert.Equal(t, StatusHealthy, c.GetOverallStatus())

	check, ok := c.GetCheck("database")
	require.True(t, ok)
	assert.Equal(t, StatusHealthy, check.Status)
	assert.Equal(t, "OK", check.Message)

	c.RunCheck("remote", func() error { return errors.New("connection refused") })
	assert.Equal(t, StatusDegraded, c.GetOverallStatus())

	c.RunCheck("database", func() error { return errors.New("down") })
	assert.Equal(t, StatusUnhealthy, c.GetOverallStatus())

	check, ok = c.GetCheck("database")
	require.True(t, ok)
	assert.Equal(t, StatusUnhealthy, check.Status)
	assert.Equal(t, "down", check.Message)

	assert.Len(t, c.GetAllChecks(), 2)
}

func TestCheckRecovers(t *testing.T) {
	c := NewChecker()

	c.RunCheck("database", func() error { return errors.New("down") })
	firstHealthy := c.GetLastHealthyTime()

	c.RunCheck("database", func() error { return nil })
	assert.Equal(t, StatusHealthy, c.GetOverallStatus())
	assert.False(t, c.GetLastHealthyTime().Before(firstHealthy))

	_, ok := c.GetCheck("missing")
	assert.False(t, ok)
}
