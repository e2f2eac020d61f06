package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsManager(t *testing.T) {
	m, reg := newMetricsManager()
	m.CounterCoachTurns.WithLabelValues("ok").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	for _, f := range families {
		assert.True(t, strings.HasPrefix(f.GetName(), "zenith_coach_mcp_"), f.GetName())
		assert.NotContains(t, f.GetName(), "test_server")
	}
}
