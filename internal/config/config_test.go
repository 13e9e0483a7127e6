package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault_MatchesDocumentedDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30*time.Second, cfg.PerToolTimeout)
	assert.Equal(t, 60*time.Second, cfg.PerTeamTimeout)
	assert.Equal(t, 180*time.Second, cfg.PerTurnTimeout)
	assert.Equal(t, 3, cfg.MaxParallelTeams)
	assert.Equal(t, 10, cfg.SessionRecallWindow)
}

func TestFromEnv_OverlaysValidOverrides(t *testing.T) {
	t.Setenv("AGENTD_PER_TOOL_TIMEOUT", "5s")
	t.Setenv("AGENTD_MAX_PARALLEL_TEAMS", "7")

	cfg := FromEnv()
	assert.Equal(t, 5*time.Second, cfg.PerToolTimeout)
	assert.Equal(t, 7, cfg.MaxParallelTeams)
	// Untouched knobs keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.PerTeamTimeout)
}

func TestFromEnv_IgnoresMalformedOverrides(t *testing.T) {
	t.Setenv("AGENTD_PER_TOOL_TIMEOUT", "not-a-duration")
	t.Setenv("AGENTD_MAX_PARALLEL_TEAMS", "not-an-int")

	cfg := FromEnv()
	assert.Equal(t, Default().PerToolTimeout, cfg.PerToolTimeout)
	assert.Equal(t, Default().MaxParallelTeams, cfg.MaxParallelTeams)
}
