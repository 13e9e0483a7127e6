// Package config is the ambient environment-driven configuration surface
// (spec.md §5's timeout/concurrency knobs). It is implemented directly on
// the standard library's os/strconv rather than a third-party flags or
// viper-style framework: none of the example repos in this corpus carry a
// configuration library (the teacher reads ambient values inline at call
// sites), so introducing one here would not be grounded in the corpus —
// this is the one ambient concern left on the standard library, and is
// recorded as such in DESIGN.md.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config bundles every tunable timeout and concurrency bound named in
// spec.md §5. The Supervisor reads PerTeamTimeout, PerTurnTimeout and
// MaxParallelTeams. PerToolTimeout and SessionRecallWindow are not read by
// any package: the Search team uses its own fixed 30s per-tool timeout, and
// memory.New takes its window as an argument.
type Config struct {
	PerToolTimeout      time.Duration
	PerTeamTimeout      time.Duration
	PerTurnTimeout      time.Duration
	MaxParallelTeams    int
	SessionRecallWindow int
}

// Default returns the spec's documented defaults: 30s/60s/180s timeouts,
// 3-way team parallelism, a 10-message recall window.
func Default() Config {
	return Config{
		PerToolTimeout:      30 * time.Second,
		PerTeamTimeout:      60 * time.Second,
		PerTurnTimeout:      180 * time.Second,
		MaxParallelTeams:    3,
		SessionRecallWindow: 10,
	}
}

// FromEnv overlays environment variable overrides onto Default(), so a
// host process can tune timeouts without a recompile. Unset or malformed
// variables leave the default untouched.
func FromEnv() Config {
	cfg := Default()
	if v, ok := durationEnv("AGENTD_PER_TOOL_TIMEOUT"); ok {
		cfg.PerToolTimeout = v
	}
	if v, ok := durationEnv("AGENTD_PER_TEAM_TIMEOUT"); ok {
		cfg.PerTeamTimeout = v
	}
	if v, ok := durationEnv("AGENTD_PER_TURN_TIMEOUT"); ok {
		cfg.PerTurnTimeout = v
	}
	if v, ok := intEnv("AGENTD_MAX_PARALLEL_TEAMS"); ok {
		cfg.MaxParallelTeams = v
	}
	if v, ok := intEnv("AGENTD_SESSION_RECALL_WINDOW"); ok {
		cfg.SessionRecallWindow = v
	}
	return cfg
}

func durationEnv(key string) (time.Duration, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return d, true
}

func intEnv(key string) (int, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
