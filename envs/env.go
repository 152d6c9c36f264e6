package envs

import (
	"time"

	"golang.org/x/exp/rand"
)

// EnvConfig holds the batch-level settings of a vectorized environment
type EnvConfig struct {
	NumEnvs   int
	Device    string
	Dt        float64 // control time step in seconds
	NumJoints int
	Seed      uint64 // 0 seeds from the wall clock
}

// Env is the handle the managers use to reach the simulated batch.
// It exposes the instance count, the compute device tag, a seeded RNG and
// the scene state buffers. The physics backend behind the scene buffers is
// an external collaborator; managers only read and write these buffers.
type Env struct {
	NumEnvs int
	Device  string
	Dt      float64
	Rand    *rand.Rand
	Scene   *Scene

	// EpisodeStep counts control steps since the last reset, per instance
	EpisodeStep []int
}

// NewEnv creates the environment handle and allocates the scene buffers
func NewEnv(cfg EnvConfig) *Env {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if cfg.Dt == 0 {
		cfg.Dt = 0.02
	}
	if cfg.NumJoints == 0 {
		cfg.NumJoints = 4
	}
	if cfg.Device == "" {
		cfg.Device = "cpu"
	}
	return &Env{
		NumEnvs:     cfg.NumEnvs,
		Device:      cfg.Device,
		Dt:          cfg.Dt,
		Rand:        rand.New(rand.NewSource(seed)),
		Scene:       NewScene(cfg.NumEnvs, cfg.NumJoints),
		EpisodeStep: make([]int, cfg.NumEnvs),
	}
}

// StepEpisodeCounters advances the per-instance step counters by one
func (e *Env) StepEpisodeCounters() {
	for i := range e.EpisodeStep {
		e.EpisodeStep[i]++
	}
}

// ResetEpisodeCounters zeroes the step counters for the subset
func (e *Env) ResetEpisodeCounters(ids Subset) {
	for _, i := range ids.Indices(e.NumEnvs) {
		e.EpisodeStep[i] = 0
	}
}
