package mdp

import (
	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/managers"
	"github.com/zeu5/managed-rl-env/tensor"
)

func init() {
	managers.MustRegisterRecorder("initial_state", NewInitialStateRecorder)
	managers.MustRegisterRecorder("post_step_states", NewPostStepStatesRecorder)
	managers.MustRegisterRecorder("pre_step_forces", NewPreStepForcesRecorder)
}

// InitialStateRecorder captures the full scene state right after a reset
type InitialStateRecorder struct {
	managers.NopRecorder
}

func NewInitialStateRecorder(cfg *managers.RecorderTermCfg, env *envs.Env) managers.RecorderTerm {
	return &InitialStateRecorder{}
}

func (r *InitialStateRecorder) RecordPostReset(env *envs.Env, ids envs.Subset) (string, *tensor.Tensor) {
	return "initial_state", env.Scene.State()
}

// PostStepStatesRecorder captures the full scene state after every step
type PostStepStatesRecorder struct {
	managers.NopRecorder
}

func NewPostStepStatesRecorder(cfg *managers.RecorderTermCfg, env *envs.Env) managers.RecorderTerm {
	return &PostStepStatesRecorder{}
}

func (r *PostStepStatesRecorder) RecordPostStep(env *envs.Env) (string, *tensor.Tensor) {
	return "states", env.Scene.State()
}

// PreStepForcesRecorder captures the applied forces before every step
type PreStepForcesRecorder struct {
	managers.NopRecorder
}

func NewPreStepForcesRecorder(cfg *managers.RecorderTermCfg, env *envs.Env) managers.RecorderTerm {
	return &PreStepForcesRecorder{}
}

func (r *PreStepForcesRecorder) RecordPreStep(env *envs.Env) (string, *tensor.Tensor) {
	return "forces", env.Scene.AppliedForce.Clone()
}
