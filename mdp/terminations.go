package mdp

import (
	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/managers"
)

func init() {
	managers.MustRegisterTermination("time_out", TimeOut,
		managers.RequiredParam("max_steps"),
	)
	managers.MustRegisterTermination("root_height_below", RootHeightBelow,
		managers.RequiredParam("minimum_height"),
	)
}

// TimeOut flags instances whose episode reached "max_steps" control steps.
// Configured with TimeOut: true this is the truncation signal.
func TimeOut(env *envs.Env, p managers.Params) []bool {
	maxSteps := p.Int("max_steps")
	out := make([]bool, env.NumEnvs)
	for i, s := range env.EpisodeStep {
		out[i] = s >= maxSteps
	}
	return out
}

// RootHeightBelow flags instances whose root dropped under the
// "minimum_height" threshold
func RootHeightBelow(env *envs.Env, p managers.Params) []bool {
	h := p.Float("minimum_height")
	out := make([]bool, env.NumEnvs)
	for i := 0; i < env.NumEnvs; i++ {
		out[i] = env.Scene.PosW.At(i, 2) < h
	}
	return out
}
