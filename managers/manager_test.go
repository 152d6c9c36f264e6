package managers

import (
	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/tensor"
)

// shared test terms, registered once for the whole package

var (
	eventFireCounts []int
	terminateFlags  []bool
	curriculumLevel int
)

func newTestEnv(n int) *envs.Env {
	eventFireCounts = make([]int, n)
	terminateFlags = make([]bool, n)
	curriculumLevel = 0
	return envs.NewEnv(envs.EnvConfig{
		NumEnvs: n,
		Dt:      0.5,
		Seed:    7,
	})
}

type countingObs struct {
	env    *envs.Env
	counts []float64
}

func newCountingObs(cfg *ObservationTermCfg, env *envs.Env) ObservationTermState {
	return &countingObs{
		env:    env,
		counts: make([]float64, env.NumEnvs),
	}
}

func (o *countingObs) Compute(env *envs.Env, p Params) *tensor.Tensor {
	out := tensor.Zeros(env.NumEnvs, 1)
	for i := range o.counts {
		o.counts[i]++
		out.Set(i, 0, o.counts[i])
	}
	return out
}

func (o *countingObs) Reset(ids envs.Subset) {
	for _, i := range ids.Indices(o.env.NumEnvs) {
		o.counts[i] = 0
	}
}

func init() {
	MustRegisterObservation("test_obs_const", func(env *envs.Env, p Params) *tensor.Tensor {
		return tensor.Filled(p.FloatOr("value", 1), env.NumEnvs, 3)
	}, OptionalParam("value"))
	MustRegisterObservation("test_obs_narrow", func(env *envs.Env, p Params) *tensor.Tensor {
		return tensor.Filled(2, env.NumEnvs, 1)
	})
	MustRegisterObservation("test_obs_image", func(env *envs.Env, p Params) *tensor.Tensor {
		return tensor.Zeros(env.NumEnvs, 2, 2, 1)
	})
	MustRegisterObservationClass("test_obs_counter", newCountingObs)

	MustRegisterEvent("test_event_fire", func(env *envs.Env, ids envs.Subset, p Params) {
		for _, i := range ids.Indices(env.NumEnvs) {
			eventFireCounts[i]++
		}
	})
	MustRegisterEvent("test_event_mass", func(env *envs.Env, ids envs.Subset, p Params) {
		v := p.Float("mass")
		for _, i := range ids.Indices(env.NumEnvs) {
			env.Scene.Mass.Set(i, 0, v)
		}
	}, RequiredParam("mass"))

	MustRegisterReward("test_reward_const", func(env *envs.Env, p Params) *tensor.Tensor {
		return tensor.Filled(p.FloatOr("value", 1), env.NumEnvs)
	}, OptionalParam("value"))

	MustRegisterTermination("test_term_flag", func(env *envs.Env, p Params) []bool {
		out := make([]bool, env.NumEnvs)
		copy(out, terminateFlags)
		return out
	})

	MustRegisterCurriculum("test_curr_level", func(env *envs.Env, ids envs.Subset, p Params) float64 {
		curriculumLevel += len(ids.Indices(env.NumEnvs))
		return float64(curriculumLevel)
	})
}
