package mdp

import (
	"math"

	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/managers"
	"github.com/zeu5/managed-rl-env/tensor"
)

func init() {
	managers.MustRegisterReward("alive_bonus", AliveBonus)
	managers.MustRegisterReward("track_lin_vel", TrackLinVel,
		managers.RequiredParam("target"),
		managers.OptionalParam("std"),
	)
	managers.MustRegisterReward("force_penalty", ForcePenalty)
	managers.MustRegisterReward("lin_vel_z_penalty", LinVelZPenalty)
}

// AliveBonus pays a constant unit reward per instance per step
func AliveBonus(env *envs.Env, p managers.Params) *tensor.Tensor {
	return tensor.Filled(1.0, env.NumEnvs)
}

// TrackLinVel rewards matching the target forward velocity with an
// exponential kernel exp(-err^2 / std^2)
func TrackLinVel(env *envs.Env, p managers.Params) *tensor.Tensor {
	target := p.Float("target")
	std := p.FloatOr("std", 0.5)
	out := tensor.Zeros(env.NumEnvs)
	for i := 0; i < env.NumEnvs; i++ {
		err := env.Scene.LinVelW.At(i, 0) - target
		out.Data()[i] = math.Exp(-err * err / (std * std))
	}
	return out
}

// ForcePenalty penalizes the squared magnitude of the applied force
func ForcePenalty(env *envs.Env, p managers.Params) *tensor.Tensor {
	out := tensor.Zeros(env.NumEnvs)
	for i := 0; i < env.NumEnvs; i++ {
		sum := 0.0
		for k := 0; k < 3; k++ {
			f := env.Scene.AppliedForce.At(i, k)
			sum += f * f
		}
		out.Data()[i] = sum
	}
	return out
}

// LinVelZPenalty penalizes vertical root velocity
func LinVelZPenalty(env *envs.Env, p managers.Params) *tensor.Tensor {
	out := tensor.Zeros(env.NumEnvs)
	for i := 0; i < env.NumEnvs; i++ {
		v := env.Scene.LinVelW.At(i, 2)
		out.Data()[i] = v * v
	}
	return out
}
