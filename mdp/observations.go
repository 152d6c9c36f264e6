// Package mdp is the built-in library of manager terms. Every term is
// registered under a snake_case key at init time; environment configs
// refer to the keys, never to the functions.
package mdp

import (
	"math"

	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/managers"
	"github.com/zeu5/managed-rl-env/tensor"
)

func init() {
	managers.MustRegisterObservation("base_lin_vel", BaseLinVel)
	managers.MustRegisterObservation("root_pos_w", RootPosW)
	managers.MustRegisterObservation("joint_pos", JointPos)
	managers.MustRegisterObservation("root_height", RootHeight)
	managers.MustRegisterObservation("height_scan", HeightScan,
		managers.OptionalParam("resolution"),
	)
	managers.MustRegisterObservationClass("elapsed_time", NewElapsedTime)
}

// BaseLinVel returns the root linear velocity as a (N, 3) tensor
func BaseLinVel(env *envs.Env, p managers.Params) *tensor.Tensor {
	return env.Scene.LinVelW.Clone()
}

// RootPosW returns the root world position as a (N, 3) tensor
func RootPosW(env *envs.Env, p managers.Params) *tensor.Tensor {
	return env.Scene.PosW.Clone()
}

// JointPos returns the joint positions as a (N, J) tensor
func JointPos(env *envs.Env, p managers.Params) *tensor.Tensor {
	return env.Scene.JointPos.Clone()
}

// RootHeight returns the z coordinate of the root as a (N, 1) tensor
func RootHeight(env *envs.Env, p managers.Params) *tensor.Tensor {
	out := tensor.Zeros(env.NumEnvs, 1)
	for i := 0; i < env.NumEnvs; i++ {
		out.Set(i, 0, env.Scene.PosW.At(i, 2))
	}
	return out
}

// HeightScan returns a (N, R, R, 1) height map image around each robot.
// The toy terrain is a radial wave centered at the origin, offset by the
// instance terrain level. The higher rank makes the term usable only in
// non-concatenated groups.
func HeightScan(env *envs.Env, p managers.Params) *tensor.Tensor {
	res := p.IntOr("resolution", 8)
	out := tensor.Zeros(env.NumEnvs, res, res, 1)
	for i := 0; i < env.NumEnvs; i++ {
		x0 := env.Scene.PosW.At(i, 0)
		y0 := env.Scene.PosW.At(i, 1)
		level := float64(env.Scene.TerrainLevel[i])
		row := out.Row(i)
		for r := 0; r < res; r++ {
			for c := 0; c < res; c++ {
				x := x0 + float64(c-res/2)*0.1
				y := y0 + float64(r-res/2)*0.1
				row[r*res+c] = 0.05 * level * math.Sin(math.Hypot(x, y))
			}
		}
	}
	return out
}

// ElapsedTime reports the seconds since each instance was last reset,
// as a (N, 1) tensor. The term keeps its own clock so it can be reset
// selectively, independent of the episode counters.
type ElapsedTime struct {
	env     *envs.Env
	seconds []float64
}

// NewElapsedTime builds the per-instance clock
func NewElapsedTime(cfg *managers.ObservationTermCfg, env *envs.Env) managers.ObservationTermState {
	return &ElapsedTime{
		env:     env,
		seconds: make([]float64, env.NumEnvs),
	}
}

// Compute advances the clocks by one control step and returns them
func (t *ElapsedTime) Compute(env *envs.Env, p managers.Params) *tensor.Tensor {
	out := tensor.Zeros(env.NumEnvs, 1)
	for i := range t.seconds {
		t.seconds[i] += env.Dt
		out.Set(i, 0, t.seconds[i])
	}
	return out
}

// Reset zeroes the clocks of the given subset
func (t *ElapsedTime) Reset(ids envs.Subset) {
	for _, i := range ids.Indices(t.env.NumEnvs) {
		t.seconds[i] = 0
	}
}
