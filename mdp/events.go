package mdp

import (
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/managers"
)

func init() {
	managers.MustRegisterEvent("reset_scene_to_default", ResetSceneToDefault)
	managers.MustRegisterEvent("randomize_rigid_body_mass", RandomizeRigidBodyMass,
		managers.RequiredParam("mass_range"),
	)
	managers.MustRegisterEvent("randomize_material", RandomizeMaterial,
		managers.RequiredParam("frictions"),
		managers.OptionalParam("weights"),
	)
	managers.MustRegisterEvent("push_robot", PushRobot,
		managers.RequiredParam("velocity_range"),
	)
	managers.MustRegisterEvent("scale_body_masses", ScaleBodyMasses,
		managers.RequiredParam("scale_range"),
	)
	managers.MustRegisterEvent("apply_external_force", ApplyExternalForce,
		managers.RequiredParam("force_range"),
	)
}

// ResetSceneToDefault restores the default scene state for the subset
func ResetSceneToDefault(env *envs.Env, ids envs.Subset, p managers.Params) {
	env.Scene.ResetToDefault(ids)
}

// RandomizeRigidBodyMass draws a fresh mass for each instance of the
// subset, uniformly from the "mass_range" (lower, upper) parameter
func RandomizeRigidBodyMass(env *envs.Env, ids envs.Subset, p managers.Params) {
	r := p.Floats("mass_range")
	if len(r) != 2 {
		return
	}
	for _, i := range ids.Indices(env.NumEnvs) {
		env.Scene.Mass.Set(i, 0, r[0]+env.Rand.Float64()*(r[1]-r[0]))
	}
}

// RandomizeMaterial assigns each instance a friction coefficient drawn
// from the discrete "frictions" list. Optional "weights" bias the draw;
// without them the choice is uniform.
func RandomizeMaterial(env *envs.Env, ids envs.Subset, p managers.Params) {
	frictions := p.Floats("frictions")
	if len(frictions) == 0 {
		return
	}
	weights := p.Floats("weights")
	if len(weights) != len(frictions) {
		weights = make([]float64, len(frictions))
		for i := range weights {
			weights[i] = 1
		}
	}
	for _, i := range ids.Indices(env.NumEnvs) {
		idx, ok := sampleuv.NewWeighted(weights, env.Rand).Take()
		if !ok {
			continue
		}
		env.Scene.Friction.Set(i, 0, frictions[idx])
	}
}

// PushRobot perturbs the root linear velocity of the subset by a uniform
// draw from (-v, v) per axis, where v is the "velocity_range" parameter
func PushRobot(env *envs.Env, ids envs.Subset, p managers.Params) {
	v := p.Float("velocity_range")
	for _, i := range ids.Indices(env.NumEnvs) {
		for k := 0; k < 3; k++ {
			delta := (env.Rand.Float64()*2 - 1) * v
			env.Scene.LinVelW.Set(i, k, env.Scene.LinVelW.At(i, k)+delta)
		}
	}
}

// ScaleBodyMasses multiplies the masses of the subset by a uniform draw
// from the "scale_range" (lower, upper) parameter. Meant for startup
// mode, where it bakes per-instance variation into the batch.
func ScaleBodyMasses(env *envs.Env, ids envs.Subset, p managers.Params) {
	r := p.Floats("scale_range")
	if len(r) != 2 {
		return
	}
	for _, i := range ids.Indices(env.NumEnvs) {
		f := r[0] + env.Rand.Float64()*(r[1]-r[0])
		env.Scene.Mass.Set(i, 0, env.Scene.Mass.At(i, 0)*f)
	}
}

// ApplyExternalForce sets a fresh external force on the subset, drawn
// uniformly from (-f, f) per axis where f is the "force_range" parameter
func ApplyExternalForce(env *envs.Env, ids envs.Subset, p managers.Params) {
	f := p.Float("force_range")
	for _, i := range ids.Indices(env.NumEnvs) {
		for k := 0; k < 3; k++ {
			env.Scene.AppliedForce.Set(i, k, (env.Rand.Float64()*2-1)*f)
		}
	}
}
