package envs

import (
	"github.com/zeu5/managed-rl-env/tensor"
)

// Scene holds the batched state buffers of the simulated robots.
// One row per environment instance. The buffers stand in for the read/write
// state interface of the external simulator.
type Scene struct {
	NumEnvs   int
	NumJoints int

	PosW         *tensor.Tensor // (N, 3) root position in world frame
	LinVelW      *tensor.Tensor // (N, 3) root linear velocity
	JointPos     *tensor.Tensor // (N, J)
	Mass         *tensor.Tensor // (N, 1)
	Friction     *tensor.Tensor // (N, 1) material friction coefficient
	AppliedForce *tensor.Tensor // (N, 3) external force applied this step
	TerrainLevel []int          // per-instance terrain difficulty level

	defaultPos      *tensor.Tensor
	defaultJointPos *tensor.Tensor
	defaultMass     float64
	defaultFriction float64
}

// NewScene allocates the state buffers for n instances with j joints each
func NewScene(n, j int) *Scene {
	s := &Scene{
		NumEnvs:   n,
		NumJoints: j,

		PosW:         tensor.Zeros(n, 3),
		LinVelW:      tensor.Zeros(n, 3),
		JointPos:     tensor.Zeros(n, j),
		Mass:         tensor.Filled(1.0, n, 1),
		Friction:     tensor.Filled(0.8, n, 1),
		AppliedForce: tensor.Zeros(n, 3),
		TerrainLevel: make([]int, n),

		defaultPos:      tensor.Zeros(n, 3),
		defaultJointPos: tensor.Zeros(n, j),
		defaultMass:     1.0,
		defaultFriction: 0.8,
	}
	// robots spawn slightly above the ground plane
	for i := 0; i < n; i++ {
		s.PosW.Set(i, 2, 0.5)
		s.defaultPos.Set(i, 2, 0.5)
	}
	return s
}

// ResetToDefault restores the default state for the subset of instances
func (s *Scene) ResetToDefault(ids Subset) {
	for _, i := range ids.Indices(s.NumEnvs) {
		s.PosW.CopyRow(i, s.defaultPos.Row(i))
		s.JointPos.CopyRow(i, s.defaultJointPos.Row(i))
		for k := 0; k < 3; k++ {
			s.LinVelW.Set(i, k, 0)
			s.AppliedForce.Set(i, k, 0)
		}
		s.Mass.Set(i, 0, s.defaultMass)
		s.Friction.Set(i, 0, s.defaultFriction)
	}
}

// Step integrates the toy point-mass dynamics by dt. This is a stand-in for
// the external physics step; the managers never call it themselves.
func (s *Scene) Step(dt float64) {
	for i := 0; i < s.NumEnvs; i++ {
		m := s.Mass.At(i, 0)
		for k := 0; k < 3; k++ {
			// a = F/m, gravity on the z axis
			a := s.AppliedForce.At(i, k) / m
			if k == 2 {
				a -= 9.81
			}
			v := s.LinVelW.At(i, k) + a*dt
			s.LinVelW.Set(i, k, v)
			s.PosW.Set(i, k, s.PosW.At(i, k)+v*dt)
		}
		// ground contact
		if s.PosW.At(i, 2) < 0 {
			s.PosW.Set(i, 2, 0)
			if s.LinVelW.At(i, 2) < 0 {
				s.LinVelW.Set(i, 2, 0)
			}
		}
	}
}

// State flattens the scene state into a single (N, 3+3+J+2) tensor,
// used by recorder terms
func (s *Scene) State() *tensor.Tensor {
	width := 3 + 3 + s.NumJoints + 2
	out := tensor.Zeros(s.NumEnvs, width)
	for i := 0; i < s.NumEnvs; i++ {
		row := out.Row(i)
		copy(row[0:3], s.PosW.Row(i))
		copy(row[3:6], s.LinVelW.Row(i))
		copy(row[6:6+s.NumJoints], s.JointPos.Row(i))
		row[6+s.NumJoints] = s.Mass.At(i, 0)
		row[7+s.NumJoints] = s.Friction.At(i, 0)
	}
	return out
}
