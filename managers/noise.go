package managers

import (
	"golang.org/x/exp/rand"

	"github.com/zeu5/managed-rl-env/tensor"
)

// NoiseKind selects the corruption model of an observation term
type NoiseKind int

const (
	NoiseUniform NoiseKind = iota
	NoiseGaussian
)

// NoiseCfg is an additive noise specification
type NoiseCfg struct {
	Kind NoiseKind

	// uniform bounds
	Low  float64
	High float64

	// gaussian parameters
	Mean float64
	Std  float64
}

// UniformNoise adds noise drawn from U(low, high)
func UniformNoise(low, high float64) *NoiseCfg {
	return &NoiseCfg{Kind: NoiseUniform, Low: low, High: high}
}

// GaussianNoise adds noise drawn from N(mean, std)
func GaussianNoise(mean, std float64) *NoiseCfg {
	return &NoiseCfg{Kind: NoiseGaussian, Mean: mean, Std: std}
}

// Apply corrupts t in place with one independent draw per element
func (n *NoiseCfg) Apply(t *tensor.Tensor, rng *rand.Rand) {
	switch n.Kind {
	case NoiseUniform:
		t.Map(func(v float64) float64 {
			return v + n.Low + rng.Float64()*(n.High-n.Low)
		})
	case NoiseGaussian:
		t.Map(func(v float64) float64 {
			return v + n.Mean + rng.NormFloat64()*n.Std
		})
	}
}
