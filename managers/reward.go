package managers

import (
	"fmt"
	"strings"

	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/tensor"
)

type rewardTermRuntime struct {
	name string
	cfg  *RewardTermCfg
	fn   RewardFn
	// accumulated reward per instance since its last reset
	episodeSum *tensor.Tensor
}

// RewardManager computes the weighted per-step reward over all terms.
// Each term contributes weight * value * dt; terms with zero weight are
// parsed but skipped during computation.
type RewardManager struct {
	env   *envs.Env
	terms []*rewardTermRuntime
	buf   *tensor.Tensor // (N,) reward of the current step
}

// NewRewardManager prepares the reward term list.
// Disabled (nil) terms are skipped silently.
func NewRewardManager(cfg *RewardManagerCfg, env *envs.Env) (*RewardManager, error) {
	m := &RewardManager{
		env: env,
		buf: tensor.Zeros(env.NumEnvs),
	}
	seen := make(map[string]bool)
	for _, term := range cfg.Terms {
		if term.Cfg == nil {
			continue
		}
		if seen[term.Name] {
			return nil, fmt.Errorf("%w: duplicate reward term %q", ErrConfiguration, term.Name)
		}
		seen[term.Name] = true

		fn, err := resolveRewardTerm(term.Name, term.Cfg)
		if err != nil {
			return nil, err
		}
		if term.Cfg.Weight == 0 {
			warnf("reward term %q has zero weight, it will be skipped", term.Name)
		}
		m.terms = append(m.terms, &rewardTermRuntime{
			name:       term.Name,
			cfg:        term.Cfg,
			fn:         fn,
			episodeSum: tensor.Zeros(env.NumEnvs),
		})
	}
	return m, nil
}

// Compute returns the (N,) reward for the current step, scaled by dt
func (m *RewardManager) Compute(dt float64) *tensor.Tensor {
	for i := range m.buf.Data() {
		m.buf.Data()[i] = 0
	}
	for _, rt := range m.terms {
		if rt.cfg.Weight == 0 {
			continue
		}
		value := rt.fn(m.env, rt.cfg.Params).Clone().Scale(rt.cfg.Weight * dt)
		m.buf.Add(value)
		rt.episodeSum.Add(value)
	}
	return m.buf.Clone()
}

// Reset reports the mean accumulated reward per term over the reset
// subset and zeroes those instances' accumulators
func (m *RewardManager) Reset(ids envs.Subset) map[string]float64 {
	indices := ids.Indices(m.env.NumEnvs)
	metrics := make(map[string]float64, len(m.terms))
	for _, rt := range m.terms {
		metrics["Episode_Reward/"+rt.name] = rt.episodeSum.MeanRows(indices)
		rt.episodeSum.ZeroRows(indices)
	}
	return metrics
}

// ActiveTerms lists the active reward term names in declaration order
func (m *RewardManager) ActiveTerms() []string {
	names := make([]string, 0, len(m.terms))
	for _, rt := range m.terms {
		names = append(names, rt.name)
	}
	return names
}

// GetTermCfg returns the descriptor of the named term
func (m *RewardManager) GetTermCfg(name string) (*RewardTermCfg, error) {
	for _, rt := range m.terms {
		if rt.name == name {
			return rt.cfg, nil
		}
	}
	return nil, fmt.Errorf("%w: reward term %q", ErrNameNotFound, name)
}

// SetTermCfg replaces the descriptor of the named term, revalidating
// only that term. The episode accumulator is preserved.
func (m *RewardManager) SetTermCfg(name string, cfg *RewardTermCfg) error {
	for _, rt := range m.terms {
		if rt.name != name {
			continue
		}
		fn, err := resolveRewardTerm(name, cfg)
		if err != nil {
			return err
		}
		rt.cfg = cfg
		rt.fn = fn
		return nil
	}
	return fmt.Errorf("%w: reward term %q", ErrNameNotFound, name)
}

// String returns a human-readable summary of the active terms
func (m *RewardManager) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<RewardManager> contains %d terms.\n", len(m.terms))
	rows := make([][]string, 0, len(m.terms))
	for i, rt := range m.terms {
		rows = append(rows, []string{fmt.Sprintf("%d", i), rt.name, fmt.Sprintf("%g", rt.cfg.Weight)})
	}
	b.WriteString(tableString("Active Reward Terms", []string{"Index", "Name", "Weight"}, rows))
	return b.String()
}
