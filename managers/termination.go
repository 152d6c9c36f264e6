package managers

import (
	"fmt"
	"strings"

	"github.com/zeu5/managed-rl-env/envs"
)

type terminationTermRuntime struct {
	name string
	cfg  *TerminationTermCfg
	fn   TerminationFn
	// flags of the most recent Compute call
	lastFired []bool
}

// TerminationManager computes the per-instance done flags each step.
// Terms flagged TimeOut contribute to the truncation vector, all others
// to the terminal vector; an instance is done when either is set.
type TerminationManager struct {
	env   *envs.Env
	terms []*terminationTermRuntime
}

// NewTerminationManager prepares the termination term list.
// Disabled (nil) terms are skipped silently.
func NewTerminationManager(cfg *TerminationManagerCfg, env *envs.Env) (*TerminationManager, error) {
	m := &TerminationManager{env: env}
	seen := make(map[string]bool)
	for _, term := range cfg.Terms {
		if term.Cfg == nil {
			continue
		}
		if seen[term.Name] {
			return nil, fmt.Errorf("%w: duplicate termination term %q", ErrConfiguration, term.Name)
		}
		seen[term.Name] = true

		fn, err := resolveTerminationTerm(term.Name, term.Cfg)
		if err != nil {
			return nil, err
		}
		m.terms = append(m.terms, &terminationTermRuntime{
			name:      term.Name,
			cfg:       term.Cfg,
			fn:        fn,
			lastFired: make([]bool, env.NumEnvs),
		})
	}
	return m, nil
}

// Compute evaluates every term and returns the terminal and time-out
// vectors for the current step
func (m *TerminationManager) Compute() (terminated, timeOuts []bool) {
	terminated = make([]bool, m.env.NumEnvs)
	timeOuts = make([]bool, m.env.NumEnvs)
	for _, rt := range m.terms {
		flags := rt.fn(m.env, rt.cfg.Params)
		copy(rt.lastFired, flags)
		target := terminated
		if rt.cfg.TimeOut {
			target = timeOuts
		}
		for i, f := range flags {
			if f {
				target[i] = true
			}
		}
	}
	return terminated, timeOuts
}

// Dones merges both vectors of a Compute result
func Dones(terminated, timeOuts []bool) []bool {
	dones := make([]bool, len(terminated))
	for i := range dones {
		dones[i] = terminated[i] || timeOuts[i]
	}
	return dones
}

// Reset reports, per term, how many instances of the reset subset it
// flagged in the most recent Compute call
func (m *TerminationManager) Reset(ids envs.Subset) map[string]float64 {
	indices := ids.Indices(m.env.NumEnvs)
	metrics := make(map[string]float64, len(m.terms))
	for _, rt := range m.terms {
		count := 0
		for _, i := range indices {
			if rt.lastFired[i] {
				count++
			}
			rt.lastFired[i] = false
		}
		metrics["Episode_Termination/"+rt.name] = float64(count)
	}
	return metrics
}

// ActiveTerms lists the active termination term names in declaration order
func (m *TerminationManager) ActiveTerms() []string {
	names := make([]string, 0, len(m.terms))
	for _, rt := range m.terms {
		names = append(names, rt.name)
	}
	return names
}

// GetTermCfg returns the descriptor of the named term
func (m *TerminationManager) GetTermCfg(name string) (*TerminationTermCfg, error) {
	for _, rt := range m.terms {
		if rt.name == name {
			return rt.cfg, nil
		}
	}
	return nil, fmt.Errorf("%w: termination term %q", ErrNameNotFound, name)
}

// SetTermCfg replaces the descriptor of the named term, revalidating
// only that term
func (m *TerminationManager) SetTermCfg(name string, cfg *TerminationTermCfg) error {
	for _, rt := range m.terms {
		if rt.name != name {
			continue
		}
		fn, err := resolveTerminationTerm(name, cfg)
		if err != nil {
			return err
		}
		rt.cfg = cfg
		rt.fn = fn
		return nil
	}
	return fmt.Errorf("%w: termination term %q", ErrNameNotFound, name)
}

// String returns a human-readable summary of the active terms
func (m *TerminationManager) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<TerminationManager> contains %d terms.\n", len(m.terms))
	rows := make([][]string, 0, len(m.terms))
	for i, rt := range m.terms {
		kind := "terminal"
		if rt.cfg.TimeOut {
			kind = "time-out"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i), rt.name, kind})
	}
	b.WriteString(tableString("Active Termination Terms", []string{"Index", "Name", "Kind"}, rows))
	return b.String()
}
