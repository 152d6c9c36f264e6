package managers

import (
	"fmt"
	"strings"

	"github.com/zeu5/managed-rl-env/envs"
)

type curriculumTermRuntime struct {
	name  string
	cfg   *CurriculumTermCfg
	fn    CurriculumFn
	state float64
}

// CurriculumManager updates the task difficulty terms. The environment
// loop calls Compute with the subset of instances being reset; each
// term returns its current difficulty state, kept for telemetry.
type CurriculumManager struct {
	env   *envs.Env
	terms []*curriculumTermRuntime
}

// NewCurriculumManager prepares the curriculum term list.
// Disabled (nil) terms are skipped silently.
func NewCurriculumManager(cfg *CurriculumManagerCfg, env *envs.Env) (*CurriculumManager, error) {
	m := &CurriculumManager{env: env}
	seen := make(map[string]bool)
	for _, term := range cfg.Terms {
		if term.Cfg == nil {
			continue
		}
		if seen[term.Name] {
			return nil, fmt.Errorf("%w: duplicate curriculum term %q", ErrConfiguration, term.Name)
		}
		seen[term.Name] = true

		fn, err := resolveCurriculumTerm(term.Name, term.Cfg)
		if err != nil {
			return nil, err
		}
		m.terms = append(m.terms, &curriculumTermRuntime{
			name: term.Name,
			cfg:  term.Cfg,
			fn:   fn,
		})
	}
	return m, nil
}

// Compute updates every term for the reset subset
func (m *CurriculumManager) Compute(ids envs.Subset) {
	for _, rt := range m.terms {
		rt.state = rt.fn(m.env, ids, rt.cfg.Params)
	}
}

// Reset reports the current difficulty state per term
func (m *CurriculumManager) Reset(ids envs.Subset) map[string]float64 {
	metrics := make(map[string]float64, len(m.terms))
	for _, rt := range m.terms {
		metrics["Curriculum/"+rt.name] = rt.state
	}
	return metrics
}

// ActiveTerms lists the active curriculum term names in declaration order
func (m *CurriculumManager) ActiveTerms() []string {
	names := make([]string, 0, len(m.terms))
	for _, rt := range m.terms {
		names = append(names, rt.name)
	}
	return names
}

// GetTermCfg returns the descriptor of the named term
func (m *CurriculumManager) GetTermCfg(name string) (*CurriculumTermCfg, error) {
	for _, rt := range m.terms {
		if rt.name == name {
			return rt.cfg, nil
		}
	}
	return nil, fmt.Errorf("%w: curriculum term %q", ErrNameNotFound, name)
}

// SetTermCfg replaces the descriptor of the named term, revalidating
// only that term
func (m *CurriculumManager) SetTermCfg(name string, cfg *CurriculumTermCfg) error {
	for _, rt := range m.terms {
		if rt.name != name {
			continue
		}
		fn, err := resolveCurriculumTerm(name, cfg)
		if err != nil {
			return err
		}
		rt.cfg = cfg
		rt.fn = fn
		return nil
	}
	return fmt.Errorf("%w: curriculum term %q", ErrNameNotFound, name)
}

// String returns a human-readable summary of the active terms
func (m *CurriculumManager) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<CurriculumManager> contains %d terms.\n", len(m.terms))
	rows := make([][]string, 0, len(m.terms))
	for i, rt := range m.terms {
		rows = append(rows, []string{fmt.Sprintf("%d", i), rt.name})
	}
	b.WriteString(tableString("Active Curriculum Terms", []string{"Index", "Name"}, rows))
	return b.String()
}
