package managers

import (
	"fmt"
	"strings"

	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/tensor"
)

// GroupObservation is the per-group output of a Compute call.
// Concatenated is set for concatenating groups, Terms otherwise.
type GroupObservation struct {
	Concatenated *tensor.Tensor
	Terms        map[string]*tensor.Tensor
}

type obsTermRuntime struct {
	name     string
	cfg      *ObservationTermCfg
	state    ObservationTermState
	stateful bool
	dims     []int // inferred output dims, including the batch axis
}

type obsGroupRuntime struct {
	name        string
	concatenate bool
	corruption  bool
	terms       []*obsTermRuntime
	groupDims   []int
}

// ObservationManager computes the named observation groups each step.
// Terms are validated and their output shapes inferred once at
// construction; Compute never re-checks shapes.
type ObservationManager struct {
	env        *envs.Env
	groupOrder []string
	groups     map[string]*obsGroupRuntime
}

// NewObservationManager prepares all groups and terms from the
// configuration. Disabled (nil) terms are skipped silently.
func NewObservationManager(cfg *ObservationManagerCfg, env *envs.Env) (*ObservationManager, error) {
	m := &ObservationManager{
		env:    env,
		groups: make(map[string]*obsGroupRuntime),
	}
	for _, group := range cfg.Groups {
		if group.Cfg == nil {
			continue
		}
		if _, exists := m.groups[group.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate observation group %q", ErrConfiguration, group.Name)
		}
		rt, err := m.prepareGroup(group.Name, group.Cfg)
		if err != nil {
			return nil, err
		}
		m.groupOrder = append(m.groupOrder, group.Name)
		m.groups[group.Name] = rt
	}
	return m, nil
}

func (m *ObservationManager) prepareGroup(name string, cfg *ObservationGroupCfg) (*obsGroupRuntime, error) {
	rt := &obsGroupRuntime{
		name:        name,
		concatenate: cfg.ConcatenateTerms,
		corruption:  cfg.EnableCorruption,
	}
	seen := make(map[string]bool)
	for _, term := range cfg.Terms {
		if term.Cfg == nil {
			// disabled term
			continue
		}
		if seen[term.Name] {
			return nil, fmt.Errorf("%w: duplicate observation term %q in group %q", ErrConfiguration, term.Name, name)
		}
		seen[term.Name] = true

		trt, err := m.prepareTerm(name, term.Name, term.Cfg, rt.concatenate)
		if err != nil {
			return nil, err
		}
		rt.terms = append(rt.terms, trt)
	}
	rt.groupDims = groupDims(rt)
	return rt, nil
}

// prepareTerm resolves one term and infers its output shape by invoking
// it once. Stateful terms are reset afterwards so the probe invocation
// leaves no trace.
func (m *ObservationManager) prepareTerm(group, name string, cfg *ObservationTermCfg, concatenate bool) (*obsTermRuntime, error) {
	state, stateful, err := resolveObservationTerm(name, cfg, m.env)
	if err != nil {
		return nil, err
	}

	probe := state.Compute(m.env, cfg.Params)
	if stateful {
		state.Reset(envs.All())
	}
	dims := probe.Dims()
	if len(dims) == 0 || dims[0] != m.env.NumEnvs {
		return nil, fmt.Errorf("%w: observation term %q in group %q has batch size %v, expected %d",
			ErrConfiguration, name, group, dims, m.env.NumEnvs)
	}
	if concatenate && len(dims) != 2 {
		return nil, fmt.Errorf("%w: observation term %q in group %q has shape %v which cannot be concatenated",
			ErrConfiguration, name, group, dims)
	}

	return &obsTermRuntime{
		name:     name,
		cfg:      cfg,
		state:    state,
		stateful: stateful,
		dims:     dims,
	}, nil
}

func groupDims(rt *obsGroupRuntime) []int {
	if !rt.concatenate || len(rt.terms) == 0 {
		return nil
	}
	width := 0
	for _, t := range rt.terms {
		width += t.dims[1]
	}
	return []int{rt.terms[0].dims[0], width}
}

// Compute evaluates every group in declaration order
func (m *ObservationManager) Compute() map[string]*GroupObservation {
	out := make(map[string]*GroupObservation, len(m.groupOrder))
	for _, name := range m.groupOrder {
		out[name] = m.computeGroup(m.groups[name])
	}
	return out
}

// ComputeGroup evaluates a single group by name
func (m *ObservationManager) ComputeGroup(name string) (*GroupObservation, error) {
	rt, ok := m.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: observation group %q", ErrNameNotFound, name)
	}
	return m.computeGroup(rt), nil
}

func (m *ObservationManager) computeGroup(rt *obsGroupRuntime) *GroupObservation {
	outputs := make([]*tensor.Tensor, 0, len(rt.terms))
	for _, t := range rt.terms {
		obs := t.state.Compute(m.env, t.cfg.Params).Clone()
		if t.cfg.Scale != nil {
			obs.Scale(*t.cfg.Scale)
		}
		if rt.corruption && t.cfg.Noise != nil {
			t.cfg.Noise.Apply(obs, m.env.Rand)
		}
		if t.cfg.Clip != nil {
			obs.Clamp(t.cfg.Clip[0], t.cfg.Clip[1])
		}
		outputs = append(outputs, obs)
	}

	if rt.concatenate {
		joined, err := tensor.ConcatCols(outputs...)
		if err != nil {
			// shapes were validated at preparation time; a term changed
			// its output shape at runtime
			panic(fmt.Sprintf("observation group %q: %v", rt.name, err))
		}
		return &GroupObservation{Concatenated: joined}
	}

	byName := make(map[string]*tensor.Tensor, len(rt.terms))
	for i, t := range rt.terms {
		byName[t.name] = outputs[i]
	}
	return &GroupObservation{Terms: byName}
}

// Reset routes the reset to every stateful term, restricted to ids.
// The observation manager defines no resettable metrics.
func (m *ObservationManager) Reset(ids envs.Subset) map[string]float64 {
	for _, name := range m.groupOrder {
		for _, t := range m.groups[name].terms {
			if t.stateful {
				t.state.Reset(ids)
			}
		}
	}
	return map[string]float64{}
}

// ActiveTerms lists the active term names per group
func (m *ObservationManager) ActiveTerms() map[string][]string {
	out := make(map[string][]string, len(m.groupOrder))
	for _, name := range m.groupOrder {
		names := make([]string, 0, len(m.groups[name].terms))
		for _, t := range m.groups[name].terms {
			names = append(names, t.name)
		}
		out[name] = names
	}
	return out
}

// Groups lists the group names in declaration order
func (m *ObservationManager) Groups() []string {
	out := make([]string, len(m.groupOrder))
	copy(out, m.groupOrder)
	return out
}

// GroupDims returns the concatenated output dims of a group, nil for
// non-concatenating groups
func (m *ObservationManager) GroupDims(group string) ([]int, error) {
	rt, ok := m.groups[group]
	if !ok {
		return nil, fmt.Errorf("%w: observation group %q", ErrNameNotFound, group)
	}
	return rt.groupDims, nil
}

// GroupTermDims returns the per-term output dims of a group in
// declaration order, for consumers that slice the concatenated tensor
func (m *ObservationManager) GroupTermDims(group string) ([][]int, error) {
	rt, ok := m.groups[group]
	if !ok {
		return nil, fmt.Errorf("%w: observation group %q", ErrNameNotFound, group)
	}
	out := make([][]int, len(rt.terms))
	for i, t := range rt.terms {
		out[i] = t.dims
	}
	return out, nil
}

// GetTermCfg returns the descriptor of the first term matching name
// across all groups
func (m *ObservationManager) GetTermCfg(name string) (*ObservationTermCfg, error) {
	for _, group := range m.groupOrder {
		for _, t := range m.groups[group].terms {
			if t.name == name {
				return t.cfg, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: observation term %q", ErrNameNotFound, name)
}

// SetTermCfg replaces the descriptor of the first term matching name,
// revalidating only that term
func (m *ObservationManager) SetTermCfg(name string, cfg *ObservationTermCfg) error {
	for _, group := range m.groupOrder {
		rt := m.groups[group]
		for i, t := range rt.terms {
			if t.name != name {
				continue
			}
			trt, err := m.prepareTerm(group, name, cfg, rt.concatenate)
			if err != nil {
				return err
			}
			rt.terms[i] = trt
			rt.groupDims = groupDims(rt)
			return nil
		}
	}
	return fmt.Errorf("%w: observation term %q", ErrNameNotFound, name)
}

// String returns a human-readable summary of the active terms per group
func (m *ObservationManager) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<ObservationManager> contains %d groups.\n", len(m.groupOrder))
	for _, group := range m.groupOrder {
		rt := m.groups[group]
		rows := make([][]string, 0, len(rt.terms))
		for i, t := range rt.terms {
			rows = append(rows, []string{fmt.Sprintf("%d", i), t.name, dimsString(t.dims[1:])})
		}
		title := fmt.Sprintf("Active Observation Terms in Group: %q", group)
		if rt.concatenate {
			title = fmt.Sprintf("%s (shape: %s)", title, dimsString(rt.groupDims))
		}
		b.WriteString(tableString(title, []string{"Index", "Name", "Shape"}, rows))
	}
	return b.String()
}
