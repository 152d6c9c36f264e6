package managers

import (
	"fmt"
	"strings"

	"github.com/zeu5/managed-rl-env/envs"
)

type eventTermRuntime struct {
	name     string
	cfg      *EventTermCfg
	state    EventTermState
	stateful bool

	// interval mode: seconds left until the next trigger, one entry if
	// the timing is global, else one per instance
	timeLeft []float64
	// reset mode: step count at the last trigger, one per instance
	lastTriggered []int
}

// EventManager orchestrates event terms grouped by a user-defined mode.
// The "interval" and "reset" built-in modes carry timing and gating
// logic; every other mode fires its terms unconditionally when applied.
type EventManager struct {
	env       *envs.Env
	modeOrder []string
	modeTerms map[string][]*eventTermRuntime
}

// NewEventManager prepares the mode buckets and allocates the per-term
// auxiliary state buffers. Disabled (nil) terms are skipped silently.
func NewEventManager(cfg *EventManagerCfg, env *envs.Env) (*EventManager, error) {
	m := &EventManager{
		env:       env,
		modeTerms: make(map[string][]*eventTermRuntime),
	}
	seen := make(map[string]bool)
	for _, term := range cfg.Terms {
		if term.Cfg == nil {
			continue
		}
		if seen[term.Name] {
			return nil, fmt.Errorf("%w: duplicate event term %q", ErrConfiguration, term.Name)
		}
		seen[term.Name] = true

		rt, err := m.prepareTerm(term.Name, term.Cfg)
		if err != nil {
			return nil, err
		}
		mode := term.Cfg.Mode
		if _, ok := m.modeTerms[mode]; !ok {
			m.modeOrder = append(m.modeOrder, mode)
		}
		m.modeTerms[mode] = append(m.modeTerms[mode], rt)
	}
	return m, nil
}

func (m *EventManager) prepareTerm(name string, cfg *EventTermCfg) (*eventTermRuntime, error) {
	if cfg.Mode == "" {
		return nil, fmt.Errorf("%w: event term %q has no mode", ErrConfiguration, name)
	}
	if cfg.Mode != ModeReset && cfg.MinStepCountBetweenReset != 0 {
		warnf("event term %q has a reset step gate but mode %q, ignoring the gate", name, cfg.Mode)
	}

	state, stateful, err := resolveEventTerm(name, cfg, m.env)
	if err != nil {
		return nil, err
	}
	rt := &eventTermRuntime{
		name:     name,
		cfg:      cfg,
		state:    state,
		stateful: stateful,
	}

	switch cfg.Mode {
	case ModeInterval:
		if cfg.IntervalRangeS == nil {
			return nil, fmt.Errorf("%w: event term %q has mode %q but no interval range", ErrConfiguration, name, ModeInterval)
		}
		lo, hi := cfg.IntervalRangeS[0], cfg.IntervalRangeS[1]
		if lo < 0 || hi < lo {
			return nil, fmt.Errorf("%w: event term %q has invalid interval range (%v, %v)", ErrConfiguration, name, lo, hi)
		}
		if cfg.IsGlobalTime {
			rt.timeLeft = []float64{m.sampleInterval(lo, hi)}
		} else {
			rt.timeLeft = make([]float64, m.env.NumEnvs)
			for i := range rt.timeLeft {
				rt.timeLeft[i] = m.sampleInterval(lo, hi)
			}
		}
	case ModeReset:
		if cfg.MinStepCountBetweenReset < 0 {
			return nil, fmt.Errorf("%w: event term %q has negative min step count %d",
				ErrConfiguration, name, cfg.MinStepCountBetweenReset)
		}
		rt.lastTriggered = make([]int, m.env.NumEnvs)
	}
	return rt, nil
}

// sampleInterval draws the next trigger delay uniformly from [lo, hi].
// Per-instance timers are sampled independently on purpose so reset
// cadences stay uncorrelated across the batch.
func (m *EventManager) sampleInterval(lo, hi float64) float64 {
	return lo + m.env.Rand.Float64()*(hi-lo)
}

// Apply calls every term of the given mode.
//
// dt is required for the "interval" mode (pass the control time step,
// must be positive) and ignored otherwise. globalEnvStepCount is
// required for the "reset" mode (pass -1 otherwise). Missing either for
// its mode is a caller programming error and panics.
//
// Applying an unknown mode is not an error: modes are user-extensible,
// so the call is skipped with a warning.
func (m *EventManager) Apply(mode string, ids envs.Subset, dt float64, globalEnvStepCount int) {
	terms, ok := m.modeTerms[mode]
	if !ok {
		warnf("event mode %q is not defined, skipping", mode)
		return
	}
	if mode == ModeInterval && dt <= 0 {
		panic("event manager: interval mode requires the environment time-step")
	}
	if mode == ModeReset && globalEnvStepCount < 0 {
		panic("event manager: reset mode requires the global environment step count")
	}

	for _, rt := range terms {
		fireIDs := ids
		switch mode {
		case ModeInterval:
			fired, skip := m.advanceInterval(rt, ids, dt)
			if skip {
				continue
			}
			fireIDs = fired
		case ModeReset:
			fired, skip := m.gateReset(rt, ids, globalEnvStepCount)
			if skip {
				continue
			}
			fireIDs = fired
		}
		rt.state.Apply(m.env, fireIDs, rt.cfg.Params)
	}
}

// advanceInterval decrements the term's timers and returns the instance
// subset whose interval elapsed, resampling their next delay. skip is
// true when nothing elapsed.
func (m *EventManager) advanceInterval(rt *eventTermRuntime, ids envs.Subset, dt float64) (envs.Subset, bool) {
	lo, hi := rt.cfg.IntervalRangeS[0], rt.cfg.IntervalRangeS[1]

	if rt.cfg.IsGlobalTime {
		rt.timeLeft[0] -= dt
		if rt.timeLeft[0] > 0 {
			return nil, true
		}
		rt.timeLeft[0] = m.sampleInterval(lo, hi)
		return ids, false
	}

	for i := range rt.timeLeft {
		rt.timeLeft[i] -= dt
	}
	fired := make([]int, 0)
	for _, i := range ids.Indices(m.env.NumEnvs) {
		if rt.timeLeft[i] <= 0 {
			fired = append(fired, i)
			rt.timeLeft[i] = m.sampleInterval(lo, hi)
		}
	}
	if len(fired) == 0 {
		return nil, true
	}
	return envs.Subset(fired), false
}

// gateReset returns the instance subset whose elapsed step count since
// the last trigger meets the configured gate, stamping their trigger
// step. A zero gate always fires for the whole subset.
func (m *EventManager) gateReset(rt *eventTermRuntime, ids envs.Subset, globalEnvStepCount int) (envs.Subset, bool) {
	indices := ids.Indices(m.env.NumEnvs)

	if rt.cfg.MinStepCountBetweenReset == 0 {
		for _, i := range indices {
			rt.lastTriggered[i] = globalEnvStepCount
		}
		return ids, false
	}

	fired := make([]int, 0)
	for _, i := range indices {
		if globalEnvStepCount-rt.lastTriggered[i] >= rt.cfg.MinStepCountBetweenReset {
			fired = append(fired, i)
			rt.lastTriggered[i] = globalEnvStepCount
		}
	}
	if len(fired) == 0 {
		return nil, true
	}
	return envs.Subset(fired), false
}

// Reset routes the reset to every stateful term, restricted to ids.
// The event manager defines no resettable metrics.
func (m *EventManager) Reset(ids envs.Subset) map[string]float64 {
	for _, mode := range m.modeOrder {
		for _, rt := range m.modeTerms[mode] {
			if rt.stateful {
				rt.state.Reset(ids)
			}
		}
	}
	return map[string]float64{}
}

// ActiveTerms lists the active term names per mode
func (m *EventManager) ActiveTerms() map[string][]string {
	out := make(map[string][]string, len(m.modeOrder))
	for _, mode := range m.modeOrder {
		names := make([]string, 0, len(m.modeTerms[mode]))
		for _, rt := range m.modeTerms[mode] {
			names = append(names, rt.name)
		}
		out[mode] = names
	}
	return out
}

// AvailableModes lists the configured modes in first-appearance order
func (m *EventManager) AvailableModes() []string {
	out := make([]string, len(m.modeOrder))
	copy(out, m.modeOrder)
	return out
}

// GetTermCfg returns the descriptor of the first term matching name
// across all modes
func (m *EventManager) GetTermCfg(name string) (*EventTermCfg, error) {
	for _, mode := range m.modeOrder {
		for _, rt := range m.modeTerms[mode] {
			if rt.name == name {
				return rt.cfg, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: event term %q", ErrNameNotFound, name)
}

// SetTermCfg replaces the descriptor of the first term matching name,
// revalidating only that term. The replacement keeps the term in its
// original mode bucket position when the mode is unchanged.
func (m *EventManager) SetTermCfg(name string, cfg *EventTermCfg) error {
	for _, mode := range m.modeOrder {
		for i, rt := range m.modeTerms[mode] {
			if rt.name != name {
				continue
			}
			nrt, err := m.prepareTerm(name, cfg)
			if err != nil {
				return err
			}
			if cfg.Mode == mode {
				m.modeTerms[mode][i] = nrt
				return nil
			}
			// mode changed: move the term to the end of its new bucket
			m.modeTerms[mode] = append(m.modeTerms[mode][:i], m.modeTerms[mode][i+1:]...)
			if _, ok := m.modeTerms[cfg.Mode]; !ok {
				m.modeOrder = append(m.modeOrder, cfg.Mode)
			}
			m.modeTerms[cfg.Mode] = append(m.modeTerms[cfg.Mode], nrt)
			return nil
		}
	}
	return fmt.Errorf("%w: event term %q", ErrNameNotFound, name)
}

// String returns a human-readable summary of the active terms per mode
func (m *EventManager) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<EventManager> contains %d modes.\n", len(m.modeOrder))
	for _, mode := range m.modeOrder {
		rows := make([][]string, 0, len(m.modeTerms[mode]))
		for i, rt := range m.modeTerms[mode] {
			if mode == ModeInterval {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i), rt.name,
					fmt.Sprintf("(%.2f, %.2f)", rt.cfg.IntervalRangeS[0], rt.cfg.IntervalRangeS[1]),
				})
			} else {
				rows = append(rows, []string{fmt.Sprintf("%d", i), rt.name, "-"})
			}
		}
		title := fmt.Sprintf("Active Event Terms in Mode: %q", mode)
		b.WriteString(tableString(title, []string{"Index", "Name", "Interval range (s)"}, rows))
	}
	return b.String()
}
