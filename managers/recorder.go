package managers

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/record"
	"github.com/zeu5/managed-rl-env/tensor"
)

type recorderTermRuntime struct {
	name string
	cfg  *RecorderTermCfg
	term RecorderTerm
}

// RecorderManagerCfg configures the recorder terms and the sinks the
// records fan out to
type RecorderManagerCfg struct {
	Terms []RecorderTermEntry
	Sinks []record.Sink
}

// RecorderManager invokes the recorder term hooks at the pre-step,
// post-step and post-reset points of the step cycle and fans the
// produced records out to every sink. All records of one manager carry
// the same run id.
type RecorderManager struct {
	env   *envs.Env
	terms []*recorderTermRuntime
	sinks []record.Sink
	runID string
	step  int
}

// NewRecorderManager prepares the recorder term list and opens the
// sinks. Disabled (nil) terms are skipped silently.
func NewRecorderManager(cfg *RecorderManagerCfg, env *envs.Env) (*RecorderManager, error) {
	m := &RecorderManager{
		env:   env,
		sinks: cfg.Sinks,
		runID: uuid.NewString(),
	}
	seen := make(map[string]bool)
	for _, term := range cfg.Terms {
		if term.Cfg == nil {
			continue
		}
		if seen[term.Name] {
			return nil, fmt.Errorf("%w: duplicate recorder term %q", ErrConfiguration, term.Name)
		}
		seen[term.Name] = true

		rt, err := resolveRecorderTerm(term.Name, term.Cfg, env)
		if err != nil {
			return nil, err
		}
		m.terms = append(m.terms, &recorderTermRuntime{
			name: term.Name,
			cfg:  term.Cfg,
			term: rt,
		})
	}
	for _, sink := range m.sinks {
		if err := sink.Open(); err != nil {
			return nil, fmt.Errorf("recorder sink open: %w", err)
		}
	}
	return m, nil
}

// RunID identifies all records produced by this manager instance
func (m *RecorderManager) RunID() string {
	return m.runID
}

// RecordPreStep runs the pre-step hooks
func (m *RecorderManager) RecordPreStep() {
	for _, rt := range m.terms {
		key, data := rt.term.RecordPreStep(m.env)
		m.write("pre_step", key, data, nil)
	}
}

// RecordPostStep runs the post-step hooks and advances the step counter
func (m *RecorderManager) RecordPostStep() {
	for _, rt := range m.terms {
		key, data := rt.term.RecordPostStep(m.env)
		m.write("post_step", key, data, nil)
	}
	m.step++
}

// RecordPostReset runs the post-reset hooks for the reset subset
func (m *RecorderManager) RecordPostReset(ids envs.Subset) {
	for _, rt := range m.terms {
		key, data := rt.term.RecordPostReset(m.env, ids)
		m.write("post_reset", key, data, ids)
	}
}

func (m *RecorderManager) write(phase, key string, data *tensor.Tensor, ids envs.Subset) {
	if key == "" || data == nil {
		return
	}
	r := record.Record{
		RunID:  m.runID,
		Step:   m.step,
		Phase:  phase,
		Key:    key,
		Dims:   data.Dims(),
		Values: data.Data(),
	}
	if ids != nil {
		r.EnvIDs = ids
	}
	for _, sink := range m.sinks {
		if err := sink.Write(r); err != nil {
			warnf("recorder sink write failed: %v", err)
		}
	}
}

// Reset is a no-op: recorder terms hold no per-instance state, the run
// step counter is global, and the manager defines no metrics
func (m *RecorderManager) Reset(ids envs.Subset) map[string]float64 {
	return map[string]float64{}
}

// Close releases all sinks
func (m *RecorderManager) Close() error {
	var firstErr error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ActiveTerms lists the active recorder term names in declaration order
func (m *RecorderManager) ActiveTerms() []string {
	names := make([]string, 0, len(m.terms))
	for _, rt := range m.terms {
		names = append(names, rt.name)
	}
	return names
}

// GetTermCfg returns the descriptor of the named term
func (m *RecorderManager) GetTermCfg(name string) (*RecorderTermCfg, error) {
	for _, rt := range m.terms {
		if rt.name == name {
			return rt.cfg, nil
		}
	}
	return nil, fmt.Errorf("%w: recorder term %q", ErrNameNotFound, name)
}

// SetTermCfg replaces the descriptor of the named term, revalidating
// only that term
func (m *RecorderManager) SetTermCfg(name string, cfg *RecorderTermCfg) error {
	for _, rt := range m.terms {
		if rt.name != name {
			continue
		}
		term, err := resolveRecorderTerm(name, cfg, m.env)
		if err != nil {
			return err
		}
		rt.cfg = cfg
		rt.term = term
		return nil
	}
	return fmt.Errorf("%w: recorder term %q", ErrNameNotFound, name)
}

// String returns a human-readable summary of the active terms
func (m *RecorderManager) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<RecorderManager> contains %d terms.\n", len(m.terms))
	rows := make([][]string, 0, len(m.terms))
	for i, rt := range m.terms {
		rows = append(rows, []string{fmt.Sprintf("%d", i), rt.name})
	}
	b.WriteString(tableString("Active Recorder Terms", []string{"Index", "Name"}, rows))
	return b.String()
}
