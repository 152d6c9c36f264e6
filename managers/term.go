package managers

import (
	"sort"

	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/tensor"
)

// Params is the free-form parameter mapping of a term descriptor.
// The keys are validated against the registered parameter specs of the
// term function at manager preparation time.
type Params map[string]any

// Float reads a numeric parameter, accepting float64, float32 and int values
func (p Params) Float(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// FloatOr reads a numeric parameter with a fallback for absent keys
func (p Params) FloatOr(key string, def float64) float64 {
	if _, ok := p[key]; !ok {
		return def
	}
	return p.Float(key)
}

// Int reads an integer parameter
func (p Params) Int(key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// IntOr reads an integer parameter with a fallback for absent keys
func (p Params) IntOr(key string, def int) int {
	if _, ok := p[key]; !ok {
		return def
	}
	return p.Int(key)
}

// Floats reads a []float64 parameter
func (p Params) Floats(key string) []float64 {
	if v, ok := p[key].([]float64); ok {
		return v
	}
	return nil
}

// Scalar is a config helper for optional scalar fields
func Scalar(v float64) *float64 {
	return &v
}

// Range is a config helper for (lower, upper) pairs
func Range(lo, hi float64) *[2]float64 {
	return &[2]float64{lo, hi}
}

// Built-in event modes. Modes are free-form strings; only these two carry
// engine-side timing logic.
const (
	ModeStartup  = "startup"
	ModeReset    = "reset"
	ModeInterval = "interval"
)

// ObservationFn computes one observation term for the whole batch
type ObservationFn func(env *envs.Env, p Params) *tensor.Tensor

// ObservationTermState is a stateful observation term. It is constructed
// once per manager and must support selective per-instance reset.
type ObservationTermState interface {
	Compute(env *envs.Env, p Params) *tensor.Tensor
	Reset(ids envs.Subset)
}

// EventFn applies one event term to the given instance subset.
// Side effects live entirely in the scene buffers.
type EventFn func(env *envs.Env, ids envs.Subset, p Params)

// EventTermState is a stateful event term
type EventTermState interface {
	Apply(env *envs.Env, ids envs.Subset, p Params)
	Reset(ids envs.Subset)
}

// RewardFn computes one reward term as a (N,) tensor
type RewardFn func(env *envs.Env, p Params) *tensor.Tensor

// TerminationFn computes one termination flag per instance
type TerminationFn func(env *envs.Env, p Params) []bool

// CurriculumFn updates the curriculum for the given reset subset and
// returns the current difficulty state of the term
type CurriculumFn func(env *envs.Env, ids envs.Subset, p Params) float64

// RecorderTerm records data at fixed points of the step cycle.
// A hook returning an empty key contributes nothing for that phase.
type RecorderTerm interface {
	RecordPreStep(env *envs.Env) (string, *tensor.Tensor)
	RecordPostStep(env *envs.Env) (string, *tensor.Tensor)
	RecordPostReset(env *envs.Env, ids envs.Subset) (string, *tensor.Tensor)
}

// NopRecorder provides no-op hooks for recorder terms that only
// implement a subset of the phases
type NopRecorder struct{}

func (NopRecorder) RecordPreStep(*envs.Env) (string, *tensor.Tensor)  { return "", nil }
func (NopRecorder) RecordPostStep(*envs.Env) (string, *tensor.Tensor) { return "", nil }
func (NopRecorder) RecordPostReset(*envs.Env, envs.Subset) (string, *tensor.Tensor) {
	return "", nil
}

// ObservationTermCfg describes one observation term.
// A nil descriptor in a group disables the term.
type ObservationTermCfg struct {
	Func   string
	Params Params
	// Scale multiplies the raw output. nil leaves the output unscaled;
	// an explicit zero zeroes the contribution.
	Scale *float64
	// Noise is applied only when the owning group enables corruption
	Noise *NoiseCfg
	// Clip clamps values into (min, max) after scaling and noise
	Clip *[2]float64
}

// ObservationGroupCfg describes one named output group
type ObservationGroupCfg struct {
	// ConcatenateTerms joins all term outputs along the trailing axis.
	// Requires every term output to be rank 2.
	ConcatenateTerms bool
	// EnableCorruption turns on the per-term noise models
	EnableCorruption bool
	Terms            []ObservationTerm
}

// ObservationTerm is a named observation term descriptor
type ObservationTerm struct {
	Name string
	Cfg  *ObservationTermCfg
}

// ObservationGroup is a named observation group
type ObservationGroup struct {
	Name string
	Cfg  *ObservationGroupCfg
}

// ObservationManagerCfg is the full observation manager configuration
type ObservationManagerCfg struct {
	Groups []ObservationGroup
}

// ObservationTermsFromMap converts the mapping config form into the
// ordered form, sorted by term name
func ObservationTermsFromMap(m map[string]*ObservationTermCfg) []ObservationTerm {
	names := sortedKeys(m)
	out := make([]ObservationTerm, 0, len(names))
	for _, n := range names {
		out = append(out, ObservationTerm{Name: n, Cfg: m[n]})
	}
	return out
}

// EventTermCfg describes one event term
type EventTermCfg struct {
	Func   string
	Mode   string
	Params Params
	// IntervalRangeS is the (lower, upper) sampling range in seconds,
	// required for interval mode
	IntervalRangeS *[2]float64
	// IsGlobalTime shares a single interval timer across the batch
	IsGlobalTime bool
	// MinStepCountBetweenReset gates reset-mode triggering per instance
	MinStepCountBetweenReset int
}

// EventTerm is a named event term descriptor
type EventTerm struct {
	Name string
	Cfg  *EventTermCfg
}

// EventManagerCfg is the full event manager configuration
type EventManagerCfg struct {
	Terms []EventTerm
}

// EventTermsFromMap converts the mapping config form into the ordered
// form, sorted by term name
func EventTermsFromMap(m map[string]*EventTermCfg) []EventTerm {
	names := sortedKeys(m)
	out := make([]EventTerm, 0, len(names))
	for _, n := range names {
		out = append(out, EventTerm{Name: n, Cfg: m[n]})
	}
	return out
}

// RewardTermCfg describes one reward term
type RewardTermCfg struct {
	Func   string
	Params Params
	Weight float64
}

// RewardTerm is a named reward term descriptor
type RewardTerm struct {
	Name string
	Cfg  *RewardTermCfg
}

// RewardManagerCfg is the full reward manager configuration
type RewardManagerCfg struct {
	Terms []RewardTerm
}

// RewardTermsFromMap converts the mapping config form into the ordered
// form, sorted by term name
func RewardTermsFromMap(m map[string]*RewardTermCfg) []RewardTerm {
	names := sortedKeys(m)
	out := make([]RewardTerm, 0, len(names))
	for _, n := range names {
		out = append(out, RewardTerm{Name: n, Cfg: m[n]})
	}
	return out
}

// TerminationTermCfg describes one termination term
type TerminationTermCfg struct {
	Func   string
	Params Params
	// TimeOut marks the term as a truncation rather than a failure
	TimeOut bool
}

// TerminationTerm is a named termination term descriptor
type TerminationTerm struct {
	Name string
	Cfg  *TerminationTermCfg
}

// TerminationManagerCfg is the full termination manager configuration
type TerminationManagerCfg struct {
	Terms []TerminationTerm
}

// CurriculumTermCfg describes one curriculum term
type CurriculumTermCfg struct {
	Func   string
	Params Params
}

// CurriculumTerm is a named curriculum term descriptor
type CurriculumTerm struct {
	Name string
	Cfg  *CurriculumTermCfg
}

// CurriculumManagerCfg is the full curriculum manager configuration
type CurriculumManagerCfg struct {
	Terms []CurriculumTerm
}

// RecorderTermCfg describes one recorder term
type RecorderTermCfg struct {
	Func   string
	Params Params
}

// RecorderTermEntry is a named recorder term descriptor
type RecorderTermEntry struct {
	Name string
	Cfg  *RecorderTermCfg
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
