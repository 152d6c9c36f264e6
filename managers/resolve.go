package managers

import (
	"fmt"

	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/tensor"
)

// statelessObservation adapts a plain function to the stateful term
// interface so managers hold a uniform invoker list
type statelessObservation struct {
	fn ObservationFn
}

func (s statelessObservation) Compute(env *envs.Env, p Params) *tensor.Tensor {
	return s.fn(env, p)
}

func (s statelessObservation) Reset(envs.Subset) {}

type statelessEvent struct {
	fn EventFn
}

func (s statelessEvent) Apply(env *envs.Env, ids envs.Subset, p Params) {
	s.fn(env, ids, p)
}

func (s statelessEvent) Reset(envs.Subset) {}

// resolveObservationTerm resolves the function key of an observation
// descriptor, validates its parameter mapping and instantiates stateful
// terms. All failures are configuration errors.
func resolveObservationTerm(name string, cfg *ObservationTermCfg, env *envs.Env) (ObservationTermState, bool, error) {
	entry, err := observationRegistry.resolve(cfg.Func)
	if err != nil {
		return nil, false, fmt.Errorf("%w: observation term %q: %v", ErrConfiguration, name, err)
	}
	if err := validateParams(name, cfg.Params, entry.params); err != nil {
		return nil, false, err
	}
	if entry.value.ctor != nil {
		return entry.value.ctor(cfg, env), true, nil
	}
	return statelessObservation{fn: entry.value.fn}, false, nil
}

func resolveEventTerm(name string, cfg *EventTermCfg, env *envs.Env) (EventTermState, bool, error) {
	entry, err := eventRegistry.resolve(cfg.Func)
	if err != nil {
		return nil, false, fmt.Errorf("%w: event term %q: %v", ErrConfiguration, name, err)
	}
	if err := validateParams(name, cfg.Params, entry.params); err != nil {
		return nil, false, err
	}
	if entry.value.ctor != nil {
		return entry.value.ctor(cfg, env), true, nil
	}
	return statelessEvent{fn: entry.value.fn}, false, nil
}

func resolveRewardTerm(name string, cfg *RewardTermCfg) (RewardFn, error) {
	entry, err := rewardRegistry.resolve(cfg.Func)
	if err != nil {
		return nil, fmt.Errorf("%w: reward term %q: %v", ErrConfiguration, name, err)
	}
	if err := validateParams(name, cfg.Params, entry.params); err != nil {
		return nil, err
	}
	return entry.value, nil
}

func resolveTerminationTerm(name string, cfg *TerminationTermCfg) (TerminationFn, error) {
	entry, err := terminationRegistry.resolve(cfg.Func)
	if err != nil {
		return nil, fmt.Errorf("%w: termination term %q: %v", ErrConfiguration, name, err)
	}
	if err := validateParams(name, cfg.Params, entry.params); err != nil {
		return nil, err
	}
	return entry.value, nil
}

func resolveCurriculumTerm(name string, cfg *CurriculumTermCfg) (CurriculumFn, error) {
	entry, err := curriculumRegistry.resolve(cfg.Func)
	if err != nil {
		return nil, fmt.Errorf("%w: curriculum term %q: %v", ErrConfiguration, name, err)
	}
	if err := validateParams(name, cfg.Params, entry.params); err != nil {
		return nil, err
	}
	return entry.value, nil
}

func resolveRecorderTerm(name string, cfg *RecorderTermCfg, env *envs.Env) (RecorderTerm, error) {
	entry, err := recorderRegistry.resolve(cfg.Func)
	if err != nil {
		return nil, fmt.Errorf("%w: recorder term %q: %v", ErrConfiguration, name, err)
	}
	if err := validateParams(name, cfg.Params, entry.params); err != nil {
		return nil, err
	}
	return entry.value(cfg, env), nil
}
