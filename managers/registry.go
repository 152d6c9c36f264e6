package managers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zeu5/managed-rl-env/envs"
)

// ParamSpec declares one parameter a registered term function accepts.
// The resolver rejects descriptors supplying keys outside the declared
// set, or missing a required key, at manager preparation time.
type ParamSpec struct {
	Name     string
	Required bool
}

// RequiredParam declares a mandatory parameter key
func RequiredParam(name string) ParamSpec {
	return ParamSpec{Name: name, Required: true}
}

// OptionalParam declares an optional parameter key
func OptionalParam(name string) ParamSpec {
	return ParamSpec{Name: name, Required: false}
}

type registryEntry[T any] struct {
	value  T
	params []ParamSpec
}

type registry[T any] struct {
	kind string
	mu   sync.RWMutex
	m    map[string]registryEntry[T]
}

func newRegistry[T any](kind string) *registry[T] {
	return &registry[T]{
		kind: kind,
		m:    make(map[string]registryEntry[T]),
	}
}

func (r *registry[T]) register(key string, v T, params []ParamSpec) error {
	if key == "" {
		return fmt.Errorf("%s term key is required", r.kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.m[key]; exists {
		return fmt.Errorf("%s term %q already registered", r.kind, key)
	}
	r.m[key] = registryEntry[T]{value: v, params: params}
	return nil
}

func (r *registry[T]) resolve(key string) (registryEntry[T], error) {
	r.mu.RLock()
	entry, ok := r.m[key]
	r.mu.RUnlock()
	if !ok {
		return registryEntry[T]{}, fmt.Errorf("%w: %s term %q", ErrNotRegistered, r.kind, key)
	}
	return entry, nil
}

func (r *registry[T]) keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.m))
	for n := range r.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ObservationCtor builds a stateful observation term instance
type ObservationCtor func(cfg *ObservationTermCfg, env *envs.Env) ObservationTermState

// EventCtor builds a stateful event term instance
type EventCtor func(cfg *EventTermCfg, env *envs.Env) EventTermState

// RecorderCtor builds a recorder term instance
type RecorderCtor func(cfg *RecorderTermCfg, env *envs.Env) RecorderTerm

type observationEntry struct {
	fn   ObservationFn
	ctor ObservationCtor
}

type eventEntry struct {
	fn   EventFn
	ctor EventCtor
}

var (
	observationRegistry = newRegistry[observationEntry]("observation")
	eventRegistry       = newRegistry[eventEntry]("event")
	rewardRegistry      = newRegistry[RewardFn]("reward")
	terminationRegistry = newRegistry[TerminationFn]("termination")
	curriculumRegistry  = newRegistry[CurriculumFn]("curriculum")
	recorderRegistry    = newRegistry[RecorderCtor]("recorder")
)

// RegisterObservation registers a stateless observation term function
func RegisterObservation(key string, fn ObservationFn, params ...ParamSpec) error {
	return observationRegistry.register(key, observationEntry{fn: fn}, params)
}

// RegisterObservationClass registers a stateful observation term
// constructor. The manager instantiates it once per term and routes
// selective resets to the instance.
func RegisterObservationClass(key string, ctor ObservationCtor, params ...ParamSpec) error {
	return observationRegistry.register(key, observationEntry{ctor: ctor}, params)
}

// RegisterEvent registers a stateless event term function
func RegisterEvent(key string, fn EventFn, params ...ParamSpec) error {
	return eventRegistry.register(key, eventEntry{fn: fn}, params)
}

// RegisterEventClass registers a stateful event term constructor
func RegisterEventClass(key string, ctor EventCtor, params ...ParamSpec) error {
	return eventRegistry.register(key, eventEntry{ctor: ctor}, params)
}

// RegisterReward registers a reward term function
func RegisterReward(key string, fn RewardFn, params ...ParamSpec) error {
	return rewardRegistry.register(key, fn, params)
}

// RegisterTermination registers a termination term function
func RegisterTermination(key string, fn TerminationFn, params ...ParamSpec) error {
	return terminationRegistry.register(key, fn, params)
}

// RegisterCurriculum registers a curriculum term function
func RegisterCurriculum(key string, fn CurriculumFn, params ...ParamSpec) error {
	return curriculumRegistry.register(key, fn, params)
}

// RegisterRecorder registers a recorder term constructor
func RegisterRecorder(key string, ctor RecorderCtor, params ...ParamSpec) error {
	return recorderRegistry.register(key, ctor, params)
}

// MustRegisterObservation panics on registration failure, for init-time use
func MustRegisterObservation(key string, fn ObservationFn, params ...ParamSpec) {
	if err := RegisterObservation(key, fn, params...); err != nil {
		panic(err)
	}
}

// MustRegisterObservationClass panics on registration failure
func MustRegisterObservationClass(key string, ctor ObservationCtor, params ...ParamSpec) {
	if err := RegisterObservationClass(key, ctor, params...); err != nil {
		panic(err)
	}
}

// MustRegisterEvent panics on registration failure
func MustRegisterEvent(key string, fn EventFn, params ...ParamSpec) {
	if err := RegisterEvent(key, fn, params...); err != nil {
		panic(err)
	}
}

// MustRegisterEventClass panics on registration failure
func MustRegisterEventClass(key string, ctor EventCtor, params ...ParamSpec) {
	if err := RegisterEventClass(key, ctor, params...); err != nil {
		panic(err)
	}
}

// MustRegisterReward panics on registration failure
func MustRegisterReward(key string, fn RewardFn, params ...ParamSpec) {
	if err := RegisterReward(key, fn, params...); err != nil {
		panic(err)
	}
}

// MustRegisterTermination panics on registration failure
func MustRegisterTermination(key string, fn TerminationFn, params ...ParamSpec) {
	if err := RegisterTermination(key, fn, params...); err != nil {
		panic(err)
	}
}

// MustRegisterCurriculum panics on registration failure
func MustRegisterCurriculum(key string, fn CurriculumFn, params ...ParamSpec) {
	if err := RegisterCurriculum(key, fn, params...); err != nil {
		panic(err)
	}
}

// MustRegisterRecorder panics on registration failure
func MustRegisterRecorder(key string, ctor RecorderCtor, params ...ParamSpec) {
	if err := RegisterRecorder(key, ctor, params...); err != nil {
		panic(err)
	}
}

// RegisteredObservationTerms lists the registered observation term keys
func RegisteredObservationTerms() []string {
	return observationRegistry.keys()
}

// RegisteredEventTerms lists the registered event term keys
func RegisteredEventTerms() []string {
	return eventRegistry.keys()
}

// RegisteredRewardTerms lists the registered reward term keys
func RegisteredRewardTerms() []string {
	return rewardRegistry.keys()
}

// RegisteredTerminationTerms lists the registered termination term keys
func RegisteredTerminationTerms() []string {
	return terminationRegistry.keys()
}

// RegisteredCurriculumTerms lists the registered curriculum term keys
func RegisteredCurriculumTerms() []string {
	return curriculumRegistry.keys()
}

// RegisteredRecorderTerms lists the registered recorder term keys
func RegisteredRecorderTerms() []string {
	return recorderRegistry.keys()
}

// validateParams checks a descriptor's parameter mapping against the
// declared specs of the resolved term function
func validateParams(termName string, supplied Params, specs []ParamSpec) error {
	declared := make(map[string]bool, len(specs))
	for _, s := range specs {
		declared[s.Name] = true
	}
	for key := range supplied {
		if !declared[key] {
			return fmt.Errorf("%w: term %q received unknown parameter %q", ErrConfiguration, termName, key)
		}
	}
	for _, s := range specs {
		if !s.Required {
			continue
		}
		if _, ok := supplied[s.Name]; !ok {
			return fmt.Errorf("%w: term %q is missing required parameter %q", ErrConfiguration, termName, s.Name)
		}
	}
	return nil
}
