package managers

import (
	"errors"
	"testing"

	"github.com/zeu5/managed-rl-env/envs"
)

func TestObservationConcatenation(t *testing.T) {
	env := newTestEnv(4)
	m, err := NewObservationManager(&ObservationManagerCfg{
		Groups: []ObservationGroup{
			{Name: "policy", Cfg: &ObservationGroupCfg{
				ConcatenateTerms: true,
				Terms: []ObservationTerm{
					{Name: "wide", Cfg: &ObservationTermCfg{Func: "test_obs_const", Params: Params{"value": 3.0}}},
					{Name: "narrow", Cfg: &ObservationTermCfg{Func: "test_obs_narrow"}},
				},
			}},
		},
	}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dims, err := m.GroupDims("policy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dims) != 2 || dims[0] != 4 || dims[1] != 4 {
		t.Errorf("incorrect group dims %v", dims)
	}

	obs := m.Compute()["policy"]
	if obs.Concatenated == nil {
		t.Fatalf("expected a concatenated output")
	}
	row := obs.Concatenated.Row(0)
	for j := 0; j < 3; j++ {
		if row[j] != 3 {
			t.Errorf("incorrect value %f in column %d", row[j], j)
		}
	}
	if row[3] != 2 {
		t.Errorf("incorrect value %f in last column", row[3])
	}
}

func TestObservationScaleZero(t *testing.T) {
	env := newTestEnv(2)
	m, err := NewObservationManager(&ObservationManagerCfg{
		Groups: []ObservationGroup{
			{Name: "policy", Cfg: &ObservationGroupCfg{
				ConcatenateTerms: true,
				Terms: []ObservationTerm{
					{Name: "zeroed", Cfg: &ObservationTermCfg{Func: "test_obs_const", Scale: Scalar(0)}},
					{Name: "plain", Cfg: &ObservationTermCfg{Func: "test_obs_narrow"}},
				},
			}},
		},
	}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obs := m.Compute()["policy"]
	row := obs.Concatenated.Row(1)
	for j := 0; j < 3; j++ {
		if row[j] != 0 {
			t.Errorf("scaled term should contribute zeros, got %f", row[j])
		}
	}
	if row[3] != 2 {
		t.Errorf("unscaled term should be untouched, got %f", row[3])
	}
}

func TestObservationRejectsHighRankInConcatGroup(t *testing.T) {
	env := newTestEnv(2)
	_, err := NewObservationManager(&ObservationManagerCfg{
		Groups: []ObservationGroup{
			{Name: "policy", Cfg: &ObservationGroupCfg{
				ConcatenateTerms: true,
				Terms: []ObservationTerm{
					{Name: "image", Cfg: &ObservationTermCfg{Func: "test_obs_image"}},
				},
			}},
		},
	}, env)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestObservationHighRankInMapGroup(t *testing.T) {
	env := newTestEnv(2)
	m, err := NewObservationManager(&ObservationManagerCfg{
		Groups: []ObservationGroup{
			{Name: "sensors", Cfg: &ObservationGroupCfg{
				Terms: []ObservationTerm{
					{Name: "image", Cfg: &ObservationTermCfg{Func: "test_obs_image"}},
				},
			}},
		},
	}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obs := m.Compute()["sensors"]
	if obs.Concatenated != nil {
		t.Errorf("map group should not concatenate")
	}
	img, ok := obs.Terms["image"]
	if !ok {
		t.Fatalf("missing term output")
	}
	dims := img.Dims()
	if len(dims) != 4 || dims[0] != 2 || dims[1] != 2 || dims[2] != 2 || dims[3] != 1 {
		t.Errorf("incorrect image dims %v", dims)
	}
}

func TestObservationNoiseOnlyWithCorruption(t *testing.T) {
	env := newTestEnv(2)
	cfg := func(corruption bool) *ObservationManagerCfg {
		return &ObservationManagerCfg{
			Groups: []ObservationGroup{
				{Name: "policy", Cfg: &ObservationGroupCfg{
					ConcatenateTerms: true,
					EnableCorruption: corruption,
					Terms: []ObservationTerm{
						{Name: "noisy", Cfg: &ObservationTermCfg{
							Func:  "test_obs_const",
							Noise: UniformNoise(0.5, 1.5),
						}},
					},
				}},
			},
		}
	}

	clean, err := NewObservationManager(cfg(false), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range clean.Compute()["policy"].Concatenated.Data() {
		if v != 1 {
			t.Errorf("noise applied without corruption enabled, got %f", v)
		}
	}

	noisy, err := NewObservationManager(cfg(true), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range noisy.Compute()["policy"].Concatenated.Data() {
		if v < 1.5 || v > 2.5 {
			t.Errorf("noisy value %f outside the expected band", v)
		}
	}
}

func TestObservationClip(t *testing.T) {
	env := newTestEnv(2)
	m, err := NewObservationManager(&ObservationManagerCfg{
		Groups: []ObservationGroup{
			{Name: "policy", Cfg: &ObservationGroupCfg{
				ConcatenateTerms: true,
				Terms: []ObservationTerm{
					{Name: "clipped", Cfg: &ObservationTermCfg{
						Func:   "test_obs_const",
						Params: Params{"value": 10.0},
						Clip:   Range(-1, 1),
					}},
				},
			}},
		},
	}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range m.Compute()["policy"].Concatenated.Data() {
		if v != 1 {
			t.Errorf("value %f not clipped", v)
		}
	}
}

func TestObservationStatefulTermReset(t *testing.T) {
	env := newTestEnv(2)
	m, err := NewObservationManager(&ObservationManagerCfg{
		Groups: []ObservationGroup{
			{Name: "policy", Cfg: &ObservationGroupCfg{
				ConcatenateTerms: true,
				Terms: []ObservationTerm{
					{Name: "counter", Cfg: &ObservationTermCfg{Func: "test_obs_counter"}},
				},
			}},
		},
	}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// the shape probe at construction must not advance the term state
	obs := m.Compute()["policy"].Concatenated
	if obs.At(0, 0) != 1 || obs.At(1, 0) != 1 {
		t.Errorf("probe invocation leaked into the term state: %v", obs.Data())
	}

	m.Reset(envs.Subset{0})
	obs = m.Compute()["policy"].Concatenated
	if obs.At(0, 0) != 1 {
		t.Errorf("reset instance should restart at 1, got %f", obs.At(0, 0))
	}
	if obs.At(1, 0) != 2 {
		t.Errorf("untouched instance should continue at 2, got %f", obs.At(1, 0))
	}
}

func TestObservationUnknownFunc(t *testing.T) {
	env := newTestEnv(2)
	_, err := NewObservationManager(&ObservationManagerCfg{
		Groups: []ObservationGroup{
			{Name: "policy", Cfg: &ObservationGroupCfg{
				Terms: []ObservationTerm{
					{Name: "ghost", Cfg: &ObservationTermCfg{Func: "no_such_term"}},
				},
			}},
		},
	}, env)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestObservationUnknownParam(t *testing.T) {
	env := newTestEnv(2)
	_, err := NewObservationManager(&ObservationManagerCfg{
		Groups: []ObservationGroup{
			{Name: "policy", Cfg: &ObservationGroupCfg{
				Terms: []ObservationTerm{
					{Name: "bad", Cfg: &ObservationTermCfg{
						Func:   "test_obs_const",
						Params: Params{"no_such_param": 1.0},
					}},
				},
			}},
		},
	}, env)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestObservationDisabledTermSkipped(t *testing.T) {
	env := newTestEnv(2)
	m, err := NewObservationManager(&ObservationManagerCfg{
		Groups: []ObservationGroup{
			{Name: "policy", Cfg: &ObservationGroupCfg{
				ConcatenateTerms: true,
				Terms: []ObservationTerm{
					{Name: "on", Cfg: &ObservationTermCfg{Func: "test_obs_narrow"}},
					{Name: "off", Cfg: nil},
				},
			}},
		},
	}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	active := m.ActiveTerms()["policy"]
	if len(active) != 1 || active[0] != "on" {
		t.Errorf("incorrect active terms %v", active)
	}
}

func TestObservationSetTermCfg(t *testing.T) {
	env := newTestEnv(2)
	m, err := NewObservationManager(&ObservationManagerCfg{
		Groups: []ObservationGroup{
			{Name: "policy", Cfg: &ObservationGroupCfg{
				ConcatenateTerms: true,
				Terms: []ObservationTerm{
					{Name: "term", Cfg: &ObservationTermCfg{Func: "test_obs_narrow"}},
				},
			}},
		},
	}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.SetTermCfg("term", &ObservationTermCfg{Func: "test_obs_const"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dims, _ := m.GroupDims("policy")
	if dims[1] != 3 {
		t.Errorf("group dims not recomputed after the swap: %v", dims)
	}

	cfg, err := m.GetTermCfg("term")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Func != "test_obs_const" {
		t.Errorf("incorrect descriptor %q", cfg.Func)
	}

	if _, err := m.GetTermCfg("missing"); !errors.Is(err, ErrNameNotFound) {
		t.Errorf("expected a name-not-found error, got %v", err)
	}
}
