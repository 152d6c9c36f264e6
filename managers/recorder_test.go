package managers

import (
	"testing"

	"github.com/zeu5/managed-rl-env/envs"
	"github.com/zeu5/managed-rl-env/record"
	"github.com/zeu5/managed-rl-env/tensor"
)

type memorySink struct {
	opened  bool
	closed  bool
	records []record.Record
}

func (s *memorySink) Open() error { s.opened = true; return nil }
func (s *memorySink) Write(r record.Record) error {
	s.records = append(s.records, r)
	return nil
}
func (s *memorySink) Close() error { s.closed = true; return nil }

type stateRecorder struct {
	NopRecorder
}

func (stateRecorder) RecordPostStep(env *envs.Env) (string, *tensor.Tensor) {
	return "state", env.Scene.State()
}

func (stateRecorder) RecordPostReset(env *envs.Env, ids envs.Subset) (string, *tensor.Tensor) {
	return "initial_state", env.Scene.State()
}

func init() {
	MustRegisterRecorder("test_recorder_state", func(cfg *RecorderTermCfg, env *envs.Env) RecorderTerm {
		return stateRecorder{}
	})
}

func TestRecorderFansOutToSinks(t *testing.T) {
	env := newTestEnv(2)
	sink := &memorySink{}
	m, err := NewRecorderManager(&RecorderManagerCfg{
		Terms: []RecorderTermEntry{
			{Name: "state", Cfg: &RecorderTermCfg{Func: "test_recorder_state"}},
		},
		Sinks: []record.Sink{sink},
	}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sink.opened {
		t.Errorf("sink not opened")
	}

	m.RecordPreStep()
	m.RecordPostStep()
	m.RecordPostReset(envs.Subset{1})

	// the pre-step hook contributes nothing for this term
	if len(sink.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sink.records))
	}
	post := sink.records[0]
	if post.Phase != "post_step" || post.Key != "state" || post.RunID != m.RunID() {
		t.Errorf("incorrect post-step record %+v", post)
	}
	if len(post.Values) != 2*post.Dims[1] {
		t.Errorf("incorrect record payload size %d for dims %v", len(post.Values), post.Dims)
	}
	reset := sink.records[1]
	if reset.Phase != "post_reset" || reset.Key != "initial_state" {
		t.Errorf("incorrect post-reset record %+v", reset)
	}
	if len(reset.EnvIDs) != 1 || reset.EnvIDs[0] != 1 {
		t.Errorf("incorrect reset subset %v", reset.EnvIDs)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sink.closed {
		t.Errorf("sink not closed")
	}
}

func TestRecorderStepCounter(t *testing.T) {
	env := newTestEnv(2)
	sink := &memorySink{}
	m, err := NewRecorderManager(&RecorderManagerCfg{
		Terms: []RecorderTermEntry{
			{Name: "state", Cfg: &RecorderTermCfg{Func: "test_recorder_state"}},
		},
		Sinks: []record.Sink{sink},
	}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.RecordPostStep()
	m.RecordPostStep()
	m.RecordPostStep()
	if sink.records[0].Step != 0 || sink.records[2].Step != 2 {
		t.Errorf("incorrect step stamps %d, %d", sink.records[0].Step, sink.records[2].Step)
	}

	// the run step counter is global, a subset reset does not rewind it
	if metrics := m.Reset(envs.Subset{0}); len(metrics) != 0 {
		t.Errorf("unexpected metrics %v", metrics)
	}
	m.RecordPostStep()
	if sink.records[3].Step != 3 {
		t.Errorf("step counter rewound by reset: %d", sink.records[3].Step)
	}
}
