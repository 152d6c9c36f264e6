package record

import (
	"path"
	"testing"
)

func TestJSONLRoundTrip(t *testing.T) {
	p := path.Join(t.TempDir(), "out", "records.jsonl")
	sink := NewJSONLSink(p)
	if err := sink.Open(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := []Record{
		{RunID: "run-1", Step: 0, Phase: "post_step", Key: "state", Dims: []int{2, 3}, Values: []float64{1, 2, 3, 4, 5, 6}},
		{RunID: "run-1", Step: 0, Phase: "post_reset", Key: "initial_state", Dims: []int{2, 3}, Values: []float64{0, 0, 0, 0, 0, 0}, EnvIDs: []int{1}},
	}
	for _, r := range records {
		if err := sink.Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	back, err := ReadJSONL(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(back) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(back))
	}
	if back[0].Key != "state" || back[0].Dims[1] != 3 || back[0].Values[5] != 6 {
		t.Errorf("incorrect first record %+v", back[0])
	}
	if len(back[1].EnvIDs) != 1 || back[1].EnvIDs[0] != 1 {
		t.Errorf("incorrect reset subset %v", back[1].EnvIDs)
	}
	if len(back[0].EnvIDs) != 0 {
		t.Errorf("unexpected subset on a full-batch record %v", back[0].EnvIDs)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	sink := NewSQLiteSink(path.Join(t.TempDir(), "records.db"))
	if err := sink.Open(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sink.Close()

	r := Record{RunID: "run-1", Step: 3, Phase: "post_step", Key: "state", Dims: []int{1, 2}, Values: []float64{1, 2}}
	if err := sink.Write(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	row := sink.db.QueryRow("SELECT COUNT(*) FROM records WHERE run_id = ? AND step = ?", "run-1", 3)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}

func TestSQLiteRequiresPath(t *testing.T) {
	sink := NewSQLiteSink("")
	if err := sink.Open(); err == nil {
		t.Errorf("expected an error for a missing path")
	}
}
