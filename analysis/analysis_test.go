package analysis

import (
	"testing"

	"github.com/zeu5/managed-rl-env/record"
)

func TestCollectorKeepsOrder(t *testing.T) {
	c := NewCollector()
	c.Observe("b", 1)
	c.Observe("a", 2)
	c.Observe("b", 3)

	curves := c.Curves()
	if len(curves) != 2 {
		t.Fatalf("expected 2 curves, got %d", len(curves))
	}
	if curves[0].Name != "b" || curves[1].Name != "a" {
		t.Errorf("incorrect order %q, %q", curves[0].Name, curves[1].Name)
	}
	if len(curves[0].Values) != 2 || curves[0].Values[1] != 3 {
		t.Errorf("incorrect values %v", curves[0].Values)
	}
}

func TestCurvesFromRecords(t *testing.T) {
	records := []record.Record{
		{Step: 1, Phase: "post_step", Key: "state", Values: []float64{2, 4}},
		{Step: 0, Phase: "post_step", Key: "state", Values: []float64{1, 1}},
		{Step: 0, Phase: "post_reset", Key: "initial_state", Values: []float64{9}},
	}
	curves := CurvesFromRecords(records)
	if len(curves) != 1 {
		t.Fatalf("expected 1 curve, got %d", len(curves))
	}
	if curves[0].Name != "state" {
		t.Errorf("incorrect curve name %q", curves[0].Name)
	}
	// ordered by step, mean per record
	if curves[0].Values[0] != 1 || curves[0].Values[1] != 3 {
		t.Errorf("incorrect values %v", curves[0].Values)
	}
}
