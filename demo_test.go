package main

import (
	"path"
	"testing"

	"github.com/zeu5/managed-rl-env/record"
)

func TestDemoCollectsOneRewardPointPerStep(t *testing.T) {
	dir := t.TempDir()
	curves, err := Demo(4, 30, 9, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, curve := range curves {
		if curve.Name != "Step_Reward/mean" {
			continue
		}
		found = true
		if len(curve.Values) != 30 {
			t.Errorf("reward curve has %d points for 30 steps", len(curve.Values))
		}
	}
	if !found {
		t.Fatalf("missing reward curve")
	}

	records, err := record.ReadJSONL(path.Join(dir, "records.jsonl"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	postStep := 0
	for _, r := range records {
		if r.Phase == "post_step" {
			postStep++
		}
	}
	if postStep != 30 {
		t.Errorf("expected 30 post-step records, got %d", postStep)
	}
}
