package monitor

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveGET(m *Monitor, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	m.server.Handler.ServeHTTP(w, req)
	return w
}

func TestMonitorServesTerms(t *testing.T) {
	m := NewMonitor(context.Background(), 0)
	m.AddSource("reward", SourceFunc(func() map[string][]string {
		return map[string][]string{"reward": {"alive", "vel_z"}}
	}))

	w := serveGET(m, "/terms")
	if w.Code != 200 {
		t.Fatalf("unexpected status %d", w.Code)
	}
	out := make(map[string]map[string][]string)
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	terms := out["reward"]["reward"]
	if len(terms) != 2 || terms[0] != "alive" {
		t.Errorf("incorrect terms %v", terms)
	}
}

func TestMonitorServesSummary(t *testing.T) {
	m := NewMonitor(context.Background(), 0)
	m.AddSummary("reward", func() string {
		return "<RewardManager> contains 2 terms."
	})

	w := serveGET(m, "/summary")
	if w.Code != 200 {
		t.Fatalf("unexpected status %d", w.Code)
	}
	out := make(map[string]string)
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out["reward"], "<RewardManager>") {
		t.Errorf("incorrect summary %q", out["reward"])
	}
}

func TestMonitorServesMetrics(t *testing.T) {
	m := NewMonitor(context.Background(), 0)
	m.Observe(3, map[string]float64{"Step_Reward/mean": 0.5})
	m.Observe(4, map[string]float64{"Step_Reward/mean": 0.7})

	w := serveGET(m, "/metrics")
	if w.Code != 200 {
		t.Fatalf("unexpected status %d", w.Code)
	}
	var out struct {
		Step    int                `json:"step"`
		Metrics map[string]float64 `json:"metrics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Step != 4 {
		t.Errorf("incorrect step %d", out.Step)
	}
	if out.Metrics["Step_Reward/mean"] != 0.7 {
		t.Errorf("stale metric %f", out.Metrics["Step_Reward/mean"])
	}
}
