// Package monitor exposes the live state of the manager stack over a
// small HTTP diagnostic server.
package monitor

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Source reports the active terms of one manager, keyed by a label such
// as "observation" or "reward". The observation manager reports one
// entry per group.
type Source interface {
	ActiveTermsByLabel() map[string][]string
}

// SourceFunc adapts a plain function into a Source
type SourceFunc func() map[string][]string

func (f SourceFunc) ActiveTermsByLabel() map[string][]string {
	return f()
}

// Monitor serves the term tables and the latest step metrics of a
// running environment
type Monitor struct {
	ctx    context.Context
	server *http.Server

	lock      *sync.Mutex
	sources   map[string]Source
	summaries map[string]func() string
	metrics   map[string]float64
	step      int
}

// NewMonitor creates the diagnostic server on localhost:port
func NewMonitor(ctx context.Context, port int) *Monitor {
	m := &Monitor{
		ctx:       ctx,
		lock:      new(sync.Mutex),
		sources:   make(map[string]Source),
		summaries: make(map[string]func() string),
		metrics:   make(map[string]float64),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/terms", m.handleTerms)
	r.GET("/summary", m.handleSummary)
	r.GET("/metrics", m.handleMetrics)
	m.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", port),
		Handler: r,
	}

	return m
}

// AddSource registers a manager under the given name
func (m *Monitor) AddSource(name string, s Source) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.sources[name] = s
}

// AddSummary registers a manager's human-readable dump under the given
// name, served verbatim on /summary
func (m *Monitor) AddSummary(name string, fn func() string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.summaries[name] = fn
}

// Observe records the metrics of a completed step. Keys repeat across
// steps; the monitor keeps the latest value of each.
func (m *Monitor) Observe(step int, metrics map[string]float64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.step = step
	for k, v := range metrics {
		m.metrics[k] = v
	}
}

func (m *Monitor) handleTerms(c *gin.Context) {
	m.lock.Lock()
	defer m.lock.Unlock()

	out := make(map[string]map[string][]string, len(m.sources))
	for name, s := range m.sources {
		out[name] = s.ActiveTermsByLabel()
	}
	c.JSON(http.StatusOK, out)
}

func (m *Monitor) handleSummary(c *gin.Context) {
	m.lock.Lock()
	defer m.lock.Unlock()

	out := make(map[string]string, len(m.summaries))
	for name, fn := range m.summaries {
		out[name] = fn()
	}
	c.JSON(http.StatusOK, out)
}

func (m *Monitor) handleMetrics(c *gin.Context) {
	m.lock.Lock()
	defer m.lock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"step":    m.step,
		"metrics": m.metrics,
	})
}

// Start serves until the context is cancelled
func (m *Monitor) Start() {
	go func() {
		m.server.ListenAndServe()
	}()

	go func() {
		<-m.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		m.server.Shutdown(ctx)
	}()
}
