// Package record provides pluggable sinks for the recorder manager.
package record

// Record is one recorded entry of an episode
type Record struct {
	RunID  string    `json:"run_id"`
	Step   int       `json:"step"`
	Phase  string    `json:"phase"`
	Key    string    `json:"key"`
	Dims   []int     `json:"dims"`
	Values []float64 `json:"values"`
	EnvIDs []int     `json:"env_ids,omitempty"`
}

// Sink receives the records produced by the recorder manager
type Sink interface {
	Open() error
	Write(Record) error
	Close() error
}
