package record

import (
	"encoding/json"
	"path/filepath"

	"github.com/zeu5/managed-rl-env/util"
)

// JSONLSink appends one JSON document per record to a file
type JSONLSink struct {
	path string
}

// NewJSONLSink writes records to the given file path
func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{path: path}
}

var _ Sink = &JSONLSink{}

func (s *JSONLSink) Open() error {
	return util.EnsureDir(filepath.Dir(s.path))
}

func (s *JSONLSink) Write(r Record) error {
	bs, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return util.AppendToFile(s.path, string(bs))
}

func (s *JSONLSink) Close() error {
	return nil
}

// ReadJSONL loads all records back from a file written by a JSONLSink
func ReadJSONL(path string) ([]Record, error) {
	lines, err := util.ReadLines(path)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
