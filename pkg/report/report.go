// Package report writes batch extraction results as JSON lines.
package report

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"docnorm/pkg/pipeline"
)

// Entry is one reported extraction.
type Entry struct {
	Location  string            `json:"location"`
	Timestamp string            `json:"timestamp"`
	Response  pipeline.Response `json:"response"`
}

type Reporter interface {
	Report(Entry) error
	Close() error
}

// JSONReporter writes one JSON document per line. Safe for concurrent use.
type JSONReporter struct {
	closer io.Closer
	enc    *json.Encoder
	mu     sync.Mutex
}

// NewJSONReporter creates (or truncates) path.
func NewJSONReporter(path string) (*JSONReporter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONReporter{
		closer: f,
		enc:    json.NewEncoder(f),
	}, nil
}

// NewStreamReporter writes to w, which Close leaves open.
func NewStreamReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w)}
}

func (r *JSONReporter) Report(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Timestamp == "" {
		e.Timestamp = time.Now().Format(time.RFC3339)
	}
	return r.enc.Encode(e)
}

func (r *JSONReporter) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
