// Package metrics records timings for pipeline stages and region text
// recognition so slow or failing steps show up across rebuilds.
package metrics

import "time"

// Metric is a single timed operation.
type Metric struct {
	// Attribution (for filtering/aggregation)
	Source  string `json:"source,omitempty"`   // region stream the run was built from
	Stage   string `json:"stage"`              // pipeline stage, or "ocr"
	ItemKey string `json:"item_key,omitempty"` // e.g. "p3_gap1"

	// Timing
	Seconds float64 `json:"seconds"`

	// Status
	Success   bool   `json:"success"`
	ErrorType string `json:"error_type,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
