package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"
)

// BackfillProgressEvent is pushed to subscribers while a backfill run walks
// its population.
type BackfillProgressEvent struct {
	Type      string `json:"type"`
	RunID     string `json:"run_id"`
	Direction string `json:"direction"`
	Processed int    `json:"processed"`
	Computed  int    `json:"computed"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
	Done      bool   `json:"done"`
	Timestamp string `json:"timestamp"`
}

var defaultHub atomic.Pointer[Hub]

func SetDefaultHub(h *Hub) {
	defaultHub.Store(h)
}

// NotifyBackfillProgress broadcasts a progress snapshot. No-op when no hub is
// wired.
func NotifyBackfillProgress(evt BackfillProgressEvent) {
	h := defaultHub.Load()
	if h == nil {
		return
	}
	evt.Type = "backfill_progress"
	evt.Timestamp = time.Now().UTC().Format(time.RFC3339)

	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.Broadcast(b)
}
