package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/qaren/internal/models"
)

// ProgressUpdate represents a progress event during a batch run.
//
// Used to send real-time updates to the CLI for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Completed searches so far
	Total   int    // Total searches in the batch
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data (a [BatchResult] once a search finishes)
}

// Operation phase enumeration
type Phase int

const (
	SearchDispatched Phase = iota
	SearchCompleted
	SearchFailed
)

func (p Phase) String() string {
	switch p {
	case SearchDispatched:
		return "search_dispatched"
	case SearchCompleted:
		return "search_completed"
	case SearchFailed:
		return "search_failed"
	default:
		return ""
	}
}

// sendProgress never blocks; updates are dropped when nobody is reading.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func dispatchedUpdate(step, total int, q models.SearchQuery) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchDispatched,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching %s on %s...", q.Route(), q.Date),
	}
}

func completedUpdate(step, total int, res BatchResult) ProgressUpdate {
	if res.Err != nil {
		return ProgressUpdate{
			Phase:   SearchFailed,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("✗ %s: %v", res.Query.Route(), res.Err),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   SearchCompleted,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✓ %s (%d offers, %v)", res.Query.Route(), res.Offers(), res.Latency.Round(time.Millisecond)),
		Data:    res,
	}
}
