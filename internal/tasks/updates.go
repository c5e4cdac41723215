package tasks

import (
	"fmt"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/translation"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadCatalog Phase = iota
	PlanRequests
	FetchTranslations
	Complete
)

func (p Phase) String() string {
	switch p {
	case LoadCatalog:
		return "load_catalog"
	case PlanRequests:
		return "plan_requests"
	case FetchTranslations:
		return "fetch_translations"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func loadCatalogUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadCatalog,
		Step:    1,
		Total:   1,
		Message: "Loading hymn catalog...",
	}
}

func planUpdate(hymns, pending, skipped int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlanRequests,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d hymns: %d translations to fetch, %d already available", hymns, pending, skipped),
	}
}

func fetchUpdate(step, total int, job warmJob, res translation.Result) ProgressUpdate {
	mark := "✓"
	if res.Source == translation.SourceFallback {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   FetchTranslations,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s #%d %s (%s)", step, total, mark, job.number, job.field, job.request.Language.Label()),
		Data:    res,
	}
}

func completeUpdate(result *WarmResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Translated %d, reused %d, failed %d", result.Translated, result.Cached, result.Failed),
		Data:    result,
	}
}

// Field names a hymn text field that can be warmed.
type Field string

const (
	FieldTitle  Field = "title"
	FieldLyrics Field = "lyrics"
)

func (f Field) of(h models.Hymn) models.MultilingualText {
	if f == FieldLyrics {
		return h.Lyrics
	}
	return h.Title
}
