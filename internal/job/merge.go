package job

import "github.com/mmtrader/pairsweep/internal/core"

// MergeResult folds a worker-supplied partial result into the stored
// one. Precedence: arriving non-zero fields overwrite; Progress and
// Logs replace wholesale only when the partial supplied them (nil means
// "not supplied" and the prior values are preserved). Series are never
// deep-merged.
func MergeResult(prev core.JobResult, partial core.JobResult) core.JobResult {
	out := prev

	if partial.Status != "" {
		out.Status = partial.Status
	}
	if partial.DatasetName != "" {
		out.DatasetName = partial.DatasetName
	}
	if partial.Summary != nil {
		summary := *partial.Summary
		out.Summary = &summary
	}
	if partial.Progress != nil {
		out.Progress = partial.Progress
	}
	if partial.Logs != nil {
		out.Logs = partial.Logs
	}
	if !partial.StartedAt.IsZero() {
		out.StartedAt = partial.StartedAt
	}
	if partial.CompletedAt != nil {
		completed := *partial.CompletedAt
		out.CompletedAt = &completed
	}

	return out
}
