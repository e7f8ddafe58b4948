package replace

import (
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
	"git.home.luguber.info/inful/fontsweep/internal/metrics"
)

// Mapping is a user-declared source-font to target-font replacement
// intent. A mapping set holds at most one target per source font.
type Mapping struct {
	Old fontref.FontRef `json:"oldFont"`
	New fontref.FontRef `json:"newFont"`
}

// Result is the outcome of one replace operation. Success follows the
// partial-success policy: true when there were no errors, or when at
// least one range was rewritten despite errors. Downstream consumers
// (auto re-scan after replace) depend on this exact behavior.
type Result struct {
	Success       bool     `json:"success"`
	ReplacedCount int      `json:"replaced"`
	Errors        []string `json:"errors"`
}

func finishResult(replaced int, errs []string) Result {
	return Result{
		Success:       len(errs) == 0 || replaced > 0,
		ReplacedCount: replaced,
		Errors:        errs,
	}
}

func outcomeLabel(r Result) metrics.OutcomeLabel {
	switch {
	case !r.Success:
		return metrics.OutcomeFailed
	case len(r.Errors) > 0:
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeSuccess
	}
}
