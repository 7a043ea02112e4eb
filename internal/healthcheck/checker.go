package healthcheck

import "context"

const (
	// StatusOK indicates check passed.
	StatusOK = "ok"
	// StatusWarn indicates check completed with warning.
	StatusWarn = "warn"
	// StatusError indicates check failed.
	StatusError = "error"
	// StatusUnknown indicates check result is not yet known.
	StatusUnknown = "unknown"
)

// CheckResult is one runtime check item produced by a checker.
type CheckResult struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Status   string         `json:"status"`
	Summary  string         `json:"summary"`
	Detail   string         `json:"detail,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Checker evaluates one or more runtime checks for a backing dependency.
type Checker interface {
	ListChecks(ctx context.Context) []CheckResult
}

// Report is the aggregate of every registered checker.
type Report struct {
	Status string        `json:"status"`
	Checks []CheckResult `json:"checks"`
}

// Run evaluates all checkers in order. The report status is the worst
// status seen; an empty checker list reports ok.
func Run(ctx context.Context, checkers []Checker) Report {
	report := Report{Status: StatusOK, Checks: []CheckResult{}}
	for _, checker := range checkers {
		if checker == nil {
			continue
		}
		for _, item := range checker.ListChecks(ctx) {
			report.Checks = append(report.Checks, item)
			if severity(item.Status) > severity(report.Status) {
				report.Status = item.Status
			}
		}
	}
	return report
}

func severity(status string) int {
	switch status {
	case StatusOK:
		return 0
	case StatusUnknown:
		return 1
	case StatusWarn:
		return 2
	default:
		return 3
	}
}
