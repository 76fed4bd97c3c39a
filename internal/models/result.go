package models

// FetchStatus tags a FetchResult.
type FetchStatus int

const (
	Pending FetchStatus = iota
	Ready
	Failed
)

func (s FetchStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchResult is the outcome of one data request: Pending, Ready with rows,
// or Failed with a human-readable reason.
type FetchResult struct {
	Status FetchStatus
	Rows   []Record
	Reason string
}

func PendingResult() FetchResult {
	return FetchResult{Status: Pending}
}

// ReadyResult never stores a nil row slice, so callers can tell an empty
// result set from a missing one.
func ReadyResult(rows []Record) FetchResult {
	if rows == nil {
		rows = []Record{}
	}
	return FetchResult{Status: Ready, Rows: rows}
}

func FailedResult(reason string) FetchResult {
	return FetchResult{Status: Failed, Reason: reason}
}
