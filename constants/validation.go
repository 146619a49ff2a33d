package constants

// IssueCode is the stable vocabulary of numeric-consistency findings.
type IssueCode string

const (
	IssueLineSubtotalMismatch IssueCode = "line_subtotal_mismatch"
	IssueSubtotalMismatch     IssueCode = "subtotal_mismatch"
	IssueIVAMismatch          IssueCode = "iva_mismatch"
	IssueTotalMismatch        IssueCode = "total_mismatch"
)

// MetricsOutcome labels for extraction counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
