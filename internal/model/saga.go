package model

// SagaStep names one step of the two-store approval.
type SagaStep string

const (
	// StepCommit is the document store transaction (client create + request delete).
	StepCommit SagaStep = "commit"
	// StepProvision is the device state subtree write.
	StepProvision SagaStep = "provision"
	// StepVerify is the read back of the provisioned subtree.
	StepVerify SagaStep = "verify"
)

// StepOutcome is the observed result of a single saga step.
type StepOutcome string

const (
	OutcomePending    StepOutcome = "pending"
	OutcomeCommitted  StepOutcome = "committed"
	OutcomeFailed     StepOutcome = "failed"
	OutcomeUnverified StepOutcome = "unverified"
)

// ApprovalResult records how far an approval got. A compensating job resumes
// from the first step that is not committed, using the persisted client as cursor.
type ApprovalResult struct {
	SagaID    string
	RequestID string
	AuthUID   string
	Commit    StepOutcome
	Provision StepOutcome
	Verify    StepOutcome
}

// NewApprovalResult returns a result with every step pending.
func NewApprovalResult(sagaID, requestID string) ApprovalResult {
	return ApprovalResult{
		SagaID:    sagaID,
		RequestID: requestID,
		Commit:    OutcomePending,
		Provision: OutcomePending,
		Verify:    OutcomePending,
	}
}

// Completed reports whether every step committed.
func (r ApprovalResult) Completed() bool {
	return r.Commit == OutcomeCommitted && r.Provision == OutcomeCommitted && r.Verify == OutcomeCommitted
}

// ResumeFrom returns the first step that still needs to run, or "" when complete.
func (r ApprovalResult) ResumeFrom() SagaStep {
	switch {
	case r.Commit != OutcomeCommitted:
		return StepCommit
	case r.Provision != OutcomeCommitted:
		return StepProvision
	case r.Verify != OutcomeCommitted:
		return StepVerify
	default:
		return ""
	}
}
