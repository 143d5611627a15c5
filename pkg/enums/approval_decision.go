package enums

// ApprovalDecision represents the binary outcome a resolver can choose.
type ApprovalDecision string

const (
	// ApprovalDecisionApprove accepts the request and applies its effect.
	ApprovalDecisionApprove ApprovalDecision = "approve"
	// ApprovalDecisionReject declines the request; no effect is applied.
	ApprovalDecisionReject ApprovalDecision = "reject"
)

// IsValid reports whether the value is a known ApprovalDecision.
func (d ApprovalDecision) IsValid() bool {
	return d == ApprovalDecisionApprove || d == ApprovalDecisionReject
}
