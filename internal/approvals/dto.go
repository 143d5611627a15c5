package approvals

import (
	"time"

	"github.com/google/uuid"

	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

// SubmitInput opens a new approval request.
type SubmitInput struct {
	SubjectType enums.ApprovalSubject
	SubjectRef  uuid.UUID
	OldValue    *string
	NewValue    *string
	Remark      string
	Actor       string
}

// ResolveInput carries one binary accept/reject decision.
type ResolveInput struct {
	RequestID        uuid.UUID
	Decision         enums.ApprovalDecision
	Resolver         string
	ResolutionRemark string
}

// RequestFilters describe the inputs supported by the request list.
type RequestFilters struct {
	Statuses     []enums.ApprovalStatus
	SubjectTypes []enums.ApprovalSubject
	SubjectRef   *uuid.UUID
}

// RequestSummary exposes the fields returned in list views.
type RequestSummary struct {
	ID          uuid.UUID             `json:"id"`
	SubjectType enums.ApprovalSubject `json:"subject_type"`
	SubjectRef  uuid.UUID             `json:"subject_ref"`
	OldValue    *string               `json:"old_value,omitempty"`
	NewValue    *string               `json:"new_value,omitempty"`
	Remark      string                `json:"remark"`
	Status      enums.ApprovalStatus  `json:"status"`
	SubmittedBy string                `json:"submitted_by"`
	SubmittedAt time.Time             `json:"submitted_at"`
	ResolvedBy  *string               `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time            `json:"resolved_at,omitempty"`
}

// RequestList wraps the paginated requests plus the next page cursor.
type RequestList struct {
	Requests   []RequestSummary `json:"requests"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
