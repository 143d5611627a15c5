package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

// ApprovalRequest is a pending change awaiting a binary accept/reject
// decision. Once resolved it is immutable.
type ApprovalRequest struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubjectType enums.ApprovalSubject `gorm:"column:subject_type;type:text;not null;index"`
	SubjectRef  uuid.UUID             `gorm:"column:subject_ref;type:uuid;not null;index"`
	OldValue    *string               `gorm:"column:old_value"`
	NewValue    *string               `gorm:"column:new_value"`
	Remark      string                `gorm:"column:remark;not null"`
	Status      enums.ApprovalStatus  `gorm:"column:status;type:text;not null;default:'pending';index"`

	SubmittedBy string    `gorm:"column:submitted_by;not null"`
	SubmittedAt time.Time `gorm:"column:submitted_at;not null"`

	ResolvedBy       *string    `gorm:"column:resolved_by"`
	ResolvedAt       *time.Time `gorm:"column:resolved_at"`
	ResolutionRemark *string    `gorm:"column:resolution_remark"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
