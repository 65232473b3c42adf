package models

import "time"

// ApprovalLog is one append-only audit entry on a request. Rows are only
// ever inserted; ordering by timestamp reconstructs the full history.
type ApprovalLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	RequestID  string    `json:"request_id" gorm:"type:uuid;not null;index"`
	ApproverID uint      `json:"approver_id" gorm:"not null"`
	RoleAtTime string    `json:"role_at_time" gorm:"size:12;not null"`
	Action     string    `json:"action" gorm:"size:20;not null"` // SUBMITTED, APPROVED, REJECTED, FEES_SUBMITTED
	Remarks    string    `json:"remarks" gorm:"type:text"`
	Timestamp  time.Time `json:"timestamp" gorm:"not null;index"`
}
