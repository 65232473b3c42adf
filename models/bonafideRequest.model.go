package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BonafideRequest is a student's certificate request together with the
// state the approval workflow drives: status, the role expected to act
// next, and a version counter guarding concurrent transitions. Requests
// are never deleted; the log rows below keep the full audit trail.
type BonafideRequest struct {
	ID                  string         `json:"id" gorm:"type:uuid;primaryKey"`
	StudentID           uint           `json:"student_id" gorm:"not null;index"`
	Student             User           `json:"student" gorm:"foreignKey:StudentID"`
	PurposeID           uint           `json:"purpose_id" gorm:"not null"`
	Purpose             BonafideReason `json:"purpose" gorm:"foreignKey:PurposeID"`
	FormalLetterText    string         `json:"formal_letter_text" gorm:"type:text"`
	DeliveryMode        string         `json:"delivery_mode" gorm:"size:10;not null"` // PHYSICAL, DIGITAL
	Documents           datatypes.JSON `json:"documents"`
	Status              string         `json:"status" gorm:"size:30;not null;index"`
	CurrentApproverRole string         `json:"current_approver_role" gorm:"size:12;index"`
	RejectionReason     string         `json:"rejection_reason" gorm:"type:text"`

	// Fee breakdown, filled in once by the Office during submit-fees.
	TuitionFees     *float64   `json:"tuition_fees"`
	ExamFees        *float64   `json:"exam_fees"`
	HostelFees      *float64   `json:"hostel_fees"`
	BooksStationery *float64   `json:"books_stationery"`
	LaptopPurchase  *float64   `json:"laptop_purchase"`
	ProjectExpenses *float64   `json:"project_expenses"`
	CertificateDate *time.Time `json:"certificate_date"`

	Version   uint          `json:"-" gorm:"not null;default:1"`
	Logs      []ApprovalLog `json:"logs" gorm:"foreignKey:RequestID"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (r *BonafideRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
