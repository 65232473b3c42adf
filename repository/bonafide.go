// Package repository is the durable store for bonafide requests and their
// append-only approval logs. Transitions go through ApplyTransition, which
// is guarded by the request's version counter so two racing approvers can
// never both win.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/manasaistanly/campus-approval-system/models"
	"github.com/manasaistanly/campus-approval-system/workflow"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BonafideRepo struct {
	Db *gorm.DB
}

func NewBonafideRepo(db *gorm.DB) *BonafideRepo {
	return &BonafideRepo{Db: db}
}

// CreateInput is everything a student supplies when filing a request.
type CreateInput struct {
	StudentID        uint
	PurposeID        uint
	FormalLetterText string
	DeliveryMode     workflow.DeliveryMode
	Documents        []string
}

// Create inserts a new PENDING request addressed to the Tutor, plus the
// initial SUBMITTED log entry, in one transaction.
func (r *BonafideRepo) Create(in CreateInput) (*models.BonafideRequest, error) {
	var purpose models.BonafideReason
	if err := r.Db.Where("id = ? AND is_active = ?", in.PurposeID, true).First(&purpose).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: purpose %d", workflow.ErrNotFound, in.PurposeID)
		}
		return nil, err
	}

	docs := in.Documents
	if docs == nil {
		docs = []string{}
	}
	docsJSON, err := json.Marshal(docs)
	if err != nil {
		return nil, err
	}

	request := models.BonafideRequest{
		StudentID:           in.StudentID,
		PurposeID:           in.PurposeID,
		FormalLetterText:    in.FormalLetterText,
		DeliveryMode:        string(in.DeliveryMode),
		Documents:           datatypes.JSON(docsJSON),
		Status:              string(workflow.StatusPending),
		CurrentApproverRole: string(workflow.RoleTutor),
		Version:             1,
	}

	err = r.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		entry := models.ApprovalLog{
			RequestID:  request.ID,
			ApproverID: in.StudentID,
			RoleAtTime: string(workflow.RoleStudent),
			Action:     string(workflow.ActionSubmitted),
			Timestamp:  time.Now(),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(request.ID)
}

// FindByID loads a request with its student, purpose and chronologically
// ordered log entries.
func (r *BonafideRepo) FindByID(id string) (*models.BonafideRequest, error) {
	var request models.BonafideRequest
	err := r.Db.
		Preload("Student").
		Preload("Purpose").
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request %s", workflow.ErrNotFound, id)
		}
		return nil, err
	}
	return &request, nil
}

// scopeForRole narrows a query to what the actor may see: students only
// their own requests, tutors only their department+section. Other roles
// currently see everything.
func (r *BonafideRepo) scopeForRole(db *gorm.DB, role workflow.Role, actorID uint) (*gorm.DB, error) {
	switch role {
	case workflow.RoleStudent:
		return db.Where("bonafide_requests.student_id = ?", actorID), nil
	case workflow.RoleTutor:
		var tutor models.User
		if err := r.Db.Where("id = ? AND is_deleted = ?", actorID, false).First(&tutor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: user %d", workflow.ErrNotFound, actorID)
			}
			return nil, err
		}
		if tutor.Department == "" || tutor.Section == "" {
			return db, nil
		}
		return db.
			Joins("JOIN users ON users.id = bonafide_requests.student_id").
			Where("users.department = ? AND users.section = ?", tutor.Department, tutor.Section), nil
	}
	return db, nil
}

// ListForRole returns the request history visible to the actor.
func (r *BonafideRepo) ListForRole(role workflow.Role, actorID uint) ([]models.BonafideRequest, error) {
	db := r.Db.Model(&models.BonafideRequest{}).
		Preload("Student").
		Preload("Purpose")
	db, err := r.scopeForRole(db, role, actorID)
	if err != nil {
		return nil, err
	}
	var requests []models.BonafideRequest
	if err := db.Order("bonafide_requests.created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ListPending returns the requests currently waiting on the given role.
func (r *BonafideRepo) ListPending(role workflow.Role, actorID uint) ([]models.BonafideRequest, error) {
	db := r.Db.Model(&models.BonafideRequest{}).
		Preload("Student").
		Preload("Purpose").
		Where("bonafide_requests.current_approver_role = ?", string(role)).
		Where("bonafide_requests.status IN ?", []string{
			string(workflow.StatusPending),
			string(workflow.StatusPendingFeesVerification),
		})
	db, err := r.scopeForRole(db, role, actorID)
	if err != nil {
		return nil, err
	}
	var requests []models.BonafideRequest
	if err := db.Order("bonafide_requests.created_at ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ApplyTransition updates the request and appends one log entry in the
// same transaction. The UPDATE is conditioned on the version the caller
// read; if another transition won the race in between, nothing matches
// and ErrConflict comes back so the caller can re-read and re-validate.
func (r *BonafideRepo) ApplyTransition(id string, version uint, updates map[string]interface{}, entry models.ApprovalLog) (*models.BonafideRequest, error) {
	updates["version"] = version + 1

	err := r.Db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BonafideRequest{}).
			Where("id = ? AND version = ?", id, version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.BonafideRequest{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: request %s", workflow.ErrNotFound, id)
			}
			return fmt.Errorf("%w: request %s was modified concurrently", workflow.ErrConflict, id)
		}

		entry.RequestID = id
		if entry.Timestamp.IsZero() {
			entry.Timestamp = time.Now()
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(id)
}

// ListPurposes returns the active certificate purposes.
func (r *BonafideRepo) ListPurposes() ([]models.BonafideReason, error) {
	var purposes []models.BonafideReason
	if err := r.Db.Where("is_active = ?", true).Order("category, reason").Find(&purposes).Error; err != nil {
		return nil, err
	}
	return purposes, nil
}
