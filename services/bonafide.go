// Package services wires the approval state machine to the request store
// and the post-commit side channels (student notifications, the PDF
// renderer). All business failures surface as workflow sentinel errors.
package services

import (
	"errors"
	"log"

	"github.com/manasaistanly/campus-approval-system/models"
	"github.com/manasaistanly/campus-approval-system/repository"
	"github.com/manasaistanly/campus-approval-system/workflow"
)

// Notifier delivers student emails. Implementations are best effort: they
// log failures and never return them, so a dead mail relay cannot turn a
// valid approval into an error.
type Notifier interface {
	NotifyRequestStatus(email, status, message string)
	NotifyReadyForCollection(email, studentName string)
}

// PdfRenderer turns an approved request into certificate bytes.
type PdfRenderer interface {
	Render(request *models.BonafideRequest) ([]byte, error)
}

type BonafideService struct {
	Repo     *repository.BonafideRepo
	Notifier Notifier
	Pdf      PdfRenderer
}

func NewBonafideService(repo *repository.BonafideRepo, notifier Notifier, pdf PdfRenderer) *BonafideService {
	return &BonafideService{Repo: repo, Notifier: notifier, Pdf: pdf}
}

// Create files a new request on behalf of the student.
func (s *BonafideService) Create(in repository.CreateInput) (*models.BonafideRequest, error) {
	return s.Repo.Create(in)
}

// List returns the request history visible to the actor.
func (s *BonafideService) List(actor workflow.Actor) ([]models.BonafideRequest, error) {
	return s.Repo.ListForRole(actor.Role, actor.UserID)
}

// Pending returns the requests waiting at the actor's stage.
func (s *BonafideService) Pending(actor workflow.Actor) ([]models.BonafideRequest, error) {
	return s.Repo.ListPending(actor.Role, actor.UserID)
}

// Purposes returns the active certificate purposes.
func (s *BonafideService) Purposes() ([]models.BonafideReason, error) {
	return s.Repo.ListPurposes()
}

// Approve advances the request one step along the chain (or finalizes it,
// when the Principal acts on a fees-verification request).
func (s *BonafideService) Approve(id string, actor workflow.Actor) (*models.BonafideRequest, error) {
	return s.transition(id, actor, workflow.ActionApproved, workflow.Input{})
}

// Reject terminates the request with a reason, from any pending stage.
func (s *BonafideService) Reject(id string, actor workflow.Actor, reason string) (*models.BonafideRequest, error) {
	return s.transition(id, actor, workflow.ActionRejected, workflow.Input{Reason: reason})
}

// SubmitFees records the Office's cost breakdown and routes the request
// back to the Principal for verification.
func (s *BonafideService) SubmitFees(id string, actor workflow.Actor, fees workflow.FeeDetails) (*models.BonafideRequest, error) {
	return s.transition(id, actor, workflow.ActionFeesSubmitted, workflow.Input{Fees: &fees})
}

// transition runs one action through the state machine and persists the
// outcome. A version conflict means another transition landed between our
// read and write; we retry once with fresh state, which re-validates the
// action and naturally rejects it if the race made it stale.
func (s *BonafideService) transition(id string, actor workflow.Actor, action workflow.Action, in workflow.Input) (*models.BonafideRequest, error) {
	for attempt := 0; attempt < 2; attempt++ {
		request, err := s.Repo.FindByID(id)
		if err != nil {
			return nil, err
		}

		decision, err := workflow.Decide(stateOf(request), actor, action, in)
		if err != nil {
			return nil, err
		}

		entry := models.ApprovalLog{
			ApproverID: actor.UserID,
			RoleAtTime: string(actor.Role),
			Action:     string(decision.LogAction),
			Remarks:    decision.LogRemarks,
		}

		updated, err := s.Repo.ApplyTransition(id, request.Version, transitionUpdates(decision), entry)
		if errors.Is(err, workflow.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.notify(&updated.Student, decision)
		return updated, nil
	}
	return nil, workflow.ErrConflict
}

// Download checks eligibility and renders the certificate PDF.
func (s *BonafideService) Download(id string, actor workflow.Actor) ([]byte, error) {
	request, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := workflow.CanDownload(stateOf(request), actor); err != nil {
		return nil, err
	}
	return s.Pdf.Render(request)
}

func stateOf(r *models.BonafideRequest) workflow.RequestState {
	return workflow.RequestState{
		ID:                  r.ID,
		StudentID:           r.StudentID,
		Status:              workflow.Status(r.Status),
		CurrentApproverRole: workflow.Role(r.CurrentApproverRole),
		DeliveryMode:        workflow.DeliveryMode(r.DeliveryMode),
	}
}

// transitionUpdates flattens a decision into the conditional UPDATE set.
func transitionUpdates(d *workflow.Decision) map[string]interface{} {
	updates := map[string]interface{}{
		"status":                string(d.NextStatus),
		"current_approver_role": string(d.NextApproverRole),
	}
	if d.RejectionReason != "" {
		updates["rejection_reason"] = d.RejectionReason
	}
	if d.Fees != nil {
		updates["tuition_fees"] = d.Fees.TuitionFees
		updates["exam_fees"] = d.Fees.ExamFees
		updates["hostel_fees"] = d.Fees.HostelFees
		updates["books_stationery"] = d.Fees.BooksStationery
		updates["laptop_purchase"] = d.Fees.LaptopPurchase
		updates["project_expenses"] = d.Fees.ProjectExpenses
		updates["certificate_date"] = d.Fees.CertificateDate
	}
	return updates
}

func (s *BonafideService) notify(student *models.User, d *workflow.Decision) {
	if s.Notifier == nil || student.Email == "" {
		return
	}
	switch d.Notification.Kind {
	case workflow.NotifyReadyForCollection:
		s.Notifier.NotifyReadyForCollection(student.Email, student.FullName)
	case workflow.NotifyStatusUpdate:
		s.Notifier.NotifyRequestStatus(student.Email, string(d.Notification.Status), d.Notification.Message)
	default:
		log.Printf("Unknown notification kind: %s", d.Notification.Kind)
	}
}
