// Package workflow encodes the bonafide approval chain as a pure state
// machine: given the request's current state, the acting user and the
// action, it either returns the full transition to apply or a domain error.
// It never touches the database.
package workflow

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending                 Status = "PENDING"
	StatusPendingFeesVerification Status = "PENDING_FEES_VERIFICATION"
	StatusApproved                Status = "APPROVED"
	StatusReady                   Status = "READY"
	StatusRejected                Status = "REJECTED"
)

type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleTutor     Role = "TUTOR"
	RoleHOD       Role = "HOD"
	RolePrincipal Role = "PRINCIPAL"
	RoleOffice    Role = "OFFICE"
	RoleAdmin     Role = "ADMIN"
)

// anyRole is a wildcard used only inside the transition table.
const anyRole Role = "*"

// IsApprover reports whether the role takes part in the approval chain.
func (r Role) IsApprover() bool {
	switch r {
	case RoleTutor, RoleHOD, RolePrincipal, RoleOffice:
		return true
	}
	return false
}

// ApproverRoles lists the chain roles in approval order.
func ApproverRoles() []Role {
	return []Role{RoleTutor, RoleHOD, RolePrincipal, RoleOffice}
}

type Action string

const (
	ActionSubmitted     Action = "SUBMITTED"
	ActionApproved      Action = "APPROVED"
	ActionRejected      Action = "REJECTED"
	ActionFeesSubmitted Action = "FEES_SUBMITTED"
)

type DeliveryMode string

const (
	ModePhysical DeliveryMode = "PHYSICAL"
	ModeDigital  DeliveryMode = "DIGITAL"
)

// Actor is the verified identity acting on a request. It comes from the
// JWT middleware; the workflow trusts it as given.
type Actor struct {
	UserID uint
	Role   Role
}

// RequestState is the slice of a request the state machine needs.
type RequestState struct {
	ID                  string
	StudentID           uint
	Status              Status
	CurrentApproverRole Role
	DeliveryMode        DeliveryMode
}

// FeeDetails is the cost breakdown the Office attaches before sending the
// request back to the Principal for verification.
type FeeDetails struct {
	TuitionFees     float64
	ExamFees        float64
	HostelFees      *float64
	BooksStationery *float64
	LaptopPurchase  *float64
	ProjectExpenses *float64
	CertificateDate time.Time
}

type NotificationKind string

const (
	NotifyStatusUpdate       NotificationKind = "STATUS_UPDATE"
	NotifyReadyForCollection NotificationKind = "READY_FOR_COLLECTION"
)

// Notification describes the student email to fire after the transition
// commits. Delivery is best effort and never blocks the transition.
type Notification struct {
	Kind    NotificationKind
	Status  Status
	Message string
}

// Input carries the action-specific payload.
type Input struct {
	Reason string      // reject
	Fees   *FeeDetails // submit-fees
}

// Decision is a fully computed transition: what to persist and what to
// notify. The caller applies it atomically together with the log entry.
type Decision struct {
	NextStatus       Status
	NextApproverRole Role
	Fees             *FeeDetails
	RejectionReason  string
	LogAction        Action
	LogRemarks       string
	Notification     Notification
}

// transition is one row of the state machine table. approver and actor may
// be anyRole; an anyRole actor still has to hold a chain role.
type transition struct {
	status       Status
	approver     Role
	actor        Role
	action       Action
	nextStatus   Status
	nextApprover Role // empty keeps the current approver role
}

// The full approval chain. The two PRINCIPAL rows with the same action are
// the deliberate subtlety: the second pass is selected by status alone.
var transitions = []transition{
	{StatusPending, RoleTutor, RoleTutor, ActionApproved, StatusPending, RoleHOD},
	{StatusPending, RoleHOD, RoleHOD, ActionApproved, StatusPending, RolePrincipal},
	{StatusPending, RolePrincipal, RolePrincipal, ActionApproved, StatusPending, RoleOffice},
	{StatusPending, RoleOffice, RoleOffice, ActionApproved, StatusApproved, ""},
	{StatusPending, RoleOffice, RoleOffice, ActionFeesSubmitted, StatusPendingFeesVerification, RolePrincipal},
	{StatusPendingFeesVerification, RolePrincipal, RolePrincipal, ActionApproved, StatusReady, ""},
	{StatusPending, anyRole, anyRole, ActionRejected, StatusRejected, ""},
	{StatusPendingFeesVerification, RolePrincipal, RolePrincipal, ActionRejected, StatusRejected, ""},
}

func findTransition(state RequestState, actor Actor, action Action) (transition, bool) {
	for _, tr := range transitions {
		if tr.status != state.Status || tr.action != action {
			continue
		}
		if tr.approver != anyRole && tr.approver != state.CurrentApproverRole {
			continue
		}
		if tr.actor == anyRole {
			if !actor.Role.IsApprover() {
				continue
			}
		} else if tr.actor != actor.Role {
			continue
		}
		return tr, true
	}
	return transition{}, false
}

// Decide validates the action against the current state and computes the
// transition. Validation order: pending-status check, role binding, the
// Office precondition for submit-fees, then the rejection reason.
func Decide(state RequestState, actor Actor, action Action, in Input) (*Decision, error) {
	if state.Status != StatusPending && state.Status != StatusPendingFeesVerification {
		return nil, invalidState("request not pending")
	}

	tr, ok := findTransition(state, actor, action)
	if !ok {
		switch action {
		case ActionApproved:
			return nil, unauthorized("not authorized to approve at this stage")
		case ActionRejected:
			return nil, unauthorized("not authorized to reject at this stage")
		case ActionFeesSubmitted:
			if state.CurrentApproverRole != RoleOffice || state.Status != StatusPending {
				return nil, invalidState("not at Office stage")
			}
			return nil, unauthorized("not authorized to submit fees")
		}
		return nil, validation("unknown action " + string(action))
	}

	d := &Decision{
		NextStatus:       tr.nextStatus,
		NextApproverRole: state.CurrentApproverRole,
		LogAction:        action,
	}
	if tr.nextApprover != "" {
		d.NextApproverRole = tr.nextApprover
	}

	switch action {
	case ActionApproved:
		if tr.status == StatusPendingFeesVerification {
			// Principal's second pass, after the Office filled in fees.
			d.LogRemarks = "Final approval by Principal after fee verification"
			d.Notification = Notification{
				Kind:   NotifyReadyForCollection,
				Status: tr.nextStatus,
			}
			return d, nil
		}
		d.LogRemarks = "Approved by " + string(actor.Role)
		d.Notification = Notification{
			Kind:    NotifyStatusUpdate,
			Status:  tr.nextStatus,
			Message: "Your request has been approved by " + string(actor.Role) + ".",
		}
	case ActionFeesSubmitted:
		if in.Fees == nil {
			return nil, validation("fee details are required")
		}
		d.Fees = in.Fees
		d.LogRemarks = "Fee structure submitted by Office"
		d.Notification = Notification{
			Kind:    NotifyStatusUpdate,
			Status:  tr.nextStatus,
			Message: "Fee structure has been prepared and is pending final verification.",
		}
	case ActionRejected:
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			return nil, validation("rejection reason is required")
		}
		d.RejectionReason = reason
		d.LogRemarks = reason
		d.Notification = Notification{
			Kind:    NotifyStatusUpdate,
			Status:  tr.nextStatus,
			Message: reason,
		}
	}
	return d, nil
}

// CanDownload reports whether the certificate PDF may be generated for this
// request on behalf of the actor. PENDING_FEES_VERIFICATION is included so
// the Principal can preview the certificate before final approval.
func CanDownload(state RequestState, actor Actor) error {
	switch state.Status {
	case StatusApproved, StatusReady, StatusPendingFeesVerification:
	default:
		return invalidState("request not approved yet")
	}
	if actor.Role == RoleStudent && state.StudentID != actor.UserID {
		return unauthorized("not your request")
	}
	if state.DeliveryMode == ModePhysical {
		return invalidState("physical certificates cannot be downloaded, please collect from office")
	}
	return nil
}
