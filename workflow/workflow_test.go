package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingAt(role Role) RequestState {
	return RequestState{
		ID:                  "req-1",
		StudentID:           10,
		Status:              StatusPending,
		CurrentApproverRole: role,
		DeliveryMode:        ModeDigital,
	}
}

func feesVerification() RequestState {
	s := pendingAt(RolePrincipal)
	s.Status = StatusPendingFeesVerification
	return s
}

func someFees() *FeeDetails {
	return &FeeDetails{
		TuitionFees:     50000,
		ExamFees:        2500,
		CertificateDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

// TestApprovalChain walks every approve step of the chain and checks the
// resulting status and next approver role.
func TestApprovalChain(t *testing.T) {
	steps := []struct {
		name         string
		state        RequestState
		actor        Actor
		wantStatus   Status
		wantApprover Role
	}{
		{"tutor to hod", pendingAt(RoleTutor), Actor{1, RoleTutor}, StatusPending, RoleHOD},
		{"hod to principal", pendingAt(RoleHOD), Actor{2, RoleHOD}, StatusPending, RolePrincipal},
		{"principal to office", pendingAt(RolePrincipal), Actor{3, RolePrincipal}, StatusPending, RoleOffice},
		{"office closes without fees", pendingAt(RoleOffice), Actor{4, RoleOffice}, StatusApproved, RoleOffice},
		{"principal second pass", feesVerification(), Actor{3, RolePrincipal}, StatusReady, RolePrincipal},
	}

	for _, tc := range steps {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Decide(tc.state, tc.actor, ActionApproved, Input{})
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, d.NextStatus)
			assert.Equal(t, tc.wantApprover, d.NextApproverRole)
			assert.Equal(t, ActionApproved, d.LogAction)
		})
	}
}

// TestPrincipalSecondPass pins the one tricky rule: the same role and
// action dispatch to different transitions depending on status alone.
func TestPrincipalSecondPass(t *testing.T) {
	principal := Actor{3, RolePrincipal}

	first, err := Decide(pendingAt(RolePrincipal), principal, ActionApproved, Input{})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, first.NextStatus)
	assert.Equal(t, RoleOffice, first.NextApproverRole)
	assert.Equal(t, NotifyStatusUpdate, first.Notification.Kind)

	second, err := Decide(feesVerification(), principal, ActionApproved, Input{})
	require.NoError(t, err)
	assert.Equal(t, StatusReady, second.NextStatus)
	assert.Equal(t, NotifyReadyForCollection, second.Notification.Kind)
	assert.Equal(t, "Final approval by Principal after fee verification", second.LogRemarks)
}

func TestApproveWrongRole(t *testing.T) {
	// Tutor acting on a request already waiting on the HOD
	_, err := Decide(pendingAt(RoleHOD), Actor{1, RoleTutor}, ActionApproved, Input{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Student can never approve
	_, err = Decide(pendingAt(RoleTutor), Actor{10, RoleStudent}, ActionApproved, Input{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestApproveTerminalStates(t *testing.T) {
	for _, status := range []Status{StatusApproved, StatusReady, StatusRejected} {
		state := pendingAt(RoleTutor)
		state.Status = status
		_, err := Decide(state, Actor{1, RoleTutor}, ActionApproved, Input{})
		assert.ErrorIs(t, err, ErrInvalidState, "status %s must be terminal", status)
	}
}

func TestSubmitFees(t *testing.T) {
	d, err := Decide(pendingAt(RoleOffice), Actor{4, RoleOffice}, ActionFeesSubmitted, Input{Fees: someFees()})
	require.NoError(t, err)
	assert.Equal(t, StatusPendingFeesVerification, d.NextStatus)
	assert.Equal(t, RolePrincipal, d.NextApproverRole)
	require.NotNil(t, d.Fees)
	assert.Equal(t, 50000.0, d.Fees.TuitionFees)
	assert.Equal(t, ActionFeesSubmitted, d.LogAction)
}

func TestSubmitFeesWrongStage(t *testing.T) {
	// Not at Office stage: invalid state, not an authorization failure
	_, err := Decide(pendingAt(RoleTutor), Actor{4, RoleOffice}, ActionFeesSubmitted, Input{Fees: someFees()})
	assert.ErrorIs(t, err, ErrInvalidState)

	// At Office stage but the actor is not the Office
	_, err = Decide(pendingAt(RoleOffice), Actor{2, RoleHOD}, ActionFeesSubmitted, Input{Fees: someFees()})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Fees already submitted once
	_, err = Decide(feesVerification(), Actor{4, RoleOffice}, ActionFeesSubmitted, Input{Fees: someFees()})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmitFeesMissingDetails(t *testing.T) {
	_, err := Decide(pendingAt(RoleOffice), Actor{4, RoleOffice}, ActionFeesSubmitted, Input{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReject(t *testing.T) {
	// Any chain role may reject while the request is pending
	for _, role := range ApproverRoles() {
		d, err := Decide(pendingAt(RoleTutor), Actor{7, role}, ActionRejected, Input{Reason: "incomplete letter"})
		require.NoError(t, err, "role %s", role)
		assert.Equal(t, StatusRejected, d.NextStatus)
		assert.Equal(t, "incomplete letter", d.RejectionReason)
		assert.Equal(t, "incomplete letter", d.LogRemarks)
	}

	// During fee verification only the Principal may reject
	_, err := Decide(feesVerification(), Actor{4, RoleOffice}, ActionRejected, Input{Reason: "wrong amounts"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	d, err := Decide(feesVerification(), Actor{3, RolePrincipal}, ActionRejected, Input{Reason: "wrong amounts"})
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, d.NextStatus)
}

func TestRejectRequiresReason(t *testing.T) {
	_, err := Decide(pendingAt(RoleTutor), Actor{1, RoleTutor}, ActionRejected, Input{Reason: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRejectTerminal(t *testing.T) {
	state := pendingAt(RoleTutor)
	state.Status = StatusRejected
	_, err := Decide(state, Actor{1, RoleTutor}, ActionRejected, Input{Reason: "again"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStudentCannotReject(t *testing.T) {
	_, err := Decide(pendingAt(RoleTutor), Actor{10, RoleStudent}, ActionRejected, Input{Reason: "changed my mind"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCanDownload(t *testing.T) {
	owner := Actor{10, RoleStudent}

	state := pendingAt(RoleTutor)
	state.Status = StatusReady
	assert.NoError(t, CanDownload(state, owner))

	state.Status = StatusApproved
	assert.NoError(t, CanDownload(state, owner))

	// Principal may preview during fee verification
	state.Status = StatusPendingFeesVerification
	assert.NoError(t, CanDownload(state, Actor{3, RolePrincipal}))

	state.Status = StatusPending
	assert.ErrorIs(t, CanDownload(state, owner), ErrInvalidState)

	state.Status = StatusRejected
	assert.ErrorIs(t, CanDownload(state, owner), ErrInvalidState)
}

func TestCanDownloadOwnership(t *testing.T) {
	state := pendingAt(RoleTutor)
	state.Status = StatusReady

	assert.ErrorIs(t, CanDownload(state, Actor{99, RoleStudent}), ErrUnauthorized)
	// Staff are not restricted to their own requests
	assert.NoError(t, CanDownload(state, Actor{4, RoleOffice}))
}

func TestCanDownloadPhysicalMode(t *testing.T) {
	state := pendingAt(RoleTutor)
	state.Status = StatusApproved
	state.DeliveryMode = ModePhysical

	err := CanDownload(state, Actor{10, RoleStudent})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Contains(t, err.Error(), "collect from office")
}

// TestPendingAlwaysHasApprover checks the table never routes a pending
// request to a role outside the chain.
func TestPendingAlwaysHasApprover(t *testing.T) {
	for _, tr := range transitions {
		if tr.nextStatus != StatusPending && tr.nextStatus != StatusPendingFeesVerification {
			continue
		}
		require.NotEmpty(t, tr.nextApprover, "pending transition must name the next approver")
		assert.True(t, tr.nextApprover.IsApprover(), "next approver %s must be a chain role", tr.nextApprover)
	}
}
