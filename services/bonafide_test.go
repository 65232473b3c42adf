package services

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/manasaistanly/campus-approval-system/models"
	"github.com/manasaistanly/campus-approval-system/repository"
	"github.com/manasaistanly/campus-approval-system/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingNotifier captures notifications instead of sending mail.
type recordingNotifier struct {
	mu     sync.Mutex
	status []string // "email|status|message"
	ready  []string // "email|name"
}

func (n *recordingNotifier) NotifyRequestStatus(email, status, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.status = append(n.status, email+"|"+status+"|"+message)
}

func (n *recordingNotifier) NotifyReadyForCollection(email, studentName string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ready = append(n.ready, email+"|"+studentName)
}

// stubRenderer returns fixed bytes so tests don't depend on PDF layout.
type stubRenderer struct{}

func (stubRenderer) Render(*models.BonafideRequest) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

type fixture struct {
	svc      *BonafideService
	repo     *repository.BonafideRepo
	notifier *recordingNotifier
	student  *models.User
	tutor    *models.User
	hod      *models.User
	princ    *models.User
	office   *models.User
	purpose  *models.BonafideReason
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.BonafideReason{},
		&models.BonafideRequest{},
		&models.ApprovalLog{},
	))

	f := &fixture{
		repo:     repository.NewBonafideRepo(db),
		notifier: &recordingNotifier{},
	}
	f.svc = NewBonafideService(f.repo, f.notifier, stubRenderer{})

	mkUser := func(role, email string) *models.User {
		u := models.User{
			FullName:   role + " User",
			Email:      email,
			Password:   "hashed",
			Role:       role,
			Department: "CSE",
			Section:    "A",
		}
		require.NoError(t, db.Create(&u).Error)
		return &u
	}
	f.student = mkUser("STUDENT", "student@college.test")
	f.tutor = mkUser("TUTOR", "tutor@college.test")
	f.hod = mkUser("HOD", "hod@college.test")
	f.princ = mkUser("PRINCIPAL", "principal@college.test")
	f.office = mkUser("OFFICE", "office@college.test")

	f.purpose = &models.BonafideReason{Reason: "Visa Application", Category: "Travel", IsActive: true}
	require.NoError(t, db.Create(f.purpose).Error)

	return f
}

func (f *fixture) newRequest(t *testing.T, mode workflow.DeliveryMode) *models.BonafideRequest {
	t.Helper()
	request, err := f.svc.Create(repository.CreateInput{
		StudentID:        f.student.ID,
		PurposeID:        f.purpose.ID,
		FormalLetterText: "Respected Sir, kindly issue a bonafide certificate.",
		DeliveryMode:     mode,
	})
	require.NoError(t, err)
	return request
}

func actor(u *models.User) workflow.Actor {
	return workflow.Actor{UserID: u.ID, Role: workflow.Role(u.Role)}
}

// TestFullChainRoundTrip drives a request through every stage of the chain
// and checks the final state plus the complete ordered audit trail.
func TestFullChainRoundTrip(t *testing.T) {
	f := newFixture(t)
	request := f.newRequest(t, workflow.ModeDigital)

	_, err := f.svc.Approve(request.ID, actor(f.tutor))
	require.NoError(t, err)
	_, err = f.svc.Approve(request.ID, actor(f.hod))
	require.NoError(t, err)
	_, err = f.svc.Approve(request.ID, actor(f.princ))
	require.NoError(t, err)

	hostel := 18000.0
	_, err = f.svc.SubmitFees(request.ID, actor(f.office), workflow.FeeDetails{
		TuitionFees:     65000,
		ExamFees:        3000,
		HostelFees:      &hostel,
		CertificateDate: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	final, err := f.svc.Approve(request.ID, actor(f.princ))
	require.NoError(t, err)

	assert.Equal(t, string(workflow.StatusReady), final.Status)
	require.NotNil(t, final.TuitionFees)
	assert.Equal(t, 65000.0, *final.TuitionFees)

	require.Len(t, final.Logs, 6)
	wantActions := []string{"SUBMITTED", "APPROVED", "APPROVED", "APPROVED", "FEES_SUBMITTED", "APPROVED"}
	for i, entry := range final.Logs {
		assert.Equal(t, wantActions[i], entry.Action, "log entry %d", i)
		if i > 0 {
			assert.False(t, entry.Timestamp.Before(final.Logs[i-1].Timestamp), "log entries must be chronological")
		}
	}

	// One status mail per chain step, plus the ready-for-collection mail
	assert.Len(t, f.notifier.status, 4)
	require.Len(t, f.notifier.ready, 1)
	assert.Equal(t, "student@college.test|STUDENT User", f.notifier.ready[0])
}

func TestDoubleApproveFails(t *testing.T) {
	f := newFixture(t)
	request := f.newRequest(t, workflow.ModeDigital)

	_, err := f.svc.Approve(request.ID, actor(f.tutor))
	require.NoError(t, err)

	// The chain moved on; the same role acting again must not double-advance
	_, err = f.svc.Approve(request.ID, actor(f.tutor))
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)

	current, err := f.repo.FindByID(request.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.RoleHOD), current.CurrentApproverRole)
	assert.Len(t, current.Logs, 2)
}

func TestApproveOutOfTurnLeavesRequestUntouched(t *testing.T) {
	f := newFixture(t)
	request := f.newRequest(t, workflow.ModeDigital)

	_, err := f.svc.Approve(request.ID, actor(f.tutor))
	require.NoError(t, err)

	// Tutor tries again while the request waits on the HOD
	_, err = f.svc.Approve(request.ID, actor(f.tutor))
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)

	current, err := f.repo.FindByID(request.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusPending), current.Status)
	assert.Equal(t, string(workflow.RoleHOD), current.CurrentApproverRole)
	// No log entry for the failed attempt
	assert.Len(t, current.Logs, 2)
}

func TestRejectAtAnyStage(t *testing.T) {
	f := newFixture(t)

	// Rejected straight away by the tutor
	first := f.newRequest(t, workflow.ModeDigital)
	rejected, err := f.svc.Reject(first.ID, actor(f.tutor), "Letter is missing the purpose")
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusRejected), rejected.Status)
	assert.Equal(t, "Letter is missing the purpose", rejected.RejectionReason)

	// No transition is accepted after rejection
	_, err = f.svc.Approve(first.ID, actor(f.tutor))
	assert.ErrorIs(t, err, workflow.ErrInvalidState)
	_, err = f.svc.Reject(first.ID, actor(f.tutor), "again")
	assert.ErrorIs(t, err, workflow.ErrInvalidState)

	// Rejected by the principal during fee verification
	second := f.newRequest(t, workflow.ModeDigital)
	_, err = f.svc.Approve(second.ID, actor(f.tutor))
	require.NoError(t, err)
	_, err = f.svc.Approve(second.ID, actor(f.hod))
	require.NoError(t, err)
	_, err = f.svc.Approve(second.ID, actor(f.princ))
	require.NoError(t, err)
	_, err = f.svc.SubmitFees(second.ID, actor(f.office), workflow.FeeDetails{
		TuitionFees:     65000,
		ExamFees:        3000,
		CertificateDate: time.Now(),
	})
	require.NoError(t, err)

	rejected, err = f.svc.Reject(second.ID, actor(f.princ), "Fee breakdown is wrong")
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusRejected), rejected.Status)
	assert.Equal(t, "Fee breakdown is wrong", rejected.RejectionReason)
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	request := f.newRequest(t, workflow.ModeDigital)

	_, err := f.svc.Reject(request.ID, actor(f.tutor), "  ")
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

func TestSubmitFeesWrongStage(t *testing.T) {
	f := newFixture(t)
	request := f.newRequest(t, workflow.ModeDigital)

	_, err := f.svc.SubmitFees(request.ID, actor(f.office), workflow.FeeDetails{
		TuitionFees:     65000,
		ExamFees:        3000,
		CertificateDate: time.Now(),
	})
	assert.ErrorIs(t, err, workflow.ErrInvalidState)

	// Fee fields remain unset after the refused transition
	current, err := f.repo.FindByID(request.ID)
	require.NoError(t, err)
	assert.Nil(t, current.TuitionFees)
	assert.Nil(t, current.ExamFees)
	assert.Nil(t, current.CertificateDate)
}

func TestConcurrentApprovesSingleWinner(t *testing.T) {
	f := newFixture(t)
	request := f.newRequest(t, workflow.ModeDigital)

	// Both callers read version 1; only one conditional update can match.
	stale, err := f.repo.FindByID(request.ID)
	require.NoError(t, err)

	_, err = f.repo.ApplyTransition(request.ID, stale.Version, map[string]interface{}{
		"status":                string(workflow.StatusPending),
		"current_approver_role": string(workflow.RoleHOD),
	}, models.ApprovalLog{
		ApproverID: f.tutor.ID,
		RoleAtTime: string(workflow.RoleTutor),
		Action:     string(workflow.ActionApproved),
	})
	require.NoError(t, err)

	// The loser retries against fresh state; re-validation rejects the
	// duplicate approve instead of double-advancing the chain.
	_, err = f.svc.Approve(request.ID, actor(f.tutor))
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)

	current, err := f.repo.FindByID(request.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.RoleHOD), current.CurrentApproverRole)

	var approvedCount int
	for _, entry := range current.Logs {
		if entry.Action == string(workflow.ActionApproved) {
			approvedCount++
		}
	}
	assert.Equal(t, 1, approvedCount)
}

func TestDownloadDigital(t *testing.T) {
	f := newFixture(t)
	request := f.newRequest(t, workflow.ModeDigital)

	// Not downloadable while still pending
	_, err := f.svc.Download(request.ID, actor(f.student))
	assert.ErrorIs(t, err, workflow.ErrInvalidState)

	_, err = f.svc.Approve(request.ID, actor(f.tutor))
	require.NoError(t, err)
	_, err = f.svc.Approve(request.ID, actor(f.hod))
	require.NoError(t, err)
	_, err = f.svc.Approve(request.ID, actor(f.princ))
	require.NoError(t, err)
	// Office closes it out directly
	_, err = f.svc.Approve(request.ID, actor(f.office))
	require.NoError(t, err)

	buffer, err := f.svc.Download(request.ID, actor(f.student))
	require.NoError(t, err)
	assert.NotEmpty(t, buffer)

	// Another student may not download it
	other := workflow.Actor{UserID: 9999, Role: workflow.RoleStudent}
	_, err = f.svc.Download(request.ID, other)
	assert.ErrorIs(t, err, workflow.ErrUnauthorized)
}

func TestDownloadPhysicalRefused(t *testing.T) {
	f := newFixture(t)
	request := f.newRequest(t, workflow.ModePhysical)

	_, err := f.svc.Approve(request.ID, actor(f.tutor))
	require.NoError(t, err)
	_, err = f.svc.Approve(request.ID, actor(f.hod))
	require.NoError(t, err)
	_, err = f.svc.Approve(request.ID, actor(f.princ))
	require.NoError(t, err)
	_, err = f.svc.Approve(request.ID, actor(f.office))
	require.NoError(t, err)

	current, err := f.repo.FindByID(request.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusApproved), current.Status)

	buffer, err := f.svc.Download(request.ID, actor(f.student))
	assert.ErrorIs(t, err, workflow.ErrInvalidState)
	assert.Contains(t, err.Error(), "collect from office")
	assert.Nil(t, buffer)
}

func TestDownloadUnknownRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Download("00000000-0000-0000-0000-000000000000", actor(f.student))
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestRejectionNotifiesWithReason(t *testing.T) {
	f := newFixture(t)
	request := f.newRequest(t, workflow.ModeDigital)

	_, err := f.svc.Reject(request.ID, actor(f.tutor), "Duplicate request")
	require.NoError(t, err)

	require.Len(t, f.notifier.status, 1)
	assert.Equal(t, "student@college.test|REJECTED|Duplicate request", f.notifier.status[0])
}
