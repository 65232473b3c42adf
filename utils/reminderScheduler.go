package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/manasaistanly/campus-approval-system/database"
	"github.com/manasaistanly/campus-approval-system/models"
	"github.com/manasaistanly/campus-approval-system/workflow"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[REMINDER-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// StartReminderScheduler mails each approver a morning digest of the
// requests waiting at their stage.
func StartReminderScheduler() *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("0 8 * * *", sendPendingDigests); err != nil {
		logScheduler("Failed to register pending digest job: " + err.Error())
		return c
	}

	c.Start()
	logScheduler("Scheduler started")
	return c
}

func sendPendingDigests() {
	db := database.Database.Db

	for _, role := range workflow.ApproverRoles() {
		var count int64
		err := db.Model(&models.BonafideRequest{}).
			Where("current_approver_role = ? AND status IN ?", string(role), []string{
				string(workflow.StatusPending),
				string(workflow.StatusPendingFeesVerification),
			}).
			Count(&count).Error
		if err != nil {
			logScheduler("Error counting pending requests for " + string(role) + ": " + err.Error())
			continue
		}
		if count == 0 {
			continue
		}

		var approvers []models.User
		if err := db.Where("role = ? AND is_deleted = ?", string(role), false).Find(&approvers).Error; err != nil {
			logScheduler("Error fetching approvers for " + string(role) + ": " + err.Error())
			continue
		}

		subject := "Pending Bonafide Requests"
		body := fmt.Sprintf(`
			<p>You have <strong>%d</strong> bonafide certificate request(s) waiting for your action.</p>
			<div class="info-box">Please login to the portal and review them at your earliest convenience.</div>
		`, count)

		for _, approver := range approvers {
			if approver.Email == "" {
				continue
			}
			go func(email string) {
				if err := SendEmail([]string{email}, subject, getEmailTemplate("Approvals Waiting", body)); err != nil {
					logScheduler("Failed to send digest to " + email + ": " + err.Error())
				}
			}(approver.Email)
		}
		logScheduler(fmt.Sprintf("Digest queued for %d %s approver(s), %d pending", len(approvers), role, count))
	}
}
