package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/manasaistanly/campus-approval-system/config"

	"github.com/go-resty/resty/v2"
)

// EmailNotifier implements the services.Notifier contract. Every method is
// fire-and-forget: delivery runs on its own goroutine and failures are
// only logged, never returned, so notification problems can't block an
// approval that already committed.
type EmailNotifier struct {
	client *resty.Client
}

func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{
		client: resty.New().SetTimeout(10 * time.Second),
	}
}

func (n *EmailNotifier) NotifyRequestStatus(email, status, message string) {
	subject := "Bonafide Request Update: " + status
	body := fmt.Sprintf(`
		<p>Your bonafide certificate request status has been updated to:</p>
		<p><span class="status-badge">%s</span></p>
		<div class="info-box">%s</div>
		<p>Login to the portal to view full details.</p>
	`, status, message)

	go n.deliver(email, subject, getEmailTemplate("Request Status Update", body))
}

func (n *EmailNotifier) NotifyReadyForCollection(email, studentName string) {
	subject := "Certificate Ready for Collection"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your Bonafide Certificate is ready for collection.</p>
		<p>Please visit the college office to collect it.</p>
		<p>Regards,<br>College Administration</p>
	`, studentName)

	go n.deliver(email, subject, getEmailTemplate("Certificate Ready", body))
}

// deliver prefers the frontend email relay when configured and falls back
// to direct SMTP otherwise.
func (n *EmailNotifier) deliver(to, subject, htmlBody string) {
	if config.AppConfig.EmailRelaySecret != "" {
		if err := n.postToRelay(to, subject, htmlBody); err != nil {
			log.Printf("Email relay failed for %s: %v", to, err)
		}
		return
	}
	if err := SendEmail([]string{to}, subject, htmlBody); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
	}
}

func (n *EmailNotifier) postToRelay(to, subject, text string) error {
	resp, err := n.client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-secret", config.AppConfig.EmailRelaySecret).
		SetBody(map[string]string{
			"to":      to,
			"subject": subject,
			"text":    text,
		}).
		Post(config.AppConfig.FrontendURL + "/api/email-relay")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("email relay returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
