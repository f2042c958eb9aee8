package notify

import (
	"github.com/harborline/CruiseLink/utils"
)

// EmailNotifier delivers admin alerts over SMTP. Delivery is
// fire-and-forget: failures are logged and swallowed, since money-state
// correctness never depends on a notification going out.
type EmailNotifier struct {
	adminEmail string
}

// NewEmailNotifier builds a notifier targeting the admin mailbox.
func NewEmailNotifier(adminEmail string) *EmailNotifier {
	return &EmailNotifier{adminEmail: adminEmail}
}

// Notify sends the alert in the background.
func (n *EmailNotifier) Notify(subject, body string) {
	if n.adminEmail == "" {
		utils.LogDebug("Admin alert dropped, no admin email configured: %s", subject)
		return
	}
	go func() {
		if err := utils.SendEmail(n.adminEmail, subject, body); err != nil {
			utils.LogError("Admin alert delivery failed: %v", err)
		}
	}()
}
