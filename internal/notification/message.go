package notification

import (
	"fmt"
	"html"
	"strings"

	"complaint-portal/internal/models"
)

const statusUpdateHTML = `<html>
    <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
        <div style="max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8fafc; border: 1px solid #e2e8f0; border-radius: 8px;">
            <h2 style="color: #0f172a; margin-bottom: 20px;">Complaint Status Update</h2>
            <p>Dear %s,</p>
            <p>Your %s complaint (ID: <strong>%s</strong>) status has been updated to:</p>
            <div style="background-color: #2563eb; color: white; padding: 15px; border-radius: 5px; text-align: center; margin: 20px 0;">
                <h3 style="margin: 0; color: white;">Status: %s</h3>
            </div>
            <p>Thank you for your patience.</p>
            <hr style="border: none; border-top: 1px solid #e2e8f0; margin: 20px 0;">
            <p style="font-size: 12px; color: #64748b;">This is an automated message from the Complaint Management System. Please do not reply to this email.</p>
        </div>
    </body>
</html>
`

// StatusUpdateSubject is the subject line for a status change.
func StatusUpdateSubject(complaintType string) string {
	return "Complaint Status Update - " + complaintType
}

// StatusUpdateBody renders the HTML body. The output depends only on req;
// the status is shown upper-cased and every field is HTML-escaped.
func StatusUpdateBody(req models.NotificationRequest) string {
	return fmt.Sprintf(statusUpdateHTML,
		html.EscapeString(req.StudentName),
		html.EscapeString(req.ComplaintType),
		html.EscapeString(req.ComplaintID),
		html.EscapeString(strings.ToUpper(req.Status)),
	)
}
