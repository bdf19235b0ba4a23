package domain

import "context"

// Mailer sends a single email message.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named email template with data and returns
// the subject, html body, and text body.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// RegistrationEmailData is the payload for the registration confirmation and
// waitlist promotion templates.
type RegistrationEmailData struct {
	Name       string
	EventTitle string
	QRCodeURL  string
}

// NotificationService sends registration lifecycle emails. Delivery is best
// effort and never fails the business operation.
type NotificationService interface {
	SendRegistrationConfirmed(ctx context.Context, eventID, personID, qrURL string) error
	SendWaitlistPromoted(ctx context.Context, eventID, personID, qrURL string) error
}
