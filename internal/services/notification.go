package services

import (
	"context"
	"fmt"

	"campusevents/internal/domain"
)

type notificationService struct {
	userRepo  domain.UserRepository
	eventRepo domain.EventRepository
	renderer  domain.EmailTemplateRenderer
	mailer    domain.Mailer
}

// NewNotificationService creates the registration lifecycle email sender.
func NewNotificationService(
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	renderer domain.EmailTemplateRenderer,
	mailer domain.Mailer,
) domain.NotificationService {
	return &notificationService{
		userRepo:  userRepo,
		eventRepo: eventRepo,
		renderer:  renderer,
		mailer:    mailer,
	}
}

func (s *notificationService) SendRegistrationConfirmed(ctx context.Context, eventID, personID, qrURL string) error {
	return s.send(ctx, "registration_confirmed", eventID, personID, qrURL)
}

func (s *notificationService) SendWaitlistPromoted(ctx context.Context, eventID, personID, qrURL string) error {
	return s.send(ctx, "waitlist_promoted", eventID, personID, qrURL)
}

func (s *notificationService) send(ctx context.Context, templateName, eventID, personID, qrURL string) error {
	user, err := s.userRepo.GetByID(ctx, personID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}

	data := &domain.RegistrationEmailData{
		Name:       user.Name,
		EventTitle: event.Title,
		QRCodeURL:  qrURL,
	}
	subject, html, text, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("render %s email: %w", templateName, err)
	}
	if err := s.mailer.Send(user.Email, subject, html, text); err != nil {
		return fmt.Errorf("send %s email: %w", templateName, err)
	}
	return nil
}
