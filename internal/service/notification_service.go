package service

import (
	"context"
	"fmt"

	"doc-chat-be/internal/pkg/logger"
	"doc-chat-be/internal/pkg/mailer"
	"doc-chat-be/pkg/events"
	pkgNats "doc-chat-be/pkg/nats"
)

// INotificationService reacts to bus events that require user-facing
// side effects, currently just the signup verification mail.
type INotificationService interface {
	Start() error
}

type notificationService struct {
	subscriber   *pkgNats.Subscriber
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewNotificationService(subscriber *pkgNats.Subscriber, emailService mailer.IEmailService, log logger.ILogger) INotificationService {
	return &notificationService{
		subscriber:   subscriber,
		emailService: emailService,
		logger:       log,
	}
}

func (s *notificationService) Start() error {
	return s.subscriber.Subscribe("events.user.registered", "mailer-user-registered", s.onUserRegistered)
}

func (s *notificationService) onUserRegistered(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	email, _ := payload["email"].(string)
	fullName, _ := payload["full_name"].(string)
	token, _ := payload["verify_token"].(string)

	if email == "" || token == "" {
		// Malformed event, retrying will not help.
		s.logger.Warn("NotificationService", "Dropping malformed user.registered event", map[string]interface{}{
			"payload": payload,
		})
		return nil
	}

	if err := s.emailService.SendVerificationLink(email, fullName, token); err != nil {
		return fmt.Errorf("failed to send verification mail: %w", err)
	}

	s.logger.Info("NotificationService", "Verification mail dispatched", map[string]interface{}{
		"email": email,
	})
	return nil
}
