package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendVerificationLink(toEmail, fullName, token string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	baseURL     string // API base, the verify endpoint lives there
}

func NewEmailService(host string, port int, username, password, senderEmail, baseURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		baseURL:     baseURL,
	}
}

func (s *emailService) SendVerificationLink(toEmail, fullName, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Verify Your Account")

	verifyLink := fmt.Sprintf("%s/api/auth/v1/verify-email?token=%s", s.baseURL, token)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s, welcome to DocChat!</h2>
			<p>Click the button below to verify your account:</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify Account</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>This link will expire in 48 hours.</p>
			<p>If you didn't sign up, please ignore this email.</p>
		</div>
	`, fullName, verifyLink, verifyLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send verification link to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Verification link sent to %s\n", toEmail)
	return nil
}
