package services

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
)

// EmailService dispatches expense alerts over SMTP. When no SMTP
// server is configured the service logs the alert instead of sending,
// which keeps local development working without a mail account.
type EmailService struct {
	server      string
	port        int
	username    string
	password    string
	senderEmail string
	senderName  string
}

func NewEmailService(server string, port int, username, password, senderEmail, senderName string) *EmailService {
	return &EmailService{
		server:      server,
		port:        port,
		username:    username,
		password:    password,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

var _ Notifier = (*EmailService)(nil)

// SendExpenseAlert emails the user that their spending has crossed the
// alert threshold for the current month.
func (s *EmailService) SendExpenseAlert(ctx context.Context, user *models.User, ratio int) error {
	subject := "Spending alert"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour expenses this month have reached %d%% of your income. "+
			"You may want to review your recent transactions.\n",
		user.Username, ratio)

	if s.server == "" {
		logger.L.Info("SMTP not configured, logging alert instead",
			"to", user.Email, "subject", subject, "ratio", ratio)
		return nil
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.senderName, s.senderEmail, user.Email, subject, body)

	addr := fmt.Sprintf("%s:%d", s.server, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.server)
	if err := smtp.SendMail(addr, auth, s.senderEmail, []string{user.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}
