package notifier

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/dinari-africa/dinari-ledger/pkg/logger"
)

// EmailNotifier delivers operator alerts to a single configured mailbox.
type EmailNotifier struct {
	logger *logger.Logger

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string

	SMTPAuth smtp.Auth

	recipient string
}

func NewEmailNotifier(logger *logger.Logger, SMTPHost string, SMTPPort int, SMTPUser string, SMTPPassword string, SMTPSender string, recipient string) *EmailNotifier {
	auth := smtp.PlainAuth(
		"",
		SMTPUser,
		SMTPPassword,
		SMTPHost,
	)

	return &EmailNotifier{
		logger:       logger,
		SMTPAuth:     auth,
		SMTPHost:     SMTPHost,
		SMTPPort:     SMTPPort,
		SMTPUser:     SMTPUser,
		SMTPPassword: SMTPPassword,
		SMTPSender:   SMTPSender,
		recipient:    recipient,
	}
}

func (e *EmailNotifier) SendNotification(message string) {
	addr := fmt.Sprintf("%s:%s", e.SMTPHost, strconv.Itoa(e.SMTPPort))
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		e.SMTPSender,          // From address
		e.recipient,           // To address
		"Dinari ledger alert", // Subject
		message,               // Email body
	)
	if err := smtp.SendMail(addr, e.SMTPAuth, e.SMTPSender, []string{e.recipient}, []byte(msg)); err != nil {
		e.logger.Error("Failed to send email: ", err)
	}
}
