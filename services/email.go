package services

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/sevispass/sevispass-backend/config"
	"github.com/sevispass/sevispass-backend/models"
)

// Notifier delivers codes and appointment confirmations to a subject.
type Notifier interface {
	SendCode(to, code, purpose string, ttl time.Duration) error
	SendBookingConfirmation(to, locationName, date, timeOfDay string) error
	SendRescheduleConfirmation(to, locationName, date, timeOfDay string) error
}

type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPNotifier(cfg *config.Config) *SMTPNotifier {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		port = 587
	}
	return &SMTPNotifier{
		host:     cfg.SMTPHost,
		port:     port,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

func (n *SMTPNotifier) SendCode(to, code, purpose string, ttl time.Duration) error {
	var subject, body string
	switch purpose {
	case models.PurposeRegistration:
		subject = "SevisPass Registration Code"
		body = fmt.Sprintf("Your SevisPass registration code is: %s\n\nThis code expires in %d minutes.", code, int(ttl.Minutes()))
	case models.PurposePasswordReset:
		subject = "SevisPass Password Reset Code"
		body = fmt.Sprintf("Your password reset code is: %s\n\nThis code expires in %d minutes.", code, int(ttl.Minutes()))
	case models.PurposeEmailChange:
		subject = "SevisPass Email Change Code"
		body = fmt.Sprintf("Your email change code is: %s\n\nThis code expires in %d minutes.", code, int(ttl.Minutes()))
	case models.PurposeActivation:
		subject = "Activate Your SevisPass Account"
		body = fmt.Sprintf("Your account activation code is: %s\n\nThis code expires in %d hours.", code, int(ttl.Hours()))
	case models.PurposeTwoFactor:
		subject = "SevisPass Login Verification Code"
		body = fmt.Sprintf("Your login verification code is: %s\n\nThis code expires in %d minutes.\n\nIf you did not try to log in, please change your password.", code, int(ttl.Minutes()))
	default:
		subject = "SevisPass Verification Code"
		body = fmt.Sprintf("Your verification code is: %s", code)
	}
	return n.send(to, subject, body)
}

func (n *SMTPNotifier) SendBookingConfirmation(to, locationName, date, timeOfDay string) error {
	body := fmt.Sprintf("Your biometric appointment is confirmed.\n\nLocation: %s\nDate: %s\nTime: %s\n\nPlease bring a valid ID document.", locationName, date, timeOfDay)
	return n.send(to, "SevisPass Biometric Appointment Confirmed", body)
}

func (n *SMTPNotifier) SendRescheduleConfirmation(to, locationName, date, timeOfDay string) error {
	body := fmt.Sprintf("Your biometric appointment has been moved.\n\nNew location: %s\nNew date: %s\nNew time: %s", locationName, date, timeOfDay)
	return n.send(to, "SevisPass Biometric Appointment Rescheduled", body)
}

func (n *SMTPNotifier) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(n.host, n.port, n.username, n.password)
	return d.DialAndSend(m)
}

// LogNotifier replaces SMTP delivery when no credentials are configured.
// Never use it where real subjects must receive codes.
type LogNotifier struct{}

func (LogNotifier) SendCode(to, code, purpose string, ttl time.Duration) error {
	log.Printf("[Notifier] code for %s (purpose=%s, ttl=%s): %s", to, purpose, ttl, code)
	return nil
}

func (LogNotifier) SendBookingConfirmation(to, locationName, date, timeOfDay string) error {
	log.Printf("[Notifier] booking confirmation for %s: %s %s %s", to, locationName, date, timeOfDay)
	return nil
}

func (LogNotifier) SendRescheduleConfirmation(to, locationName, date, timeOfDay string) error {
	log.Printf("[Notifier] reschedule confirmation for %s: %s %s %s", to, locationName, date, timeOfDay)
	return nil
}

// NewNotifier picks SMTP when credentials exist, otherwise falls back to
// logging so development environments work without a mail account.
func NewNotifier(cfg *config.Config) Notifier {
	if cfg.SMTPUsername != "" && cfg.SMTPPassword != "" {
		return NewSMTPNotifier(cfg)
	}
	log.Println("Warning: SMTP credentials not set, codes will be logged instead of emailed")
	return LogNotifier{}
}
