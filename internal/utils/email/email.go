package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/virtualcard/internal/config"
)

// Sender handles sending transfer alert emails via SMTP
type Sender struct {
	cfg *config.AggregateConfig
	log *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.AggregateConfig, log *logrus.Logger) *Sender {
	return &Sender{cfg: cfg, log: log}
}

// Enabled reports whether alerting is configured
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != "" && s.cfg.AlertEmail != ""
}

// SendTransferAlert sends a notification about a completed transfer to the
// configured alerts address.
func (s *Sender) SendTransferAlert(senderCode, recipientCode string, amount decimal.Decimal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.AlertEmail}
	e.Subject = "Transfer Notification"

	body := fmt.Sprintf(
		"A transfer of %s has been completed.\n"+
			"Sender card: %s\n"+
			"Recipient card: %s\n"+
			"Transfer time: %s\n",
		amount, senderCode, recipientCode, time.Now().Format("2006-01-02 15:04:05"),
	)
	body += "\nBest regards,\nVirtual Card Service"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.log.Errorf("Failed to send transfer alert to %s: %v", s.cfg.AlertEmail, err)
		return fmt.Errorf("failed to send transfer alert: %w", err)
	}

	s.log.Infof("Transfer alert sent to %s", s.cfg.AlertEmail)
	return nil
}
