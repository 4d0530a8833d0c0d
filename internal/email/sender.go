package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"go.uber.org/zap"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/domain/entity"
)

// Config holds SMTP delivery settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

var approvalBody = template.Must(template.New("approval").Parse(
	`From: {{.From}}
To: {{.To}}
Subject: Registration approved - {{.UniqueID}}

Dear {{.Name}},

Your conference registration has been approved.

Registration ID: {{.UniqueID}}
Region: {{.Region}}
Amount paid: {{.PaidAmount}}
Balance due: {{.Balance}}

Please quote your registration ID at the venue.
`))

var rejectionBody = template.Must(template.New("rejection").Parse(
	`From: {{.From}}
To: {{.To}}
Subject: Registration update

Dear {{.Name}},

We are sorry to inform you that your conference registration could not
be approved.

Reason: {{.Reason}}

Please contact your regional coordinator if you believe this is in
error.
`))

// Sender delivers registration outcome notifications over SMTP. It
// implements port.RegistrationNotifier; the decision flows treat
// failures as non-fatal.
type Sender struct {
	cfg    Config
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger *zap.Logger
}

// NewSender creates a new email sender
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: logger,
	}
}

// NotifyApproved emails the registrant their issued unique id. Records
// without an email address are skipped silently.
func (s *Sender) NotifyApproved(ctx context.Context, rec *entity.PaymentRecord) error {
	if rec.Email == "" {
		return nil
	}

	var body bytes.Buffer
	err := approvalBody.Execute(&body, map[string]interface{}{
		"From":       s.cfg.From,
		"To":         rec.Email,
		"Name":       rec.Name,
		"UniqueID":   rec.UniqueID,
		"Region":     rec.Region.String(),
		"PaidAmount": rec.PaidAmount,
		"Balance":    rec.Balance,
	})
	if err != nil {
		return fmt.Errorf("render approval email: %w", err)
	}

	if err := s.deliver(rec.Email, body.Bytes()); err != nil {
		s.logger.Error("Failed to send approval email",
			zap.String("record_id", rec.ID),
			zap.String("to", rec.Email),
			zap.Error(err))
		return fmt.Errorf("send approval email: %w", err)
	}

	s.logger.Info("Approval email sent",
		zap.String("record_id", rec.ID),
		zap.String("unique_id", rec.UniqueID))
	return nil
}

// NotifyRejected emails the registrant the rejection reason. Records
// without an email address are skipped silently.
func (s *Sender) NotifyRejected(ctx context.Context, rec *entity.PaymentRecord) error {
	if rec.Email == "" {
		return nil
	}

	var body bytes.Buffer
	err := rejectionBody.Execute(&body, map[string]interface{}{
		"From":   s.cfg.From,
		"To":     rec.Email,
		"Name":   rec.Name,
		"Reason": rec.RejectionReason,
	})
	if err != nil {
		return fmt.Errorf("render rejection email: %w", err)
	}

	if err := s.deliver(rec.Email, body.Bytes()); err != nil {
		s.logger.Error("Failed to send rejection email",
			zap.String("record_id", rec.ID),
			zap.String("to", rec.Email),
			zap.Error(err))
		return fmt.Errorf("send rejection email: %w", err)
	}

	s.logger.Info("Rejection email sent", zap.String("record_id", rec.ID))
	return nil
}

func (s *Sender) deliver(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return s.send(addr, auth, s.cfg.From, []string{to}, msg)
}

var _ port.RegistrationNotifier = (*Sender)(nil)
