package smtp

import (
	"context"

	"go.uber.org/zap"

	"github.com/campusio/intl-office/internal/infra/config"
	"github.com/campusio/intl-office/internal/infra/logger"
)

// Mailer writes outbound mail to the log instead of delivering it. Real SMTP
// delivery is handled by the campus relay outside this service; the payload
// logged here is what would be handed over.
type Mailer struct {
	cfg config.SMTPSettings
}

// NewMailer constructs a logging mailer.
func NewMailer(cfg config.SMTPSettings) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send records the message. It never fails.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	logger.WithContext(ctx).Info("outbound email",
		zap.String("from", m.cfg.From),
		zap.String("to", logger.MaskEmail(to)),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}
