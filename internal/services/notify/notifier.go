package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/common"
	"github.com/rstatelabs/playnews/internal/interfaces"
)

// Service delivers crawl-failure notifications. Delivery is best effort:
// a notification that cannot be sent is logged and dropped, never
// propagated into the pipeline.
type Service struct {
	cfg    *common.NotificationConfig
	send   func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
	logger arbor.ILogger
}

func NewService(cfg *common.NotificationConfig, logger arbor.ILogger) interfaces.Notifier {
	return &Service{cfg: cfg, send: smtp.SendMail, logger: logger}
}

// NotifyFailure reports one failed task through the configured channel.
func (s *Service) NotifyFailure(ctx context.Context, taskType, errorMessage, zipCode, source string) {
	if !s.cfg.Enabled {
		return
	}

	switch s.cfg.Type {
	case "email":
		s.sendEmail(ctx, taskType, errorMessage, zipCode, source)
	default:
		s.logNotification(taskType, errorMessage, zipCode, source)
	}
}

func (s *Service) logNotification(taskType, errorMessage, zipCode, source string) {
	event := s.logger.Error().
		Str("task_type", taskType).
		Str("error", errorMessage).
		Str("failed_at", time.Now().UTC().Format(time.RFC3339))
	if zipCode != "" {
		event = event.Str("zip", zipCode)
	}
	if source != "" {
		event = event.Str("source", source)
	}
	event.Msg("Crawl task failed")
}

func (s *Service) sendEmail(ctx context.Context, taskType, errorMessage, zipCode, source string) {
	c := s.cfg.SMTP
	if c.Host == "" || c.Username == "" || c.Password == "" || c.To == "" {
		s.logger.Warn().Msg("SMTP config incomplete, falling back to log notification")
		s.logNotification(taskType, errorMessage, zipCode, source)
		return
	}
	if err := ctx.Err(); err != nil {
		return
	}

	from := c.From
	if from == "" {
		from = c.Username
	}
	subject := fmt.Sprintf("[RState News] Crawl task failed - %s", taskType)
	msg := buildMessage(from, c.To, subject, taskType, errorMessage, zipCode, source)

	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)
	auth := smtp.PlainAuth("", c.Username, c.Password, c.Host)
	if err := s.send(addr, auth, from, strings.Split(c.To, ","), msg); err != nil {
		s.logger.Error().Err(err).Str("to", c.To).Msg("Failed to send failure email")
		return
	}
	s.logger.Info().Str("subject", subject).Msg("Failure email sent")
}

func buildMessage(from, to, subject, taskType, errorMessage, zipCode, source string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("\r\n")
	b.WriteString("Crawl task failed\r\n\r\n")
	fmt.Fprintf(&b, "Task type: %s\r\n", taskType)
	fmt.Fprintf(&b, "Failed at: %s\r\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Error: %s\r\n", errorMessage)
	if zipCode != "" {
		fmt.Fprintf(&b, "Zipcode: %s\r\n", zipCode)
	}
	if source != "" {
		fmt.Fprintf(&b, "Source: %s\r\n", source)
	}
	return []byte(b.String())
}
