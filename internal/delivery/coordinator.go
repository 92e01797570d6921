// Package delivery submits rendered-report requests to the backend mailer
// and classifies the outcome.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"CardioSense/internal/domain"
	"CardioSense/internal/infrastructure/gateway"
	"CardioSense/internal/ports"
)

const (
	noEmailMessage = "No email address provided"
	genericFailure = "Failed to send email. Please try again."

	restrictedMessage = "Report generated successfully. Email delivery is currently in demo mode. " +
		"Please download the report or contact the project owner."
)

// DefaultRestrictedPhrases match the backend wordings that mean "delivery is
// demo-restricted, the report itself is fine". Matched case-insensitively.
var DefaultRestrictedPhrases = []string{"testing emails", "demo mode"}

// Coordinator performs exactly one delivery attempt per call and maps the
// gateway result onto the Success / RestrictedMode / Failure taxonomy.
type Coordinator struct {
	client  ports.PredictionClient
	phrases []string
	logger  *slog.Logger
}

// New wires the coordinator; an empty phrase list falls back to the defaults.
func New(client ports.PredictionClient, phrases []string, logger *slog.Logger) *Coordinator {
	if len(phrases) == 0 {
		phrases = DefaultRestrictedPhrases
	}
	return &Coordinator{client: client, phrases: phrases, logger: logger}
}

// Send submits one delivery request. An empty recipient email fails fast
// without touching the network. No automatic retry.
func (c *Coordinator) Send(ctx context.Context, req domain.DeliveryRequest) domain.DeliveryOutcome {
	if req.RecipientEmail == "" {
		return domain.DeliveryOutcome{Status: domain.DeliveryFailure, Message: noEmailMessage}
	}

	_, err := c.client.Deliver(ctx, req)
	if err == nil {
		return domain.DeliveryOutcome{
			Status:  domain.DeliverySuccess,
			Message: fmt.Sprintf("Report successfully sent to %s with PDF attachment!", req.RecipientEmail),
		}
	}

	var serverErr *gateway.ServerError
	if errors.As(err, &serverErr) {
		if c.isRestricted(serverErr.Detail) {
			c.debug("delivery restricted by backend", "detail", serverErr.Detail)
			return domain.DeliveryOutcome{Status: domain.DeliveryRestricted, Message: restrictedMessage}
		}
		message := serverErr.Detail
		if message == "" {
			message = genericFailure
		}
		return domain.DeliveryOutcome{Status: domain.DeliveryFailure, Message: message}
	}

	c.debug("delivery transport failure", "error", err)
	return domain.DeliveryOutcome{Status: domain.DeliveryFailure, Message: genericFailure}
}

func (c *Coordinator) isRestricted(detail string) bool {
	lowered := strings.ToLower(detail)
	for _, phrase := range c.phrases {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

func (c *Coordinator) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
