package notifier

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fr0stylo/guildwatch/internal/app/ports"
)

type deliveryMetrics struct {
	deliveries metric.Int64Counter
}

func newDeliveryMetrics() deliveryMetrics {
	meter := otel.Meter("github.com/fr0stylo/guildwatch/internal/notifier")
	deliveries, _ := meter.Int64Counter("guildwatch.notifier.deliveries",
		metric.WithDescription("Direct message delivery attempts by outcome"),
	)
	return deliveryMetrics{deliveries: deliveries}
}

func (m deliveryMetrics) record(ctx context.Context, outcome string) {
	if m.deliveries == nil {
		return
	}
	m.deliveries.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Notifier fans a message out to recipients, one independent attempt each.
type Notifier struct {
	sender  ports.MessageSender
	log     *slog.Logger
	metrics deliveryMetrics
}

// New creates a notifier that delivers through sender.
func New(sender ports.MessageSender, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{sender: sender, log: log, metrics: newDeliveryMetrics()}
}

// Notify attempts delivery to every recipient and returns how many succeeded.
// A failed recipient is logged and does not stop the remaining attempts.
func (n *Notifier) Notify(ctx context.Context, recipients []string, message string) int {
	delivered := 0
	for _, recipient := range recipients {
		if err := n.sender.SendDirect(ctx, recipient, message); err != nil {
			n.metrics.record(ctx, "failed")
			n.log.ErrorContext(ctx, "Failed to deliver notification", "recipient", recipient, "error", err)
			continue
		}
		n.metrics.record(ctx, "delivered")
		delivered++
	}
	if delivered < len(recipients) {
		n.log.WarnContext(ctx, "Notification partially delivered", "delivered", delivered, "recipients", len(recipients))
	}
	return delivered
}
