package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/mmse-service/internal/events"
)

// EventConfig holds configuration for event publishing
type EventConfig struct {
	Enabled           bool
	Publisher         string // kafka, or mock to drop events
	KafkaBrokers      string
	NotificationTopic string
}

// GetKafkaBrokers returns the comma separated broker list, skipping blanks.
func (c *EventConfig) GetKafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// CreateEventPublisher picks the publisher named by the configuration. Any
// setting other than an enabled kafka publisher yields the in-memory one.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, dropping events")
		return events.NewDiscardEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.NotificationTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.NotificationTopic,
			Logger:       logger,
		})
	case "mock":
		logger.Info("Using discarding event publisher")
		return events.NewDiscardEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, dropping events", "publisher", c.Publisher)
		return events.NewDiscardEventPublisher(logger), nil
	}
}
