package service

import (
	"context"

	"secure-docchat-be/internal/pkg/logger"
	"secure-docchat-be/pkg/events"
	pkgNats "secure-docchat-be/pkg/nats"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Broadcast(eventType string, payload interface{})
}

// NotificationService relays bus events to connected websocket clients.
// Notifications are push-only and ephemeral: a client that is offline
// when a document finishes indexing simply polls the status endpoint.
type NotificationService struct {
	subscriber *pkgNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pkgNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	// Subscribe to all events with a durable consumer
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("NotificationService", "Processing event", map[string]interface{}{"type": event.EventType()})

	if s.delivery == nil {
		return nil
	}

	switch event.EventType() {
	case events.TypeDocumentIndexed, events.TypeDocumentIndexFailed, events.TypeIndexProgress:
		s.delivery.Broadcast(event.EventType(), event.Payload())
	case events.TypeSessionTerminated:
		// Termination is already reported inline on the chat response;
		// broadcasting it would leak one session's trouble to everyone.
	default:
		s.logger.Warn("NotificationService", "Unhandled event type", map[string]interface{}{"type": event.EventType()})
	}

	return nil
}
