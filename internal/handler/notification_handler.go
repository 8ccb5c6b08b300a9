package handler

import (
	"secure-docchat-be/internal/pkg/logger"
	"secure-docchat-be/internal/service"
	internalWS "secure-docchat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// NotificationHandler exposes the push-only notification stream. Index
// progress and completion events reach every connected client; there is
// no inbox to page through or mark read.
type NotificationHandler struct {
	service *service.NotificationService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewNotificationHandler(service *service.NotificationService, hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		hub:     hub,
		logger:  log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	// Clients may pin their chat session id so log lines correlate;
	// without one the connection gets a throwaway id.
	clientID := uuid.New()
	if sessionStr := c.Query("session_id"); sessionStr != "" {
		if parsed, err := uuid.Parse(sessionStr); err == nil {
			clientID = parsed
		}
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("NotificationHandler", "Starting WebSocket session", map[string]interface{}{"client_id": clientID})
			internalWS.ServeWs(h.hub, conn, clientID)
			h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"client_id": clientID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the notification routes.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	n := router.Group("/notification/v1")
	n.Get("/ws", h.ServeWs)
}
