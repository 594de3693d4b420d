package handlers

import (
	"context"
	"time"

	"github.com/anjiri1684/membership_network/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const wsAuthTimeout = 10 * time.Second

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// ServeWs authenticates the socket with its first message, then keeps it
// registered on the hub until the client goes away.
func (h *Handler) ServeWs(c *websocketcontrib.Conn) {
	_ = c.SetReadDeadline(time.Now().Add(wsAuthTimeout))

	var authMsg wsAuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		h.Logger.Warn("websocket auth failed: invalid or missing auth message", "error", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		_ = c.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsAuthTimeout)
	user, _, err := h.Authenticator.ResolveToken(ctx, authMsg.Token)
	cancel()
	if err != nil {
		h.Logger.Warn("websocket auth failed: invalid token", "error", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		_ = c.Close()
		return
	}
	_ = c.SetReadDeadline(time.Time{})

	// Acknowledge before registering; after that only the hub writes.
	_ = c.WriteJSON(fiber.Map{"type": "auth.ok"})
	client := &websocket.Client{UserID: user.ID, Conn: c}
	h.Hub.Register(client)
	h.Logger.Info("websocket client authenticated", "user_id", user.ID)

	defer func() {
		h.Hub.Unregister(client)
		_ = c.Close()
	}()

	// The socket is push-only; reads just detect disconnects.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				h.Logger.Debug("websocket closed", "user_id", user.ID)
			} else {
				h.Logger.Warn("websocket read error", "user_id", user.ID, "error", err)
			}
			return
		}
	}
}
