package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs handles websocket requests from the peer.
func ServeWs(registry *Registry, c *websocket.Conn, userID uuid.UUID) {
	client := &Client{Registry: registry, Conn: c, UserID: userID, Send: make(chan []byte, 256)}
	client.Registry.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
