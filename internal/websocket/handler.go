package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection as a watcher of conversationID and blocks
// until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, conversationID string) {
	client := &Client{Hub: hub, Conn: c, ConversationID: conversationID, Send: make(chan []byte, 64)}
	if !hub.Join(client) {
		return
	}

	go client.writePump()
	client.readPump()
}
