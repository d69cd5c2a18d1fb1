package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// InitialSnapshot produces the first message sent to a new listener.
type InitialSnapshot func() ([]byte, error)

// UpgradeStatsWS upgrades the connection to the statistics channel.
// Listeners are anonymous; the server pushes a snapshot on connect and
// after every applied payment.
func UpgradeStatsWS(hub *Hub, initial InitialSnapshot) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		client := &Client{Send: make(chan []byte, 16)}
		hub.Register(client)
		defer client.Close()
		if initial != nil {
			if data, err := initial(); err == nil {
				client.Send <- data
			}
		}
		go writePump(client, conn)
		readPump(conn)
	}
}

// writePump copies messages from client.Send to the connection.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
