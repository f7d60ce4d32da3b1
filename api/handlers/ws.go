package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler - websocket для уведомлений о дуэлях
func (h *Handler) WSHandler(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	// приветствие до регистрации: после Add в соединение пишет только менеджер
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"connected","message":"WebSocket connected"}`)); err != nil {
		log.Println("WebSocket write error:", err)
		return
	}

	h.ws.Add(userID, conn)
	defer h.ws.Remove(userID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Println("WebSocket read error:", err)
			break
		}
	}
}
