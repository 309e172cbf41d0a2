package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-reservations/floor"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS sudah ditangani di middleware
	},
}

// FloorHandler -> endpoint WebSocket untuk layar floor (butuh AuthMiddleware)
func FloorHandler(c *gin.Context) {
	role := c.GetString("role")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("floor websocket upgrade failed: %v", err)
		return
	}

	floor.RegisterClient(ws, role)

	// Client hanya mendengarkan; loop ini mendeteksi disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	floor.UnregisterClient(ws)
}
