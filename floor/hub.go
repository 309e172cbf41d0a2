// Package floor keeps the websocket connections of staff screens watching the
// dining room and pushes table / reservation changes to them.
package floor

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

// Event types
const (
	EventTableCreate       = "table_create"
	EventTableUpdate       = "table_update"
	EventReservationCreate = "reservation_create"
	EventReservationUpdate = "reservation_update"
)

// writeWait bounds a single write so a stalled screen cannot hold up the others.
const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client serialises writes to one connection; gorilla allows a single writer.
type client struct {
	conn *websocket.Conn
	role string
	mu   sync.Mutex
}

// Hub menampung semua client (host, manager, admin) yang sedang membuka layar floor
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]*client),
}

// RegisterClient -> menambahkan connection ke set dengan role
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = &client{conn: conn, role: role}
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	delete(hub.clients, conn)
	hub.mutex.Unlock()
	conn.Close()
}

// ClientCount -> jumlah layar yang sedang terhubung
func ClientCount() int {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	return len(hub.clients)
}

// BroadcastMessage -> kirim event ke semua layar floor
func BroadcastMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling floor message: %v", err)
		return
	}

	hub.mutex.Lock()
	targets := make([]*client, 0, len(hub.clients))
	for _, c := range hub.clients {
		targets = append(targets, c)
	}
	hub.mutex.Unlock()

	for _, c := range targets {
		if err := c.write(data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to %s client, dropping it: %v", msg.Event, c.role, err)
			UnregisterClient(c.conn)
		}
	}
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
