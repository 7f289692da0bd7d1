package ws

import (
	"encoding/json"

	"go.uber.org/zap"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
)

// Hub maintains the set of connected listeners and fans live snapshots out
// to them. Broadcasts never block: a hub without listeners drops the sample.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	logger := common.GetLoggerWith(common.LoggerNameWsHub)

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logger.Info("Listener connected", zap.Int("listeners", len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logger.Info("Listener disconnected", zap.Int("listeners", len(h.clients)))
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// liveSample mirrors the broker feed's live emission shape: raw values plus
// a wall-clock display timestamp.
type liveSample struct {
	CO2         float64 `json:"co2"`
	Temperature float64 `json:"temp"`
	Humidity    float64 `json:"humidity"`
	Timestamp   string  `json:"timestamp"`
}

// BroadcastSnapshot pushes one live sample to every listener. Independent of
// whether the sample was admitted for persistence.
func (h *Hub) BroadcastSnapshot(snap *models.Snapshot) {
	payload, err := json.Marshal(liveSample{
		CO2:         snap.CO2,
		Temperature: snap.Temperature,
		Humidity:    snap.Humidity,
		Timestamp:   snap.CapturedAt.Local().Format("15:04:05"),
	})
	if err != nil {
		return
	}

	select {
	case h.broadcast <- payload:
	default:
	}
}
