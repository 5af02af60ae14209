package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/montplusa/tictactoe-evolve/pkg/training"
)

const wsIdlePingInterval = 30 * time.Second

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type generationPayload struct {
	Generation     int     `json:"generation"`
	MaxGenerations int     `json:"max_generations"`
	Difficulty     string  `json:"difficulty"`
	Best           float64 `json:"best"`
	Mean           float64 `json:"mean"`
	ProbeFitness   float64 `json:"probe_fitness"`
	GlobalBest     float64 `json:"global_best"`
	GlobalBestGen  int     `json:"global_best_generation"`
	ElapsedMs      int64   `json:"elapsed_ms"`
	EtaMs          int64   `json:"eta_ms"`
	TableSize      int     `json:"table_size"`
}

type statusPayload struct {
	Active    bool   `json:"active"`
	Trained   bool   `json:"trained"`
	LastError string `json:"last_error,omitempty"`
}

func generationToPayload(s training.GenerationStats) generationPayload {
	return generationPayload{
		Generation:     s.Generation,
		MaxGenerations: s.MaxGenerations,
		Difficulty:     s.Difficulty.String(),
		Best:           s.Best,
		Mean:           s.Mean,
		ProbeFitness:   s.ProbeFitness,
		GlobalBest:     s.GlobalBest,
		GlobalBestGen:  s.GlobalBestGen,
		ElapsedMs:      s.Elapsed.Milliseconds(),
		EtaMs:          s.ETA.Milliseconds(),
		TableSize:      s.TableSize,
	}
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans training progress out to websocket clients. It implements
// training.Observer.
type Hub struct {
	mu        sync.Mutex
	clients   map[*Client]struct{}
	broadcast chan wsMessage
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan wsMessage, 64),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				client.queue(data)
			}
			h.mu.Unlock()
		}
	}
}

// Publish drops the message when the hub is backed up.
func (h *Hub) Publish(typ string, payload any) {
	select {
	case h.broadcast <- wsMessage{Type: typ, Payload: mustMarshal(payload)}:
	default:
	}
}

func (h *Hub) OnGeneration(s training.GenerationStats) {
	h.Publish("generation", generationToPayload(s))
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *Client) queue(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

func serveTrainWS(hub *Hub, snapshot statusPayload, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 16)}
	if data, err := json.Marshal(wsMessage{Type: "status", Payload: mustMarshal(snapshot)}); err == nil {
		client.queue(data)
	}
	hub.Register(client)

	go func() {
		defer conn.Close()
		_ = writeWSWithHeartbeat(conn, client.send)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Unregister(client)
			return
		}
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
