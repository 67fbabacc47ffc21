package ws

import (
	"encoding/json"
	"log"
	"sync"
)

type message struct {
	topic string
	data  []byte
}

// Hub fans messages out to the clients subscribed to a topic.
type Hub struct {
	topics     map[string]map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		broadcast:  make(chan message, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			subs, ok := h.topics[client.topic]
			if !ok {
				subs = make(map[*Client]bool)
				h.topics[client.topic] = subs
			}
			subs[client] = true
			total := len(subs)
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Printf("ws connected topic=%s clients=%d", client.topic, total)
			}

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.remove(client)

		case msg := <-h.broadcast:
			h.mutex.RLock()
			snapshot := make([]*Client, 0, len(h.topics[msg.topic]))
			for c := range h.topics[msg.topic] {
				snapshot = append(snapshot, c)
			}
			h.mutex.RUnlock()

			for _, client := range snapshot {
				select {
				case client.send <- msg.data:
				default:
					h.remove(client)
				}
			}

			if h.logger != nil && len(snapshot) > 0 {
				h.logger.Printf("ws broadcast topic=%s clients=%d", msg.topic, len(snapshot))
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	subs, ok := h.topics[client.topic]
	if !ok {
		return
	}
	if _, ok := subs[client]; !ok {
		return
	}
	delete(subs, client)
	close(client.send)
	if len(subs) == 0 {
		delete(h.topics, client.topic)
	}
	if h.logger != nil {
		h.logger.Printf("ws disconnected topic=%s clients=%d", client.topic, len(subs))
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for topic, subs := range h.topics {
		for c := range subs {
			close(c.send)
		}
		delete(h.topics, topic)
	}
}

func (h *Hub) Stop() {
	if h == nil {
		return
	}
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

func (h *Hub) Broadcast(topic string, data []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- message{topic: topic, data: data}:
	default:
		if h.logger != nil {
			h.logger.Printf("ws broadcast dropped topic=%s reason=buffer_full", topic)
		}
	}
}

// Publish marshals event and broadcasts it on topic.
// Publish is a no-op for topics nobody is subscribed to.
func (h *Hub) Publish(topic string, event any) {
	if h == nil || h.ClientCount(topic) == 0 {
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("ws publish topic=%s status=error err=%v", topic, err)
		}
		return
	}
	h.Broadcast(topic, b)
}

func (h *Hub) ClientCount(topic string) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.topics[topic])
}
