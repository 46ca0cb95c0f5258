package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Message types sent to clients.
const (
	TypeProgress = "progress"
	TypeDone     = "done"
)

// Message defines the shape of our real-time data.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Progress is the payload of a progress message: done of total items of
// task have been processed.
type Progress struct {
	Task  string `json:"task"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

// Broker is the central hub for managing SSE client connections.
type Broker struct {
	// Each client id gets a channel where messages are sent.
	clients map[string]chan []byte
	mu      sync.RWMutex
}

// NewBroker creates a new Broker instance.
func NewBroker() *Broker {
	return &Broker{
		clients: make(map[string]chan []byte),
	}
}

// AddClient registers a client connection. A second connection with the
// same id replaces the first, whose channel is closed.
func (b *Broker) AddClient(clientID string) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.clients[clientID]; ok {
		close(old)
	}
	ch := make(chan []byte, 16) // Buffered channel
	b.clients[clientID] = ch
	log.Printf("INFO: SSE client %q connected", clientID)
	return ch
}

// RemoveClient unregisters a client if ch is still its channel.
func (b *Broker) RemoveClient(clientID string, ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if current, ok := b.clients[clientID]; ok && current == ch {
		delete(b.clients, clientID)
		close(ch)
		log.Printf("INFO: SSE client %q disconnected", clientID)
	}
}

// Notify sends a message to a client if it is connected. It never blocks:
// a client whose buffer is full misses the message.
func (b *Broker) Notify(clientID string, message Message) {
	if clientID == "" {
		return
	}
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Printf("ERROR: could not marshal SSE message for client %q: %v", clientID, err)
		return
	}

	// The read lock is held while sending so RemoveClient cannot close the
	// channel underneath us.
	b.mu.RLock()
	defer b.mu.RUnlock()
	clientChan, ok := b.clients[clientID]
	if !ok {
		return
	}
	select {
	case clientChan <- jsonMsg:
	default:
		log.Printf("WARN: SSE channel for client %q is full. Dropping message.", clientID)
	}
}

// Reporter returns a progress callback that forwards progress of task to
// a client. It sends a done message once the last item is processed.
func (b *Broker) Reporter(clientID, task string) func(done, total int) {
	return func(done, total int) {
		b.Notify(clientID, Message{Type: TypeProgress, Payload: Progress{Task: task, Done: done, Total: total}})
		if done >= total {
			b.Notify(clientID, Message{Type: TypeDone, Payload: Progress{Task: task, Done: done, Total: total}})
		}
	}
}
