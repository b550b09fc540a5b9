package live

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kaireichart/flight-visualizer/playback"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message is one update sent to a browser. Series carry the samples from
// Start through Index inclusive; with Reset set the client drops what it has.
type Message struct {
	Type        string    `json:"type"`
	DatasetID   string    `json:"dataset_id"`
	Index       int       `json:"index"`
	Total       int       `json:"total"`
	Start       int       `json:"start"`
	Reset       bool      `json:"reset"`
	TimeS       []int     `json:"time_s"`
	AltRawM     []float64 `json:"alt_raw_m"`
	AltCleanM   []float64 `json:"alt_clean_m"`
	VelCleanMPS []float64 `json:"vel_clean_mps"`
	Phase       string    `json:"phase,omitempty"`
}

// Hub is a playback sink that streams frames to websocket clients. Render
// never blocks: each client has its own writer which always sends the
// newest frame, so a slow client skips frames instead of stalling playback.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	latest  playback.Frame
	hasData bool
}

type client struct {
	conn   *websocket.Conn
	notify chan struct{}
	done   chan struct{}
	once   sync.Once

	// owned by the writer goroutine
	dataset string
	sent    int
}

// NewHub creates a hub without clients
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Render implements playback.Sink
func (h *Hub) Render(frame playback.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = frame
	h.hasData = true
	for c := range h.clients {
		c.wake()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

func (h *Hub) snapshot() (playback.Frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.hasData
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	if h.hasData {
		c.wake()
	}
	h.mu.Unlock()

	log.Printf("Live client connected (%d connected)", count)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	c.close()
	if ok {
		log.Printf("Live client disconnected (%d connected)", count)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the request and streams frames until the client leaves
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "Not a websocket request", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}

	c := &client{
		conn:   conn,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		sent:   -1,
	}
	h.register(c)

	go h.writePump(c)
	go h.readPump(c)
}

// readPump only watches for disconnects; clients never send anything useful
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Websocket error: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.unregister(c)
	}()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.notify:
			frame, ok := h.snapshot()
			if !ok {
				continue
			}
			msg, changed := Delta(frame, c.dataset, c.sent)
			if !changed {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("Failed to send frame: %v", err)
				return
			}
			c.dataset = frame.DatasetID
			c.sent = frame.Index
		}
	}
}

// Delta builds the message that brings a client which has seen dataset up to
// sample sent in line with frame. It reports false when there is nothing new.
func Delta(frame playback.Frame, dataset string, sent int) (Message, bool) {
	msg := Message{
		Type:      "frame",
		DatasetID: frame.DatasetID,
		Index:     frame.Index,
		Total:     frame.Total,
		Phase:     frame.Phase,
	}

	switch {
	case frame.DatasetID != dataset || sent < 0 || frame.Index < sent:
		// New dataset or playback rewound: send everything
		msg.Reset = true
		msg.Start = 0
	case frame.Index == sent:
		return msg, false
	default:
		msg.Start = sent + 1
	}

	end := frame.Index + 1
	if end > len(frame.TimeS) {
		end = len(frame.TimeS)
	}
	if msg.Start > end {
		msg.Start = end
	}
	msg.TimeS = frame.TimeS[msg.Start:end]
	msg.AltRawM = frame.AltRawM[msg.Start:end]
	msg.AltCleanM = frame.AltCleanM[msg.Start:end]
	msg.VelCleanMPS = frame.VelCleanMPS[msg.Start:end]
	return msg, true
}

func (c *client) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
