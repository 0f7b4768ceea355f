package status

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// eventHub fans out frames to every connected /events subscriber.
// Unlike the teacher's WSTransport, there is no subscribe/topic
// machinery: every connected socket gets every frame, and the
// direction is inverted — the engine is the sole publisher, browsers
// are silent listeners.
type eventHub struct {
	mu          sync.Mutex
	subscribers map[*websocket.Conn]chan []byte
}

func newEventHub() *eventHub {
	return &eventHub{subscribers: make(map[*websocket.Conn]chan []byte)}
}

func (h *eventHub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("talkiedispatch: status: websocket upgrade failed", "error", err)
		return
	}

	out := make(chan []byte, 32)
	h.mu.Lock()
	h.subscribers[conn] = out
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.subscribers, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for frame := range out {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}

// publish delivers frame to every subscriber on a non-blocking,
// best-effort basis: a subscriber whose buffered channel is full is
// dropped with a logged warning rather than stalling the caller,
// the same backpressure rule C2/C4 follow for the wire protocol.
func (h *eventHub) publish(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, out := range h.subscribers {
		select {
		case out <- frame:
		default:
			slog.Warn("talkiedispatch: status: dropping slow event subscriber")
			delete(h.subscribers, conn)
			close(out)
		}
	}
}

func (h *eventHub) publishJSON(v any) {
	frame, err := json.Marshal(v)
	if err != nil {
		slog.Warn("talkiedispatch: status: event encode failure", "error", err)
		return
	}
	h.publish(frame)
}
