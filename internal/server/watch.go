package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/pipeline"
)

// runHub fans pipeline progress events out to websocket watchers. A run is
// opened before the pipeline starts so watchers can attach mid-flight and
// finished to release them.
type runHub struct {
	mu   sync.RWMutex
	runs map[string]*runState
}

type runState struct {
	subscribers map[chan pipeline.Event]struct{}
	done        bool
}

func newRunHub() *runHub {
	return &runHub{runs: make(map[string]*runState)}
}

func (h *runHub) open(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.runs[id]; !ok {
		h.runs[id] = &runState{subscribers: make(map[chan pipeline.Event]struct{})}
	}
}

func (h *runHub) publish(id string, ev pipeline.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	state, ok := h.runs[id]
	if !ok {
		return
	}
	for ch := range state.subscribers {
		select {
		case ch <- ev:
		default: // slow watcher, drop the event rather than stall the run
		}
	}
}

func (h *runHub) finish(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.runs[id]
	if !ok {
		return
	}
	state.done = true
	for ch := range state.subscribers {
		close(ch)
	}
	// Reset so a watcher's late unsubscribe sees no membership and never
	// double-closes; the run itself is forgotten to keep the hub bounded.
	state.subscribers = make(map[chan pipeline.Event]struct{})
	delete(h.runs, id)
}

// subscribe returns a channel of events plus an unsubscribe func. ok is
// false when the run is unknown or already finished.
func (h *runHub) subscribe(id string) (<-chan pipeline.Event, func(), bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.runs[id]
	if !ok || state.done {
		return nil, nil, false
	}
	ch := make(chan pipeline.Event, 16)
	state.subscribers[ch] = struct{}{}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, live := state.subscribers[ch]; live {
			delete(state.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel, true
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWatch streams progress events for a run as JSON websocket
// messages; the socket closes when the run completes.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["run"]
	events, cancel, ok := s.runs.subscribe(runID)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run complete"))
}
