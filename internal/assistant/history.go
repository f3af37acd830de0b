package assistant

import (
	"sync"
	"time"
)

const defaultHistorySize = 50

type Message struct {
	Role string    `json:"role"` // user | assistant
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// History keeps a bounded per-user transcript of assistant
// conversations in memory. Oldest messages fall off when a user's
// transcript exceeds the limit.
type History struct {
	mu    sync.Mutex
	users map[string][]Message
	size  int
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = defaultHistorySize
	}
	return &History{users: make(map[string][]Message), size: size}
}

func (h *History) Append(userID string, msg Message) {
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	msgs := append(h.users[userID], msg)
	if len(msgs) > h.size {
		msgs = msgs[len(msgs)-h.size:]
	}
	h.users[userID] = msgs
}

func (h *History) For(userID string) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Message(nil), h.users[userID]...)
}

func (h *History) Clear(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.users, userID)
}
