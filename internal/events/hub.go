// Package events fans crawl results out to live observers.
package events

import (
	"sync"

	"github.com/alvmarrod/lead-weaver/internal/storage"
)

// Event types delivered to observers
const (
	TypeLead  = "new_lead"
	TypeError = "error"
	TypeLog   = "log"
)

// Event is a single live update
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// LeadData is the payload of a new_lead event
type LeadData struct {
	Email       string `json:"email"`
	CompanyName string `json:"company_name"`
	URL         string `json:"url"`
	User        string `json:"user"`
}

// ErrorData is the payload of an error event
type ErrorData struct {
	URL          string `json:"url"`
	ErrorMessage string `json:"error_message"`
}

// LogData is the payload of a log event
type LogData struct {
	Message string `json:"message"`
}

// LeadEvent builds a new_lead event
func LeadEvent(lead storage.Lead) Event {
	return Event{Type: TypeLead, Data: LeadData{
		Email:       lead.Email,
		CompanyName: lead.CompanyName,
		URL:         lead.URL,
		User:        lead.User,
	}}
}

// ErrorEvent builds an error event
func ErrorEvent(crawlErr storage.CrawlError) Event {
	return Event{Type: TypeError, Data: ErrorData{URL: crawlErr.URL, ErrorMessage: crawlErr.Message}}
}

// LogEvent builds a log event
func LogEvent(message string) Event {
	return Event{Type: TypeLog, Data: LogData{Message: message}}
}

// Hub broadcasts events to every subscriber. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	buffer int
	closed bool
}

// NewHub creates a hub giving each subscriber a buffer of the given size
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[int]chan Event),
		buffer: buffer,
	}
}

// Subscribe registers a new observer. The returned cancel func unsubscribes
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
}

// Publish delivers ev to every subscriber with room for it.
// It returns the number of subscribers that missed the event.
func (h *Hub) Publish(ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	missed := 0
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			missed++
		}
	}
	return missed
}

// Subscribers returns the current observer count
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
