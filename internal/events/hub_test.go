package events

import (
	"testing"

	"github.com/alvmarrod/lead-weaver/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastsToAllSubscribers(t *testing.T) {
	h := NewHub(4)

	a, cancelA := h.Subscribe()
	defer cancelA()
	b, cancelB := h.Subscribe()
	defer cancelB()
	assert.Equal(t, 2, h.Subscribers())

	missed := h.Publish(LeadEvent(storage.Lead{Email: "jane@acme.com", CompanyName: "Acme", URL: "https://acme.com/", User: "jane"}))
	assert.Equal(t, 0, missed)

	for _, ch := range []<-chan Event{a, b} {
		ev := <-ch
		assert.Equal(t, TypeLead, ev.Type)
		data, ok := ev.Data.(LeadData)
		require.True(t, ok)
		assert.Equal(t, "jane@acme.com", data.Email)
		assert.Equal(t, "Acme", data.CompanyName)
	}
}

func TestHub_SlowSubscriberMissesEvents(t *testing.T) {
	h := NewHub(1)

	ch, cancel := h.Subscribe()
	defer cancel()

	assert.Equal(t, 0, h.Publish(LogEvent("one")))
	assert.Equal(t, 1, h.Publish(LogEvent("two")))

	ev := <-ch
	assert.Equal(t, LogData{Message: "one"}, ev.Data)
}

func TestHub_CancelUnsubscribes(t *testing.T) {
	h := NewHub(1)

	ch, cancel := h.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers())
	assert.Equal(t, 0, h.Publish(ErrorEvent(storage.CrawlError{URL: "u", Message: "m"})))
}

func TestHub_Close(t *testing.T) {
	h := NewHub(1)

	ch, cancel := h.Subscribe()
	h.Close()
	h.Close()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	late, _ := h.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestErrorEvent(t *testing.T) {
	ev := ErrorEvent(storage.CrawlError{URL: "https://down.test/", Message: "Not Found"})
	assert.Equal(t, TypeError, ev.Type)
	assert.Equal(t, ErrorData{URL: "https://down.test/", ErrorMessage: "Not Found"}, ev.Data)
}
