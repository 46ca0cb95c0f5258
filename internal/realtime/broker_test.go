package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw []byte) (string, Progress) {
	t.Helper()
	var msg struct {
		Type    string   `json:"type"`
		Payload Progress `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg.Type, msg.Payload
}

func TestReporter(t *testing.T) {
	b := NewBroker()
	ch := b.AddClient("tab-1")
	defer b.RemoveClient("tab-1", ch)

	report := b.Reporter("tab-1", "records")
	report(1, 2)
	report(2, 2)

	typ, p := decode(t, <-ch)
	assert.Equal(t, TypeProgress, typ)
	assert.Equal(t, Progress{Task: "records", Done: 1, Total: 2}, p)

	typ, _ = decode(t, <-ch)
	assert.Equal(t, TypeProgress, typ)
	typ, p = decode(t, <-ch)
	assert.Equal(t, TypeDone, typ)
	assert.Equal(t, 2, p.Done)
}

func TestNotifyUnknownClient(t *testing.T) {
	b := NewBroker()
	b.Notify("nobody", Message{Type: TypeProgress})
	b.Notify("", Message{Type: TypeProgress})
}

func TestNotifyDropsWhenFull(t *testing.T) {
	b := NewBroker()
	ch := b.AddClient("slow")
	for i := 0; i < cap(ch)+5; i++ {
		b.Notify("slow", Message{Type: TypeProgress, Payload: Progress{Done: i}})
	}
	assert.Len(t, ch, cap(ch))
}

func TestReplacedClient(t *testing.T) {
	b := NewBroker()
	first := b.AddClient("tab")
	second := b.AddClient("tab")

	_, open := <-first
	assert.False(t, open, "first connection is closed")

	// The stale connection's cleanup leaves the new one alone.
	b.RemoveClient("tab", first)
	b.Notify("tab", Message{Type: TypeProgress})
	assert.Len(t, second, 1)

	b.RemoveClient("tab", second)
	_, open = <-second
	assert.True(t, open, "buffered message is still delivered")
	_, open = <-second
	assert.False(t, open)
}
