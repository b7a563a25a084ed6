package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) (Scope, bool) {
	t.Helper()
	select {
	case s, ok := <-sub.C():
		return s, ok
	case <-time.After(200 * time.Millisecond):
		return Scope{}, false
	}
}

func TestScope_StringAndParse(t *testing.T) {
	tests := []struct {
		scope Scope
		text  string
	}{
		{Collection(), "products"},
		{Row(3), "products/3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.text, tt.scope.String())
		parsed, err := ParseScope(tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.scope, parsed)
	}

	for _, bad := range []string{"orders", "products/x", "products/-1", "products/0"} {
		_, err := ParseScope(bad)
		assert.Error(t, err, bad)
	}
}

func TestHub_CollectionSubscriberHearsEverything(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(Collection())
	defer sub.Close()

	hub.Notify(Row(7))
	got, ok := receive(t, sub)
	require.True(t, ok)
	assert.Equal(t, Row(7), got)

	hub.Notify(Collection())
	got, ok = receive(t, sub)
	require.True(t, ok)
	assert.Equal(t, Collection(), got)
}

func TestHub_RowSubscriberFiltersOtherRows(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(Row(1))
	defer sub.Close()

	hub.Notify(Row(2))
	_, ok := receive(t, sub)
	assert.False(t, ok, "row 1 watcher must not hear row 2")

	hub.Notify(Row(1))
	got, ok := receive(t, sub)
	require.True(t, ok)
	assert.Equal(t, Row(1), got)

	hub.Notify(Collection())
	_, ok = receive(t, sub)
	assert.True(t, ok, "collection-wide change reaches row watchers")
}

func TestHub_NotifyNeverBlocks(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(Collection())
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Notify(Collection())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on an undrained subscriber")
	}

	_, ok := receive(t, sub)
	assert.True(t, ok)
	_, ok = receive(t, sub)
	assert.False(t, ok, "pending signals coalesce into one")
}

func TestSubscription_Close(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(Collection())
	assert.Equal(t, 1, hub.Subscribers())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.Subscribers())

	hub.Notify(Collection())
	_, open := <-sub.C()
	assert.False(t, open)
}
