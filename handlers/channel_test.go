package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelListWithLastMessages(t *testing.T) {
	channels := newFakeChannelStore()
	channels.addDirect("ch-1", "alice", "bob")
	channels.addDirect("ch-2", "alice", "carol")
	profiles := newFakeProfileStore(
		profileFixture("alice", "alice01", "Alice"),
		profileFixture("bob", "bob01", "Bob"),
		profileFixture("carol", "carol01", "Carol"),
	)
	messages := newFakeMessageStore()
	messages.addMessage("ch-1", "bob", "hey", testNow)
	h := NewChannelHandler(channels, profiles, messages)

	c, w := newRequestContext(t, "alice", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeData(t, w)["channels"].([]any)
	require.Len(t, entries, 2)

	byID := make(map[string]map[string]any)
	for _, e := range entries {
		entry := e.(map[string]any)
		byID[entry["id"].(string)] = entry
	}

	ch1 := byID["ch-1"]
	users := ch1["users"].([]any)
	assert.Len(t, users, 2)
	last := ch1["last_message"].(map[string]any)
	assert.Equal(t, "hey", last["message_content"])
	assert.Equal(t, "bob", last["uid"])

	// A channel with no history carries a null last_message.
	assert.Nil(t, byID["ch-2"]["last_message"])
}

func TestChannelListEmpty(t *testing.T) {
	h := NewChannelHandler(newFakeChannelStore(), newFakeProfileStore(), newFakeMessageStore())

	c, w := newRequestContext(t, "alice", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData(t, w)["channels"])
}

func TestChannelListExcludesOtherUsersChannels(t *testing.T) {
	channels := newFakeChannelStore()
	channels.addDirect("ch-1", "alice", "bob")
	channels.addDirect("ch-2", "bob", "carol")
	h := NewChannelHandler(channels, newFakeProfileStore(), newFakeMessageStore())

	c, w := newRequestContext(t, "alice", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeData(t, w)["channels"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "ch-1", entries[0].(map[string]any)["id"])
}
