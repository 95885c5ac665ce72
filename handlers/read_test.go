package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"betweenchat/utils"
)

func newReadHandler(channels *fakeChannelStore, messages *fakeMessageStore, reads *fakeReadStore) *ReadHandler {
	h := NewReadHandler(channels, messages, reads)
	h.NowFunc = fixedNow
	return h
}

func TestMarkReadExplicitIDs(t *testing.T) {
	channels := newFakeChannelStore()
	channels.addDirect("ch-1", "alice", "bob")
	messages := newFakeMessageStore()
	m1 := messages.addMessage("ch-1", "alice", "one", testNow)
	m2 := messages.addMessage("ch-1", "alice", "two", testNow)
	reads := newFakeReadStore()
	h := newReadHandler(channels, messages, reads)

	c, w := newRequestContext(t, "bob", map[string]any{"channel_id": "ch-1", "message_ids": []int64{m1, m2}})
	h.MarkRead(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeData(t, w)["marked_count"])
	assert.True(t, reads.marks[m1]["bob"])
	assert.True(t, reads.marks[m2]["bob"])
}

func TestMarkReadIsIdempotent(t *testing.T) {
	channels := newFakeChannelStore()
	channels.addDirect("ch-1", "alice", "bob")
	messages := newFakeMessageStore()
	m1 := messages.addMessage("ch-1", "alice", "one", testNow)
	reads := newFakeReadStore()
	h := newReadHandler(channels, messages, reads)

	c, w := newRequestContext(t, "bob", map[string]any{"channel_id": "ch-1", "message_ids": []int64{m1}})
	h.MarkRead(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeData(t, w)["marked_count"])

	// A retry reports zero new marks.
	c, w = newRequestContext(t, "bob", map[string]any{"channel_id": "ch-1", "message_ids": []int64{m1}})
	h.MarkRead(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeData(t, w)["marked_count"])
}

func TestMarkReadCatchUpMode(t *testing.T) {
	channels := newFakeChannelStore()
	channels.addDirect("ch-1", "alice", "bob")
	messages := newFakeMessageStore()
	m1 := messages.addMessage("ch-1", "alice", "one", testNow)
	m2 := messages.addMessage("ch-1", "alice", "two", testNow)
	mine := messages.addMessage("ch-1", "bob", "mine", testNow)
	reads := newFakeReadStore()
	_, err := reads.InsertMarks(nil, "bob", []int64{m1}, testNow)
	require.NoError(t, err)
	h := newReadHandler(channels, messages, reads)

	// No message_ids: catch up on everything unread that bob didn't send.
	c, w := newRequestContext(t, "bob", map[string]any{"channel_id": "ch-1"})
	h.MarkRead(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeData(t, w)["marked_count"])
	assert.True(t, reads.marks[m2]["bob"])
	assert.False(t, reads.marks[mine]["bob"], "own messages are never marked")
}

func TestMarkReadCatchUpNothingUnread(t *testing.T) {
	channels := newFakeChannelStore()
	channels.addDirect("ch-1", "alice", "bob")
	h := newReadHandler(channels, newFakeMessageStore(), newFakeReadStore())

	c, w := newRequestContext(t, "bob", map[string]any{"channel_id": "ch-1"})
	h.MarkRead(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeData(t, w)["marked_count"])
}

func TestMarkReadRejectsAllInvalidIDs(t *testing.T) {
	channels := newFakeChannelStore()
	channels.addDirect("ch-1", "alice", "bob")
	h := newReadHandler(channels, newFakeMessageStore(), newFakeReadStore())

	c, w := newRequestContext(t, "bob", map[string]any{"channel_id": "ch-1", "message_ids": []int64{0, -5}})
	h.MarkRead(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, utils.CodeValidation, code)
}

func TestMarkReadNonMember(t *testing.T) {
	channels := newFakeChannelStore()
	channels.addDirect("ch-1", "alice", "bob")
	h := newReadHandler(channels, newFakeMessageStore(), newFakeReadStore())

	c, w := newRequestContext(t, "mallory", map[string]any{"channel_id": "ch-1", "message_ids": []int64{1}})
	h.MarkRead(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
