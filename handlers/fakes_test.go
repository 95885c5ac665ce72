package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"betweenchat/database"
	"betweenchat/models"
	"betweenchat/realtime"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// newRequestContext builds a gin context carrying an authenticated user
// and a JSON body, the way requests arrive past the auth middleware.
func newRequestContext(t *testing.T, userID string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set("user_id", userID)
	return c, w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Code string         `json:"code"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "0000", envelope.Code)
	return envelope.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Code, envelope.Message
}

// --- profile store ---

type fakeProfileStore struct {
	profiles map[string]*models.Profile
}

func newFakeProfileStore(profiles ...*models.Profile) *fakeProfileStore {
	s := &fakeProfileStore{profiles: make(map[string]*models.Profile)}
	for _, p := range profiles {
		s.profiles[p.UID] = p
	}
	return s
}

func (s *fakeProfileStore) GetByID(_ context.Context, uid string) (*models.Profile, error) {
	if p, ok := s.profiles[uid]; ok {
		return p, nil
	}
	return nil, database.ErrNotFound
}

func (s *fakeProfileStore) GetByUsername(_ context.Context, username string) (*models.Profile, error) {
	for _, p := range s.profiles {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeProfileStore) SearchOne(_ context.Context, query string) (*models.Profile, error) {
	for _, p := range s.profiles {
		if p.Nickname == query || p.Username == query {
			return p, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeProfileStore) Create(_ context.Context, p *models.Profile) error {
	s.profiles[p.UID] = p
	return nil
}

func (s *fakeProfileStore) UpdateNickname(_ context.Context, uid, nickname string) error {
	p, ok := s.profiles[uid]
	if !ok {
		return database.ErrNotFound
	}
	p.Nickname = nickname
	return nil
}

func (s *fakeProfileStore) ListByIDs(_ context.Context, uids []string) ([]models.Profile, error) {
	var out []models.Profile
	for _, uid := range uids {
		if p, ok := s.profiles[uid]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

// --- friendship store ---

type fakeFriendshipStore struct {
	rows map[string]*models.Friendship
}

func newFakeFriendshipStore(rows ...*models.Friendship) *fakeFriendshipStore {
	s := &fakeFriendshipStore{rows: make(map[string]*models.Friendship)}
	for _, f := range rows {
		s.rows[f.ID] = f
	}
	return s
}

func (s *fakeFriendshipStore) GetByID(_ context.Context, id string) (*models.Friendship, error) {
	if f, ok := s.rows[id]; ok {
		return f, nil
	}
	return nil, database.ErrNotFound
}

func (s *fakeFriendshipStore) GetByPair(_ context.Context, a, b string) (*models.Friendship, error) {
	for _, f := range s.rows {
		if (f.SenderID == a && f.ReceiverID == b) || (f.SenderID == b && f.ReceiverID == a) {
			return f, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeFriendshipStore) UpsertPending(ctx context.Context, f *models.Friendship) error {
	if existing, err := s.GetByPair(ctx, f.SenderID, f.ReceiverID); err == nil {
		existing.SenderID = f.SenderID
		existing.ReceiverID = f.ReceiverID
		existing.Status = models.FriendshipPending
		existing.UpdatedAt = f.UpdatedAt
		return nil
	}
	clone := *f
	s.rows[f.ID] = &clone
	return nil
}

func (s *fakeFriendshipStore) AcceptPending(_ context.Context, id string) (bool, error) {
	f, ok := s.rows[id]
	if !ok || f.Status != models.FriendshipPending {
		return false, nil
	}
	f.Status = models.FriendshipFriend
	return true, nil
}

func (s *fakeFriendshipStore) Delete(_ context.Context, id string) error {
	delete(s.rows, id)
	return nil
}

func (s *fakeFriendshipStore) ListFriends(_ context.Context, uid string) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, f := range s.rows {
		if f.Status == models.FriendshipFriend && (f.SenderID == uid || f.ReceiverID == uid) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *fakeFriendshipStore) ListPendingReceived(_ context.Context, uid string) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, f := range s.rows {
		if f.Status == models.FriendshipPending && f.ReceiverID == uid {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- channel store ---

type fakeChannelStore struct {
	channels  map[string]*models.Channel
	members   map[string][]string
	createErr error
}

func newFakeChannelStore() *fakeChannelStore {
	return &fakeChannelStore{
		channels: make(map[string]*models.Channel),
		members:  make(map[string][]string),
	}
}

func (s *fakeChannelStore) addDirect(channelID string, memberIDs ...string) {
	s.channels[channelID] = &models.Channel{ID: channelID, ChannelType: models.ChannelDirect, CreatedAt: testNow}
	s.members[channelID] = memberIDs
}

func (s *fakeChannelStore) CreateDirect(_ context.Context, channelID string, memberIDs []string) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.addDirect(channelID, memberIDs...)
	return nil
}

func (s *fakeChannelStore) GetByID(_ context.Context, channelID string) (*models.Channel, error) {
	if ch, ok := s.channels[channelID]; ok {
		return ch, nil
	}
	return nil, database.ErrNotFound
}

func (s *fakeChannelStore) IsMember(_ context.Context, channelID, uid string) (bool, error) {
	for _, m := range s.members[channelID] {
		if m == uid {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeChannelStore) MemberIDs(_ context.Context, channelID string) ([]string, error) {
	return s.members[channelID], nil
}

func (s *fakeChannelStore) ListForUser(_ context.Context, uid string) ([]models.Channel, error) {
	var out []models.Channel
	for id, ch := range s.channels {
		for _, m := range s.members[id] {
			if m == uid {
				out = append(out, *ch)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- message store ---

type fakeMessageStore struct {
	pendings         map[string]*models.PendingMessage
	messages         []models.ChatMessage
	nextID           int64
	deletePendingErr error
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{pendings: make(map[string]*models.PendingMessage), nextID: 1}
}

func (s *fakeMessageStore) addMessage(channelID, senderID, content string, at time.Time) int64 {
	id := s.nextID
	s.nextID++
	s.messages = append(s.messages, models.ChatMessage{
		ID: id, ChannelID: channelID, SenderID: senderID, Content: content, CreatedAt: at,
	})
	return id
}

func (s *fakeMessageStore) CreatePending(_ context.Context, p *models.PendingMessage) error {
	clone := *p
	s.pendings[p.ID] = &clone
	return nil
}

func (s *fakeMessageStore) GetPending(_ context.Context, id string) (*models.PendingMessage, error) {
	if p, ok := s.pendings[id]; ok {
		return p, nil
	}
	return nil, database.ErrNotFound
}

func (s *fakeMessageStore) DeletePending(_ context.Context, id string) error {
	if s.deletePendingErr != nil {
		return s.deletePendingErr
	}
	delete(s.pendings, id)
	return nil
}

func (s *fakeMessageStore) Insert(_ context.Context, m *models.ChatMessage) (int64, error) {
	return s.addMessage(m.ChannelID, m.SenderID, m.Content, m.CreatedAt), nil
}

func (s *fakeMessageStore) ListPage(_ context.Context, channelID string, beforeID int64, limit int) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.ChannelID != channelID {
			continue
		}
		if beforeID > 0 && m.ID >= beforeID {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeMessageStore) LastByChannels(_ context.Context, channelIDs []string) (map[string]models.LastMessage, error) {
	out := make(map[string]models.LastMessage)
	for _, id := range channelIDs {
		for i := len(s.messages) - 1; i >= 0; i-- {
			m := s.messages[i]
			if m.ChannelID == id {
				out[id] = models.LastMessage{ID: m.ID, UID: m.SenderID, MessageContent: m.Content, CreatedAt: m.CreatedAt}
				break
			}
		}
	}
	return out, nil
}

func (s *fakeMessageStore) IDsExcludingSender(_ context.Context, channelID, uid string) ([]int64, error) {
	var out []int64
	for _, m := range s.messages {
		if m.ChannelID == channelID && m.SenderID != uid {
			out = append(out, m.ID)
		}
	}
	return out, nil
}

// --- read store ---

type fakeReadStore struct {
	marks map[int64]map[string]bool
}

func newFakeReadStore() *fakeReadStore {
	return &fakeReadStore{marks: make(map[int64]map[string]bool)}
}

func (s *fakeReadStore) InsertMarks(_ context.Context, uid string, messageIDs []int64, _ time.Time) (int, error) {
	created := 0
	for _, id := range messageIDs {
		if s.marks[id] == nil {
			s.marks[id] = make(map[string]bool)
		}
		if !s.marks[id][uid] {
			s.marks[id][uid] = true
			created++
		}
	}
	return created, nil
}

func (s *fakeReadStore) ExistingIDs(_ context.Context, uid string, messageIDs []int64) ([]int64, error) {
	var out []int64
	for _, id := range messageIDs {
		if s.marks[id][uid] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *fakeReadStore) CountByMessage(_ context.Context, messageIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int)
	for _, id := range messageIDs {
		if n := len(s.marks[id]); n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

// --- question store ---

type fakeQuestionStore struct {
	questions []models.Question
}

func (s *fakeQuestionStore) ListCandidates(_ context.Context, _ int) ([]models.Question, error) {
	return s.questions, nil
}

// --- publisher ---

type publishedEvent struct {
	Topic string
	Event realtime.Event
}

type recordingPublisher struct {
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event realtime.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Event: event})
	return nil
}

func (p *recordingPublisher) byEvent(name string) []publishedEvent {
	var out []publishedEvent
	for _, e := range p.events {
		if e.Event.Event == name {
			out = append(out, e)
		}
	}
	return out
}
