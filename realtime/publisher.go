package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Topic layout: user:{uid} carries direct notifications (invite
// accepted/declined), inbox:{uid} carries cross-cutting inbox updates
// (new invitation, channel last-message update).
func UserTopic(uid string) string  { return "user:" + uid }
func InboxTopic(uid string) string { return "inbox:" + uid }

// Event names delivered over the broadcast transport.
const (
	EventFriendInvitation = "friend_invitation"
	EventRequestAccepted  = "friend_request_accepted"
	EventRequestDeclined  = "friend_request_declined"
	EventLastMsgUpdate    = "channel_lst_msg_update"
)

type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Publisher is the fire-and-forget broadcast facility. Delivery is
// at-most-once; callers log and ignore errors.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, topic, data).Err()
}

func NewRedisClient(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
