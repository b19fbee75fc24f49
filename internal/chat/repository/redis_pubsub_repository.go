package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"agri_market_service/internal/chat/domain"
	"agri_market_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Backplane channels. Room channels fan a message out to every node holding
// a session joined to that room, the broadcast channel carries notices for
// all connected members.
const (
	// RoomChannelPrefix per-room channel, the encoded room key is appended
	RoomChannelPrefix = "chat:room:"
	// BroadcastChannel global notices across nodes
	BroadcastChannel = "chat:broadcast"
)

// RoomChannel returns the backplane channel for one room.
func RoomChannel(roomID string) string {
	return RoomChannelPrefix + roomID
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish serializes message and publishes it to channel.
func (r *RedisPubSub) Publish(channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// PSubscribe listens on a channel pattern until ctx is cancelled. The
// handler receives the concrete channel each envelope arrived on, which for
// room channels carries the room id.
func (r *RedisPubSub) PSubscribe(ctx context.Context, pattern string, handler func(channel string, resp domain.WSResponse)) error {
	sub := r.client.PSubscribe(r.ctx, pattern)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var resp domain.WSResponse
				if err := json.Unmarshal([]byte(m.Payload), &resp); err != nil {
					logger.Log.Error("backplane decode err :", zap.String("err", fmt.Sprintf("failed to unmarshal payload on %s: %v", m.Channel, err)))
					continue
				}

				handler(m.Channel, resp)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , psub close", pattern))
				sub.Close()
				return
			}
		}
	}()
	return nil
}

// Subscribe listens on channel until ctx is cancelled, handing each decoded
// envelope to handler.
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	sub := r.client.Subscribe(r.ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var resp domain.WSResponse
				if err := json.Unmarshal([]byte(m.Payload), &resp); err != nil {
					logger.Log.Error("backplane decode err :", zap.String("err", fmt.Sprintf("failed to unmarshal payload on %s: %v", channel, err)))
					continue
				}

				handler(resp)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				sub.Close()
				return
			}
		}
	}()
	return nil
}
