package app

import (
	"context"
	"strings"

	"agri_market_service/internal/chat/domain"
	"agri_market_service/internal/chat/repository"
)

// Subscriber is the consuming side of the backplane.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error
	PSubscribe(ctx context.Context, pattern string, handler func(channel string, resp domain.WSResponse)) error
}

// BackplaneRelay feeds backplane envelopes into the local hub. Every node,
// including the one that published, delivers through its relay, so there is
// exactly one delivery path to a session.
type BackplaneRelay struct {
	hub *Hub
	sub Subscriber
}

// NewBackplaneRelay create BackplaneRelay
func NewBackplaneRelay(hub *Hub, sub Subscriber) *BackplaneRelay {
	return &BackplaneRelay{hub: hub, sub: sub}
}

// Start subscribes the room pattern and the broadcast channel. Runs until
// ctx is cancelled.
func (r *BackplaneRelay) Start(ctx context.Context) error {
	err := r.sub.PSubscribe(ctx, repository.RoomChannelPrefix+"*", func(channel string, resp domain.WSResponse) {
		roomID := strings.TrimPrefix(channel, repository.RoomChannelPrefix)
		r.hub.BroadcastRoom(roomID, resp)
	})
	if err != nil {
		return err
	}

	return r.sub.Subscribe(ctx, repository.BroadcastChannel, func(resp domain.WSResponse) {
		// Envelopes addressed to one member route to their sessions only,
		// everything else goes to every local session.
		if recipient, ok := resp.Payload["recipient_id"].(string); ok && recipient != "" {
			r.hub.SendToMember(recipient, resp)
			return
		}
		r.hub.BroadcastAll(resp)
	})
}
