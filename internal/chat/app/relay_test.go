package app

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"agri_market_service/internal/chat/domain"
	"agri_market_service/internal/chat/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// loopbackBus feeds publishes straight back into the relay's
// subscriptions, standing in for redis.
type loopbackBus struct {
	mu          sync.Mutex
	roomPrefix  string
	roomHandler func(channel string, resp domain.WSResponse)
	broadcast   func(resp domain.WSResponse)
}

func (b *loopbackBus) Subscribe(_ context.Context, channel string, handler func(resp domain.WSResponse)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if channel == repository.BroadcastChannel {
		b.broadcast = handler
	}
	return nil
}

func (b *loopbackBus) PSubscribe(_ context.Context, pattern string, handler func(channel string, resp domain.WSResponse)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roomPrefix = strings.TrimSuffix(pattern, "*")
	b.roomHandler = handler
	return nil
}

func (b *loopbackBus) Publish(channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	resp, ok := message.(domain.WSResponse)
	if !ok {
		return nil
	}
	if b.roomHandler != nil && b.roomPrefix != "" && strings.HasPrefix(channel, b.roomPrefix) {
		b.roomHandler(channel, resp)
	}
	if b.broadcast != nil && channel == repository.BroadcastChannel {
		b.broadcast(resp)
	}
	return nil
}

func TestBackplaneRelay_NoticeReachesEverySession(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	bus := &loopbackBus{}
	assert.NoError(t, NewBackplaneRelay(hub, bus).Start(ctx))

	senderConn := &fakeConn{}
	hub.Register(NewSession("s-a", "buyer-1", "buyer", senderConn))

	// connected, never joined a room, not a participant of any
	watcherConn := &fakeConn{}
	hub.Register(NewSession("s-w", "buyer-77", "buyer", watcherConn))

	key, _ := domain.NewRoomKey("prod-42", []string{"buyer-1", "seller-9"})
	room := &domain.ChatRoom{
		ID:           key.Encode(),
		ProductID:    "prod-42",
		Participants: key.Participants,
	}
	mockRoomRepo := new(MockRoomRepository)
	mockRoomRepo.On("AppendMessage", mock.Anything, key, mock.Anything).Return(room, true, nil)

	uc := NewSendMessageUseCase(mockRoomRepo, bus, nil)
	_, _, created, err := uc.Execute(ctx, "buyer-1", domain.SenderBuyer, "prod-42", "seller-9", "harvest is in")
	assert.NoError(t, err)
	assert.True(t, created)

	waitFrames(t, watcherConn, 2)

	seen := map[string]int{}
	for i := 0; i < watcherConn.frameCount(); i++ {
		var resp domain.WSResponse
		assert.NoError(t, json.Unmarshal(watcherConn.frames[i], &resp))
		seen[resp.Action]++
	}
	assert.Equal(t, 1, seen[domain.EventNewMessageNotice])
	assert.Equal(t, 1, seen[domain.EventRoomCreated])
}

func TestBackplaneRelay_TargetedEnvelopeRoutesToMember(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	bus := &loopbackBus{}
	assert.NoError(t, NewBackplaneRelay(hub, bus).Start(ctx))

	target := &fakeConn{}
	other := &fakeConn{}
	hub.Register(NewSession("s-t", "seller-9", "seller", target))
	hub.Register(NewSession("s-o", "buyer-1", "buyer", other))

	assert.NoError(t, bus.Publish(repository.BroadcastChannel, domain.WSResponse{
		Action:  domain.EventNewMessageNotice,
		Success: true,
		Payload: map[string]interface{}{"recipient_id": "seller-9"},
	}))

	waitFrames(t, target, 1)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, other.frameCount())
}
