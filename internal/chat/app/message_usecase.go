package app

import (
	"context"
	"time"
	"unicode/utf8"

	"agri_market_service/internal/chat/domain"
	"agri_market_service/internal/chat/repository"
	errprocess "agri_market_service/pkg/err"
	"agri_market_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxMessageBody caps a single chat message.
const maxMessageBody = 4000

// Publisher pushes envelopes onto the redis backplane. Local delivery also
// rides the backplane, every node relays its own publishes back in.
type Publisher interface {
	Publish(channel string, message interface{}) error
}

// NoticeSink forwards message notices to the notification pipeline.
// Implementations must not block message delivery on sink failures.
type NoticeSink interface {
	Notify(ctx context.Context, notice repository.MessageNotice)
}

// SendMessageUseCase persists chat messages and fans the resulting events
// out to the backplane and the notice sink.
type SendMessageUseCase struct {
	roomRepo repository.RoomRepository
	pubSub   Publisher
	notices  NoticeSink
}

// NewSendMessageUseCase init create message use case. notices may be nil
// when no notification pipeline is configured.
func NewSendMessageUseCase(
	roomRepo repository.RoomRepository,
	pub Publisher,
	notices NoticeSink,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		roomRepo: roomRepo,
		pubSub:   pub,
		notices:  notices,
	}
}

// Execute appends one message to the room identified by product and peer,
// creating the room when this is the first message. Returns the stored
// message, the canonical room id and whether the room was created by this
// call.
func (uc *SendMessageUseCase) Execute(ctx context.Context, senderID string, senderRole domain.SenderRole, productID, peerID, body string) (*domain.ChatMessage, string, bool, error) {
	if !domain.ValidSenderRole(senderRole) {
		return nil, "", false, errprocess.Validation("unknown sender role " + string(senderRole))
	}
	if body == "" {
		return nil, "", false, errprocess.Validation("message body is empty")
	}
	if len(body) > maxMessageBody {
		return nil, "", false, errprocess.Validation("message body exceeds limit")
	}

	key, err := domain.NewRoomKey(productID, []string{senderID, peerID})
	if err != nil {
		return nil, "", false, errprocess.E(errprocess.KindValidation, "invalid room key", err)
	}
	roomID := key.Encode()

	msg := domain.ChatMessage{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		SenderRole: senderRole,
		Body:       body,
		Timestamp:  time.Now().UnixMilli(),
		ReadBy:     []string{senderID},
	}

	room, created, err := uc.roomRepo.AppendMessage(ctx, key, msg)
	if err != nil {
		return nil, "", false, errprocess.Persistence("append message failed", err)
	}

	// The stored room must still describe the product the key names.
	if room.ProductID != key.ProductID {
		return nil, "", false, errprocess.Integrity("room " + roomID + " holds product " + room.ProductID)
	}

	uc.fanOut(ctx, key, room, msg, created)

	return &msg, roomID, created, nil
}

// fanOut publishes the room event, per-recipient notices and, for fresh
// rooms, the room_created event. Fan-out failures are logged only, the
// message is already durable at this point.
func (uc *SendMessageUseCase) fanOut(ctx context.Context, key domain.RoomKey, room *domain.ChatRoom, msg domain.ChatMessage, created bool) {
	roomID := key.Encode()

	roomEvent := domain.WSResponse{
		Action:  domain.EventMessage,
		Success: true,
		Payload: map[string]interface{}{
			"room_id":     roomID,
			"message_id":  msg.ID,
			"sender_id":   msg.SenderID,
			"sender_role": string(msg.SenderRole),
			"body":        msg.Body,
			"timestamp":   msg.Timestamp,
		},
	}
	if err := uc.pubSub.Publish(repository.RoomChannel(roomID), roomEvent); err != nil {
		logger.Log.Error("room event publish failed", zap.String("room_id", roomID), zap.Error(err))
	}

	// The notice goes to every connected session, joined to the room or
	// not. Badge state on a client never depends on room membership.
	notice := domain.WSResponse{
		Action:  domain.EventNewMessageNotice,
		Success: true,
		Payload: map[string]interface{}{
			"room_id":     roomID,
			"product_id":  key.ProductID,
			"sender_id":   msg.SenderID,
			"sender_role": string(msg.SenderRole),
			"body":        msg.Body,
			"timestamp":   msg.Timestamp,
		},
	}
	if err := uc.pubSub.Publish(repository.BroadcastChannel, notice); err != nil {
		logger.Log.Error("notice publish failed", zap.String("room_id", roomID), zap.Error(err))
	}

	// The offline pipeline still gets one notice per recipient so its
	// consumers can partition per member.
	if uc.notices != nil {
		for _, participant := range room.Participants {
			if participant == msg.SenderID {
				continue
			}
			uc.notices.Notify(ctx, repository.MessageNotice{
				RoomID:      roomID,
				ProductID:   key.ProductID,
				SenderID:    msg.SenderID,
				RecipientID: participant,
				Preview:     preview(msg.Body),
				Timestamp:   msg.Timestamp,
			})
		}
	}

	if created {
		event := domain.WSResponse{
			Action:  domain.EventRoomCreated,
			Success: true,
			Payload: map[string]interface{}{
				"room_id":      roomID,
				"product_id":   key.ProductID,
				"participants": room.Participants,
			},
		}
		if err := uc.pubSub.Publish(repository.BroadcastChannel, event); err != nil {
			logger.Log.Error("room_created publish failed", zap.String("room_id", roomID), zap.Error(err))
		}
	}
}

// MarkRead records memberID as reader of the given messages in the room.
func (uc *SendMessageUseCase) MarkRead(ctx context.Context, roomID, memberID string, messageIDs []string) error {
	key, err := domain.ParseRoomKey(roomID)
	if err != nil {
		return errprocess.E(errprocess.KindValidation, "invalid room id", err)
	}
	if !key.Has(memberID) {
		return errprocess.Validation("member " + memberID + " is not a participant of " + roomID)
	}

	if _, err := uc.roomRepo.MarkRead(ctx, key, memberID, messageIDs); err != nil {
		if err == repository.ErrRoomNotFound {
			return errprocess.NotFound("room " + roomID + " not found")
		}
		return errprocess.Persistence("mark read failed", err)
	}
	return nil
}

// History pages backwards through a room's messages.
func (uc *SendMessageUseCase) History(ctx context.Context, roomID, memberID string, before int64, limit int) (*domain.MessagePage, error) {
	key, err := domain.ParseRoomKey(roomID)
	if err != nil {
		return nil, errprocess.E(errprocess.KindValidation, "invalid room id", err)
	}
	if !key.Has(memberID) {
		return nil, errprocess.Validation("member " + memberID + " is not a participant of " + roomID)
	}

	page, err := uc.roomRepo.Messages(ctx, key, before, limit)
	if err != nil {
		return nil, errprocess.Persistence("load history failed", err)
	}
	return page, nil
}

// GetCountUnreadMessages - get member all room unread counts.
func (uc *SendMessageUseCase) GetCountUnreadMessages(ctx context.Context, memberID string) ([]domain.RoomUnreadInfo, error) {
	return uc.roomRepo.CountUnreadByRoom(ctx, memberID)
}

func preview(body string) string {
	const max = 80
	if len(body) <= max {
		return body
	}
	// never cut inside a multi-byte rune
	cut := max
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}
