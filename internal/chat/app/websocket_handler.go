package app

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"agri_market_service/internal/chat/domain"
	errprocess "agri_market_service/pkg/err"
	"agri_market_service/pkg/logger"
	"agri_market_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatWebsocketHandler owns the websocket entry point and dispatches client
// actions onto the use cases.
type ChatWebsocketHandler struct {
	hub       *Hub
	messageUC *SendMessageUseCase
	activeUC  *ActiveChatsUseCase
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	hub *Hub,
	messageUC *SendMessageUseCase,
	activeUC *ActiveChatsUseCase,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		hub:       hub,
		messageUC: messageUC,
		activeUC:  activeUC,
	}
}

// HandleConnection is the websocket entry point. It registers a session
// with the hub, keeps the connection alive with pings and reads client
// actions until the peer goes away.
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenMember := conn.Locals(middlewares.TokenMemberID)
	memberID, ok := tokenMember.(string)
	role, _ := conn.Locals(middlewares.TokenRole).(string)
	logger.Log.Info("websocket handle memberID", zap.String("userID", memberID), zap.String("ok", strconv.FormatBool(ok)))
	if !ok || memberID == "" {
		conn.Close()
		return
	}

	session := NewSession(uuid.New().String(), memberID, role, conn)
	h.hub.Register(session)

	ticker := time.NewTicker(10 * time.Minute)

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("userID", memberID))
		h.hub.Unregister(session)
	}()

	// fiber answers close frames itself, SetCloseHandler only observes.
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed: %v", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		logger.Log.Infof("Received PONG: %v", appData)
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		logger.Log.Infof("Received PING: %v", appData)
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	go func() {
		for {
			select {
			case <-ticker.C:
				session.Ping()
				logger.Log.Infof("%s Ping sent", memberID)
			case <-session.done:
				logger.Log.Infof("Ping goroutine cancelled for member: %v", memberID)
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed: %v", err)
			} else {
				logger.Log.Errorf("websocket read error: %v", err)
			}
			return
		}
		h.execWebsocketAction(ctx, session, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, session *Session, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, session, msg)
	default:
		h.sendError(session, "unknown message type")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, session *Session, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		h.sendError(session, "malformed request")
		return
	}

	memberID := session.MemberID
	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch req.Action {

	// subscribe this session to a room's live events
	case string(domain.JoinRoom):
		roomID, err := h.resolveRoomID(req, memberID)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		if err := h.hub.Join(roomID, session); err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["room_id"] = roomID
		}

	case string(domain.LeaveRoom):
		roomID, err := h.resolveRoomID(req, memberID)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		h.hub.Leave(roomID, session)
		resp.Success = true
		resp.Payload["room_id"] = roomID

	// message is written to the store first, then fanned out
	case string(domain.SendMessage):
		stored, roomID, created, err := h.messageUC.Execute(ctx, memberID, domain.SenderRole(session.Role), req.ProductID, req.PeerID, req.Body)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["room_id"] = roomID
			resp.Payload["message_id"] = stored.ID
			resp.Payload["timestamp"] = stored.Timestamp
			resp.Payload["room_created"] = created
		}

	case string(domain.MarkRead):
		var ids []string
		if req.MessageID != "" {
			ids = append(ids, req.MessageID)
		}
		err := h.messageUC.MarkRead(ctx, req.RoomID, memberID, ids)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	case string(domain.History):
		page, err := h.messageUC.History(ctx, req.RoomID, memberID, req.Before, req.Limit)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["room_id"] = page.RoomID
			resp.Payload["messages"] = page.Messages
			resp.Payload["has_more"] = page.HasMore
		}

	case string(domain.ListChats):
		chats, err := h.activeUC.Execute(ctx, memberID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["chats"] = chats
		}

	case string(domain.GetUnread):
		msgs, err := h.messageUC.GetCountUnreadMessages(ctx, memberID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			for _, unread := range msgs {
				resp.Payload[unread.RoomID] = unread.UnreadCount
			}
		}

	default:
		h.sendError(session, "unknown action")
		return
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err ", zap.String("MemberID", memberID), zap.String("Action", req.Action), zap.String("err", resp.Error))
	}
	session.Enqueue(resp)
}

// resolveRoomID accepts either an explicit room id or a product and peer
// pair, and rejects rooms the member does not belong to.
func (h *ChatWebsocketHandler) resolveRoomID(req domain.WSRequest, memberID string) (string, error) {
	if req.RoomID != "" {
		key, err := domain.ParseRoomKey(req.RoomID)
		if err != nil {
			return "", errprocess.E(errprocess.KindValidation, "invalid room id", err)
		}
		if !key.Has(memberID) {
			return "", errprocess.Validation("member " + memberID + " is not a participant of " + req.RoomID)
		}
		return key.Encode(), nil
	}

	key, err := domain.NewRoomKey(req.ProductID, []string{memberID, req.PeerID})
	if err != nil {
		return "", errprocess.E(errprocess.KindValidation, "invalid room key", err)
	}
	return key.Encode(), nil
}

func (h *ChatWebsocketHandler) sendError(session *Session, errorMsg string) {
	session.Enqueue(domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	})
}
