package domain

// Action websocket request action
type Action string

const (
	// JoinRoom websocket action join_room
	JoinRoom Action = "join_room"
	// LeaveRoom websocket action leave_room
	LeaveRoom Action = "leave_room"

	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// MarkRead websocket action mark_read
	MarkRead Action = "mark_read"

	// ListChats websocket action list_chats
	ListChats Action = "list_chats"
	// History websocket action history
	History Action = "history"
	// GetUnread websocket action get_unread
	GetUnread Action = "get_unread"
)

// Server pushed events.
const (
	// EventMessage a message delivered to a joined room
	EventMessage = "message"
	// EventNewMessageNotice a global notice for rooms the member has not joined
	EventNewMessageNotice = "new_message_notice"
	// EventRoomCreated first message of a conversation created the room
	EventRoomCreated = "room_created"
	// EventStockUpdate product quantity changed while negotiating
	EventStockUpdate = "stock_update"
)

// WSRequest websocket Request
type WSRequest struct {
	Action    string `json:"action"`
	RoomID    string `json:"room_id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	PeerID    string `json:"peer_id,omitempty"`
	Body      string `json:"body,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Before    int64  `json:"before,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
