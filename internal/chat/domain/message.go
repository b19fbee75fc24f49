package domain

// ChatMessage is one message embedded in a ChatRoom document.
type ChatMessage struct {
	ID         string     `bson:"id" json:"id"`
	SenderID   string     `bson:"sender_id" json:"sender_id"`
	SenderRole SenderRole `bson:"sender_role" json:"sender_role"`
	Body       string     `bson:"body" json:"body"`
	Timestamp  int64      `bson:"timestamp" json:"timestamp"`
	ReadBy     []string   `bson:"read_by,omitempty" json:"read_by,omitempty"`
}

// MessagePage is a slice of a room's history, newest request first but
// returned in chronological order.
type MessagePage struct {
	RoomID   string        `json:"room_id"`
	Messages []ChatMessage `json:"messages"`
	HasMore  bool          `json:"has_more"`
}
