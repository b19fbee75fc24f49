package domain

// SenderRole identifies which side of the negotiation sent a message.
type SenderRole string

const (
	//SenderBuyer message from the purchasing member
	SenderBuyer SenderRole = "buyer"
	//SenderSeller message from the product owner
	SenderSeller SenderRole = "seller"
)

// ValidSenderRole reports whether r is one of the known roles.
func ValidSenderRole(r SenderRole) bool {
	return r == SenderBuyer || r == SenderSeller
}

// ChatRoom is the mongo document for one product negotiation. The document
// id is the canonical encoded RoomKey, so upserts on it are idempotent.
type ChatRoom struct {
	ID           string        `bson:"_id" json:"room_id"`
	ProductID    string        `bson:"product_id" json:"product_id"`
	Participants []string      `bson:"participants" json:"participants"`
	Messages     []ChatMessage `bson:"messages,omitempty" json:"messages,omitempty"`
	CreatedAt    int64         `bson:"created_at" json:"created_at"`
	UpdatedAt    int64         `bson:"updated_at" json:"updated_at"`
}

// Key rebuilds the structured key from the stored fields.
func (r ChatRoom) Key() (RoomKey, error) {
	return NewRoomKey(r.ProductID, r.Participants)
}

// RoomUnreadInfo definition unread by room
type RoomUnreadInfo struct {
	RoomID              string `bson:"_id" json:"room_id"`
	UnreadCount         int    `bson:"unread_count" json:"unread_count"`
	LastUnreadTimeStamp int64  `bson:"last_unread_timestamp" json:"last_unread_timestamp"`
}

// ActiveChatSummary is one row of a member's conversation list, joined
// against the catalog and member directories.
type ActiveChatSummary struct {
	RoomID          string   `json:"room_id"`
	ProductID       string   `json:"product_id"`
	ProductName     string   `json:"product_name"`
	ProductCategory string   `json:"product_category,omitempty"`
	ProductImage    string   `json:"product_image,omitempty"`
	ProductPrice    float64  `json:"product_price,omitempty"`
	ProductUnit     string   `json:"product_unit,omitempty"`
	ProductQuantity int      `json:"product_quantity,omitempty"`
	ProductMinOrder int      `json:"product_minimum_order,omitempty"`
	Participants    []string `json:"participants"`
	PeerID          string   `json:"peer_id"`
	PeerName        string   `json:"peer_name"`
	LastMessage     string   `json:"last_message,omitempty"`
	LastSenderID    string   `json:"last_sender_id,omitempty"`
	UnreadCount     int      `json:"unread_count"`
	LastUpdatedAt   int64    `json:"last_updated_at"`
}
