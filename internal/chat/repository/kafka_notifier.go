package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"agri_market_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageNotice is the event emitted to the notification topic whenever a
// chat message lands, keyed by recipient so downstream consumers can
// partition per member.
type MessageNotice struct {
	RoomID      string `json:"room_id"`
	ProductID   string `json:"product_id"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Preview     string `json:"preview"`
	Timestamp   int64  `json:"timestamp"`
}

// KafkaNotifier publishes message notices for offline delivery (mail, push)
// handled by consumers outside this service.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier create KafkaNotifier
func NewKafkaNotifier(writer *kafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

// Notify emits one notice. Failures are logged, not returned, so a broker
// outage never blocks message delivery to connected sessions.
func (n *KafkaNotifier) Notify(ctx context.Context, notice MessageNotice) {
	data, err := json.Marshal(notice)
	if err != nil {
		logger.Log.Error("notice marshal err :", zap.Error(err))
		return
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(notice.RecipientID),
		Value: data,
	})
	if err != nil {
		logger.Log.Warn(fmt.Sprintf("notice publish failed for %s", notice.RecipientID), zap.Error(err))
	}
}
