package database

import (
	"fmt"
	"time"

	"agri_market_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewKafkaWriterWithRetry builds a Kafka writer and verifies the brokers are
// reachable before returning it. Retries connection checks per the supplied
// connection settings.
func NewKafkaWriterWithRetry(c KafkaConnection) (*kafka.Writer, error) {
	var lastErr error
	for i := 0; i < c.RetryCount; i++ {
		conn, err := kafka.Dial("tcp", c.Brokers[0])
		if err == nil {
			conn.Close()
			w := &kafka.Writer{
				Addr:         kafka.TCP(c.Brokers...),
				Topic:        c.Topic,
				Balancer:     &kafka.LeastBytes{},
				RequiredAcks: kafka.RequireOne,
				Async:        false,
				BatchTimeout: 50 * time.Millisecond,
			}
			return w, nil
		}

		lastErr = err
		logger.Log.Warn("kafka broker not ready, retrying",
			zap.Strings("brokers", c.Brokers),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		time.Sleep(c.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to kafka brokers %v after %d attempts: %w", c.Brokers, c.RetryCount, lastErr)
}
