package repository

import (
	"context"
	"time"

	"agri_market_service/internal/catalog/domain"
	"agri_market_service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// StockWatcher tails the products change stream and reports quantity
// movements so negotiating members see stock drain in real time.
type StockWatcher struct {
	coll *mongo.Collection
}

// NewStockWatcher create a StockWatcher over the products collection.
func NewStockWatcher(db *mongo.Database) *StockWatcher {
	return &StockWatcher{
		coll: db.Collection("products"),
	}
}

// Watch blocks until ctx is cancelled, invoking onChange for every update
// that touched the quantity field. Stream errors are logged and the watch
// is reopened.
func (w *StockWatcher) Watch(ctx context.Context, onChange func(domain.StockChange)) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: "update"},
			{Key: "updateDescription.updatedFields.quantity", Value: bson.D{{Key: "$exists", Value: true}}},
		}}},
	}

	for {
		if ctx.Err() != nil {
			return
		}

		stream, err := w.coll.Watch(ctx, pipeline,
			options.ChangeStream().SetFullDocument(options.UpdateLookup))
		if err != nil {
			logger.Log.Warn("stock watch open failed, retrying", zap.Error(err))
			select {
			case <-time.After(5 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}

		w.drain(ctx, stream, onChange)
		stream.Close(context.Background())
	}
}

func (w *StockWatcher) drain(ctx context.Context, stream *mongo.ChangeStream, onChange func(domain.StockChange)) {
	type changeEvent struct {
		FullDocument domain.Product `bson:"fullDocument"`
	}

	for stream.Next(ctx) {
		var evt changeEvent
		if err := stream.Decode(&evt); err != nil {
			logger.Log.Error("stock change decode err :", zap.Error(err))
			continue
		}

		onChange(domain.StockChange{
			ProductID: evt.FullDocument.ID,
			Quantity:  evt.FullDocument.Quantity,
			Timestamp: time.Now().UnixMilli(),
		})
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		logger.Log.Warn("stock watch stream error, reopening", zap.Error(err))
	}
}
