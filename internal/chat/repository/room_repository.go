package repository

import (
	"context"
	"errors"
	"fmt"

	"agri_market_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrRoomNotFound no room exists for the requested key.
var ErrRoomNotFound = errors.New("chat room not found")

// RoomRepository persistence contract for negotiation rooms. Rooms are
// created implicitly by the first appended message, never ahead of it.
type RoomRepository interface {
	// AppendMessage upserts the room for key and pushes msg onto its
	// message array. The returned bool is true when this call created
	// the room.
	AppendMessage(ctx context.Context, key domain.RoomKey, msg domain.ChatMessage) (*domain.ChatRoom, bool, error)
	// FindByKey loads one room with its full message array.
	FindByKey(ctx context.Context, key domain.RoomKey) (*domain.ChatRoom, error)
	// FindByParticipant lists rooms the member belongs to, newest activity
	// first. Each room carries only its latest message.
	FindByParticipant(ctx context.Context, memberID string) ([]domain.ChatRoom, error)
	// Messages pages backwards through a room's history. before is an
	// exclusive unix millisecond bound, zero means from the latest.
	Messages(ctx context.Context, key domain.RoomKey, before int64, limit int) (*domain.MessagePage, error)
	// MarkRead records memberID as a reader of the given messages.
	MarkRead(ctx context.Context, key domain.RoomKey, memberID string, messageIDs []string) (int64, error)
	// CountUnreadByRoom aggregates unread counts per room for a member,
	// excluding the member's own messages.
	CountUnreadByRoom(ctx context.Context, memberID string) ([]domain.RoomUnreadInfo, error)
}

type chatRoomRepository struct {
	coll *mongo.Collection
}

// NewMongoChatRoomRepository create a RoomRepository backed by the
// chat_rooms collection.
func NewMongoChatRoomRepository(db *mongo.Database) RoomRepository {
	return &chatRoomRepository{
		coll: db.Collection("chat_rooms"),
	}
}

func (r *chatRoomRepository) AppendMessage(ctx context.Context, key domain.RoomKey, msg domain.ChatMessage) (*domain.ChatRoom, bool, error) {
	roomID := key.Encode()

	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$addToSet": bson.M{
			"participants": bson.M{"$each": key.Participants},
		},
		"$setOnInsert": bson.M{
			"product_id": key.ProductID,
			"created_at": msg.Timestamp,
		},
		"$set": bson.M{"updated_at": msg.Timestamp},
	}

	res, err := r.coll.UpdateByID(ctx, roomID, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, fmt.Errorf("append message to %s: %w", roomID, err)
	}
	created := res.UpsertedCount > 0

	// Reload with only the freshly stored tail message.
	opts := options.FindOne().SetProjection(bson.M{
		"messages": bson.M{"$slice": -1},
	})
	var room domain.ChatRoom
	if err := r.coll.FindOne(ctx, bson.M{"_id": roomID}, opts).Decode(&room); err != nil {
		return nil, created, fmt.Errorf("reload room %s: %w", roomID, err)
	}

	return &room, created, nil
}

func (r *chatRoomRepository) FindByKey(ctx context.Context, key domain.RoomKey) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.coll.FindOne(ctx, bson.M{"_id": key.Encode()}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, ErrRoomNotFound
	} else if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRoomRepository) FindByParticipant(ctx context.Context, memberID string) ([]domain.ChatRoom, error) {
	filter := bson.M{"participants": memberID}
	opts := options.Find().
		SetProjection(bson.M{"messages": bson.M{"$slice": -1}}).
		SetSort(bson.M{"updated_at": -1})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var rooms []domain.ChatRoom
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *chatRoomRepository) Messages(ctx context.Context, key domain.RoomKey, before int64, limit int) (*domain.MessagePage, error) {
	if limit <= 0 {
		limit = 50
	}

	msgMatch := bson.D{}
	if before > 0 {
		msgMatch = bson.D{{Key: "messages.timestamp", Value: bson.D{{Key: "$lt", Value: before}}}}
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: key.Encode()}}}},
		bson.D{{Key: "$unwind", Value: "$messages"}},
		bson.D{{Key: "$match", Value: msgMatch}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "messages.timestamp", Value: -1}}}},
		// One extra row tells us whether older history remains.
		bson.D{{Key: "$limit", Value: limit + 1}},
		bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$messages"}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate error: %w", err)
	}
	var newestFirst []domain.ChatMessage
	if err := cur.All(ctx, &newestFirst); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}

	hasMore := len(newestFirst) > limit
	if hasMore {
		newestFirst = newestFirst[:limit]
	}

	msgs := make([]domain.ChatMessage, len(newestFirst))
	for i, m := range newestFirst {
		msgs[len(newestFirst)-1-i] = m
	}

	return &domain.MessagePage{
		RoomID:   key.Encode(),
		Messages: msgs,
		HasMore:  hasMore,
	}, nil
}

func (r *chatRoomRepository) MarkRead(ctx context.Context, key domain.RoomKey, memberID string, messageIDs []string) (int64, error) {
	// mongo rejects "$in": null, and an empty batch must still run the
	// room existence check below.
	if messageIDs == nil {
		messageIDs = []string{}
	}

	update := bson.M{
		"$addToSet": bson.M{"messages.$[m].read_by": memberID},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"m.id": bson.M{"$in": messageIDs}},
		},
	})

	res, err := r.coll.UpdateByID(ctx, key.Encode(), update, opts)
	if err != nil {
		return 0, fmt.Errorf("mark read in %s: %w", key.Encode(), err)
	}
	if res.MatchedCount == 0 {
		return 0, ErrRoomNotFound
	}
	return res.ModifiedCount, nil
}

func (r *chatRoomRepository) CountUnreadByRoom(ctx context.Context, memberID string) ([]domain.RoomUnreadInfo, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "participants", Value: memberID}}}},
		bson.D{{Key: "$unwind", Value: "$messages"}},
		// Own messages never count as unread.
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "messages.sender_id", Value: bson.D{{Key: "$ne", Value: memberID}}},
			{Key: "messages.read_by", Value: bson.D{{Key: "$ne", Value: memberID}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$_id"},
			{Key: "unread_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last_unread_timestamp", Value: bson.D{{Key: "$max", Value: "$messages.timestamp"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "last_unread_timestamp", Value: -1},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate error: %w", err)
	}

	var results []domain.RoomUnreadInfo
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}

	return results, nil
}
