package app

import (
	"context"
	"errors"
	"testing"

	catalogdomain "agri_market_service/internal/catalog/domain"
	"agri_market_service/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestActiveChatsUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	memberID := "buyer-1"

	keyA, _ := domain.NewRoomKey("prod-42", []string{"buyer-1", "seller-9"})
	keyB, _ := domain.NewRoomKey("prod-7", []string{"buyer-1", "seller-3"})

	rooms := []domain.ChatRoom{
		{
			ID:           keyA.Encode(),
			ProductID:    "prod-42",
			Participants: keyA.Participants,
			Messages: []domain.ChatMessage{
				{ID: "m-2", SenderID: "seller-9", Body: "200kg left", Timestamp: 200},
			},
			UpdatedAt: 200,
		},
		{
			ID:           keyB.Encode(),
			ProductID:    "prod-7",
			Participants: keyB.Participants,
			Messages: []domain.ChatMessage{
				{ID: "m-1", SenderID: "buyer-1", Body: "price?", Timestamp: 100},
			},
			UpdatedAt: 100,
		},
	}

	mockRoomRepo := new(MockRoomRepository)
	mockProducts := new(MockProductDirectory)
	mockMembers := new(MockMemberDirectory)

	mockRoomRepo.On("FindByParticipant", ctx, memberID).Return(rooms, nil)
	mockProducts.On("FindByIDs", ctx, []string{"prod-42", "prod-7"}).Return(map[string]catalogdomain.Product{
		"prod-42": {ID: "prod-42", Name: "Yellow Maize", Category: "grains", Image: "maize.jpg", Price: 320, Unit: "kg", Quantity: 200, MinOrder: 50},
		// prod-7 was delisted
	}, nil)
	mockMembers.On("DisplayNames", ctx, []string{"seller-9", "seller-3"}).Return(map[string]string{
		"seller-9": "Green Valley Farm",
		"seller-3": "Hilltop Produce",
	}, nil)
	mockRoomRepo.On("CountUnreadByRoom", ctx, memberID).Return([]domain.RoomUnreadInfo{
		{RoomID: keyA.Encode(), UnreadCount: 3},
	}, nil)

	uc := NewActiveChatsUseCase(mockRoomRepo, mockProducts, mockMembers)
	chats, err := uc.Execute(ctx, memberID)

	assert.NoError(t, err)
	assert.Len(t, chats, 2)

	assert.Equal(t, keyA.Encode(), chats[0].RoomID)
	assert.Equal(t, "Yellow Maize", chats[0].ProductName)
	assert.Equal(t, "grains", chats[0].ProductCategory)
	assert.Equal(t, float64(320), chats[0].ProductPrice)
	assert.Equal(t, "kg", chats[0].ProductUnit)
	assert.Equal(t, 200, chats[0].ProductQuantity)
	assert.Equal(t, 50, chats[0].ProductMinOrder)
	assert.Equal(t, "seller-9", chats[0].PeerID)
	assert.Equal(t, "Green Valley Farm", chats[0].PeerName)
	assert.Equal(t, "200kg left", chats[0].LastMessage)
	assert.Equal(t, 3, chats[0].UnreadCount)

	// delisted product keeps the conversation visible with blank name
	assert.Equal(t, keyB.Encode(), chats[1].RoomID)
	assert.Equal(t, "", chats[1].ProductName)
	assert.Equal(t, "Hilltop Produce", chats[1].PeerName)
	assert.Equal(t, 0, chats[1].UnreadCount)

	mockRoomRepo.AssertExpectations(t)
	mockProducts.AssertExpectations(t)
	mockMembers.AssertExpectations(t)
}

func TestActiveChatsUseCase_Execute_Empty(t *testing.T) {
	ctx := context.Background()

	mockRoomRepo := new(MockRoomRepository)
	mockRoomRepo.On("FindByParticipant", ctx, "buyer-1").Return([]domain.ChatRoom{}, nil)

	uc := NewActiveChatsUseCase(mockRoomRepo, new(MockProductDirectory), new(MockMemberDirectory))
	chats, err := uc.Execute(ctx, "buyer-1")

	assert.NoError(t, err)
	assert.Empty(t, chats)
}

func TestActiveChatsUseCase_Execute_NameLookupFailureIsSoft(t *testing.T) {
	ctx := context.Background()
	memberID := "buyer-1"
	key, _ := domain.NewRoomKey("prod-42", []string{"buyer-1", "seller-9"})

	mockRoomRepo := new(MockRoomRepository)
	mockProducts := new(MockProductDirectory)
	mockMembers := new(MockMemberDirectory)

	mockRoomRepo.On("FindByParticipant", ctx, memberID).Return([]domain.ChatRoom{
		{ID: key.Encode(), ProductID: "prod-42", Participants: key.Participants, UpdatedAt: 50},
	}, nil)
	mockProducts.On("FindByIDs", ctx, mock.Anything).Return(map[string]catalogdomain.Product{}, nil)
	mockMembers.On("DisplayNames", ctx, mock.Anything).Return(nil, errors.New("pg down"))
	mockRoomRepo.On("CountUnreadByRoom", ctx, memberID).Return([]domain.RoomUnreadInfo{}, nil)

	uc := NewActiveChatsUseCase(mockRoomRepo, mockProducts, mockMembers)
	chats, err := uc.Execute(ctx, memberID)

	assert.NoError(t, err)
	assert.Len(t, chats, 1)
	assert.Equal(t, "", chats[0].PeerName)
}
