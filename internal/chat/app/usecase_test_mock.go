package app

import (
	"context"
	"sync"

	catalogdomain "agri_market_service/internal/catalog/domain"
	"agri_market_service/internal/chat/domain"
	"agri_market_service/internal/chat/repository"

	"github.com/stretchr/testify/mock"
)

// MockRoomRepository Mock RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

// AppendMessage mock append message
func (m *MockRoomRepository) AppendMessage(ctx context.Context, key domain.RoomKey, msg domain.ChatMessage) (*domain.ChatRoom, bool, error) {
	args := m.Called(ctx, key, msg)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

// FindByKey mock find room by key
func (m *MockRoomRepository) FindByKey(ctx context.Context, key domain.RoomKey) (*domain.ChatRoom, error) {
	args := m.Called(ctx, key)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByParticipant mock list rooms of a member
func (m *MockRoomRepository) FindByParticipant(ctx context.Context, memberID string) ([]domain.ChatRoom, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatRoom), args.Error(1)
	}
	return nil, args.Error(1)
}

// Messages mock history page
func (m *MockRoomRepository) Messages(ctx context.Context, key domain.RoomKey, before int64, limit int) (*domain.MessagePage, error) {
	args := m.Called(ctx, key, before, limit)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.MessagePage), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkRead mock mark read
func (m *MockRoomRepository) MarkRead(ctx context.Context, key domain.RoomKey, memberID string, messageIDs []string) (int64, error) {
	args := m.Called(ctx, key, memberID, messageIDs)
	return args.Get(0).(int64), args.Error(1)
}

// CountUnreadByRoom mock unread aggregation
func (m *MockRoomRepository) CountUnreadByRoom(ctx context.Context, memberID string) ([]domain.RoomUnreadInfo, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.RoomUnreadInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPublisher Mock Publisher
type MockPublisher struct {
	mock.Mock
}

// Publish mock publish
func (m *MockPublisher) Publish(channel string, message interface{}) error {
	args := m.Called(channel, message)
	return args.Error(0)
}

// MockNoticeSink Mock NoticeSink
type MockNoticeSink struct {
	mock.Mock
}

// Notify mock notify
func (m *MockNoticeSink) Notify(ctx context.Context, notice repository.MessageNotice) {
	m.Called(ctx, notice)
}

// MockProductDirectory Mock ProductDirectory
type MockProductDirectory struct {
	mock.Mock
}

// FindByIDs mock batch product lookup
func (m *MockProductDirectory) FindByIDs(ctx context.Context, ids []string) (map[string]catalogdomain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]catalogdomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMemberDirectory Mock MemberDirectory
type MockMemberDirectory struct {
	mock.Mock
}

// DisplayNames mock batch name lookup
func (m *MockMemberDirectory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeConn captures frames written through a session
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}
