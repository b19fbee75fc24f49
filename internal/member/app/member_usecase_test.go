package app

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"agri_market_service/internal/member/domain"
	"agri_market_service/pkg/encrypt"
	"agri_market_service/pkg/logger"
	"agri_market_service/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.SetNewNop()
	os.Exit(m.Run())
}

// MockMemberRepository Mock MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

// CreateUser mock create member
func (m *MockMemberRepository) CreateUser(ctx context.Context, user *domain.Member) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// UpdateMemberStatus mock update status
func (m *MockMemberRepository) UpdateMemberStatus(ctx context.Context, user *domain.Member) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// FindByMember mock query member
func (m *MockMemberRepository) FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error) {
	args := m.Called(ctx, memberQuery)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// DisplayNames mock batch name lookup
func (m *MockMemberRepository) DisplayNames(ctx context.Context, memberIDs []string) (map[string]string, error) {
	args := m.Called(ctx, memberIDs)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSessionStore Mock RedisRepository for MemberSession
type MockSessionStore struct {
	mock.Mock
}

// Set mock set session
func (m *MockSessionStore) Set(ctx context.Context, key string, value domain.MemberSession, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Get mock get session
func (m *MockSessionStore) Get(ctx context.Context, key string) (domain.MemberSession, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.MemberSession), args.Error(1)
}

// Del mock delete session
func (m *MockSessionStore) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetTTL mock session ttl
func (m *MockSessionStore) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

// ExtendTTL mock extend session
func (m *MockSessionStore) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

func TestMemberUseCase_Register(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockMemberRepository)

	mockRepo.On("FindByMember", ctx, mock.Anything).Return(nil, errors.New("no member found with given criteria"))
	mockRepo.On("CreateUser", ctx, mock.MatchedBy(func(m *domain.Member) bool {
		return m.Email == "farm@example.com" && m.Role == token.RoleSeller && m.DisplayName == "Green Valley Farm"
	})).Return(nil)

	uc := NewMemberUseCase(mockRepo, 30*time.Minute, new(MockSessionStore))
	err := uc.Register(ctx, "farm@example.com", "Passw0rd!", "Green Valley Farm", token.RoleSeller)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestMemberUseCase_Register_InvalidRole(t *testing.T) {
	uc := NewMemberUseCase(new(MockMemberRepository), 30*time.Minute, new(MockSessionStore))

	err := uc.Register(context.Background(), "a@b.com", "Passw0rd!", "Someone", token.RoleAdmin)
	assert.Error(t, err)

	err = uc.Register(context.Background(), "a@b.com", "Passw0rd!", "", token.RoleBuyer)
	assert.Error(t, err)
}

func TestMemberUseCase_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockMemberRepository)

	existing := &domain.Member{MemberID: "m-1", Email: "farm@example.com"}
	mockRepo.On("FindByMember", ctx, mock.Anything).Return(existing, nil)

	uc := NewMemberUseCase(mockRepo, 30*time.Minute, new(MockSessionStore))
	err := uc.Register(ctx, "farm@example.com", "Passw0rd!", "Green Valley Farm", token.RoleSeller)

	assert.EqualError(t, err, "email already exists")
}

func TestMemberUseCase_Login(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockMemberRepository)
	mockSessions := new(MockSessionStore)

	hashed, err := encrypt.HashPassword("Passw0rd!")
	assert.NoError(t, err)

	member := &domain.Member{
		MemberID:    "m-1",
		Email:       "farm@example.com",
		Password:    hashed,
		DisplayName: "Green Valley Farm",
		Role:        token.RoleSeller,
	}
	mockRepo.On("FindByMember", ctx, mock.Anything).Return(member, nil)
	mockRepo.On("UpdateMemberStatus", ctx, mock.MatchedBy(func(m *domain.Member) bool {
		return m.Status == domain.MemberStatusOnLine
	})).Return(nil)
	mockSessions.On("Set", mock.Anything, "m-1", mock.Anything, 30*time.Minute).Return(nil)

	uc := NewMemberUseCase(mockRepo, 30*time.Minute, mockSessions)
	tokenStr, err := uc.Login(ctx, "farm@example.com", "Passw0rd!")

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenStr)

	// the token must carry the member's marketplace role
	claims, err := token.ParseJWT(tokenStr)
	assert.NoError(t, err)
	assert.Equal(t, "m-1", claims.MemberID)
	assert.Equal(t, string(token.RoleSeller), claims.Role)

	mockRepo.AssertExpectations(t)
	mockSessions.AssertExpectations(t)
}

func TestMemberUseCase_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockMemberRepository)

	hashed, _ := encrypt.HashPassword("Passw0rd!")
	member := &domain.Member{MemberID: "m-1", Email: "farm@example.com", Password: hashed}
	mockRepo.On("FindByMember", ctx, mock.Anything).Return(member, nil)

	uc := NewMemberUseCase(mockRepo, 30*time.Minute, new(MockSessionStore))
	_, err := uc.Login(ctx, "farm@example.com", "Wr0ngPass!")

	assert.Error(t, err)
}

func TestMemberUseCase_Logout(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockMemberRepository)
	mockSessions := new(MockSessionStore)

	t2, err := token.GenerateJWT("m-1", string(token.RoleBuyer), "member_service")
	assert.NoError(t, err)

	mockSessions.On("Del", mock.Anything, "m-1").Return(nil)
	mockRepo.On("UpdateMemberStatus", ctx, mock.MatchedBy(func(m *domain.Member) bool {
		return m.MemberID == "m-1" && m.Status == domain.MemberStatusOffLine
	})).Return(nil)

	uc := NewMemberUseCase(mockRepo, 30*time.Minute, mockSessions)
	assert.NoError(t, uc.Logout(ctx, t2))

	mockRepo.AssertExpectations(t)
	mockSessions.AssertExpectations(t)
}

func TestMemberUseCase_CheckSessionTimeout(t *testing.T) {
	ctx := context.Background()
	mockSessions := new(MockSessionStore)

	t2, err := token.GenerateJWT("m-1", string(token.RoleBuyer), "member_service")
	assert.NoError(t, err)

	mockSessions.On("GetTTL", mock.Anything, "m-1").Return(120, nil).Once()
	uc := NewMemberUseCase(new(MockMemberRepository), 30*time.Minute, mockSessions)

	expired, err := uc.CheckSessionTimeout(ctx, t2)
	assert.NoError(t, err)
	assert.False(t, expired)

	mockSessions.On("GetTTL", mock.Anything, "m-1").Return(0, nil).Once()
	expired, err = uc.CheckSessionTimeout(ctx, t2)
	assert.NoError(t, err)
	assert.True(t, expired)
}

func TestMemberUseCase_DisplayNames(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockMemberRepository)

	names := map[string]string{"m-1": "Green Valley Farm", "m-2": "Ravi Kumar"}
	mockRepo.On("DisplayNames", ctx, []string{"m-1", "m-2"}).Return(names, nil)

	uc := NewMemberUseCase(mockRepo, 30*time.Minute, new(MockSessionStore))
	got, err := uc.DisplayNames(ctx, []string{"m-1", "m-2"})

	assert.NoError(t, err)
	assert.Equal(t, names, got)
}
