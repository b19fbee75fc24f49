package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agri_market_service/internal/member/domain"
	"agri_market_service/internal/member/repository"
	"agri_market_service/pkg/database"
	"agri_market_service/pkg/encrypt"
	"agri_market_service/pkg/logger"
	token "agri_market_service/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberUseCase application services of the member account
type MemberUseCase interface {
	Register(ctx context.Context, email, password, displayName string, role token.RoleType) error
	FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error)
	DisplayNames(ctx context.Context, memberIDs []string) (map[string]string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	ForceLogout(ctx context.Context, memberID string) error
	CheckSessionTimeout(ctx context.Context, token string) (bool, error)
	ReconnectSession(ctx context.Context, token string) error
}

type memberUseCase struct {
	memberRepo repository.MemberRepository
	sessionTTL time.Duration
	redisRepo  database.RedisRepository[domain.MemberSession]
}

// NewMemberUseCase build a MemberUseCase
func NewMemberUseCase(MemberRepo repository.MemberRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.MemberSession],
) MemberUseCase {
	return &memberUseCase{
		memberRepo: MemberRepo,
		sessionTTL: sessionTTL,
		redisRepo:  redisRepo,
	}
}

// Register creates a buyer or seller account.
func (m *memberUseCase) Register(ctx context.Context, email, password, displayName string, role token.RoleType) error {
	if role != token.RoleBuyer && role != token.RoleSeller {
		return errors.New("role must be buyer or seller")
	}
	if displayName == "" {
		return errors.New("display name is required")
	}

	if _, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email}); err == nil {
		return errors.New("email already exists")
	}

	pw, err := encrypt.HashPassword(password)
	if err != nil {
		return err
	}

	user := domain.Member{
		MemberID:    uuid.New().String(),
		Email:       email,
		Password:    pw,
		DisplayName: displayName,
		Role:        role,
	}

	logger.Log.Info(fmt.Sprintf("usecase Register : %s role %s", user.MemberID, user.Role))

	if err := m.memberRepo.CreateUser(ctx, &user); err != nil {
		return err
	}

	return nil
}

// FindMember looks a member up by any MemberQuery condition
func (m *memberUseCase) FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error) {
	return m.memberRepo.FindByMember(ctx, param)
}

// DisplayNames batch resolves ids to names for the chat aggregator
func (m *memberUseCase) DisplayNames(ctx context.Context, memberIDs []string) (map[string]string, error) {
	return m.memberRepo.DisplayNames(ctx, memberIDs)
}

// Login verifies credentials, opens a redis session and returns a JWT
// carrying the member's marketplace role.
func (m *memberUseCase) Login(ctx context.Context, email, password string) (string, error) {
	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email})
	if err != nil {
		logger.Log.Error("email can't find!!!")
		return "", errors.New("user not found")
	}

	if err = member.IsPasswordMatch(password); err != nil {
		logger.Log.Error("password can't match!!!")
		return "", err
	}

	member.Status = domain.MemberStatusOnLine

	t, err := token.GenerateJWTWrapper(member.MemberID, string(member.Role))
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := domain.MemberSession{
		Token:        t,
		MemberID:     member.MemberID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(m.sessionTTL),
	}

	m.redisRepo.Set(context.Background(), member.MemberID, session, m.sessionTTL)

	if err := m.memberRepo.UpdateMemberStatus(ctx, member); err != nil {
		return "", err
	}

	return t, nil
}

// Logout drops the session and flips the account offline
func (m *memberUseCase) Logout(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Error("Logout err :", zap.String("err", err.Error()))
		return err
	}
	logger.Log.Debug("logout", zap.String("member token info", fmt.Sprintf("%v", tokenInfo)))

	m.redisRepo.Del(context.Background(), tokenInfo.MemberID)

	if err := m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{
		MemberID: tokenInfo.MemberID,
		Status:   domain.MemberStatusOffLine,
	}); err != nil {
		return err
	}
	return nil
}

// ForceLogout clears every session of one member
func (m *memberUseCase) ForceLogout(ctx context.Context, memberID string) error {
	m.redisRepo.Del(context.Background(), memberID)

	if err := m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{
		MemberID: memberID,
		Status:   domain.MemberStatusOffLine,
	}); err != nil {
		return err
	}
	return nil
}

// CheckSessionTimeout reports whether the session behind t has expired
func (m *memberUseCase) CheckSessionTimeout(ctx context.Context, t string) (bool, error) {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Error("CheckSessionTimeout err :", zap.String("err", err.Error()))
		return true, err
	}
	logger.Log.Debug("CheckSessionTimeout", zap.String("member token info", fmt.Sprintf("%v", tokenInfo)))

	ttl, err := m.redisRepo.GetTTL(context.Background(), tokenInfo.MemberID)
	if err != nil {
		return true, err
	}

	if ttl > 0 {
		return false, nil
	}
	return true, nil
}

// ReconnectSession extends the session after a dropped connection
func (m *memberUseCase) ReconnectSession(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		logger.Log.Error("ReconnectSession err :", zap.String("err", err.Error()))
		return err
	}
	logger.Log.Debug("ReconnectSession", zap.String("member token info", fmt.Sprintf("%v", tokenInfo)))

	if ok, err := token.CheckJWTNotExpire(t); err != nil || !ok {
		return errors.New("token expired, login again")
	}

	m.redisRepo.ExtendTTL(context.Background(), tokenInfo.MemberID, m.sessionTTL)

	return nil
}
