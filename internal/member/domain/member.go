package domain

import (
	"time"

	"agri_market_service/pkg/encrypt"
	"agri_market_service/pkg/token"
)

// MemberStatus marks the account state
type MemberStatus int

// 0=offline, 1=online, 2=ban, 3=delete
const (
	// MemberStatusOffLine account is offline
	MemberStatusOffLine MemberStatus = iota
	// MemberStatusOnLine account is online
	MemberStatusOnLine
	// MemberStatusBan account is blocked
	MemberStatusBan
	// MemberStatusDelete account is removed
	MemberStatusDelete
)

// Member is a marketplace account. Role decides which side of a
// negotiation the member can take.
type Member struct {
	ID          int64
	MemberID    string
	Email       string
	Password    string
	DisplayName string
	Role        token.RoleType
	Status      MemberStatus
}

// MemberSession tracks one login in redis
type MemberSession struct {
	Token        string    `json:"Token"`
	MemberID     string    `json:"MemberID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsPasswordMatch compares the stored hash with inputPwd
func (m *Member) IsPasswordMatch(inputPwd string) error {
	err := encrypt.CheckPassword(m.Password, inputPwd)
	return err
}

// IsExpired checks whether the session passed its deadline
func (s *MemberSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// MemberQuery join conditions are used to query members
type MemberQuery struct {
	ID       *int64  `db:"id"`
	MemberID *string `db:"member_id"`
	Email    *string `db:"email"`
}
