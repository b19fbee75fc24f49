package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"agri_market_service/internal/member/domain"
)

// MemberRepository definition get Member info
type MemberRepository interface {
	CreateUser(ctx context.Context, user *domain.Member) error
	UpdateMemberStatus(ctx context.Context, user *domain.Member) error
	FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error)
	// DisplayNames resolves member ids to display names in one query.
	DisplayNames(ctx context.Context, memberIDs []string) (map[string]string, error)
}

type memberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *pgxpool.Pool) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) CreateUser(ctx context.Context, member *domain.Member) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO member(member_id, email, password, display_name, role) VALUES ($1, $2, $3, $4, $5)",
		member.MemberID, member.Email, member.Password, member.DisplayName, member.Role)
	return err
}

func (r *memberRepository) UpdateMemberStatus(ctx context.Context, member *domain.Member) error {
	_, err := r.db.Exec(ctx, "UPDATE member SET status = $1 WHERE member_id = $2", member.Status, member.MemberID)
	return err
}

func (r *memberRepository) FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error) {
	queryStr := "SELECT id, member_id, email, password, display_name, role, status FROM member WHERE 1=1"
	params := []interface{}{}
	paramCount := 1

	if memberQuery.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *memberQuery.Email)
		paramCount++
	}
	if memberQuery.MemberID != nil {
		queryStr += fmt.Sprintf(" AND member_id = $%d", paramCount)
		params = append(params, *memberQuery.MemberID)
		paramCount++
	}
	if memberQuery.ID != nil {
		queryStr += fmt.Sprintf(" AND id = $%d", paramCount)
		params = append(params, *memberQuery.ID)
		paramCount++
	}

	row := r.db.QueryRow(ctx, queryStr, params...)
	var member domain.Member
	err := row.Scan(&member.ID, &member.MemberID, &member.Email, &member.Password, &member.DisplayName, &member.Role, &member.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New("no member found with given criteria")
		}
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) DisplayNames(ctx context.Context, memberIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(memberIDs))
	if len(memberIDs) == 0 {
		return names, nil
	}

	rows, err := r.db.Query(ctx,
		"SELECT member_id, display_name FROM member WHERE member_id = ANY($1)", memberIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}

	return names, rows.Err()
}
