package app

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"agri_market_service/internal/member/domain"
	"agri_market_service/internal/member/repository"
	"agri_market_service/pkg/database"
	testtool "agri_market_service/pkg/test_tool"
	"agri_market_service/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const memberIntegrationEnv = "MEMBER_INTEGRATION"

const memberSchema = `
CREATE TABLE IF NOT EXISTS member (
    id           BIGSERIAL PRIMARY KEY,
    member_id    TEXT UNIQUE NOT NULL,
    email        TEXT UNIQUE NOT NULL,
    password     TEXT NOT NULL,
    display_name TEXT NOT NULL DEFAULT '',
    role         TEXT NOT NULL DEFAULT 'buyer',
    status       INT  NOT NULL DEFAULT 0
)`

func TestMemberLifecycle_Integration(t *testing.T) {
	if os.Getenv(memberIntegrationEnv) == "" {
		t.Skipf("set %s=1 to run container-backed tests", memberIntegrationEnv)
	}

	ctx := context.Background()

	pgContainer, pgHost, pgPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image: "postgres:latest",
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	})
	require.NoError(t, err)
	defer pgContainer.Terminate(ctx)

	redisContainer, redisHost, redisPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:latest",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
	require.NoError(t, err)
	defer redisContainer.Terminate(ctx)

	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", pgHost, pgPort),
		RetryCount:    5,
		RetryInterval: 5,
	})
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, memberSchema)
	require.NoError(t, err)

	redisClient, err := database.NewRedisClientWithAddr(fmt.Sprintf("%s:%s", redisHost, redisPort), 0)
	require.NoError(t, err)
	redisRepo := database.NewRedisRepository[domain.MemberSession](redisClient)

	memberRepo := repository.NewMemberRepository(pool)
	uc := NewMemberUseCase(memberRepo, time.Hour, redisRepo)

	email := "farm@example.com"
	password := "!Integration123"

	require.NoError(t, uc.Register(ctx, email, password, "Green Valley Farm", token.RoleSeller))

	// duplicate registration is rejected
	assert.Error(t, uc.Register(ctx, email, password, "Green Valley Farm", token.RoleSeller))

	jwt, err := uc.Login(ctx, email, password)
	require.NoError(t, err)
	claims, err := token.ParseJWT(jwt)
	require.NoError(t, err)
	assert.Equal(t, string(token.RoleSeller), claims.Role)

	expired, err := uc.CheckSessionTimeout(ctx, jwt)
	require.NoError(t, err)
	assert.False(t, expired)

	names, err := uc.DisplayNames(ctx, []string{claims.MemberID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{claims.MemberID: "Green Valley Farm"}, names)

	require.NoError(t, uc.Logout(ctx, jwt))

	member, err := uc.FindMember(ctx, &domain.MemberQuery{MemberID: &claims.MemberID})
	require.NoError(t, err)
	assert.Equal(t, domain.MemberStatusOffLine, member.Status)
}
