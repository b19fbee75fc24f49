package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"agri_market_service/internal/member/app"
	"agri_market_service/internal/member/domain"
	"agri_market_service/internal/member/repository"
	"agri_market_service/internal/member/router"
	"agri_market_service/pkg/config"
	"agri_market_service/pkg/database"
	"agri_market_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MemberService, config.EnvConfig.MemberServiceLogPath)

	cfg := config.LoadConfig[config.Member](config.EnvConfig.MemberService, config.EnvConfig.MemberServiceYAMLPath)

	sqlParams := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", cfg.PG.User, cfg.PG.Password, cfg.PG.Host, cfg.PG.Port, cfg.PG.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    sqlParams,
		RetryCount:    cfg.PG.RetryCount,
		RetryInterval: time.Duration(cfg.PG.RetryInterval),
	})

	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", sqlParams)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	memberRepo := repository.NewMemberRepository(pool)

	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.RedisMember.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	redisRepo := database.NewRedisRepository[domain.MemberSession](redisClient)

	usecase := app.NewMemberUseCase(memberRepo, cfg.SessionTTL*time.Minute, redisRepo)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.MemberServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, app.NewMemberHandler(usecase))

	port := ":" + cfg.Port
	logger.Log.Info(fmt.Sprintf("Member Service listening on %s", port))
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
