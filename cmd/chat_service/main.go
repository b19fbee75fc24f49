package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	catalogdomain "agri_market_service/internal/catalog/domain"
	catalogrepo "agri_market_service/internal/catalog/repository"
	"agri_market_service/internal/chat/app"
	"agri_market_service/internal/chat/domain"
	"agri_market_service/internal/chat/repository"
	"agri_market_service/internal/chat/router"
	memberrepo "agri_market_service/internal/member/repository"
	"agri_market_service/pkg/config"
	"agri_market_service/pkg/database"
	"agri_market_service/pkg/logger"
	testtool "agri_market_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	testtool.StartPprof()

	ctx := context.Background()

	// mongo holds the rooms and the product read model
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// redis carries the pub/sub backplane
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// postgres holds member accounts, read here for display names
	pgConnStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.PG.User, cfg.PG.Password, cfg.PG.Host, cfg.PG.Port, cfg.PG.Database)
	pgPool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    pgConnStr,
		RetryCount:    cfg.PG.RetryCount,
		RetryInterval: time.Duration(cfg.PG.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect postgres err : %v", err))
	}
	defer pgPool.Close()

	roomRepo := repository.NewMongoChatRoomRepository(mongo.Database)
	productRepo := catalogrepo.NewMongoProductRepository(mongo.Database)
	memberRepo := memberrepo.NewMemberRepository(pgPool)
	pub := repository.NewRedisPubSub(redisClient)

	var notices app.NoticeSink
	if cfg.Kafka.Enabled {
		writer, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
		})
		if err != nil {
			logger.Log.Fatal(fmt.Sprintf("connect kafka err : %v", err))
		}
		defer writer.Close()
		notices = repository.NewKafkaNotifier(writer)
	}

	hub := app.NewHub()
	sendMessageUC := app.NewSendMessageUseCase(roomRepo, pub, notices)
	activeChatsUC := app.NewActiveChatsUseCase(roomRepo, productRepo, memberRepo)

	// every delivery to a session comes through the backplane relay
	relay := app.NewBackplaneRelay(hub, pub)
	if err := relay.Start(ctx); err != nil {
		logger.Log.Fatal(fmt.Sprintf("backplane relay err : %v", err))
	}

	if cfg.Market.WatchStock {
		watcher := catalogrepo.NewStockWatcher(mongo.Database)
		go watcher.Watch(ctx, func(change catalogdomain.StockChange) {
			hub.BroadcastAll(domain.WSResponse{
				Action:  domain.EventStockUpdate,
				Success: true,
				Payload: map[string]interface{}{
					"product_id": change.ProductID,
					"quantity":   change.Quantity,
					"timestamp":  change.Timestamp,
				},
			})
		})
	}

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, app.NewChatWebsocketHandler(hub, sendMessageUC, activeChatsUC), activeChatsUC, sendMessageUC, productRepo)

	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
