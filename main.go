// main.go
package main

import (
	"log"

	"hotel-booking/cmd"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/gateway"
	"hotel-booking/internal/notifier"
	"hotel-booking/internal/wire"
	"hotel-booking/pkg/database"
	"hotel-booking/pkg/lock"
	"hotel-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Redis-backed room lock, falls back to in-process locking when
	// Redis is unreachable (single-instance deploys).
	redisClient := lock.NewRedisClient(config.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}
	locker := lock.NewRedisRoomLocker(redisClient, logger)

	// Notification queue; degrades to a no-op publisher when the broker
	// is not configured.
	notif := notifier.NewAMQPNotifier(config.AMQP.URL, logger)
	defer notifier.Close(notif)

	// Wallet provider client and refund payout client
	gatewayClient := gateway.NewClient(config.Gateway, logger)
	payout := gateway.NewPayoutClient(logger)

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, locker, gatewayClient, payout, notif, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
