package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/mentalist/counseling_backend/internal/app"
	"github.com/mentalist/counseling_backend/internal/clock"
	"github.com/mentalist/counseling_backend/internal/config"
	"github.com/mentalist/counseling_backend/internal/controller"
	"github.com/mentalist/counseling_backend/internal/controller/handlers"
	"github.com/mentalist/counseling_backend/internal/notify"
	"github.com/mentalist/counseling_backend/internal/repository"
	"github.com/mentalist/counseling_backend/internal/repository/base"
	"github.com/mentalist/counseling_backend/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "counseling-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, serviceName)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	shutdownTracing, err := app.SetupTracing(ctx, app.TracingConfig{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTelEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	pool, err := app.OpenPool(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	migrator.Close()

	// Repositories
	baseRepo := base.NewRepository(pool)
	txManager := base.NewTxManager(pool)
	users := repository.NewUserRepository(baseRepo)
	windows := repository.NewAvailabilityRepository(baseRepo, logger)
	slots := repository.NewSlotRepository(baseRepo)
	bookings := repository.NewBookingRepository(baseRepo)
	requests := repository.NewScheduleRequestRepository(baseRepo)
	messages := repository.NewMessageRepository(baseRepo)
	moods := repository.NewMoodRepository(baseRepo)
	inbox := repository.NewNotificationRepository(baseRepo)

	clk := clock.System{Location: loc}

	// Notification sinks
	sinks := []notify.Sink{notify.NewInboxSink(inbox)}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		sinks = append(sinks, notify.NewRedisSink(rdb, ""))
	}
	if cfg.KafkaBrokers != "" {
		writer := notify.NewKafkaWriter(cfg.KafkaBrokers)
		defer writer.Close()
		sinks = append(sinks, notify.NewKafkaSink(writer, cfg.KafkaNotifyTopic))
	}
	if cfg.TelegramToken != "" {
		tg, err := bot.New(cfg.TelegramToken)
		if err != nil {
			logger.Warn("Telegram notifications disabled", zap.Error(err))
		} else {
			sinks = append(sinks, notify.NewTelegramSink(tg, users))
		}
	}
	notifier := notify.NewFanout(clk, logger, sinks...)
	logger.Info("Notification sinks ready", zap.Strings("sinks", notifier.Sinks()))

	// Services
	settings := service.Settings{
		Location:      loc,
		HorizonWeeks:  cfg.SlotHorizonWeeks,
		NotifyTimeout: cfg.NotifyTimeout,
	}
	slotService := service.NewSlotService(slots, clk, settings)
	availabilityService := service.NewAvailabilityService(txManager, windows, slots, users, users, notifier, clk, settings, logger)
	bookingService := service.NewBookingService(txManager, bookings, slotService, users, notifier, clk, settings, logger)
	requestService := service.NewScheduleRequestService(requests, users, notifier, clk, settings, logger)
	chatService := service.NewChatService(bookings, messages, settings, logger)
	moodService := service.NewMoodService(moods, clk, settings)
	adminService := service.NewAdminService(users, bookings, windows, logger)
	inboxService := service.NewInboxService(inbox)

	// HTTP
	h := handlers.NewHandlers(handlers.Services{
		Bookings:     bookingService,
		Availability: availabilityService,
		Slots:        slotService,
		Requests:     requestService,
		Chat:         chatService,
		Mood:         moodService,
		Admin:        adminService,
		Inbox:        inboxService,
	}, clk, loc, logger)

	serverCfg := controller.ServerConfig{
		JWTSecret:   []byte(cfg.JWTSecret),
		ServiceName: serviceName,
	}
	if rdb != nil && cfg.RateLimitPerMinute > 0 {
		serverCfg.RateLimiter = handlers.NewRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, "rl:bookings", logger)
	}
	server := controller.NewServer(h, serverCfg, logger)
	server.RegisterRoutes()

	// Background slot top-up
	scheduler := app.NewScheduler(availabilityService, loc, logger)
	if err := scheduler.Start(ctx, cfg.SlotTopUpCron); err != nil {
		return err
	}
	defer scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
