package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spicon/registration/internal/application/dispatcher"
	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/application/service"
	"github.com/spicon/registration/internal/config"
	"github.com/spicon/registration/internal/domain/event"
	"github.com/spicon/registration/internal/email"
	"github.com/spicon/registration/internal/infrastructure/auth"
	"github.com/spicon/registration/internal/infrastructure/persistence/repository"
	"github.com/spicon/registration/internal/infrastructure/persistence/sqlite"
	"github.com/spicon/registration/internal/infrastructure/storage"
	httpiface "github.com/spicon/registration/internal/interfaces/http"
	"github.com/spicon/registration/pkg/database"
	"github.com/spicon/registration/pkg/utils"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting conference registration service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer sqlDB.Close()

	// Run migrations
	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	db := sqlite.NewDB(sqlDB, cfg.Database.OpTimeout, logger)

	// Initialize repositories
	recordRepo := repository.NewPaymentRecordRepository(db, logger)
	requestRepo := repository.NewWorkerRequestRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)

	// Initialize infrastructure adapters
	files := storage.NewLocalFileStorage(cfg.Storage.UploadDir, logger)
	tokens := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration, cfg.Auth.Issuer)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	kv := kvLogger{logger.Sugar()}

	events := dispatcher.NewDispatcher(kv)
	defer events.Close()

	// Outcome emails are best effort and disabled without an SMTP host.
	// Delivery runs through the dispatcher, off the decision request path.
	var notifier port.RegistrationNotifier
	if cfg.Email.Host != "" {
		sender := email.NewSender(email.Config{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		}, logger)
		events.Subscribe(event.TypeRegistrationApproved, "approval-email",
			func(ctx context.Context, evt *event.Event) error {
				return sender.NotifyApproved(ctx, evt.Record)
			})
		events.Subscribe(event.TypeRegistrationRejected, "rejection-email",
			func(ctx context.Context, evt *event.Event) error {
				return sender.NotifyRejected(ctx, evt.Record)
			})
		notifier = dispatcher.NewRegistrationNotifier(events)
	}

	// Initialize application services
	services := httpiface.Services{
		Registration: service.NewRegistrationService(recordRepo, db, kv),
		Registrar: service.NewRegistrarService(recordRepo, db, notifier, service.RegistrarConfig{
			EventCode: cfg.Registration.EventCode,
			PadWidth:  cfg.Registration.PadWidth,
		}, kv),
		Expense: service.NewExpenseService(requestRepo, db, kv),
		Summary: service.NewSummaryService(recordRepo, requestRepo, kv),
		Import:  service.NewImportService(recordRepo, db, kv),
		Auth:    service.NewAuthService(userRepo, tokens, hasher, kv),
	}

	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		UploadDir:    cfg.Storage.UploadDir,
	}, services, files, tokens, kv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}

	logger.Info("Server exited")
}

// kvLogger adapts a sugared zap logger to the key-value logging interface
// the service and http layers expect
type kvLogger struct {
	s *zap.SugaredLogger
}

func (l kvLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l kvLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
