package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docintake/internal/ai"
	"docintake/internal/app"
	"docintake/internal/config"
	"docintake/internal/identity"
	"docintake/internal/intake"
	"docintake/internal/logger"
	"docintake/internal/metrics"
	"docintake/internal/model"
	"docintake/internal/objectstore"
	mysqlClient "docintake/internal/platform/mysql"
	rabbitmqClient "docintake/internal/platform/rabbitmq"
	redisClient "docintake/internal/platform/redis"
	s3Client "docintake/internal/platform/s3"
	"docintake/internal/repository"
	"docintake/internal/session"
	"docintake/internal/worker"
)

type Services struct {
	Auth       *app.AuthService
	Chat       *app.ChatService
	Upload     *app.UploadService
	Reconciler *app.Reconciler
	Directory  *app.DirectoryService
}

type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	ObjectStore  *objectstore.Store
	Registry     *prometheus.Registry
	Metrics      *metrics.Metrics
	UploadWorker *worker.UploadRecordWorker
	Services     Services

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	a := &App{Config: cfg, Logger: log, StartedAt: time.Now()}
	if err := a.connect(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.New(a.Registry)

	directoryRepo := repository.NewDirectoryRepository(a.MySQL)
	uploadRepo := repository.NewUploadRecordRepository(a.MySQL)

	a.UploadWorker = worker.NewUploadRecordWorker(a.MQConn, uploadRepo, cfg.RabbitMQ.UploadEventQueue, log.With("component", "upload_worker"))
	if err := a.UploadWorker.Start(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("start upload worker failed: %w", err)
	}

	a.Services = buildServices(cfg, log, a, directoryRepo, uploadRepo)
	log.Info("bootstrap complete",
		"identity_strategy", cfg.Identity.Strategy,
		"bucket", cfg.Storage.Bucket,
		"models", len(cfg.LLM.Models),
	)
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config

	mysqlDB, err := mysqlClient.New(ctx, mysqlClient.Options{
		DSN:    cfg.MySQLDSN(),
		Models: []interface{}{&model.DirectoryEntry{}, &model.UploadRecord{}},
	})
	if err != nil {
		return err
	}
	a.MySQL = mysqlDB

	redisCli, err := redisClient.New(ctx, redisClient.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	a.Redis = redisCli

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.UploadEventQueue)
	if err != nil {
		return err
	}
	a.MQConn = mqConn

	s3, err := s3Client.New(ctx, s3Client.Options{
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Region:          cfg.Storage.Region,
		Endpoint:        cfg.Storage.Endpoint,
		UsePathStyle:    cfg.Storage.UsePathStyle,
	})
	if err != nil {
		return err
	}
	a.ObjectStore = objectstore.New(s3, cfg.Storage.Bucket, cfg.StorageTimeout())
	if err := a.ObjectStore.Ping(ctx); err != nil {
		// Uploads fail with a store error until the bucket is reachable; the rest of the service still works.
		a.Logger.Warn("object store not reachable at startup", "bucket", cfg.Storage.Bucket, "error", err)
	}
	return nil
}

func buildServices(
	cfg *config.Config,
	log *slog.Logger,
	a *App,
	directoryRepo *repository.DirectoryRepository,
	uploadRepo *repository.UploadRecordRepository,
) Services {
	clock := time.Now
	if cfg.App.UTC {
		clock = app.UTCClock
	}

	var resolver identity.Resolver = identity.NewDirectResolver()
	if cfg.Identity.Strategy == config.IdentityDirectory {
		resolver = identity.NewDirectoryResolver(directoryRepo)
	}

	models := make([]app.ModelInfo, 0, len(cfg.LLM.Models))
	for _, m := range cfg.LLM.Models {
		models = append(models, app.ModelInfo{ID: m.ID, Name: m.Name, Developer: m.Developer, MaxTokens: m.MaxTokens})
	}

	chat := app.NewChatService(
		session.NewRedisStore(a.Redis, cfg.SessionTTL()),
		ai.NewOpenAICompatibleClient(cfg.LLMTimeout()),
		app.ChatOptions{
			BaseURL:      cfg.LLM.BaseURL,
			APIKey:       cfg.LLM.APIKey,
			SystemPrompt: cfg.LLM.SystemPrompt,
			DefaultModel: cfg.LLM.DefaultModel,
			MinTokens:    cfg.LLM.MinTokens,
			Models:       models,
		},
		a.Metrics,
		log.With("component", "chat"),
		clock,
	)

	return Services{
		Auth: app.NewAuthService(resolver, chat, cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.JWTExpiration()),
		Chat: chat,
		Upload: app.NewUploadService(
			a.ObjectStore,
			intake.NewValidator(cfg.Storage.MaxUploadBytes),
			rabbitmqClient.NewUploadEventPublisher(a.MQConn, cfg.RabbitMQ.UploadEventQueue),
			a.Metrics,
			log.With("component", "upload"),
			clock,
		),
		Reconciler: app.NewReconciler(uploadRepo, a.ObjectStore, a.Metrics, log.With("component", "reconciler")),
		Directory:  app.NewDirectoryService(directoryRepo),
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.UploadWorker != nil {
		a.UploadWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
