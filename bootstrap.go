package main

import (
	"context"
	"fmt"
	"io"

	"github.com/ShashankBhake/st-shield-backend/cache"
	"github.com/ShashankBhake/st-shield-backend/config"
	"github.com/ShashankBhake/st-shield-backend/database"
	"github.com/ShashankBhake/st-shield-backend/events"
	"github.com/ShashankBhake/st-shield-backend/export"
	"github.com/ShashankBhake/st-shield-backend/notifications"
	awspkg "github.com/ShashankBhake/st-shield-backend/pkg/aws"
	"github.com/ShashankBhake/st-shield-backend/providers"
	"github.com/ShashankBhake/st-shield-backend/repository"
	"github.com/ShashankBhake/st-shield-backend/sender"
	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// dependencies holds the driver-selected collaborators and what must be
// released on shutdown.
type dependencies struct {
	provider   providers.PaymentProvider
	orders     cache.OrderCache
	repo       repository.PolicyRepository
	dispatcher notifications.Dispatcher
	publisher  events.Publisher
	exports    export.Storage

	db *gorm.DB
}

func bootstrap(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config, awsReady bool, log *zap.Logger) (*dependencies, error) {
	deps := &dependencies{}

	// A missing provider leaves the interface nil so services answer 503.
	if rp, err := providers.NewRazorpayProvider(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL); err == nil {
		deps.provider = rp
	} else {
		log.Warn("Razorpay not configured, payment endpoints will return 503")
	}

	switch cfg.CacheDriver {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		deps.orders = cache.NewRedisOrderCache(client, cfg.OrderTTL)
	default:
		deps.orders = cache.NewMemoryOrderCache(cfg.OrderTTL)
	}

	switch cfg.StoreDriver {
	case "postgres":
		db, err := database.ConnectPostgres(cfg.PostgresDSN(), log)
		if err != nil {
			return nil, err
		}
		deps.db = db
		deps.repo = repository.NewGormPolicyRepository(db)
	default:
		if !awsReady {
			return nil, fmt.Errorf("STORE_DRIVER=dynamodb requires AWS configuration")
		}
		client := database.NewDynamoClient(awsCfg)
		if awspkg.UsesCustomEndpoint(awsCfg) {
			if err := database.EnsurePolicyTable(ctx, client, cfg.PoliciesTable, log); err != nil {
				return nil, err
			}
		}
		deps.repo = repository.NewDynamoPolicyRepository(client, cfg.PoliciesTable)
	}

	dispatcher, err := buildDispatcher(ctx, cfg, awsCfg, awsReady, log)
	if err != nil {
		return nil, err
	}
	deps.dispatcher = dispatcher

	switch cfg.EventBus {
	case "sns":
		if !awsReady {
			return nil, fmt.Errorf("EVENT_BUS=sns requires AWS configuration")
		}
		deps.publisher = events.NewSNSPublisher(awspkg.NewSNSClient(awsCfg), cfg.EventTopicARN)
	case "kafka":
		deps.publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
	default:
		deps.publisher = events.NopPublisher{}
	}

	if cfg.ExportS3Bucket != "" && awsReady {
		deps.exports = export.NewS3Storage(awspkg.NewS3Bucket(awsCfg, cfg.ExportS3Bucket), cfg.ExportS3Prefix)
	} else {
		local, err := export.NewLocalStorage(cfg.ExportDir)
		if err != nil {
			return nil, err
		}
		deps.exports = local
	}

	return deps, nil
}

// buildDispatcher returns nil when SMTP is not configured, which disables email.
func buildDispatcher(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config, awsReady bool, log *zap.Logger) (notifications.Dispatcher, error) {
	if !cfg.SMTPConfigured() {
		log.Warn("SMTP not configured, emails disabled")
		return nil, nil
	}

	smtpSender, err := sender.NewSMTPSender(sender.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.EmailFrom,
	})
	if err != nil {
		return nil, err
	}

	if cfg.NotifyQueue == "sqs" {
		if !awsReady {
			return nil, fmt.Errorf("NOTIFY_QUEUE=sqs requires AWS configuration")
		}
		d := notifications.NewSQSDispatcher(awspkg.NewSQSQueue(awsCfg, cfg.NotifyQueueURL, log), smtpSender, log)
		d.Start(ctx)
		return d, nil
	}

	return notifications.NewQueueDispatcher(smtpSender, notifications.QueueConfig{
		Workers:     cfg.EmailWorkers,
		MaxAttempts: cfg.EmailMaxAttempts,
	}, log), nil
}

func (d *dependencies) close(ctx context.Context, log *zap.Logger) {
	if d.dispatcher != nil {
		if err := d.dispatcher.Close(ctx); err != nil {
			log.Warn("Email dispatcher did not drain", zap.Error(err))
		}
	}
	closers := map[string]io.Closer{"order cache": d.orders, "event publisher": d.publisher}
	for name, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			log.Warn("Failed to close "+name, zap.Error(err))
		}
	}
	if d.db != nil {
		if err := database.ClosePostgres(d.db); err != nil {
			log.Warn("Failed to close database", zap.Error(err))
		}
	}
}
