package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/aqui-app/aqui-api/internal/config"
	"github.com/aqui-app/aqui-api/internal/repository/minio"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
	"github.com/aqui-app/aqui-api/internal/repository/postgres"
	"github.com/aqui-app/aqui-api/internal/repository/redis"
	"github.com/aqui-app/aqui-api/internal/transport/amqp"
	"github.com/aqui-app/aqui-api/internal/transport/mail"
)

// Infra holds the connections behind the repositories. Optional integrations
// stay nil when their address is not configured.
type Infra struct {
	DB        *sqlx.DB
	Cache     ports.MapCache
	Publisher ports.LiveSessionPublisher
	Storage   ports.ObjectStorage
	Mailer    ports.VendorMailer

	closers []io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func setupInfra(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*Infra, error) {
	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	infra := &Infra{DB: db}
	infra.closers = append(infra.closers, db)

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			infra.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		client, err := redis.New(addr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).WithField("addr", addr).Warn("redis unavailable, map cache disabled")
		} else {
			infra.Cache = redis.NewMapCache(client.Client, cfg.MapCacheTTL)
			infra.closers = append(infra.closers, client)
		}
	}

	if url := strings.TrimSpace(cfg.AMQPURL); url != "" {
		publisher, err := amqp.NewPublisher(url, cfg.AMQPExchange)
		if err != nil {
			log.WithError(err).Warn("amqp unavailable, live session events disabled")
		} else {
			infra.Publisher = publisher
			infra.closers = append(infra.closers, closerFunc(func() error {
				publisher.Close()
				return nil
			}))
		}
	}

	if endpoint := strings.TrimSpace(cfg.MinIOEndpoint); endpoint != "" {
		client, err := minio.NewClient(endpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("minio client: %w", err)
		}
		storage := minio.NewStorage(client, endpoint, cfg.MinIOUseSSL)
		bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = storage.EnsureBucket(bucketCtx, cfg.MinIOBucketVendors)
		cancel()
		if err != nil {
			log.WithError(err).WithField("bucket", cfg.MinIOBucketVendors).Warn("ensure vendor bucket")
		}
		infra.Storage = storage
	}

	if strings.TrimSpace(cfg.SMTPHost) != "" {
		infra.Mailer = mail.NewVendorStatusMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	return infra, nil
}

// Close releases connections in reverse order of acquisition.
func (i *Infra) Close() error {
	var first error
	for idx := len(i.closers) - 1; idx >= 0; idx-- {
		if err := i.closers[idx].Close(); err != nil && first == nil {
			first = err
		}
	}
	i.closers = nil
	return first
}
