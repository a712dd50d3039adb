package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"dropship-tracking/internal/config"
	"dropship-tracking/internal/database"
	"dropship-tracking/internal/manifest"
	"dropship-tracking/internal/metrics"
	"dropship-tracking/internal/notify"
	"dropship-tracking/internal/service"
	"dropship-tracking/internal/transfer"
	"dropship-tracking/internal/worker"
)

type app struct {
	db      *sql.DB
	orders  *service.OrderService
	metrics *metrics.Registry
	worker  *worker.TrackingWorker
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	methods, err := manifest.LoadShipMethods(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	transferCfg := transfer.Config{
		Kind:       cfg.Transfer.Kind,
		Host:       cfg.Transfer.Host,
		Port:       cfg.Transfer.Port,
		User:       cfg.Transfer.User,
		Password:   cfg.Transfer.Password,
		KnownHosts: cfg.Transfer.KnownHosts,
		Dir:        cfg.Transfer.Dir,
		Timeout:    cfg.Transfer.Timeout,
	}
	if cfg.DryRun {
		transferCfg.Kind = "dir"
		slog.Info("dry run: manifests go to a local directory", "dir", cfg.Transfer.Dir)
	}
	dial, err := transfer.NewDialer(transferCfg)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDB(ctx, cfg.DatabaseURI)
	if err != nil {
		return nil, err
	}
	a := &app{
		db:      db,
		orders:  service.NewOrderService(db, cfg.ExcludedPartner),
		metrics: metrics.NewRegistry(),
	}
	a.closers = append(a.closers, func() error { database.CloseDB(db); return nil })

	notifier, err := a.notifier(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.worker = worker.NewTrackingWorker(worker.Options{
		Store:   a.orders,
		Fetcher: service.NewSellerCloudClient(cfg.SellerCloud.URL, cfg.SellerCloud.Username, cfg.SellerCloud.Password, cfg.SellerCloud.Timeout),
		Dial:    dial,
		Methods: methods,
		Layout: manifest.Layout{
			Root:           cfg.Transfer.RemoteRoot,
			FolderOverride: cfg.Transfer.FolderOverride,
		},
		Notifier:   notifier,
		RunLog:     service.NewRunLogService(db),
		Metrics:    a.metrics,
		Workers:    cfg.FetchWorkers,
		Interval:   cfg.RunInterval,
		RunTimeout: cfg.RunTimeout,
		DryRun:     cfg.DryRun,
	})
	return a, nil
}

func (a *app) notifier(cfg *config.Config) (notify.Notifier, error) {
	var notifiers []notify.Notifier

	if cfg.SMTP.Host != "" {
		sender, err := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			return nil, err
		}
		mailer, err := notify.NewMailer(sender, notify.MailerConfig{
			ReplyTo:       cfg.Notify.ReplyTo,
			ITEmail:       cfg.Notify.ITEmail,
			TestRecipient: cfg.Notify.TestRecipient,
		})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, mailer)
	} else {
		slog.Warn("SMTP_HOST not set, email notifications disabled")
	}

	if cfg.Kafka.Brokers != "" {
		publisher := notify.NewEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, publisher.Close)
		notifiers = append(notifiers, publisher)
	}

	return notify.Multi(notifiers...), nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Error("failed to release resource", "error", err)
		}
	}
}
