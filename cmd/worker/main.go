package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/ligue-leads/internal/infra/logger"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	if cfg.RabbitMQURL == "" {
		log.Error("RABBITMQ_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Error("rabbitmq unavailable", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	var notifier queue.LeadNotifier
	if cfg.MailHost != "" && cfg.MailTo != "" {
		notifier = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword, cfg.MailFrom, cfg.MailTo)
	} else {
		log.Warn("mail not configured, lead notifications disabled")
	}

	var crm queue.CRMSyncer
	if cfg.KommoAPIToken != "" {
		crm = kommo.NewClient(cfg.KommoAPIToken, cfg.KommoBaseURL, log.Logger)
	} else {
		log.Warn("kommo not configured, crm sync disabled")
	}

	worker := queue.NewWorker(rabbitMQ.Ch, notifier, crm, log.Logger)
	if err := worker.Start(ctx, queue.QueueName); err != nil {
		log.Error("worker stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("worker stopped")
}
