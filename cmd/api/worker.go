package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xavierca1/kiwipay-leads/internal/infra/mail"
	"github.com/xavierca1/kiwipay-leads/internal/infra/queue"
)

// notifyWorkerCmd roda fora da API: consome os eventos de lead e manda email ao back office.
func notifyWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify-worker",
		Short: "Consome eventos de lead do RabbitMQ e envia notificações por email",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.RabbitMQURL == "" {
				return errors.New("RABBITMQ_URL is required for notify-worker")
			}
			if !cfg.Mail.Enabled() || cfg.NotifyTo == "" {
				return errors.New("MAIL_HOST, MAIL_FROM e NOTIFY_TO são obrigatórios para notify-worker")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
			if err != nil {
				return err
			}
			defer rabbit.Close()

			sender := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Pass,
				cfg.Mail.From, cfg.NotifyTo, cfg.Timezone)

			worker := queue.NewWorker(rabbit.Ch, sender, logger)
			return worker.Start(ctx, queue.QueueName)
		},
	}
}
