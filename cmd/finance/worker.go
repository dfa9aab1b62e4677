package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"finance-tracker-backend/internal/mail"
)

func newMailWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mail-worker",
		Short: "Deliver queued password reset emails through Resend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := setup()
			if err := cfg.ValidateWorker(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dial := func() (*mail.Client, error) {
				return mail.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
			}
			worker := mail.NewWorker(dial, mail.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom), logger)

			logger.Info("Starting mail worker", "queue", cfg.AMQPQueue)
			if err := worker.Run(ctx); err != nil {
				return err
			}
			logger.Info("Mail worker stopped")
			return nil
		},
	}
}
