package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/susnata2002/ai-scheduling-bot/internal/auth"
	"github.com/susnata2002/ai-scheduling-bot/internal/availability"
	"github.com/susnata2002/ai-scheduling-bot/internal/calendar"
	"github.com/susnata2002/ai-scheduling-bot/internal/config"
	"github.com/susnata2002/ai-scheduling-bot/internal/db"
	"github.com/susnata2002/ai-scheduling-bot/internal/fuzzytime"
	"github.com/susnata2002/ai-scheduling-bot/internal/migrate"
	"github.com/susnata2002/ai-scheduling-bot/internal/nlp"
	"github.com/susnata2002/ai-scheduling-bot/internal/notify"
	"github.com/susnata2002/ai-scheduling-bot/internal/requests"
	"github.com/susnata2002/ai-scheduling-bot/internal/scheduler"
	"github.com/susnata2002/ai-scheduling-bot/internal/scheduling"
	"github.com/susnata2002/ai-scheduling-bot/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the web UI, inbound-email webhook and recovery sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			authStore := auth.NewStore(d, cfg.CookieHashKey, cfg.CookieBlockKey)
			repo := requests.NewRepo(d)

			gcal, err := calendar.NewGoogle(cfg.GoogleServiceAccountFile)
			if err != nil {
				return err
			}

			svc := &scheduling.Service{
				Store: repo,
				Parser: availability.NewParser(
					nlp.NewExtractor(nlp.Config{
						APIKey:  cfg.OpenAIAPIKey,
						BaseURL: cfg.OpenAIBaseURL,
						Model:   cfg.OpenAIModel,
					}),
					fuzzytime.New(),
				),
				Calendar: gcal,
				Mailer:   notify.NewSendGrid(cfg.SendGridAPIKey, cfg.SenderEmail),
				Duration: cfg.InterviewDuration,
			}

			// recovery sweeper
			s := &scheduler.Scheduler{
				Queue:      repo,
				Attempter:  svc,
				Interval:   cfg.SweepInterval,
				RetryAfter: cfg.RetryAfter,
			}
			go func() { _ = s.Run(ctx) }()

			// web
			ws := &web.Server{Auth: authStore, Requests: repo, Sched: svc, BaseURL: cfg.BaseURL}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes())
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
