package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/susnata2002/ai-scheduling-bot/internal/availability"
	"github.com/susnata2002/ai-scheduling-bot/internal/calendar"
	"github.com/susnata2002/ai-scheduling-bot/internal/config"
	"github.com/susnata2002/ai-scheduling-bot/internal/db"
	"github.com/susnata2002/ai-scheduling-bot/internal/fuzzytime"
	"github.com/susnata2002/ai-scheduling-bot/internal/migrate"
	"github.com/susnata2002/ai-scheduling-bot/internal/nlp"
	"github.com/susnata2002/ai-scheduling-bot/internal/notify"
	"github.com/susnata2002/ai-scheduling-bot/internal/requests"
	"github.com/susnata2002/ai-scheduling-bot/internal/scheduling"
)

func newRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Manage scheduling requests (non-UI)",
	}
	cmd.AddCommand(newRequestCreateCmd())
	cmd.AddCommand(newRequestListCmd())
	cmd.AddCommand(newRequestIngestCmd())
	return cmd
}

func newService(cfg config.Config, repo *requests.Repo) (*scheduling.Service, error) {
	gcal, err := calendar.NewGoogle(cfg.GoogleServiceAccountFile)
	if err != nil {
		return nil, err
	}
	return &scheduling.Service{
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
	}, nil
}

func newRequestCreateCmd() *cobra.Command {
	var candidate, recruiter string

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a request and email the candidate for availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			repo := requests.NewRepo(d)
			svc, err := newService(cfg, repo)
			if err != nil {
				return err
			}

			id, err := svc.Initiate(ctx, candidate, recruiter)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created request id=%d, availability ask sent to %s\n", id, candidate)
			return nil
		},
	}

	c.Flags().StringVar(&candidate, "candidate", "", "candidate email")
	c.Flags().StringVar(&recruiter, "recruiter", "", "recruiter email (calendar owner)")
	_ = c.MarkFlagRequired("candidate")
	_ = c.MarkFlagRequired("recruiter")
	return c
}

func newRequestListCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Short: "List scheduling requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			repo := requests.NewRepo(d)
			reqs, err := repo.List(ctx)
			if err != nil {
				return err
			}
			for _, r := range reqs {
				scheduled := "-"
				if r.ScheduledStart != nil && r.ScheduledEnd != nil {
					scheduled = r.ScheduledStart.Format(time.RFC3339) + ".." + r.ScheduledEnd.Format(time.RFC3339)
				}
				fmt.Fprintf(os.Stdout, "id=%d candidate=%s recruiter=%s status=%s windows=%d scheduled=%s\n",
					r.ID, r.CandidateEmail, r.RecruiterEmail, r.Status, len(r.Availability), scheduled)
			}
			return nil
		},
	}
	return c
}

func newRequestIngestCmd() *cobra.Command {
	var id int64
	var file string

	c := &cobra.Command{
		Use:   "ingest",
		Short: "Feed a candidate reply from a file (stand-in for the email webhook)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			body, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			repo := requests.NewRepo(d)
			svc, err := newService(cfg, repo)
			if err != nil {
				return err
			}

			if err := svc.Ingest(ctx, id, string(body)); err != nil {
				return err
			}
			req, err := repo.Get(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "request id=%d status=%s windows=%d\n", req.ID, req.Status, len(req.Availability))
			return nil
		},
	}

	c.Flags().Int64Var(&id, "id", 0, "request id")
	c.Flags().StringVar(&file, "file", "", "path to a file holding the reply text")
	_ = c.MarkFlagRequired("id")
	_ = c.MarkFlagRequired("file")
	return c
}
