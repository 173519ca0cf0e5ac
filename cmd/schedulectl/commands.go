package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scheduler/internal/adapter/dto/call"
	"github.com/johnquangdev/interview-scheduler/internal/adapter/dto/common"
	"github.com/johnquangdev/interview-scheduler/internal/adapter/handler"
	"github.com/johnquangdev/interview-scheduler/internal/app"
	"github.com/johnquangdev/interview-scheduler/internal/infrastructure/database"
	"github.com/johnquangdev/interview-scheduler/internal/usecase/pipeline"
	"github.com/johnquangdev/interview-scheduler/pkg/callprovider"
	"github.com/johnquangdev/interview-scheduler/pkg/config"
	"github.com/johnquangdev/interview-scheduler/pkg/jwt"
)

// errRunFailed marks a command whose pipeline outcome was not a success; the outcome is already printed
var errRunFailed = errors.New("one or more calls did not complete")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "schedulectl",
		Short:         "Operate the interview scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCompleteCmd(),
		newBatchCmd(),
		newMeetingsCmd(),
		newTranscriptsCmd(),
		newCallsCmd(),
		newTokenCmd(),
		newMigrateCmd(),
	)
	return root
}

// --- complete ---

func newCompleteCmd() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "complete <call-id>",
		Short: "Run the post-call pipeline for one call",
		Long: `Run the post-call pipeline for one call and print its outcome.

Examples:
  schedulectl complete 9f1c2b7e-0d
  schedulectl complete 9f1c2b7e-0d --name "Asha Rao" --email asha@example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				outcome := a.Pipeline.Complete(ctx, pipeline.CallRequest{CallID: args[0], Name: name, Email: email})
				if err := printJSON(cmd.OutOrStdout(), call.ToOutcomeResponse(outcome)); err != nil {
					return err
				}
				if !outcome.Status.Succeeded() {
					return errRunFailed
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "invitee name, overrides the provider")
	cmd.Flags().StringVar(&email, "email", "", "invitee email, overrides the provider")
	return cmd
}

// --- batch ---

func newBatchCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "batch <call-id>...",
		Short: "Run the pipeline for several calls in submission order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if concurrency > 0 {
				cfg.Pipeline.BatchConcurrency = concurrency
			}
			return runApp(cmd, cfg, func(ctx context.Context, a *app.App) error {
				reqs := make([]pipeline.CallRequest, 0, len(args))
				for _, id := range args {
					reqs = append(reqs, pipeline.CallRequest{CallID: id})
				}
				resp := call.ToBatchResponse(a.Pipeline.CompleteBatch(ctx, reqs))
				if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
				if resp.Failed > 0 {
					return errRunFailed
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "calls processed in parallel (default PIPELINE_BATCH_CONCURRENCY)")
	return cmd
}

// --- meetings / transcripts ---

func newMeetingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "meetings",
		Short: "List stored meetings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, s handler.RecordReader) error {
				meetings, err := s.FindMeetings(ctx)
				if err != nil {
					return err
				}
				items := call.ToMeetingResponses(meetings)
				return printJSON(cmd.OutOrStdout(), common.NewListResponse(items, len(items)))
			})
		},
	}
}

func newTranscriptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcripts",
		Short: "List stored transcripts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, s handler.RecordReader) error {
				transcripts, err := s.FindTranscripts(ctx)
				if err != nil {
					return err
				}
				items := call.ToTranscriptResponses(transcripts)
				return printJSON(cmd.OutOrStdout(), common.NewListResponse(items, len(items)))
			})
		},
	}
}

// --- calls ---

func newCallsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calls",
		Short: "List calls known to the call provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadUnvalidated()
			if err != nil {
				return err
			}
			if cfg.CallProvider.APIKey == "" {
				return fmt.Errorf("CALL_PROVIDER_API_KEY is required")
			}
			logs, err := callprovider.NewClient(&cfg.CallProvider).ListCalls(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), common.NewListResponse(logs, len(logs)))
		},
	}
}

// --- token ---

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <operator>",
		Short: "Mint an operator bearer token for the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadUnvalidated()
			if err != nil {
				return err
			}
			token, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry).GenerateOperatorToken(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}

// --- migrate ---

func newMigrateCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadUnvalidated()
			if err != nil {
				return err
			}
			logger, err := app.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.Open(cfg, logger)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}

			var n int
			if direction == "down" {
				n, err = database.Rollback(db, cfg.Database.Driver, steps, logger)
			} else {
				n, err = database.Migrate(db, cfg.Database.Driver, logger)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d migration(s) applied\n", direction, n)
			return err
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "migrations to roll back with down")
	return cmd
}

// --- helpers ---

func withApp(cmd *cobra.Command, fn func(context.Context, *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return runApp(cmd, cfg, fn)
}

func runApp(cmd *cobra.Command, cfg *config.Config, fn func(context.Context, *app.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}()
	return fn(ctx, a)
}

func withStore(cmd *cobra.Command, fn func(context.Context, handler.RecordReader) error) error {
	cfg, err := config.LoadUnvalidated()
	if err != nil {
		return err
	}
	logger, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, store, err := app.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)
	return fn(cmd.Context(), store)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
