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

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
	"github.com/pankaj-dahiya-devops/guardrail/internal/output"
	"github.com/pankaj-dahiya-devops/guardrail/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/guardrail/internal/server"
	"github.com/pankaj-dahiya-devops/guardrail/internal/version"
)

// errStatusError is returned by replay when the envelope ended in status
// "error", so scripts see a non-zero exit.
var errStatusError = errors.New("invocation ended with status error")

func newRootCmd() *cobra.Command {
	provider := common.NewDefaultAWSClientProvider()
	return newRootCmdWith(cliDeps{
		provider:  provider,
		newEngine: awsEngineFactory(provider),
		stdin:     os.Stdin,
	})
}

func newRootCmdWith(deps cliDeps) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "guardrail",
		Short:         "guardrail: event-driven AWS misconfiguration remediation and compliance evaluation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config file (default: $GUARDRAIL_CONFIG or /etc/guardrail/config.yaml)")

	root.AddCommand(newLambdaCmd(deps, &configPath))
	root.AddCommand(newServeCmd(deps, &configPath))
	root.AddCommand(newReplayCmd(deps, &configPath))
	root.AddCommand(newDoctorCmd(deps, &configPath))
	root.AddCommand(newVersionCmd())
	return root
}

func newLambdaCmd(deps cliDeps, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as an AWS Lambda function handler",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), deps, *configPath, os.Stdout)
			if err != nil {
				return err
			}
			rt.logger.Info().Str("version", version.Version).Msg("starting lambda handler")
			lambda.Start(lambdaHandler(rt))
			return nil
		},
	}
}

// lambdaHandler adapts the engine to the Lambda runtime. Failures are
// reported in the returned Status, never as a Lambda error, so the event is
// not redelivered for a failure that a retry cannot fix.
func lambdaHandler(rt *runtime) func(ctx context.Context, raw json.RawMessage) (models.Status, error) {
	return func(ctx context.Context, raw json.RawMessage) (models.Status, error) {
		ctx = rt.logger.WithContext(ctx)
		return rt.engine.Handle(ctx, raw), nil
	}
}

func newServeCmd(deps cliDeps, configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the event endpoint over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), deps, *configPath, os.Stdout)
			if err != nil {
				return err
			}
			if addr != "" {
				rt.cfg.Server.Addr = addr
			}

			api := server.NewWebAPI(rt.logger, server.Config{
				Addr:            rt.cfg.Server.Addr,
				ShutdownTimeout: rt.cfg.Server.ShutdownTimeout,
				Dependencies: server.Dependencies{
					Engine:  rt.engine,
					Metrics: rt.recorder.Handler(),
				},
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return api.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr and GUARDRAIL_HTTP_ADDR)")
	return cmd
}

func newReplayCmd(deps cliDeps, configPath *string) *cobra.Command {
	var (
		eventPath string
		format    string
		colored   bool
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Process one recorded envelope and print the resulting status",
		Long: "Process one recorded envelope from a file (or stdin with --event -) and print the\n" +
			"resulting status as JSON or a table. Corrective actions are applied for real.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !output.ValidFormat(format) {
				return fmt.Errorf("--output must be %q or %q, got %q", output.FormatJSON, output.FormatTable, format)
			}
			raw, err := readEvent(eventPath, deps.stdin)
			if err != nil {
				return err
			}
			rt, err := bootstrap(cmd.Context(), deps, *configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts := output.TableOptions{Colored: colored}
			return runReplay(rt.logger.WithContext(cmd.Context()), rt, raw, cmd.OutOrStdout(), format, opts)
		},
	}
	cmd.Flags().StringVar(&eventPath, "event", "-", `Path to the envelope JSON file, or "-" for stdin`)
	cmd.Flags().StringVarP(&format, "output", "o", output.FormatJSON, "Output format: json or table")
	cmd.Flags().BoolVar(&colored, "color", false, "Colorize table output")
	return cmd
}

func readEvent(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read event from stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event file %q: %w", path, err)
	}
	return raw, nil
}

// runReplay hands raw to the engine and renders the resulting status.
func runReplay(ctx context.Context, rt *runtime, raw []byte, w io.Writer, format string, opts output.TableOptions) error {
	status := rt.engine.Handle(ctx, json.RawMessage(raw))
	if err := output.RenderStatus(w, status, format, opts); err != nil {
		return err
	}
	if status.Status == models.StatusError {
		return errStatusError
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}
