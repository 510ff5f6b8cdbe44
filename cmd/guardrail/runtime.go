package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/guardrail/internal/config"
	"github.com/pankaj-dahiya-devops/guardrail/internal/engine"
	"github.com/pankaj-dahiya-devops/guardrail/internal/logging"
	"github.com/pankaj-dahiya-devops/guardrail/internal/metrics"
	"github.com/pankaj-dahiya-devops/guardrail/internal/providers/aws/common"
	awssecurity "github.com/pankaj-dahiya-devops/guardrail/internal/providers/aws/security"
)

// runtime is everything a transport needs, built once per process.
type runtime struct {
	cfg      *config.Config
	logger   zerolog.Logger
	recorder *metrics.Recorder
	engine   engine.Engine
}

// engineFactory builds the engine for a loaded configuration. ctx carries
// the process logger.
type engineFactory func(ctx context.Context, cfg *config.Config, rec *metrics.Recorder) (engine.Engine, error)

// cliDeps are the external collaborators of the command tree. Tests replace
// them with fakes.
type cliDeps struct {
	provider  common.AWSClientProvider
	newEngine engineFactory
	stdin     io.Reader
}

// awsEngineFactory wires the engine to real AWS clients resolved through
// provider.
func awsEngineFactory(provider common.AWSClientProvider) engineFactory {
	return func(ctx context.Context, cfg *config.Config, rec *metrics.Recorder) (engine.Engine, error) {
		profile, err := provider.LoadProfile(ctx, cfg.AWS.Profile, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		zerolog.Ctx(ctx).Info().
			Str("profile", profile.ProfileName).
			Str("account_id", profile.AccountID).
			Str("region", profile.Region).
			Msg("AWS configuration loaded")

		admins := awssecurity.NewAdmins(profile.Config)
		return engine.NewDefaultEngine(engine.Dependencies{
			Buckets:   admins.Buckets,
			Groups:    admins.Groups,
			Sink:      admins.Sink,
			Recorder:  rec,
			MatchMode: cfg.MatchMode(),
		}), nil
	}
}

// bootstrap loads .env and the configuration, builds the logger writing to
// logOut, and constructs the engine.
func bootstrap(ctx context.Context, deps cliDeps, configPath string, logOut io.Writer) (*runtime, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.NewFileLoader(configPath).Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.NewWithWriter(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, logOut)
	ctx = logger.WithContext(ctx)

	rec := metrics.NewRecorder()
	eng, err := deps.newEngine(ctx, cfg, rec)
	if err != nil {
		return nil, fmt.Errorf("initialise engine: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, recorder: rec, engine: eng}, nil
}
