// Package cmd wires the deploy tool's subcommands. Each command is a thin
// driver around the front-end reconciler; all reconciliation logic lives in
// internal/frontend.
package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	awsclient "hako/internal/aws"
	"hako/internal/config"
	"hako/internal/history"
)

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// loadTarget reads the app definition and builds the AWS clients for its
// region. The --region flag wins over the definition's region.
func loadTarget(ctx context.Context, defPath, profile, region string) (*config.Definition, *awsclient.ServiceClient, error) {
	def, err := config.Load(defPath)
	if err != nil {
		return nil, nil, err
	}
	if region == "" {
		region = def.Region
	}

	client, err := awsclient.NewServiceClient(ctx, profile, region)
	if err != nil {
		return nil, nil, err
	}
	return def, client, nil
}

// openHistory returns the local ledger, or a no-op recorder when disabled
// or unavailable. History failures never block a deploy.
func openHistory(logger zerolog.Logger, disabled bool) history.Recorder {
	if disabled {
		return history.Nop{}
	}
	path := history.DefaultPath()
	if path == "" {
		return history.Nop{}
	}
	ledger, err := history.Open(path)
	if err != nil {
		logger.Warn().Err(err).Msg("history ledger unavailable")
		return history.Nop{}
	}
	return ledger
}
