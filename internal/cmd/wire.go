package cmd

import (
	"context"
	"path/filepath"

	"github.com/jzallen/fred-simulations-sub002/internal/observability"
	"github.com/jzallen/fred-simulations-sub002/pkg/batch"
	"github.com/jzallen/fred-simulations-sub002/pkg/job"
	"github.com/jzallen/fred-simulations-sub002/pkg/orphanledger"
	"github.com/jzallen/fred-simulations-sub002/pkg/reconcile"
	"github.com/jzallen/fred-simulations-sub002/pkg/results"
	"github.com/jzallen/fred-simulations-sub002/pkg/run"
	"github.com/jzallen/fred-simulations-sub002/pkg/runstore"
)

// Collaborator construction for commands. Plain constructor injection:
// each command builds exactly the collaborators it needs from config.

func buildRunRepository() run.Repository {
	return runstore.NewRunStore(cfg.Store.Root)
}

func buildJobRepository() job.Repository {
	return runstore.NewJobStore(cfg.Store.Root)
}

func buildLedger() *orphanledger.Ledger {
	return orphanledger.NewLedger(filepath.Join(cfg.Store.Root, "orphans"))
}

func buildGateway(ctx context.Context) (batch.Gateway, error) {
	return batch.New(ctx, batch.Config{
		Queue:      cfg.QueueName(),
		Definition: cfg.DefinitionName(),
		Region:     cfg.AWS.Region,
		Endpoint:   cfg.AWS.Endpoint,
		Profile:    cfg.AWS.Profile,
	}, observability.CLILogger)
}

func buildResultsStore(ctx context.Context) (results.Store, error) {
	return results.NewS3Store(ctx, results.S3Config{
		Bucket:         cfg.Storage.Bucket,
		Region:         cfg.AWS.Region,
		Endpoint:       cfg.AWS.Endpoint,
		Profile:        cfg.AWS.Profile,
		ForcePathStyle: cfg.Storage.ForcePathStyle,
	}, observability.CLILogger)
}

func buildCoordinator(ctx context.Context) (*reconcile.UploadCoordinator, error) {
	store, err := buildResultsStore(ctx)
	if err != nil {
		return nil, err
	}
	return reconcile.NewUploadCoordinator(
		buildRunRepository(),
		buildJobRepository(),
		results.NewZipPackager(observability.CLILogger),
		store,
		buildLedger(),
		reconcile.SystemClock{},
		observability.CLILogger,
	), nil
}
