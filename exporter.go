package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/ipcensus/ipcensus/census"
)

// runExport builds and publishes a snapshot. In daemon mode the first
// build runs immediately, then once a day at the configured hour. The
// snapshot file is left untouched when a build fails.
func runExport(ctx context.Context, conf *config, log census.Logger, once bool) error {
	client, err := makeUpstreamClient(conf)
	if err != nil {
		return err
	}

	builder := census.NewBuilder(census.BuilderOpts{
		Client:           client,
		Logger:           log,
		CustomAttributes: conf.GetCustomAttributes(),
		MaxRecords:       conf.GetMaxRecords(),
		WorkerPoolSize:   conf.GetWorkerPoolSize(),
	})
	store := census.NewFileStore(afero.NewOsFs(), conf.GetSnapshotPath())

	if once {
		return runBuild(ctx, builder, store, log)
	}

	if err := runBuild(ctx, builder, store, log); err != nil {
		log.BuildError(err)
	}

	for {
		timer := time.NewTimer(untilNextRun(time.Now(), conf.GetUpdateTimeHour()))

		select {
		case <-ctx.Done():
			timer.Stop()

			return nil
		case <-timer.C:
			if err := runBuild(ctx, builder, store, log); err != nil {
				log.BuildError(err)
			}
		}
	}
}

func runBuild(ctx context.Context, builder *census.Builder, store census.Store, log census.Logger) error {
	snapshot, err := builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("build has failed: %w", err)
	}

	if err := store.Publish(snapshot); err != nil {
		return fmt.Errorf("cannot publish the snapshot: %w", err)
	}

	log.BuildPublished(len(snapshot))

	return nil
}

func untilNextRun(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())

	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}

	return next.Sub(now)
}
