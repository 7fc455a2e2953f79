package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/afero"

	"github.com/ipcensus/ipcensus/census"
)

const serverShutdownTimeout = 5 * time.Second

func runServe(ctx context.Context, conf *config, log census.Logger) error {
	fs := afero.NewOsFs()

	store, err := census.NewCachingStore(
		census.NewFileStore(fs, conf.GetSnapshotPath()),
		fs,
		conf.GetSnapshotPath())
	if err != nil {
		return fmt.Errorf("cannot create a snapshot store: %w", err)
	}

	engine := census.NewEngine(store)

	var handler http.Handler = census.NewHTTPHandler(engine, store, log)

	if conf.AuthUser != "" {
		handler = &basicAuthMiddleware{
			handler:  handler,
			user:     []byte(conf.AuthUser),
			password: []byte(conf.AuthPassword),
		}
	}

	srv := &http.Server{
		Addr:    conf.GetListen(),
		Handler: handler,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()

		srv.Shutdown(shutdownCtx) // nolint: errcheck
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
