package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ipcensus/ipcensus/census"
	"github.com/ipcensus/ipcensus/splynx"
)

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func makeUpstreamClient(conf *config) (census.UpstreamClient, error) {
	httpClient := census.NewHTTPClient(
		&http.Client{Timeout: conf.GetHTTPTimeout()},
		"ipcensus/"+version,
		conf.GetRateLimitInterval(),
		conf.GetRateLimitBurst(),
		DefaultCircuitBreakerOpenThreshold,
		DefaultCircuitBreakerHalfOpenTimeout,
		DefaultCircuitBreakerResetFailuresTimeout)

	client, err := splynx.New(httpClient,
		conf.Upstream.BaseURL,
		conf.Upstream.APIKey,
		conf.Upstream.APISecret,
		conf.GetCustomerLimit())
	if err != nil {
		return nil, fmt.Errorf("cannot create upstream client: %w", err)
	}

	return client, nil
}
