// Package handler is the serverless entrypoint. The platform invokes Handler
// for every request; the echo app is built once per cold start and reused.
package handler

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"proposal-generator/internal/api/routes"
	"proposal-generator/internal/config"
	"proposal-generator/internal/logging"
	"proposal-generator/internal/proposal"
	"proposal-generator/internal/ratelimit"
)

var (
	once    sync.Once
	app     http.Handler
	initErr error
)

// setup loads configuration from the environment (CONFIG_PATH optionally
// names a yaml file) and builds the app. Background workers are not started:
// the instance may be frozen between invocations.
func setup() {
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		initErr = err
		return
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		initErr = err
		return
	}

	generator, err := proposal.NewGeneratorFromConfig(cfg)
	if err != nil {
		initErr = err
		return
	}

	opts := routes.Options{Serverless: true}
	if cfg.RateLimit.Enabled {
		store, _, err := ratelimit.NewStore(cfg)
		if err != nil {
			initErr = err
			return
		}
		opts.RateLimiter = store
	}

	app = routes.NewServer(cfg, generator, opts)
}

// Handler is the function entrypoint
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)

	if initErr != nil {
		writeInitFailure(w, r)
		return
	}

	app.ServeHTTP(w, r)
}

// writeInitFailure answers when the app could not be built. Preflight still
// succeeds so browsers surface the real error from the POST.
func writeInitFailure(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	logging.GetGlobalLogger().WithError(initErr).Error("Serverless handler failed to initialize")

	failure := proposal.NewUnexpectedError(initErr)
	header.Set("Content-Type", "application/json")
	w.WriteHeader(failure.Status)
	json.NewEncoder(w).Encode(failure.Response()) //nolint:errcheck
}

