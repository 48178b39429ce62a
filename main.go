package main

import (
	"log"
	"os"

	"syncbot/internal/config"
	"syncbot/internal/httpx"
	"syncbot/internal/jobs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig is called from each subcommand's RunE so that --help and flag
// errors never require a config file.
func loadConfig(path string) config.Config {
	cfg := config.LoadConfigFrom(path)
	timeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf("Config loaded. Timezone=%s ExternalHTTPTimeout=%s", cfg.Timezone, timeout)
	return cfg
}

func runJob(run func(config.Config, jobs.Options) error, configPath *string, opts *jobs.Options) func() error {
	return func() error {
		return run(loadConfig(*configPath), *opts)
	}
}
