// CLI entry point for Prologos jurimetrics.
package main

import (
	"context"
	"os"

	"github.com/turtacn/Prologos-Jurimetrics/internal/bootstrap"
	"github.com/turtacn/Prologos-Jurimetrics/internal/config"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

// services opens the platform for one command. Only the fields the CLI needs
// are exposed; optional services stay nil when not configured.
func services(ctx context.Context, cfg *config.Config, logger logging.Logger) (*cli.Services, func(), error) {
	p, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{Source: "cli", SkipMetrics: true})
	if err != nil {
		return nil, nil, err
	}
	s := &cli.Services{
		Harvester:  p.Harvests,
		Classifier: p.Classification,
		Purger:     p.Maintenance,
		Migrator:   p.Migrator,
	}
	if p.Adherence != nil {
		s.Scorer = p.Adherence
	}
	return s, p.Close, nil
}

func main() {
	// Execute has already printed the error.
	if err := cli.Execute(services); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
