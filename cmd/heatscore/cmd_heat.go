package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-heat/infrastructure/middleware"
	"github.com/ahrav/go-heat/infrastructure/postgres"
)

// dsnEnv is consulted when neither --dsn nor the config sets a DSN.
const dsnEnv = "HEAT_DATABASE_URL"

func newHeatCmd(c *cli) *cobra.Command {
	var (
		dsn      string
		maxConns int32
	)

	cmd := &cobra.Command{
		Use:   "heat <heat-id>...",
		Short: "Compute preliminary results from PostgreSQL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseHeatIDs(args)
			if err != nil {
				return err
			}
			url := firstNonEmpty(dsn, c.config.Store.DSN, os.Getenv(dsnEnv))
			if url == "" {
				return fmt.Errorf("no database url: set --dsn, store.dsn or %s", dsnEnv)
			}

			ctx := cmd.Context()
			db, err := postgres.Connect(ctx, url, maxConns)
			if err != nil {
				return err
			}
			defer db.Close()

			rl, rc := c.config.Store.RateLimit, c.config.Store.Retry
			limited := middleware.NewRateLimitedStore(db.Store(), rl.RequestsPerSecond, rl.Burst)
			retry := middleware.DefaultRetryConfig()
			retry.MaxAttempts, retry.BaseDelay, retry.MaxDelay = rc.MaxAttempts, rc.BaseDelay, rc.MaxDelay
			st := middleware.NewRetryingStore(limited, retry)
			return c.run(ctx, cmd, st, ids)
		},
	}

	f := cmd.Flags()
	f.StringVar(&dsn, "dsn", "", "PostgreSQL connection string (overrides config and "+dsnEnv+")")
	f.Int32Var(&maxConns, "max-conns", postgres.DefaultMaxConns, "Maximum pool connections")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
