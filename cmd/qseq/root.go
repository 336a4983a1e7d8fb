package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qseq/internal/db"
	dbRedis "github.com/kailas-cloud/qseq/internal/db/redis"
	logpkg "github.com/kailas-cloud/qseq/internal/logger"
	"github.com/kailas-cloud/qseq/internal/repository/resultcache"
	"github.com/kailas-cloud/qseq/internal/version"
	searchuc "github.com/kailas-cloud/qseq/internal/usecase/search"
)

const cacheReadyTimeout = 5 * time.Second

var errCacheUnavailable = errors.New("result cache unavailable")

// rootOptions are the flags shared by every command.
type rootOptions struct {
	logLevel  string
	cacheAddr string
	cachePass string
	workers   int

	logger *zap.Logger
	store  db.Store
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "qseq",
		Short:         "Search for quaternion sequences with vanishing autocorrelation",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			logger, err := logpkg.NewLogger("cli", opts.logLevel)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.store != nil {
				opts.store.Close()
			}
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "worker goroutines (default GOMAXPROCS)")
	flags.StringVar(&opts.cacheAddr, "cache", "", "Redis/Valkey address for the result cache")
	flags.StringVar(&opts.cachePass, "cache-password", "", "result cache password")

	cmd.AddCommand(
		newSearchCmd(opts),
		newSweepCmd(opts),
		newCheckCmd(opts),
		newShrinkCmd(opts),
		newAlphabetCmd(),
	)
	return cmd
}

// service wires a search service, connecting the result cache when --cache is set.
func (o *rootOptions) service(cmd *cobra.Command) (*searchuc.Service, error) {
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if o.cacheAddr == "" {
		return searchuc.New(searchuc.NewEngine(), nil, logger), nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    []string{o.cacheAddr},
		Password: o.cachePass,
	})
	if err != nil {
		return nil, fmt.Errorf("connect result cache: %w", err)
	}
	if err := store.WaitForReady(cmd.Context(), cacheReadyTimeout); err != nil {
		store.Close()
		return nil, errors.Join(errCacheUnavailable, err)
	}
	o.store = store

	cache := resultcache.New(store, 0, nil, logger)
	return searchuc.New(searchuc.NewEngine(), cache, logger), nil
}
