// Command strec resolves the source mechanism for one origin product. It is
// invoked by a PDL indexer listener with the product's directory and
// identity, archives the result and optionally sends it back through PDL.
//
// Usage:
//
//	strec --directory /data/products/origin/us7000m9g4 \
//	  --type origin --source us --code 7000m9g4 --status UPDATE
//
// Logs go to stderr. With ARCHIVE_ENABLED=false the result document is the
// only output on stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/quake-strec-etl/internal/adapter/archive"
	"github.com/couchcryptid/quake-strec-etl/internal/adapter/comcat"
	"github.com/couchcryptid/quake-strec-etl/internal/adapter/eventxml"
	"github.com/couchcryptid/quake-strec-etl/internal/adapter/pdl"
	"github.com/couchcryptid/quake-strec-etl/internal/config"
	"github.com/couchcryptid/quake-strec-etl/internal/domain"
	"github.com/couchcryptid/quake-strec-etl/internal/observability"
	"github.com/couchcryptid/quake-strec-etl/internal/pipeline"
)

type options struct {
	directory   string
	productType string
	code        string
	source      string
	status      string
	noPDL       bool
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "strec",
		Short: "Resolve the source mechanism of an origin product",
		Long: `Read the origin document in a product directory, resolve its focal
mechanism into principal axes and nodal planes, and archive the result.

Deletes and product types other than origin and phase-data are ignored.
Unknown flags passed by the indexer are accepted and ignored.`,
		SilenceUsage: true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.directory, "directory", "", "product directory containing quakeml.xml or eqxml.xml")
	f.StringVar(&opts.productType, "type", "", "product type")
	f.StringVar(&opts.code, "code", "", "product code")
	f.StringVar(&opts.source, "source", "", "network source")
	f.StringVar(&opts.status, "status", "UPDATE", "product status")
	f.BoolVar(&opts.noPDL, "no-pdl", false, "archive the result without sending it through PDL")
	_ = cmd.MarkFlagRequired("directory")
	return cmd
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n := domain.ProductNotification{
		Source:    opts.source,
		Code:      opts.code,
		Type:      opts.productType,
		Status:    opts.status,
		Directory: opts.directory,
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	var lookup domain.MechanismLookup
	if cfg.ComCat.Enabled {
		client := comcat.NewClient(cfg.ComCat.URL, cfg.ComCat.Timeout, metrics, logger)
		lookup = comcat.NewCachedLookup(client, cfg.ComCat.CacheSize, cfg.ComCat.CacheTTL, clockwork.NewRealClock(), metrics)
	}
	fallback := domain.NodalPlane{Strike: cfg.Fallback.Strike, Dip: cfg.Fallback.Dip, Rake: cfg.Fallback.Rake}
	transformer := pipeline.NewTransformer(eventxml.Load, lookup, fallback, metrics, logger)

	result, err := transformer.Transform(ctx, domain.RawEvent{Value: raw})
	if errors.Is(err, domain.ErrSkipped) {
		logger.Info("product ignored", "reason", err)
		return nil
	}
	if err != nil {
		logger.Error("mechanism resolution failed", "error", err)
		return err
	}

	if !cfg.Archive.Enabled {
		return writeResult(stdout, result)
	}

	var notifier archive.Notifier
	if cfg.PDL.Enabled && !opts.noPDL {
		notifier = pdl.NewDispatcher(cfg.PDL, metrics, logger)
	}
	store := archive.NewStore(cfg.Archive.Dir, notifier, metrics, logger)
	if err := store.LoadBatch(ctx, []domain.StrecResult{result}); err != nil {
		logger.Error("archive failed", "event_id", result.ID, "error", err)
		return err
	}
	return nil
}

// writeResult prints the result document when archiving is off.
func writeResult(w io.Writer, result domain.StrecResult) error {
	data, err := archive.MarshalResult(result)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
