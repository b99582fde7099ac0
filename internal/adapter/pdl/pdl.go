// Package pdl publishes archived results through the USGS Product
// Distribution Layer ProductClient.
package pdl

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/quake-strec-etl/internal/config"
	"github.com/couchcryptid/quake-strec-etl/internal/domain"
	"github.com/couchcryptid/quake-strec-etl/internal/observability"
)

// ProductType is the PDL product type sent for every result.
const ProductType = "strec"

// runner executes a command and returns its captured output.
type runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Dispatcher sends result files with ProductClient.jar. It implements
// archive.Notifier.
type Dispatcher struct {
	java       string
	jar        string
	configFile string
	timeout    time.Duration
	run        runner
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewDispatcher creates a Dispatcher from the PDL settings.
func NewDispatcher(cfg config.PDL, metrics *observability.Metrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		java:       cfg.Java,
		jar:        filepath.Join(cfg.Dir, "ProductClient.jar"),
		configFile: cfg.ConfigFile,
		timeout:    cfg.Timeout,
		run:        execRun,
		metrics:    metrics,
		logger:     logger,
	}
}

// Args returns the ProductClient arguments for one result file. Arguments are
// passed to the process directly, so values are not quoted.
func (d *Dispatcher) Args(result domain.StrecResult, file string) []string {
	args := []string{
		"-jar", d.jar,
		"--send",
		"--configFile=" + d.configFile,
		"--type=" + ProductType,
		"--source=" + result.Source,
		"--code=" + result.ID,
		fmt.Sprintf("--property-latitude=%.4f", result.Origin.Latitude),
		fmt.Sprintf("--property-longitude=%.4f", result.Origin.Longitude),
		fmt.Sprintf("--property-depth=%.1f", result.Origin.DepthKm),
		"--file=" + file,
	}
	for _, p := range result.Properties() {
		args = append(args, fmt.Sprintf("--property-%s=%s", p.Key, p.Value))
	}
	return args
}

// Notify runs ProductClient for a result file. The outcome is logged with the
// command output and counted; the returned error is informational.
func (d *Dispatcher) Notify(ctx context.Context, result domain.StrecResult, file string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	args := d.Args(result, file)
	stdout, stderr, err := d.run(ctx, d.java, args...)
	if err != nil {
		d.metrics.PDLDispatches.WithLabelValues("error").Inc()
		d.logger.Error("pdl send failed",
			"event_id", result.ID,
			"command", d.java+" "+strings.Join(args, " "),
			"stdout", string(stdout),
			"stderr", string(stderr),
			"error", err,
		)
		return fmt.Errorf("pdl send %s: %w", result.ID, err)
	}

	d.metrics.PDLDispatches.WithLabelValues("success").Inc()
	d.logger.Info("pdl send succeeded",
		"event_id", result.ID,
		"file", file,
		"stdout", string(stdout),
	)
	return nil
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // arguments come from configuration and parsed results
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
