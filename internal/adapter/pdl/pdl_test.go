package pdl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-strec-etl/internal/config"
	"github.com/couchcryptid/quake-strec-etl/internal/domain"
	"github.com/couchcryptid/quake-strec-etl/internal/observability"
)

func testDispatcher(t *testing.T) (*Dispatcher, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	d := NewDispatcher(config.PDL{
		Dir:        "/opt/ProductClient",
		ConfigFile: "/opt/ProductClient/dev_config.ini",
		Java:       "java",
		Timeout:    time.Second,
	}, metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return d, metrics
}

func testResult() domain.StrecResult {
	return domain.StrecResult{
		ID:     "us7000m9g4",
		Source: "us",
		Code:   "7000m9g4",
		Origin: domain.Origin{
			Latitude:  23.81912,
			Longitude: 121.56161,
			DepthKm:   34.75,
			Time:      time.Date(2024, 4, 2, 23, 58, 11, 0, time.UTC),
			Magnitude: 7.4,
		},
		MechanismSource: domain.SourceQuakeML,
		CompositeForced: true,
	}
}

func TestDispatcher_Args(t *testing.T) {
	d, _ := testDispatcher(t)
	args := d.Args(testResult(), "/data/us7000m9g4/version001/strec.json")

	assert.Equal(t, []string{
		"-jar", filepath.Join("/opt/ProductClient", "ProductClient.jar"),
		"--send",
		"--configFile=/opt/ProductClient/dev_config.ini",
		"--type=strec",
		"--source=us",
		"--code=us7000m9g4",
		"--property-latitude=23.8191",
		"--property-longitude=121.5616",
		"--property-depth=34.8",
		"--file=/data/us7000m9g4/version001/strec.json",
	}, args[:11])

	props := args[11:]
	assert.Len(t, props, len(testResult().Properties()))
	assert.Contains(t, props, "--property-composite-forced=true")
	assert.Contains(t, props, "--property-mechanism-source=quakeml")
	assert.Contains(t, props, "--property-origin-time=2024-04-02T23:58:11Z")
}

func TestDispatcher_Notify_Success(t *testing.T) {
	d, metrics := testDispatcher(t)

	var gotName string
	var gotArgs []string
	d.run = func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "command runs under a timeout")
		gotName, gotArgs = name, args
		return []byte("sent"), nil, nil
	}

	err := d.Notify(context.Background(), testResult(), "/tmp/strec.json")
	require.NoError(t, err)

	assert.Equal(t, "java", gotName)
	assert.Contains(t, gotArgs, "--file=/tmp/strec.json")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PDLDispatches.WithLabelValues("success")), 0)
}

func TestDispatcher_Notify_Failure(t *testing.T) {
	d, metrics := testDispatcher(t)
	d.run = func(context.Context, string, ...string) ([]byte, []byte, error) {
		return nil, []byte("Exception in thread main"), errors.New("exit status 1")
	}

	err := d.Notify(context.Background(), testResult(), "/tmp/strec.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "us7000m9g4")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PDLDispatches.WithLabelValues("error")), 0)
}

func TestExecRun(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	stdout, stderr, err := execRun(context.Background(), "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(stdout))
	assert.Equal(t, "err\n", string(stderr))
}

func TestExecRun_Timeout(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := execRun(ctx, "sleep", "5")
	require.Error(t, err)
}
