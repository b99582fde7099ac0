// Package archive stores results as versioned JSON files, one directory per
// event revision.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/quake-strec-etl/internal/domain"
	"github.com/couchcryptid/quake-strec-etl/internal/observability"
)

// FileName is the name of the result file inside each version directory.
const FileName = "strec.json"

const (
	versionPrefix = "version"
	maxVersion    = 999
)

// Notifier is told about every result file the store writes.
type Notifier interface {
	Notify(ctx context.Context, result domain.StrecResult, file string) error
}

// Store writes results under <dir>/<eventid>/versionNNN/strec.json.
// It implements pipeline.BatchLoader.
type Store struct {
	dir      string
	notifier Notifier
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewStore creates a Store rooted at dir. notifier may be nil.
func NewStore(dir string, notifier Notifier, metrics *observability.Metrics, logger *slog.Logger) *Store {
	return &Store{dir: dir, notifier: notifier, metrics: metrics, logger: logger}
}

// LoadBatch saves each result and notifies the notifier. A failed save aborts
// the batch; a failed notification is logged only.
func (s *Store) LoadBatch(ctx context.Context, results []domain.StrecResult) error {
	for i := range results {
		file, err := s.Save(results[i])
		if err != nil {
			s.metrics.ArchiveWrites.WithLabelValues("error").Inc()
			return err
		}
		s.metrics.ArchiveWrites.WithLabelValues("success").Inc()
		s.logger.Info("result archived", "event_id", results[i].ID, "file", file)

		if s.notifier == nil {
			continue
		}
		if err := s.notifier.Notify(ctx, results[i], file); err != nil {
			s.logger.Warn("result notification failed",
				"event_id", results[i].ID,
				"file", file,
				"error", err,
			)
		}
	}
	return nil
}

// Save writes one result into the next free version directory of its event
// and returns the file path.
func (s *Store) Save(result domain.StrecResult) (string, error) {
	data, err := MarshalResult(result)
	if err != nil {
		return "", err
	}

	versionDir, err := s.nextVersionDir(result.ID)
	if err != nil {
		return "", err
	}
	file := filepath.Join(versionDir, FileName)
	if err := os.WriteFile(file, data, 0o644); err != nil { //nolint:gosec // result files are published
		return "", fmt.Errorf("write %s: %w", file, err)
	}
	return file, nil
}

// nextVersionDir creates the version directory after the highest existing
// one. Mkdir is exclusive, so a concurrent writer that claims the same
// number pushes this one to the next.
func (s *Store) nextVersionDir(eventID string) (string, error) {
	if eventID == "" || strings.ContainsAny(eventID, `/\`) || eventID == "." || eventID == ".." {
		return "", fmt.Errorf("invalid event id %q", eventID)
	}
	eventDir := filepath.Join(s.dir, eventID)
	if err := os.MkdirAll(eventDir, 0o755); err != nil {
		return "", fmt.Errorf("create event directory: %w", err)
	}

	highest, err := highestVersion(eventDir)
	if err != nil {
		return "", err
	}
	for v := highest + 1; v <= maxVersion; v++ {
		dir := filepath.Join(eventDir, versionName(v))
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("create version directory: %w", err)
		}
	}
	return "", fmt.Errorf("event %s has no free version directory (max %d)", eventID, maxVersion)
}

func highestVersion(eventDir string) (int, error) {
	entries, err := os.ReadDir(eventDir)
	if err != nil {
		return 0, fmt.Errorf("list versions: %w", err)
	}
	highest := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), versionPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), versionPrefix))
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return highest, nil
}

func versionName(v int) string {
	return fmt.Sprintf("%s%03d", versionPrefix, v)
}

// document is the file written for each result: the result record plus the
// flattened properties published with it.
type document struct {
	domain.StrecResult
	Properties map[string]string `json:"properties"`
}

// MarshalResult renders a result as indented JSON with its flattened
// key/value properties alongside.
func MarshalResult(r domain.StrecResult) ([]byte, error) {
	props := make(map[string]string)
	for _, p := range r.Properties() {
		props[p.Key] = p.Value
	}
	data, err := json.MarshalIndent(document{StrecResult: r, Properties: props}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize strec result: %w", err)
	}
	return data, nil
}
