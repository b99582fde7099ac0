// Package eventxml reads event origins from QuakeML and EQXML documents.
package eventxml

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/quake-strec-etl/internal/domain"
)

// File names looked up in a notification's product directory.
const (
	QuakeMLFile = "quakeml.xml"
	EQXMLFile   = "eqxml.xml"
)

var (
	// ErrNoOriginDocument is returned when a notification carries neither an
	// inline document nor a readable file in its directory.
	ErrNoOriginDocument = errors.New("no origin document")

	// ErrMissingElement is returned when a required element is absent.
	ErrMissingElement = errors.New("missing element")
)

// Load reads the origin for a notification. Inline QuakeML is preferred over
// inline EQXML, which is preferred over quakeml.xml then eqxml.xml in the
// notification's directory.
func Load(n domain.ProductNotification) (domain.Origin, error) {
	if strings.TrimSpace(n.QuakeML) != "" {
		return ReadQuakeML(strings.NewReader(n.QuakeML))
	}
	if strings.TrimSpace(n.EQXML) != "" {
		return ReadEQXML(strings.NewReader(n.EQXML))
	}
	if n.Directory == "" {
		return domain.Origin{}, ErrNoOriginDocument
	}

	readers := []struct {
		file string
		read func(io.Reader) (domain.Origin, error)
	}{
		{QuakeMLFile, ReadQuakeML},
		{EQXMLFile, ReadEQXML},
	}
	for _, r := range readers {
		path := filepath.Join(n.Directory, r.file)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.Origin{}, fmt.Errorf("open %s: %w", path, err)
		}
		origin, err := r.read(f)
		_ = f.Close()
		if err != nil {
			return domain.Origin{}, fmt.Errorf("read %s: %w", path, err)
		}
		return origin, nil
	}
	return domain.Origin{}, fmt.Errorf("%w in %s", ErrNoOriginDocument, n.Directory)
}
