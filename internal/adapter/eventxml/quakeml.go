package eventxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-strec-etl/internal/domain"
)

// timeLayout matches the leading 19 characters of QuakeML and EQXML times;
// fractional seconds and zone suffixes are dropped and UTC is assumed.
const timeLayout = "2006-01-02T15:04:05"

type quantity struct {
	Value *string `xml:"value"`
}

type quakeMLDoc struct {
	Events []quakeMLEvent `xml:"eventParameters>event"`
}

type quakeMLEvent struct {
	PreferredOriginID         string                  `xml:"preferredOriginID"`
	PreferredMagnitudeID      string                  `xml:"preferredMagnitudeID"`
	PreferredFocalMechanismID string                  `xml:"preferredFocalMechanismID"`
	Origins                   []quakeMLOrigin         `xml:"origin"`
	Magnitudes                []quakeMLMagnitude      `xml:"magnitude"`
	FocalMechanisms           []quakeMLFocalMechanism `xml:"focalMechanism"`
}

type quakeMLOrigin struct {
	PublicID  string    `xml:"publicID,attr"`
	Time      *quantity `xml:"time"`
	Latitude  *quantity `xml:"latitude"`
	Longitude *quantity `xml:"longitude"`
	Depth     *quantity `xml:"depth"`
}

type quakeMLMagnitude struct {
	PublicID string    `xml:"publicID,attr"`
	Mag      *quantity `xml:"mag"`
}

type quakeMLFocalMechanism struct {
	PublicID    string `xml:"publicID,attr"`
	NodalPlane1 *struct {
		Strike *quantity `xml:"strike"`
		Dip    *quantity `xml:"dip"`
		Rake   *quantity `xml:"rake"`
	} `xml:"nodalPlanes>nodalPlane1"`
}

// ReadQuakeML parses the first event of a QuakeML document. The origin,
// magnitude and focal mechanism are the ones named by the event's preferred
// IDs when present, otherwise the first of each. Depth is converted from
// metres to kilometres.
func ReadQuakeML(r io.Reader) (domain.Origin, error) {
	var doc quakeMLDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return domain.Origin{}, fmt.Errorf("decode quakeml: %w", err)
	}
	if len(doc.Events) == 0 {
		return domain.Origin{}, missing("event")
	}
	ev := doc.Events[0]

	orig, ok := preferred(ev.Origins, ev.PreferredOriginID, func(o quakeMLOrigin) string { return o.PublicID })
	if !ok {
		return domain.Origin{}, missing("origin")
	}
	mag, ok := preferred(ev.Magnitudes, ev.PreferredMagnitudeID, func(m quakeMLMagnitude) string { return m.PublicID })
	if !ok {
		return domain.Origin{}, missing("magnitude")
	}

	var (
		out domain.Origin
		err error
	)
	if out.Latitude, err = parseQuantity("origin/latitude", orig.Latitude); err != nil {
		return domain.Origin{}, err
	}
	if out.Longitude, err = parseQuantity("origin/longitude", orig.Longitude); err != nil {
		return domain.Origin{}, err
	}
	depthM, err := parseQuantity("origin/depth", orig.Depth)
	if err != nil {
		return domain.Origin{}, err
	}
	out.DepthKm = depthM / 1000
	if orig.Time == nil || orig.Time.Value == nil {
		return domain.Origin{}, missing("origin/time")
	}
	if out.Time, err = parseTime("origin/time", *orig.Time.Value); err != nil {
		return domain.Origin{}, err
	}
	if out.Magnitude, err = parseQuantity("magnitude/mag", mag.Mag); err != nil {
		return domain.Origin{}, err
	}

	if fm, ok := preferred(ev.FocalMechanisms, ev.PreferredFocalMechanismID, func(f quakeMLFocalMechanism) string { return f.PublicID }); ok && fm.NodalPlane1 != nil {
		np := fm.NodalPlane1
		var plane domain.NodalPlane
		if plane.Strike, err = parseQuantity("nodalPlane1/strike", np.Strike); err != nil {
			return domain.Origin{}, err
		}
		if plane.Dip, err = parseQuantity("nodalPlane1/dip", np.Dip); err != nil {
			return domain.Origin{}, err
		}
		if plane.Rake, err = parseQuantity("nodalPlane1/rake", np.Rake); err != nil {
			return domain.Origin{}, err
		}
		out.NodalPlane = &plane
	}
	return out, nil
}

// preferred returns the element whose ID equals want, falling back to the
// first element when want is empty or matches nothing.
func preferred[T any](items []T, want string, id func(T) string) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	if want != "" {
		want = strings.TrimSpace(want)
		for _, it := range items {
			if id(it) == want {
				return it, true
			}
		}
	}
	return items[0], true
}

func parseQuantity(element string, q *quantity) (float64, error) {
	if q == nil {
		return 0, missing(element)
	}
	return requiredFloat(element, q.Value)
}

func parseFloat(element, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", element, err)
	}
	return v, nil
}

func parseTime(element, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(timeLayout) {
		return time.Time{}, fmt.Errorf("parse %s: %q is too short", element, s)
	}
	t, err := time.ParseInLocation(timeLayout, s[:len(timeLayout)], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", element, err)
	}
	return t, nil
}

func missing(element string) error {
	return fmt.Errorf("%w: %s", ErrMissingElement, element)
}
