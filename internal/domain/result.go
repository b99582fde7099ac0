package domain

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewStrecResult assembles the output record for one event. ProcessedAt comes
// from the package clock so tests can freeze it.
func NewStrecResult(n ProductNotification, origin Origin, res Resolution, mechanismSource string) StrecResult {
	return StrecResult{
		ID:              n.EventID(),
		ProcessingID:    uuid.NewString(),
		Source:          n.Source,
		Code:            n.Code,
		Origin:          origin,
		Mechanism:       res.Solution,
		MechanismSource: mechanismSource,
		CompositeForced: res.CompositeForced,
		ProcessedAt:     clock.Now().UTC(),
	}
}

// Property is one key/value pair of a flattened result.
type Property struct {
	Key   string
	Value string
}

// Properties flattens the result into the fixed key set published with the
// product, sorted by key. Axis and plane keys match the catalog
// moment-tensor product names.
func (r StrecResult) Properties() []Property {
	m := r.Mechanism
	values := map[string]string{
		"eventid":              r.ID,
		"magnitude":            formatFloat(r.Origin.Magnitude),
		"origin-time":          r.Origin.Time.UTC().Format(time.RFC3339),
		"composite-forced":     strconv.FormatBool(r.CompositeForced),
		"mechanism-source":     r.MechanismSource,
		"t-axis-azimuth":       formatFloat(m.T.Azimuth),
		"t-axis-plunge":        formatFloat(m.T.Plunge),
		"n-axis-azimuth":       formatFloat(m.N.Azimuth),
		"n-axis-plunge":        formatFloat(m.N.Plunge),
		"p-axis-azimuth":       formatFloat(m.P.Azimuth),
		"p-axis-plunge":        formatFloat(m.P.Plunge),
		"nodal-plane-1-strike": formatFloat(m.NP1.Strike),
		"nodal-plane-1-dip":    formatFloat(m.NP1.Dip),
		"nodal-plane-1-rake":   formatFloat(m.NP1.Rake),
		"nodal-plane-2-strike": formatFloat(m.NP2.Strike),
		"nodal-plane-2-dip":    formatFloat(m.NP2.Dip),
		"nodal-plane-2-rake":   formatFloat(m.NP2.Rake),
	}

	props := make([]Property, 0, len(values))
	for k, v := range values {
		props = append(props, Property{Key: k, Value: v})
	}
	sort.Slice(props, func(i, j int) bool { return props[i].Key < props[j].Key })
	return props
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
