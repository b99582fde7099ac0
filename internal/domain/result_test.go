package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResult(t *testing.T) StrecResult {
	t.Helper()
	fixed := time.Date(2024, 4, 3, 0, 10, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	res, err := Resolve(MechanismSource{Focal: FocalMechanism{Strike: 0, Dip: 90, Rake: 0, Magnitude: 7.4}})
	require.NoError(t, err)

	n := ProductNotification{Source: "us", Code: "7000m9g4", Type: "origin"}
	origin := Origin{
		Latitude:  23.819,
		Longitude: 121.562,
		DepthKm:   34.8,
		Time:      time.Date(2024, 4, 2, 23, 58, 11, 0, time.UTC),
		Magnitude: 7.4,
	}
	return NewStrecResult(n, origin, res, SourceFallback)
}

func TestNewStrecResult(t *testing.T) {
	r := testResult(t)

	assert.Equal(t, "us7000m9g4", r.ID)
	assert.Equal(t, "us", r.Source)
	assert.Equal(t, "7000m9g4", r.Code)
	assert.NotEmpty(t, r.ProcessingID)
	assert.True(t, r.CompositeForced)
	assert.Equal(t, SourceFallback, r.MechanismSource)
	assert.Equal(t, time.Date(2024, 4, 3, 0, 10, 0, 0, time.UTC), r.ProcessedAt)
}

func TestNewStrecResult_UniqueProcessingID(t *testing.T) {
	a, b := testResult(t), testResult(t)
	assert.NotEqual(t, a.ProcessingID, b.ProcessingID)
}

func TestStrecResult_Properties(t *testing.T) {
	props := testResult(t).Properties()
	require.Len(t, props, 17)

	got := make(map[string]string, len(props))
	for i, p := range props {
		if i > 0 {
			assert.Less(t, props[i-1].Key, p.Key, "properties are sorted by key")
		}
		got[p.Key] = p.Value
	}

	assert.Equal(t, "us7000m9g4", got["eventid"])
	assert.Equal(t, "7.40", got["magnitude"])
	assert.Equal(t, "2024-04-02T23:58:11Z", got["origin-time"])
	assert.Equal(t, "true", got["composite-forced"])
	assert.Equal(t, "fallback", got["mechanism-source"])
	assert.Equal(t, "45.00", got["t-axis-azimuth"])
	assert.Equal(t, "0.00", got["t-axis-plunge"])
	assert.Equal(t, "90.00", got["n-axis-plunge"])
	assert.Equal(t, "135.00", got["p-axis-azimuth"])
	assert.Equal(t, "0.00", got["nodal-plane-1-strike"])
	assert.Equal(t, "90.00", got["nodal-plane-2-strike"])
	assert.Equal(t, "180.00", got["nodal-plane-2-rake"])
}
