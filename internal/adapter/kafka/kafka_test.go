package kafka

import (
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-strec-etl/internal/domain"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("us7000m9g4"),
		Value:     []byte(`{"source":"us","code":"7000m9g4","type":"origin"}`),
		Topic:     "origin-products",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "pdl_sender", Value: []byte("hub")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("us7000m9g4"), raw.Key)
	assert.JSONEq(t, `{"source":"us","code":"7000m9g4","type":"origin"}`, string(raw.Value))
	assert.Equal(t, "origin-products", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "hub", raw.Headers["pdl_sender"])
	assert.Nil(t, raw.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 3, 0, 10, 0, 0, time.UTC)
	result := domain.StrecResult{
		ID:              "us7000m9g4",
		Source:          "us",
		Code:            "7000m9g4",
		Origin:          domain.Origin{Latitude: 23.819, Longitude: 121.562, DepthKm: 34.8, Magnitude: 7.4},
		Mechanism:       domain.MechanismSolution{NP1: domain.NodalPlane{Strike: 210, Dip: 30, Rake: 95}},
		MechanismSource: domain.SourceCatalog,
		ProcessedAt:     now,
	}

	msg, err := serializeToMessage(result)
	require.NoError(t, err)

	assert.Equal(t, []byte("us7000m9g4"), msg.Key)

	var decoded domain.StrecResult
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, result.Mechanism, decoded.Mechanism)
	assert.Equal(t, "catalog", decoded.MechanismSource)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "event_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("us7000m9g4"), msg.Headers[0].Value)
	assert.Equal(t, "composite_forced", msg.Headers[1].Key)
	assert.Equal(t, []byte("false"), msg.Headers[1].Value)
	assert.Equal(t, "processed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}
