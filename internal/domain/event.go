package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source (a Kafka record
// or an inbox file).
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ProductNotification is a PDL-style notice that an origin product for an
// event was published. The origin document is either inline or in Directory.
type ProductNotification struct {
	Source    string `json:"source"`
	Code      string `json:"code"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Directory string `json:"directory,omitempty"`
	QuakeML   string `json:"quakeml,omitempty"`
	EQXML     string `json:"eqxml,omitempty"`
}

// Origin is the hypocenter and magnitude read from an event document.
type Origin struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	DepthKm   float64   `json:"depth_km"`
	Time      time.Time `json:"time"`
	Magnitude float64   `json:"magnitude"`

	// NodalPlane is the preferred focal mechanism's first nodal plane when
	// the document carries one.
	NodalPlane *NodalPlane `json:"nodal_plane,omitempty"`
}

// Mechanism source labels recorded on a StrecResult.
const (
	SourceCatalog  = "catalog"
	SourceQuakeML  = "quakeml"
	SourceFallback = "fallback"
)

// StrecResult is the record handed to the sinks for one processed event.
type StrecResult struct {
	ID              string            `json:"id"`
	ProcessingID    string            `json:"processing_id"`
	Source          string            `json:"source"`
	Code            string            `json:"code"`
	Origin          Origin            `json:"origin"`
	Mechanism       MechanismSolution `json:"mechanism"`
	MechanismSource string            `json:"mechanism_source"`
	CompositeForced bool              `json:"composite_forced"`
	ProcessedAt     time.Time         `json:"processed_at"`
}
