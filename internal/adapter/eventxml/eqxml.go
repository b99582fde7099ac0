package eventxml

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/couchcryptid/quake-strec-etl/internal/domain"
)

type eqxmlDoc struct {
	Events []struct {
		Origins []eqxmlOrigin `xml:"Origin"`
	} `xml:"Event"`
}

type eqxmlOrigin struct {
	Latitude   *string `xml:"Latitude"`
	Longitude  *string `xml:"Longitude"`
	Depth      *string `xml:"Depth"`
	Time       *string `xml:"Time"`
	Magnitudes []struct {
		Value *string `xml:"Value"`
	} `xml:"Magnitude"`
}

// ReadEQXML parses the first origin of the first event in an EQXML document.
// EQXML reports depth in kilometres and carries no focal mechanism.
func ReadEQXML(r io.Reader) (domain.Origin, error) {
	var doc eqxmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return domain.Origin{}, fmt.Errorf("decode eqxml: %w", err)
	}
	if len(doc.Events) == 0 {
		return domain.Origin{}, missing("Event")
	}
	if len(doc.Events[0].Origins) == 0 {
		return domain.Origin{}, missing("Event/Origin")
	}
	orig := doc.Events[0].Origins[0]

	lat, err := requiredFloat("Origin/Latitude", orig.Latitude)
	if err != nil {
		return domain.Origin{}, err
	}
	lon, err := requiredFloat("Origin/Longitude", orig.Longitude)
	if err != nil {
		return domain.Origin{}, err
	}
	depth, err := requiredFloat("Origin/Depth", orig.Depth)
	if err != nil {
		return domain.Origin{}, err
	}
	if orig.Time == nil {
		return domain.Origin{}, missing("Origin/Time")
	}
	t, err := parseTime("Origin/Time", *orig.Time)
	if err != nil {
		return domain.Origin{}, err
	}
	if len(orig.Magnitudes) == 0 {
		return domain.Origin{}, missing("Origin/Magnitude")
	}
	mag, err := requiredFloat("Origin/Magnitude/Value", orig.Magnitudes[0].Value)
	if err != nil {
		return domain.Origin{}, err
	}

	return domain.Origin{
		Latitude:  lat,
		Longitude: lon,
		DepthKm:   depth,
		Time:      t,
		Magnitude: mag,
	}, nil
}

func requiredFloat(element string, raw *string) (float64, error) {
	if raw == nil {
		return 0, missing(element)
	}
	return parseFloat(element, *raw)
}
