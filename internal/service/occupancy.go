package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	"CampusOntology.api/internal/repository"
	"CampusOntology.api/internal/vocabulary"
)

// OccupancyProvider supplies a live occupancy value for a parking lot.
// A false result means no reading; the graph observations are used instead.
type OccupancyProvider interface {
	Occupancy(ctx context.Context, lotID string) (float64, bool, error)
}

// ParseOccupancy reads a percentage string such as "42%" or "  7.5 %".
// NaN and infinities are rejected; they have no JSON encoding.
func ParseOccupancy(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(raw, "%", "")), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ResolveOccupancy finds the occupancy recorded for lot by the observations
// whose feature of interest it is. Observations are visited in IRI order and
// the first one with a non-empty simple result decides the outcome, even when
// that result does not parse.
func ResolveOccupancy(repo repository.Repository, lot string) (float64, bool) {
	for _, obs := range repo.Subjects(vocabulary.HasFeatureOfInterest, repository.IRI(lot)) {
		raw, ok := repo.Value(obs, vocabulary.HasSimpleResult)
		if !ok || raw == "" {
			continue
		}
		return ParseOccupancy(raw)
	}
	return 0, false
}

// LookupRecorder counts live lookup outcomes: "hit", "miss" or "error".
type LookupRecorder interface {
	RecordOccupancyLookup(outcome string)
}

// ReaderOccupancy adapts a repository.OccupancyReader, such as the InfluxDB
// repository, to an OccupancyProvider.
type ReaderOccupancy struct {
	reader   repository.OccupancyReader
	recorder LookupRecorder
}

// NewReaderOccupancy creates a new ReaderOccupancy. recorder may be nil.
func NewReaderOccupancy(reader repository.OccupancyReader, recorder LookupRecorder) *ReaderOccupancy {
	return &ReaderOccupancy{reader: reader, recorder: recorder}
}

// Occupancy implements OccupancyProvider.
func (p *ReaderOccupancy) Occupancy(ctx context.Context, lotID string) (float64, bool, error) {
	raw, ok, err := p.reader.LatestOccupancy(ctx, lotID)
	if err != nil {
		p.record("error")
		return 0, false, err
	}
	if !ok {
		p.record("miss")
		return 0, false, nil
	}
	v, ok := ParseOccupancy(raw)
	if ok {
		p.record("hit")
	} else {
		p.record("miss")
	}
	return v, ok, nil
}

func (p *ReaderOccupancy) record(outcome string) {
	if p.recorder != nil {
		p.recorder.RecordOccupancyLookup(outcome)
	}
}
