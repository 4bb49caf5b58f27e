package service

import (
	"context"
	"errors"
	"strings"

	"CampusOntology.api/internal/geometry"
	"CampusOntology.api/internal/models"
	"CampusOntology.api/internal/repository"
	"CampusOntology.api/internal/vocabulary"
	"github.com/rs/zerolog"
)

// ErrBuildingNotFound is returned when no building carries the requested label.
var ErrBuildingNotFound = errors.New("building not found")

// GeometryConverter turns stored WKT into API WKT.
type GeometryConverter interface {
	Convert(wkt string) geometry.Result
}

// CampusService assembles API records from the campus ontology.
type CampusService struct {
	source    repository.Source
	converter GeometryConverter
	live      OccupancyProvider
	logger    zerolog.Logger
}

// Option configures a CampusService.
type Option func(*CampusService)

// WithLiveOccupancy consults p before the graph observations.
func WithLiveOccupancy(p OccupancyProvider) Option {
	return func(s *CampusService) { s.live = p }
}

// NewCampusService creates a new CampusService.
func NewCampusService(source repository.Source, converter GeometryConverter, logger zerolog.Logger, opts ...Option) *CampusService {
	s := &CampusService{
		source:    source,
		converter: converter,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListBuildings returns one record per Building subject, ordered by IRI.
func (s *CampusService) ListBuildings(ctx context.Context) []models.Building {
	repo := s.source.Snapshot()
	subjects := repo.Subjects(vocabulary.RdfType, repository.IRI(vocabulary.Building))

	buildings := make([]models.Building, 0, len(subjects))
	for _, subj := range subjects {
		buildings = append(buildings, s.building(repo, subj))
	}
	return buildings
}

// ListParkingLots returns one record per ParkingLot subject, ordered by IRI.
func (s *CampusService) ListParkingLots(ctx context.Context) []models.ParkingLot {
	repo := s.source.Snapshot()
	subjects := repo.Subjects(vocabulary.RdfType, repository.IRI(vocabulary.ParkingLot))

	lots := make([]models.ParkingLot, 0, len(subjects))
	for _, subj := range subjects {
		lots = append(lots, s.parkingLot(repo, subj))
	}
	return lots
}

// FindBuildingByName matches name against building labels, ignoring case and
// surrounding whitespace. With duplicate labels the smallest IRI wins.
func (s *CampusService) FindBuildingByName(name string) (string, bool) {
	return findBuilding(s.source.Snapshot(), name)
}

// NearbyParking returns the parking lots linked to the named building by
// tamu:nearby, each with its occupancy.
func (s *CampusService) NearbyParking(ctx context.Context, name string) ([]models.NearbyParkingLot, error) {
	repo := s.source.Snapshot()

	building, ok := findBuilding(repo, name)
	if !ok {
		return nil, ErrBuildingNotFound
	}

	nearby := []models.NearbyParkingLot{}
	for _, obj := range repo.Objects(building, vocabulary.Nearby) {
		if obj.Kind == repository.KindLiteral || !repo.HasType(obj.Value, vocabulary.ParkingLot) {
			continue
		}
		nearby = append(nearby, models.NearbyParkingLot{
			ParkingLot: s.parkingLot(repo, obj.Value),
			Occupancy:  s.occupancy(ctx, repo, obj.Value),
		})
	}

	s.logger.Debug().
		Str("building", building).
		Int("parking_lots", len(nearby)).
		Msg("Resolved nearby parking")
	return nearby, nil
}

func (s *CampusService) building(repo repository.Repository, subj string) models.Building {
	return models.Building{
		ID:        subj,
		Name:      Property(repo, subj, vocabulary.RdfsLabel),
		Address:   Property(repo, subj, vocabulary.HasAddress),
		YearBuilt: Property(repo, subj, vocabulary.YearBuilt),
		NumFloors: Property(repo, subj, vocabulary.NumFloors),
		Geometry:  s.geometry(repo, subj),
	}
}

func (s *CampusService) parkingLot(repo repository.Repository, subj string) models.ParkingLot {
	return models.ParkingLot{
		ID:       subj,
		Name:     Property(repo, subj, vocabulary.RdfsLabel),
		LotType:  Property(repo, subj, vocabulary.LotType),
		Area:     Property(repo, subj, vocabulary.Area),
		Length:   Property(repo, subj, vocabulary.Length),
		Geometry: s.geometry(repo, subj),
	}
}

func (s *CampusService) geometry(repo repository.Repository, subj string) *string {
	raw := Property(repo, subj, vocabulary.GeoHasGeometry)
	if raw == nil {
		return nil
	}
	return s.converter.Convert(*raw).Ptr()
}

// occupancy never fails: provider errors are logged and absent values become 0.
func (s *CampusService) occupancy(ctx context.Context, repo repository.Repository, lot string) float64 {
	if s.live != nil {
		v, ok, err := s.live.Occupancy(ctx, lot)
		if err != nil {
			s.logger.Warn().Err(err).Str("lot", lot).Msg("Live occupancy lookup failed, using ontology observations")
		} else if ok {
			return v
		}
	}

	if v, ok := ResolveOccupancy(repo, lot); ok {
		return v
	}
	return 0
}

// Property returns the first value bound to (subject, predicate), or nil when
// none is bound. Empty literals count as unbound.
func Property(repo repository.Repository, subject, predicate string) *string {
	v, ok := repo.Value(subject, predicate)
	if !ok || v == "" {
		return nil
	}
	return &v
}

func findBuilding(repo repository.Repository, name string) (string, bool) {
	want := normalizeLabel(name)

	var (
		match string
		found bool
	)
	for _, t := range repo.SubjectObjects(vocabulary.RdfsLabel) {
		if normalizeLabel(t.Object.Value) != want {
			continue
		}
		if !repo.HasType(t.Subject, vocabulary.Building) {
			continue
		}
		if !found || t.Subject < match {
			match, found = t.Subject, true
		}
	}
	return match, found
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
