// Package testutil provides a small campus ontology for tests.
package testutil

import (
	"fmt"
	"strings"

	"CampusOntology.api/internal/repository"
	"CampusOntology.api/internal/vocabulary"
)

// Subject IRIs of the fixture campus.
const (
	Zachry       = vocabulary.TAMU + "Zachry"
	EvansLibrary = vocabulary.TAMU + "EvansLibrary"
	BrokenHall   = vocabulary.TAMU + "BrokenHall"
	ZachryAnnex  = vocabulary.TAMU + "ZachryAnnex"

	Lot50      = vocabulary.TAMU + "Lot50"
	Lot51      = vocabulary.TAMU + "Lot51"
	WestGarage = vocabulary.TAMU + "WestGarage"

	ObsLot50A = vocabulary.TAMU + "obs_lot50_a"
	ObsLot50B = vocabulary.TAMU + "obs_lot50_b"
	ObsLot51  = vocabulary.TAMU + "obs_lot51"
)

// ZachryWKT is Zachry's stored EPSG:3857 footprint.
const ZachryWKT = "POINT (-10719630 3583606)"

// Lot50WKT is Lot 50's stored EPSG:3857 outline.
const Lot50WKT = "POLYGON ((-10719630 3583606, -10718000 3583606, -10718000 3584000, -10719630 3583606))"

func typed(subject, class string) repository.Triple {
	return repository.Triple{Subject: subject, Predicate: vocabulary.RdfType, Object: repository.IRI(class)}
}

func lit(subject, predicate, value string) repository.Triple {
	return repository.Triple{Subject: subject, Predicate: predicate, Object: repository.Literal(value)}
}

func link(subject, predicate, object string) repository.Triple {
	return repository.Triple{Subject: subject, Predicate: predicate, Object: repository.IRI(object)}
}

// CampusTriples returns the fixture campus.
//
// Zachry is near Lot 50 (two observations, first "42%"), Lot 51 (unparseable
// reading) and Evans Library (not a parking lot). West Garage is labelled
// "Zachry" but is not a building. Broken Hall has malformed geometry.
func CampusTriples() []repository.Triple {
	sosaObservation := vocabulary.SOSA + "Observation"
	return []repository.Triple{
		typed(Zachry, vocabulary.Building),
		lit(Zachry, vocabulary.RdfsLabel, "Zachry"),
		lit(Zachry, vocabulary.HasAddress, "125 Spence St"),
		lit(Zachry, vocabulary.YearBuilt, "1972"),
		lit(Zachry, vocabulary.NumFloors, "4"),
		lit(Zachry, vocabulary.GeoHasGeometry, ZachryWKT),
		link(Zachry, vocabulary.Nearby, Lot50),
		link(Zachry, vocabulary.Nearby, EvansLibrary),
		link(Zachry, vocabulary.Nearby, Lot51),
		lit(Zachry, vocabulary.Nearby, "somewhere"),

		typed(EvansLibrary, vocabulary.Building),
		lit(EvansLibrary, vocabulary.RdfsLabel, "Evans Library"),
		lit(EvansLibrary, vocabulary.YearBuilt, "1930"),

		typed(BrokenHall, vocabulary.Building),
		lit(BrokenHall, vocabulary.RdfsLabel, "Broken Hall"),
		lit(BrokenHall, vocabulary.GeoHasGeometry, "POLYGON ((0 0, 1 1"),

		typed(Lot50, vocabulary.ParkingLot),
		lit(Lot50, vocabulary.RdfsLabel, "Lot 50"),
		lit(Lot50, vocabulary.LotType, "Faculty"),
		lit(Lot50, vocabulary.Area, "12000"),
		lit(Lot50, vocabulary.Length, "150"),
		lit(Lot50, vocabulary.GeoHasGeometry, Lot50WKT),

		typed(Lot51, vocabulary.ParkingLot),
		lit(Lot51, vocabulary.RdfsLabel, "Lot 51"),
		lit(Lot51, vocabulary.LotType, "Student"),

		typed(WestGarage, vocabulary.ParkingLot),
		lit(WestGarage, vocabulary.RdfsLabel, "Zachry"),

		typed(ObsLot50B, sosaObservation),
		link(ObsLot50B, vocabulary.HasFeatureOfInterest, Lot50),
		lit(ObsLot50B, vocabulary.HasSimpleResult, "99%"),

		typed(ObsLot50A, sosaObservation),
		link(ObsLot50A, vocabulary.HasFeatureOfInterest, Lot50),
		lit(ObsLot50A, vocabulary.HasSimpleResult, "42%"),

		typed(ObsLot51, sosaObservation),
		link(ObsLot51, vocabulary.HasFeatureOfInterest, Lot51),
		lit(ObsLot51, vocabulary.HasSimpleResult, "n/a"),
	}
}

// CampusGraph returns the fixture campus as a graph.
func CampusGraph() *repository.Graph {
	return repository.NewGraph(CampusTriples())
}

var ntEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

// NTriples serializes triples as an N-Triples document.
func NTriples(triples []repository.Triple) string {
	var b strings.Builder
	for _, t := range triples {
		fmt.Fprintf(&b, "%s <%s> %s .\n", ntSubject(t.Subject), t.Predicate, ntTerm(t.Object))
	}
	return b.String()
}

func ntSubject(s string) string {
	if strings.HasPrefix(s, "_:") {
		return s
	}
	return "<" + s + ">"
}

func ntTerm(t repository.Term) string {
	switch t.Kind {
	case repository.KindLiteral:
		return `"` + ntEscaper.Replace(t.Value) + `"`
	case repository.KindBlank:
		return t.Value
	default:
		return "<" + t.Value + ">"
	}
}

// DuplicateZachry returns a second building whose label also matches "Zachry".
func DuplicateZachry() []repository.Triple {
	return []repository.Triple{
		typed(ZachryAnnex, vocabulary.Building),
		lit(ZachryAnnex, vocabulary.RdfsLabel, "ZACHRY "),
	}
}

// Graph indexes triples.
func Graph(triples []repository.Triple) *repository.Graph {
	return repository.NewGraph(triples)
}
