// Package vocabulary holds the IRIs the campus ontology is queried with.
package vocabulary

// Namespace bases.
const (
	RDF       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS      = "http://www.w3.org/2000/01/rdf-schema#"
	GeoSPARQL = "http://www.opengis.net/ont/geosparql#"
	TAMU      = "http://tamu.edu/ontologies/tamu_ont#"
	SOSA      = "http://www.w3.org/ns/sosa/"
)

// RDF and RDF Schema
const (
	RdfType   = RDF + "type"
	RdfsLabel = RDFS + "label"
)

// GeoSPARQL
const (
	// GeoHasGeometry binds a feature directly to its WKT literal in this ontology.
	GeoHasGeometry = GeoSPARQL + "hasGeometry"
)

// Campus classes
const (
	Building   = TAMU + "Building"
	ParkingLot = TAMU + "ParkingLot"
)

// Campus properties
const (
	HasAddress = TAMU + "hasAddress"
	YearBuilt  = TAMU + "yearBuilt"
	NumFloors  = TAMU + "numFloors"
	LotType    = TAMU + "lotType"
	Area       = TAMU + "area"
	Length     = TAMU + "length"
	Nearby     = TAMU + "nearby"
)

// SOSA observation properties
const (
	HasFeatureOfInterest = SOSA + "hasFeatureOfInterest"
	HasSimpleResult      = SOSA + "hasSimpleResult"
)
