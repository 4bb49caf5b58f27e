package models

// Building is the API record for a tamu:Building subject. Nil fields encode
// as JSON null.
type Building struct {
	ID        string  `json:"id"`
	Name      *string `json:"name"`
	Address   *string `json:"address"`
	YearBuilt *string `json:"yearBuilt"`
	NumFloors *string `json:"numFloors"`
	Geometry  *string `json:"geometry"` // WKT in EPSG:4326
}

// ParkingLot is the API record for a tamu:ParkingLot subject.
type ParkingLot struct {
	ID       string  `json:"id"`
	Name     *string `json:"name"`
	LotType  *string `json:"lotType"`
	Area     *string `json:"area"`
	Length   *string `json:"length"`
	Geometry *string `json:"geometry"`
}

// NearbyParkingLot is a ParkingLot near a building, with its occupancy.
// Occupancy is 0 when no reading is available.
type NearbyParkingLot struct {
	ParkingLot
	Occupancy float64 `json:"occupancy"`
}

type BuildingsResponse struct {
	Buildings []Building `json:"buildings"`
}

type ParkingLotsResponse struct {
	ParkingLots []ParkingLot `json:"parking_lots"`
}

type NearbyParkingResponse struct {
	NearbyParking []NearbyParkingLot `json:"nearby_parking"`
}
