package geometry

import (
	"fmt"
	"math"

	"github.com/go-spatial/proj"
)

// EPSG codes the converter knows how to move between.
const (
	EPSGWebMercator = 3857
	EPSGWGS84       = 4326
)

// TransformFunc maps one (x, y) pair. x is easting/longitude, y is
// northing/latitude, in both the input and the output.
type TransformFunc func(x, y float64) (float64, float64, error)

// Lookup returns the transform from src to dst.
func Lookup(src, dst int) (TransformFunc, error) {
	switch {
	case src == dst:
		return identity, nil
	case src == EPSGWebMercator && dst == EPSGWGS84:
		return WebMercatorToWGS84, nil
	case src == EPSGWGS84 && dst == EPSGWebMercator:
		return WGS84ToWebMercator, nil
	}
	return nil, fmt.Errorf("no transform from EPSG:%d to EPSG:%d", src, dst)
}

func identity(x, y float64) (float64, float64, error) {
	return x, y, checkFinite(x, y)
}

// WebMercatorToWGS84 converts EPSG:3857 metres to EPSG:4326 degrees.
func WebMercatorToWGS84(x, y float64) (float64, float64, error) {
	if err := checkFinite(x, y); err != nil {
		return 0, 0, err
	}
	out, err := proj.Inverse(proj.EPSG3857, []float64{x, y})
	if err != nil {
		return 0, 0, fmt.Errorf("inverse web mercator: %w", err)
	}
	return pair(out)
}

// WGS84ToWebMercator converts EPSG:4326 degrees to EPSG:3857 metres.
// The poles have no image and fail.
func WGS84ToWebMercator(lon, lat float64) (float64, float64, error) {
	if err := checkFinite(lon, lat); err != nil {
		return 0, 0, err
	}
	if math.Abs(lat) >= 90 {
		return 0, 0, fmt.Errorf("latitude %v out of range for Web Mercator", lat)
	}
	out, err := proj.Convert(proj.EPSG3857, []float64{lon, lat})
	if err != nil {
		return 0, 0, fmt.Errorf("forward web mercator: %w", err)
	}
	return pair(out)
}

func pair(out []float64) (float64, float64, error) {
	if len(out) < 2 {
		return 0, 0, fmt.Errorf("projection returned %d values", len(out))
	}
	return out[0], out[1], checkFinite(out[0], out[1])
}

func checkFinite(x, y float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return fmt.Errorf("non-finite coordinate (%v, %v)", x, y)
	}
	return nil
}
