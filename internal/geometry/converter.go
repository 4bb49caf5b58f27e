// Package geometry reprojects WKT geometries between spatial reference systems.
package geometry

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// Result is the outcome of a conversion. OK is false when the input could
// not be converted; WKT is empty in that case.
type Result struct {
	WKT string
	OK  bool
}

// Ptr returns the WKT as a pointer, nil when absent, so it encodes to JSON null.
func (r Result) Ptr() *string {
	if !r.OK {
		return nil
	}
	s := r.WKT
	return &s
}

// Converter reprojects every vertex of a WKT geometry with a fixed transform.
type Converter struct {
	src, dst  int
	transform TransformFunc
	logger    zerolog.Logger
	failures  prometheus.Counter
}

// Option configures a Converter.
type Option func(*Converter)

// WithFailureCounter counts conversions that ended up absent.
func WithFailureCounter(c prometheus.Counter) Option {
	return func(conv *Converter) { conv.failures = c }
}

// NewConverter builds a converter from EPSG:src to EPSG:dst.
func NewConverter(src, dst int, logger zerolog.Logger, opts ...Option) (*Converter, error) {
	transform, err := Lookup(src, dst)
	if err != nil {
		return nil, err
	}
	c := &Converter{
		src:       src,
		dst:       dst,
		transform: transform,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Convert parses, reprojects and re-serializes a WKT string. Failures are
// logged and reported as an absent result; they never abort the caller.
func (c *Converter) Convert(text string) Result {
	out, err := c.convert(text)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("wkt", text).
			Int("src_epsg", c.src).
			Int("dst_epsg", c.dst).
			Msg("Error converting geometry")
		if c.failures != nil {
			c.failures.Inc()
		}
		return Result{}
	}
	return Result{WKT: out, OK: true}
}

func (c *Converter) convert(text string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic converting geometry: %v", r)
		}
	}()

	g, err := wkt.Unmarshal(stripCRS(text))
	if err != nil {
		return "", fmt.Errorf("parse WKT: %w", err)
	}
	if err := c.reproject(g); err != nil {
		return "", fmt.Errorf("transform: %w", err)
	}
	out, err = wkt.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("encode WKT: %w", err)
	}
	return out, nil
}

// reproject rewrites g's coordinates in place. g is freshly parsed and owned
// by the caller, so mutating its flat coordinate slice is safe.
func (c *Converter) reproject(g geom.T) error {
	if gc, ok := g.(*geom.GeometryCollection); ok {
		for _, child := range gc.Geoms() {
			if err := c.reproject(child); err != nil {
				return err
			}
		}
		return nil
	}

	flat := g.FlatCoords()
	if len(flat) == 0 {
		return nil
	}
	stride := g.Stride()
	if stride < 2 {
		return fmt.Errorf("unsupported layout %v", g.Layout())
	}
	for i := 0; i+1 < len(flat); i += stride {
		x, y, err := c.transform(flat[i], flat[i+1])
		if err != nil {
			return err
		}
		flat[i], flat[i+1] = x, y
	}
	return nil
}

// stripCRS drops a leading GeoSPARQL CRS IRI ("<http://...> POINT (...)")
// or an EWKT "SRID=n;" prefix. The source system is fixed, so neither carries
// information the converter needs.
func stripCRS(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "<") {
		if end := strings.IndexByte(s, '>'); end > 0 {
			s = strings.TrimSpace(s[end+1:])
		}
	}
	if strings.HasPrefix(strings.ToUpper(s), "SRID=") {
		if semi := strings.IndexByte(s, ';'); semi > 0 {
			s = strings.TrimSpace(s[semi+1:])
		}
	}
	return s
}
