// internal/repository/loader.go

package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/knakk/rdf"
	"github.com/rs/zerolog"
)

// Loader reads the ontology once at startup, from disk or over HTTP.
type Loader struct {
	client *resty.Client
	logger zerolog.Logger
}

// NewLoader creates a Loader whose remote fetches give up after timeout.
func NewLoader(timeout time.Duration, logger zerolog.Logger) *Loader {
	return &Loader{
		client: resty.New().SetTimeout(timeout),
		logger: logger,
	}
}

// Load reads source into a graph. source is a file path or an http(s) URL.
func (l *Loader) Load(ctx context.Context, source string) (*Graph, error) {
	if isRemote(source) {
		return l.fetch(ctx, source)
	}

	format, err := FormatForPath(source)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("error opening ontology %s: %w", source, err)
	}
	defer f.Close()

	g, err := ParseGraph(f, format)
	if err != nil {
		return nil, fmt.Errorf("error parsing ontology %s: %w", source, err)
	}
	l.logger.Info().Str("source", source).Int("triples", g.Len()).Msg("Ontology loaded")
	return g, nil
}

func (l *Loader) fetch(ctx context.Context, source string) (*Graph, error) {
	resp, err := l.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rdf+xml, text/turtle;q=0.9, application/n-triples;q=0.8").
		Get(source)
	if err != nil {
		return nil, fmt.Errorf("error fetching ontology %s: %w", source, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("error fetching ontology %s: unexpected status %s", source, resp.Status())
	}

	format, err := formatForResponse(source, resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	g, err := ParseGraph(bytes.NewReader(resp.Body()), format)
	if err != nil {
		return nil, fmt.Errorf("error parsing ontology %s: %w", source, err)
	}
	l.logger.Info().Str("source", source).Int("triples", g.Len()).Msg("Ontology fetched")
	return g, nil
}

// ParseGraph decodes every triple in r. RDF/XML documents may declare
// entities in an internal DTD subset, as Protégé and the OWL API write them.
func ParseGraph(r io.Reader, format rdf.Format) (*Graph, error) {
	if format == rdf.RDFXML {
		doc, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(expandEntities(doc))
	}

	decoded, err := rdf.NewTripleDecoder(r, format).DecodeAll()
	if err != nil {
		return nil, err
	}

	triples := make([]Triple, 0, len(decoded))
	for _, t := range decoded {
		triples = append(triples, Triple{
			Subject:   termFromRDF(t.Subj).Value,
			Predicate: t.Pred.String(),
			Object:    termFromRDF(t.Obj),
		})
	}
	return NewGraph(triples), nil
}

// FormatForPath picks a decoder from the file extension.
func FormatForPath(p string) (rdf.Format, error) {
	switch strings.ToLower(path.Ext(p)) {
	case ".owl", ".rdf", ".xml":
		return rdf.RDFXML, nil
	case ".ttl":
		return rdf.Turtle, nil
	case ".nt":
		return rdf.NTriples, nil
	}
	return 0, fmt.Errorf("unsupported ontology format for %q", p)
}

var (
	doctypePattern = regexp.MustCompile(`(?s)<!DOCTYPE[^\[>]*(\[(.*?)\])?\s*>`)
	entityPattern  = regexp.MustCompile(`<!ENTITY\s+([A-Za-z_][\w.-]*)\s+(?:"([^"]*)"|'([^']*)')\s*>`)
)

// expandEntities drops the DOCTYPE declaration and substitutes the general
// entities it declares. The five predefined XML entities are left alone.
func expandEntities(doc []byte) []byte {
	loc := doctypePattern.FindSubmatchIndex(doc)
	if loc == nil {
		return doc
	}

	var subset []byte
	if loc[4] >= 0 {
		subset = doc[loc[4]:loc[5]]
	}
	out := make([]byte, 0, len(doc))
	out = append(out, doc[:loc[0]]...)
	out = append(out, doc[loc[1]:]...)

	var pairs []string
	for _, m := range entityPattern.FindAllSubmatch(subset, -1) {
		value := m[2]
		if value == nil {
			value = m[3]
		}
		pairs = append(pairs, "&"+string(m[1])+";", string(value))
	}
	if len(pairs) == 0 {
		return out
	}
	return []byte(strings.NewReplacer(pairs...).Replace(string(out)))
}

func formatForResponse(source, contentType string) (rdf.Format, error) {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	switch strings.ToLower(mediaType) {
	case "application/rdf+xml", "application/owl+xml":
		return rdf.RDFXML, nil
	case "text/turtle", "application/x-turtle":
		return rdf.Turtle, nil
	case "application/n-triples":
		return rdf.NTriples, nil
	}

	u, err := url.Parse(source)
	if err != nil {
		return 0, fmt.Errorf("invalid ontology URL %q: %w", source, err)
	}
	return FormatForPath(u.Path)
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func termFromRDF(t rdf.Term) Term {
	switch t.Type() {
	case rdf.TermLiteral:
		return Literal(t.String())
	case rdf.TermBlank:
		id := t.String()
		if !strings.HasPrefix(id, "_:") {
			id = "_:" + id
		}
		return Blank(id)
	default:
		return IRI(t.String())
	}
}
