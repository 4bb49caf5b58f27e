// internal/repository/graph.go

package repository

import (
	"sort"

	"CampusOntology.api/internal/vocabulary"
)

// TermKind distinguishes the three RDF term types.
type TermKind int

const (
	KindIRI TermKind = iota
	KindBlank
	KindLiteral
)

// Term is an RDF node reduced to its string form.
type Term struct {
	Value string
	Kind  TermKind
}

// IRI returns an IRI term.
func IRI(value string) Term { return Term{Value: value, Kind: KindIRI} }

// Literal returns a literal term holding the lexical form.
func Literal(value string) Term { return Term{Value: value, Kind: KindLiteral} }

// Blank returns a blank node term. IDs carry the "_:" prefix so they never
// collide with IRIs.
func Blank(id string) Term { return Term{Value: id, Kind: KindBlank} }

// Triple is a single statement. Subjects are IRIs or "_:" blank IDs.
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}

// Repository is the read interface over a loaded ontology.
type Repository interface {
	// Value returns the first object bound to (subject, predicate), in document order.
	Value(subject, predicate string) (string, bool)
	Subjects(predicate string, object Term) []string
	Objects(subject, predicate string) []Term
	SubjectObjects(predicate string) []Triple
	Contains(t Triple) bool
	HasType(subject, class string) bool
	Len() int
}

// Source hands out the graph snapshot a request should read from.
type Source interface {
	Snapshot() Repository
}

type spKey struct {
	subject   string
	predicate string
}

type poKey struct {
	predicate string
	object    Term
}

// Graph is an immutable in-memory triple store. All indexes are built in
// NewGraph, so concurrent reads need no locking.
type Graph struct {
	triples []Triple
	set     map[Triple]struct{}
	bySP    map[spKey][]Term
	byPO    map[poKey][]string
	byP     map[string][]int
}

// NewGraph indexes the given triples. Duplicate statements are dropped and
// the first occurrence fixes the document order.
func NewGraph(triples []Triple) *Graph {
	g := &Graph{
		triples: make([]Triple, 0, len(triples)),
		set:     make(map[Triple]struct{}, len(triples)),
		bySP:    make(map[spKey][]Term),
		byPO:    make(map[poKey][]string),
		byP:     make(map[string][]int),
	}

	for _, t := range triples {
		if _, dup := g.set[t]; dup {
			continue
		}
		g.set[t] = struct{}{}
		g.byP[t.Predicate] = append(g.byP[t.Predicate], len(g.triples))
		g.triples = append(g.triples, t)

		sp := spKey{t.Subject, t.Predicate}
		g.bySP[sp] = append(g.bySP[sp], t.Object)

		po := poKey{t.Predicate, t.Object}
		g.byPO[po] = append(g.byPO[po], t.Subject)
	}

	for k := range g.byPO {
		sort.Strings(g.byPO[k])
	}
	return g
}

// Snapshot makes a bare graph usable wherever a Source is expected.
func (g *Graph) Snapshot() Repository { return g }

// Value implements Repository.
func (g *Graph) Value(subject, predicate string) (string, bool) {
	objs := g.bySP[spKey{subject, predicate}]
	if len(objs) == 0 {
		return "", false
	}
	return objs[0].Value, true
}

// Subjects returns the subjects of (?, predicate, object) in lexicographic order.
func (g *Graph) Subjects(predicate string, object Term) []string {
	subjects := g.byPO[poKey{predicate, object}]
	out := make([]string, len(subjects))
	copy(out, subjects)
	return out
}

// Objects returns the objects of (subject, predicate, ?) in document order.
func (g *Graph) Objects(subject, predicate string) []Term {
	objs := g.bySP[spKey{subject, predicate}]
	out := make([]Term, len(objs))
	copy(out, objs)
	return out
}

// SubjectObjects returns every statement using predicate, in document order.
func (g *Graph) SubjectObjects(predicate string) []Triple {
	idx := g.byP[predicate]
	out := make([]Triple, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.triples[i])
	}
	return out
}

// Contains implements Repository.
func (g *Graph) Contains(t Triple) bool {
	_, ok := g.set[t]
	return ok
}

// HasType reports whether subject carries an rdf:type of class.
func (g *Graph) HasType(subject, class string) bool {
	return g.Contains(Triple{Subject: subject, Predicate: vocabulary.RdfType, Object: IRI(class)})
}

// Len returns the number of distinct statements.
func (g *Graph) Len() int { return len(g.triples) }
