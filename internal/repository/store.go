package repository

import "sync/atomic"

// GraphStore publishes the current graph snapshot. Readers never see a
// partially built graph; Swap replaces the whole snapshot at once.
type GraphStore struct {
	current atomic.Pointer[Graph]
}

// NewGraphStore creates a store serving g.
func NewGraphStore(g *Graph) *GraphStore {
	s := &GraphStore{}
	s.current.Store(g)
	return s
}

// Snapshot implements Source.
func (s *GraphStore) Snapshot() Repository {
	return s.current.Load()
}

// Graph returns the current snapshot as a concrete graph.
func (s *GraphStore) Graph() *Graph {
	return s.current.Load()
}

// Swap installs g and returns the previous snapshot.
func (s *GraphStore) Swap(g *Graph) *Graph {
	return s.current.Swap(g)
}
