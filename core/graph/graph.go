// Package graph answers reachability questions on a directed graph loaded
// from an edge list: which nodes can be reached from a start node going
// downstream (descendants), upstream (ancestors) or both ways (related).
package graph

import (
	"fmt"
	"slices"

	gograph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Kind selects the traversal direction.
type Kind string

const (
	Descendants Kind = "descendants"
	Ancestors   Kind = "ancestors"
	Related     Kind = "related"
)

// Kinds lists every traversal in response order.
var Kinds = []Kind{Descendants, Ancestors, Related}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown traversal %q", s)
}

// Graph is a directed graph with string node ids stored in a gonum
// simple.DirectedGraph. Names get int64 ids in first-seen order and
// neighbours are visited in that order. Duplicate edges are ignored.
type Graph struct {
	g     *simple.DirectedGraph
	ids   map[string]int64
	names []string
	// simple.DirectedGraph rejects self edges
	loops map[int64]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		g:     simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		loops: make(map[int64]struct{}),
	}
}

// AddEdge adds from -> to, creating both nodes.
func (g *Graph) AddEdge(from, to string) {
	f, t := g.node(from), g.node(to)
	if f.ID() == t.ID() {
		g.loops[f.ID()] = struct{}{}
		return
	}
	g.g.SetEdge(g.g.NewEdge(f, t))
}

func (g *Graph) node(name string) gograph.Node {
	if id, ok := g.ids[name]; ok {
		return g.g.Node(id)
	}
	n := simple.Node(len(g.names))
	g.ids[name] = n.ID()
	g.names = append(g.names, name)
	g.g.AddNode(n)
	return n
}

// Has reports whether n is a node of the graph.
func (g *Graph) Has(n string) bool {
	_, ok := g.ids[n]
	return ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return g.g.Nodes().Len() }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return g.g.Edges().Len() + len(g.loops) }

// Reach returns the nodes reachable from start for the given kind, in
// depth-first discovery order. The start node itself is only listed when a
// path leads back to it. An unknown start node yields an empty list.
func (g *Graph) Reach(start string, kind Kind) []string {
	out := []string{}
	id, ok := g.ids[start]
	if !ok {
		return out
	}
	next := g.neighbours(kind)
	seen := make(map[int64]struct{})
	var visit func(n int64)
	visit = func(n int64) {
		for _, m := range next(n) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, g.names[m])
			visit(m)
		}
	}
	visit(id)
	return out
}

func (g *Graph) neighbours(kind Kind) func(int64) []int64 {
	switch kind {
	case Ancestors:
		return g.pred
	case Related:
		return func(n int64) []int64 { return append(g.pred(n), g.succ(n)...) }
	default:
		return g.succ
	}
}

func (g *Graph) succ(n int64) []int64 { return g.sorted(g.g.From(n), n) }

func (g *Graph) pred(n int64) []int64 { return g.sorted(g.g.To(n), n) }

// sorted drains it into ascending ids, adding n itself when it has a loop.
func (g *Graph) sorted(it gograph.Nodes, n int64) []int64 {
	var ids []int64
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	if _, ok := g.loops[n]; ok {
		ids = append(ids, n)
	}
	slices.Sort(ids)
	return ids
}
