package graph

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kilianp07/nexthour/core/logger"
)

type cacheKey struct {
	start string
	kind  Kind
}

// Service serves cached reachability queries on a loaded graph.
type Service struct {
	graph *Graph
	cache *expirable.LRU[cacheKey, []string]
	log   logger.Logger
}

// NewService wraps g with a result cache of size entries living ttl.
func NewService(g *Graph, size int, ttl time.Duration, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop{}
	}
	return &Service{graph: g, cache: expirable.NewLRU[cacheKey, []string](size, nil, ttl), log: log}
}

// Reach returns the cached traversal of kind from start.
func (s *Service) Reach(start string, kind Kind) []string {
	key := cacheKey{start, kind}
	if nodes, ok := s.cache.Get(key); ok {
		s.log.Debugf("graph: %s %s from cache", start, kind)
		return nodes
	}
	s.log.Debugf("graph: computing %s %s", start, kind)
	nodes := s.graph.Reach(start, kind)
	s.cache.Add(key, nodes)
	return nodes
}

// Reachable returns all traversals from start keyed by kind.
func (s *Service) Reachable(start string) map[Kind][]string {
	out := make(map[Kind][]string, len(Kinds))
	for _, k := range Kinds {
		out[k] = s.Reach(start, k)
	}
	return out
}

// Cached returns the number of live cached traversals.
func (s *Service) Cached() int { return s.cache.Len() }
