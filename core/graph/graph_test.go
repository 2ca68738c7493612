package graph

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1 -> 2 -> 3, 2 -> 4, 5 -> 2
const edges = `1,2
2,3
2,4
5,2
`

func load(t *testing.T, data string, blacklist ...string) *Graph {
	t.Helper()
	g, err := Load(strings.NewReader(data), blacklist)
	require.NoError(t, err)
	return g
}

func TestReach(t *testing.T) {
	g := load(t, edges)
	assert.Equal(t, 5, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())

	assert.Equal(t, []string{"2", "3", "4"}, g.Reach("1", Descendants))
	assert.Equal(t, []string{"1", "5"}, g.Reach("2", Ancestors))
	assert.Equal(t, []string{}, g.Reach("3", Descendants))
	// related walks predecessors before successors and comes back to the start
	assert.Equal(t, []string{"2", "1", "5", "3", "4"}, g.Reach("3", Related))
}

func TestReach_UnknownNode(t *testing.T) {
	g := load(t, edges)
	for _, k := range Kinds {
		out := g.Reach("42", k)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	}
}

func TestReach_Cycle(t *testing.T) {
	g := load(t, "a,b\nb,c\nc,a\n")
	assert.Equal(t, []string{"b", "c", "a"}, g.Reach("a", Descendants))
}

func TestLoad_BlacklistAndDuplicates(t *testing.T) {
	g := load(t, "1,2\n\n 2,3 \n1,2\n", "2,3")
	assert.Equal(t, []string{"2"}, g.Reach("1", Descendants))
	assert.Equal(t, 1, g.EdgeCount())
	assert.False(t, g.Has("3"))
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(strings.NewReader("1,2\n3\n"), nil)
	assert.ErrorContains(t, err, "line 2")
	_, err = Load(strings.NewReader(",2\n"), nil)
	assert.Error(t, err)
	_, err = LoadFile("does-not-exist.csv", nil)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("ancestors")
	require.NoError(t, err)
	assert.Equal(t, Ancestors, k)
	_, err = ParseKind("cousins")
	assert.Error(t, err)
}

func TestLoad_SelfLoop(t *testing.T) {
	g := load(t, "a,a\na,b\n")
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []string{"a", "b"}, g.Reach("a", Descendants))
	assert.Equal(t, []string{"a"}, g.Reach("b", Ancestors))
}

func TestReach_FirstSeenOrder(t *testing.T) {
	// z is seen before y, so it is visited first
	g := load(t, "z,q\ny,q\nx,z\nx,y\n")
	assert.Equal(t, []string{"z", "q", "y"}, g.Reach("x", Descendants))
	assert.Equal(t, []string{"z", "x", "y"}, g.Reach("q", Ancestors))
}

type countingLog struct {
	computed int
	cached   int
}

func (c *countingLog) Debugf(format string, _ ...any) {
	if strings.Contains(format, "computing") {
		c.computed++
	} else {
		c.cached++
	}
}
func (c *countingLog) Debugw(string, map[string]any) {}
func (c *countingLog) Infof(string, ...any)          {}
func (c *countingLog) Warnf(string, ...any)          {}
func (c *countingLog) Errorf(string, ...any)         {}

func TestService_CachesPerStartAndKind(t *testing.T) {
	log := &countingLog{}
	s := NewService(load(t, edges), 30, time.Minute, log)

	assert.Equal(t, []string{"2", "3", "4"}, s.Reach("1", Descendants))
	assert.Equal(t, []string{"2", "3", "4"}, s.Reach("1", Descendants))
	s.Reach("1", Ancestors)
	assert.Equal(t, 2, log.computed)
	assert.Equal(t, 1, log.cached)
	assert.Equal(t, 2, s.Cached())

	all := s.Reachable("2")
	assert.Len(t, all, 3)
	assert.Equal(t, []string{"3", "4"}, all[Descendants])
	assert.Equal(t, []string{"1", "5"}, all[Ancestors])
}

func TestService_EntriesExpire(t *testing.T) {
	log := &countingLog{}
	s := NewService(load(t, edges), 30, 50*time.Millisecond, log)
	s.Reach("1", Descendants)
	require.Equal(t, 1, log.computed)

	require.Eventually(t, func() bool {
		s.Reach("1", Descendants)
		return log.computed == 2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestService_EvictsLeastRecentlyUsed(t *testing.T) {
	log := &countingLog{}
	s := NewService(load(t, edges), 2, time.Minute, log)
	s.Reach("1", Descendants)
	s.Reach("2", Descendants)
	s.Reach("1", Descendants)
	s.Reach("3", Descendants)
	assert.Equal(t, 2, s.Cached())
	assert.Equal(t, 3, log.computed)

	s.Reach("1", Descendants)
	assert.Equal(t, 3, log.computed, "recently used entry must survive")
	s.Reach("2", Descendants)
	assert.Equal(t, 4, log.computed, "least recently used entry must be evicted")
}
