package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads an edge list with one "from,to" pair per line. Lines equal to an
// entry of blacklist, and blank lines, are skipped.
func Load(r io.Reader, blacklist []string) (*Graph, error) {
	skip := make(map[string]struct{}, len(blacklist))
	for _, b := range blacklist {
		skip[strings.TrimSpace(b)] = struct{}{}
	}
	g := New()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if _, ok := skip[line]; ok {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected from,to got %q", lineNo, line)
		}
		from, to := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
		if from == "" || to == "" {
			return nil, fmt.Errorf("line %d: empty node id", lineNo)
		}
		g.AddEdge(from, to)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string, blacklist []string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Load(f, blacklist)
}
