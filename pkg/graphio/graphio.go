// Package graphio reads and writes the minimal text graph format and
// the YAML paths file named in spec.md §6: a human-readable,
// round-trippable alternative to pkg/graph's binary snapshot, meant
// for hand-authored test fixtures and cross-tool interchange.
package graphio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"prefregion/pkg/graph"
)

// Read parses the minimal text graph format: optional leading comment
// lines (starting with '#'), the cost dimension d, d whitespace-separated
// metric names, |V|, |E|, then |V| "id level" node lines and |E|
// "id src tgt c_1 ... c_d e1 e2" edge lines (e1=e2=-1 for a
// non-shortcut edge). It returns the assembled, level-sorted Graph
// together with the metric names in file order.
func Read(path string) (*graph.Graph, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()

	lr := &lineReader{sc: bufio.NewScanner(f)}
	lr.sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	dim, err := lr.nextInt()
	if err != nil {
		return nil, nil, fmt.Errorf("read dimension: %w", err)
	}
	names, err := lr.nextFields(dim)
	if err != nil {
		return nil, nil, fmt.Errorf("read metric names: %w", err)
	}
	numNodes, err := lr.nextUint()
	if err != nil {
		return nil, nil, fmt.Errorf("read |V|: %w", err)
	}
	numEdges, err := lr.nextUint()
	if err != nil {
		return nil, nil, fmt.Errorf("read |E|: %w", err)
	}

	level := make([]uint32, numNodes)
	for i := uint32(0); i < numNodes; i++ {
		fields, err := lr.nextFields(2)
		if err != nil {
			return nil, nil, fmt.Errorf("read node line %d: %w", i, err)
		}
		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil || uint32(id) != i {
			return nil, nil, fmt.Errorf("node line %d: id field is %q, want %d", i, fields[0], i)
		}
		lvl, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("node line %d: bad level %q: %w", i, fields[1], err)
		}
		level[i] = uint32(lvl)
	}

	g := graph.Build(numNodes, dim, nil)
	for i := uint32(0); i < numEdges; i++ {
		fields, err := lr.nextFields(5 + dim)
		if err != nil {
			return nil, nil, fmt.Errorf("read edge line %d: %w", i, err)
		}
		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil || uint32(id) != i {
			return nil, nil, fmt.Errorf("edge line %d: id field is %q, want %d", i, fields[0], i)
		}
		src, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("edge line %d: bad src %q: %w", i, fields[1], err)
		}
		tgt, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("edge line %d: bad tgt %q: %w", i, fields[2], err)
		}
		costs := make([]float64, dim)
		for k := 0; k < dim; k++ {
			costs[k], err = strconv.ParseFloat(fields[3+k], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("edge line %d: bad cost[%d] %q: %w", i, k, fields[3+k], err)
			}
		}
		e1, err := strconv.ParseInt(fields[3+dim], 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("edge line %d: bad e1 %q: %w", i, fields[3+dim], err)
		}
		e2, err := strconv.ParseInt(fields[4+dim], 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("edge line %d: bad e2 %q: %w", i, fields[4+dim], err)
		}
		got := g.AddEdge(uint32(src), uint32(tgt), costs, int32(e1), int32(e2))
		if got != uint32(i) {
			return nil, nil, fmt.Errorf("edge line %d: assembled id %d out of order", i, got)
		}
	}

	g.RebuildOutAdjacency()
	g.Level = level
	g.SortAdjacencyByLevel()

	return g, names, nil
}

// Write serializes g back to the minimal text format, with metric
// names labeling its d cost dimensions. Round-tripping a file through
// Read then Write reproduces the same node/edge data (node and edge
// ids are already dense and ascending in g, so line order matches).
func Write(path string, g *graph.Graph, metricNames []string) error {
	if len(metricNames) != g.Dim {
		return fmt.Errorf("graphio.Write: %d metric names for a %d-dimensional graph", len(metricNames), g.Dim)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create graph file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# prefregion graph export\n")
	fmt.Fprintf(w, "%d\n", g.Dim)
	fmt.Fprintf(w, "%s\n", strings.Join(metricNames, " "))
	fmt.Fprintf(w, "%d\n", g.NumNodes)
	fmt.Fprintf(w, "%d\n", g.NumEdges)

	for i := uint32(0); i < g.NumNodes; i++ {
		fmt.Fprintf(w, "%d %d\n", i, g.Level[i])
	}
	for e := uint32(0); e < g.NumEdges; e++ {
		var b strings.Builder
		fmt.Fprintf(&b, "%d %d %d", e, g.EdgeSrc[e], g.EdgeTgt[e])
		for _, c := range g.Costs(e) {
			fmt.Fprintf(&b, " %s", strconv.FormatFloat(c, 'g', -1, 64))
		}
		fmt.Fprintf(&b, " %d %d\n", g.Shortcut1[e], g.Shortcut2[e])
		if _, err := w.WriteString(b.String()); err != nil {
			return fmt.Errorf("write edge %d: %w", e, err)
		}
	}

	return w.Flush()
}

// lineReader skips blank lines and '#' comment lines and splits the
// remaining lines on whitespace, giving the parser a stream of
// non-empty token rows regardless of how the header comments are laid
// out in the source file.
type lineReader struct {
	sc *bufio.Scanner
}

func (lr *lineReader) nextFields(want int) ([]string, error) {
	for lr.sc.Scan() {
		line := strings.TrimSpace(lr.sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != want {
			return nil, fmt.Errorf("line %q: got %d fields, want %d", line, len(fields), want)
		}
		return fields, nil
	}
	if err := lr.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.ErrUnexpectedEOF
}

func (lr *lineReader) nextInt() (int, error) {
	fields, err := lr.nextFields(1)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(fields[0])
}

func (lr *lineReader) nextUint() (uint32, error) {
	fields, err := lr.nextFields(1)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(fields[0], 10, 32)
	return uint32(v), err
}
