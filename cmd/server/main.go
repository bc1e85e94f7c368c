// Command server answers preference-region queries over a
// preprocessed graph: given a set of candidate paths, it approximates
// each path's preference-region size and reports whether one subset
// (-subset, default all paths) admits a common preference.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"prefregion/pkg/approx"
	"prefregion/pkg/graph"
	"prefregion/pkg/graphio"
	"prefregion/pkg/oracle"
	"prefregion/pkg/prefset"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to preprocessed graph binary")
	pathsPath := flag.String("paths", "paths.yaml", "Path to YAML candidate paths file")
	subset := flag.String("subset", "", "Comma-separated path indices to test for a common preference (default: all paths)")
	approxDirs := flag.Int("approx-dirs", 16, "Rotation steps per axis pair in the direction schedule used to approximate each path's preference-region size")
	flag.Parse()

	start := time.Now()

	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.ReadBinary(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges, %d-dimensional costs", g.NumNodes, g.NumEdges, g.Dim)

	log.Printf("Loading paths from %s...", *pathsPath)
	pathRows, err := graphio.ReadPaths(*pathsPath)
	if err != nil {
		log.Fatalf("Failed to load paths: %v", err)
	}
	paths := make([]oracle.Path, len(pathRows))
	for i, p := range pathRows {
		paths[i] = p.ToOraclePath()
	}
	log.Printf("Loaded %d candidate paths", len(paths))

	ps := prefset.New(g.Dim, g, paths)

	log.Println("Approximating preference-region sizes...")
	dirs := approx.RotationDirections(g.Dim-1, *approxDirs)
	sizes := ps.ApproximatePrefSpaces(dirs)
	for i, sa := range sizes {
		fmt.Printf("path %d: %d inner points, %d outer constraints\n", i, len(sa.InnerPoints), len(sa.OuterConstraints))
	}

	indices := parseSubset(*subset, len(paths))
	log.Printf("Testing subset %v for a common preference...", indices)
	alpha, ok := ps.SubsetPreference(indices)
	if !ok {
		fmt.Println("infeasible: no preference makes every path in this subset simultaneously optimal")
		os.Exit(1)
	}
	fmt.Printf("feasible: alpha = %v\n", alpha)

	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))
}

func parseSubset(s string, numPaths int) []int {
	if s == "" {
		indices := make([]int, numPaths)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	fields := strings.Split(s, ",")
	indices := make([]int, 0, len(fields))
	for _, f := range fields {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			log.Fatalf("Invalid --subset index %q: %v", f, err)
		}
		indices = append(indices, i)
	}
	return indices
}
