package graphio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"prefregion/pkg/oracle"
)

// Path is one entry of the paths file (spec.md §6): a YAML list of
// node sequences with their constituent edges and the pre-computed
// per-dimension cost total the oracle compares its own Dijkstra
// result against.
type Path struct {
	Nodes               []uint32  `yaml:"nodes"`
	Edges               []uint32  `yaml:"edges"`
	TotalDimensionCosts []float64 `yaml:"total_dimension_costs"`
}

// ToOraclePath narrows a Path down to what the separation oracle
// needs: its endpoints and its stored cost vector.
func (p Path) ToOraclePath() oracle.Path {
	return oracle.Path{
		S:          p.Nodes[0],
		T:          p.Nodes[len(p.Nodes)-1],
		TotalCosts: p.TotalDimensionCosts,
	}
}

// ReadPaths parses a YAML paths file into a slice of Path.
func ReadPaths(path string) ([]Path, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read paths file: %w", err)
	}
	var paths []Path
	if err := yaml.Unmarshal(data, &paths); err != nil {
		return nil, fmt.Errorf("parse paths file: %w", err)
	}
	return paths, nil
}

// WritePaths serializes paths back to the YAML paths file format.
func WritePaths(path string, paths []Path) error {
	data, err := yaml.Marshal(paths)
	if err != nil {
		return fmt.Errorf("marshal paths: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write paths file: %w", err)
	}
	return nil
}
