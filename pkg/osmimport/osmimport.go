// Package osmimport builds a Graph from an OpenStreetMap PBF extract,
// generalizing the teacher's single-weight road importer to the
// three-dimensional cost vector this module's preference regions are
// computed over (spec.md §4.10.2): (length_m, estimated_seconds,
// class_penalty).
package osmimport

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"prefregion/pkg/geo"
	"prefregion/pkg/graph"
)

// Dim is the cost dimension every imported graph carries.
const Dim = 3

const (
	dimLength = iota
	dimSeconds
	dimClassPenalty
)

// carHighways lists highway tag values accessible by car, together
// with the free-flow speed (km/h) used for the seconds dimension and
// a class penalty (dimensionless, higher discourages the road class
// independently of its length or speed — e.g. a residential street
// carries a larger penalty than a motorway of the same drive time).
var carHighways = map[string]struct {
	speedKmh     float64
	classPenalty float64
}{
	"motorway":       {speedKmh: 110, classPenalty: 0.0},
	"motorway_link":  {speedKmh: 70, classPenalty: 0.2},
	"trunk":          {speedKmh: 90, classPenalty: 0.1},
	"trunk_link":     {speedKmh: 50, classPenalty: 0.3},
	"primary":        {speedKmh: 70, classPenalty: 0.3},
	"primary_link":   {speedKmh: 40, classPenalty: 0.4},
	"secondary":      {speedKmh: 55, classPenalty: 0.5},
	"secondary_link": {speedKmh: 35, classPenalty: 0.6},
	"tertiary":       {speedKmh: 45, classPenalty: 0.7},
	"tertiary_link":  {speedKmh: 30, classPenalty: 0.8},
	"unclassified":   {speedKmh: 35, classPenalty: 0.9},
	"residential":    {speedKmh: 30, classPenalty: 1.0},
	"living_street":  {speedKmh: 15, classPenalty: 1.2},
	"service":        {speedKmh: 20, classPenalty: 1.3},
}

func isCarAccessible(tags osm.Tags) (string, bool) {
	hw := tags.Find("highway")
	if _, ok := carHighways[hw]; !ok {
		return "", false
	}
	if tags.Find("area") == "yes" {
		return "", false
	}
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return "", false
	}
	if tags.Find("motor_vehicle") == "no" {
		return "", false
	}
	return hw, true
}

func directionFlags(tags osm.Tags) (forward, backward bool) {
	forward, backward = true, true
	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible":
		forward, backward = false, false
	}
	return forward, backward
}

type wayInfo struct {
	NodeIDs  []osm.NodeID
	Highway  string
	Forward  bool
	Backward bool
}

// BBox filters imported edges to a geographic bounding box; the zero
// value imports everything.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (b BBox) isZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

func (b BBox) contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Options configures Import.
type Options struct {
	BBox BBox
}

// Import reads an OSM PBF extract from rs (consumed twice, so it must
// support seeking back to the start) and returns a Graph over
// directed, car-accessible road segments with a 3-dimensional cost
// vector per edge.
func Import(ctx context.Context, rs io.ReadSeeker, opts ...Options) (*graph.Graph, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.isZero()

	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		hw, ok := isCarAccessible(w.Tags)
		if !ok || len(w.Nodes) < 2 {
			continue
		}
		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}
		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}
		ways = append(ways, wayInfo{NodeIDs: nodeIDs, Highway: hw, Forward: fwd, Backward: bwd})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("osmimport: pass 1 (ways): %w", err)
	}
	scanner.Close()
	log.Printf("osmimport: pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referencedNodes))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("osmimport: seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("osmimport: pass 2 (nodes): %w", err)
	}
	scanner.Close()
	log.Printf("osmimport: pass 2 complete: %d node coordinates collected", len(nodeLat))

	// Dense-index every node that ended up with known coordinates;
	// nodes dropped for missing coordinates simply never enter the
	// index and their incident edges are skipped below.
	denseID := make(map[osm.NodeID]uint32, len(nodeLat))
	for id := range nodeLat {
		denseID[id] = uint32(len(denseID))
	}

	var edges []graph.RawEdge
	var skipped, bboxFiltered int
	for _, w := range ways {
		class := carHighways[w.Highway]
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID, toID := w.NodeIDs[i], w.NodeIDs[i+1]
			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]
			if !fromOk || !toOk {
				skipped++
				continue
			}
			if useBBox && (!opt.BBox.contains(fromLat, fromLon) || !opt.BBox.contains(toLat, toLon)) {
				bboxFiltered++
				continue
			}

			lengthM := geo.Haversine(fromLat, fromLon, toLat, toLon)
			if lengthM == 0 {
				lengthM = 1
			}
			seconds := lengthM / (class.speedKmh * 1000 / 3600)
			costs := make([]float64, Dim)
			costs[dimLength] = lengthM
			costs[dimSeconds] = seconds
			costs[dimClassPenalty] = class.classPenalty * math.Max(lengthM/1000, 0.01)

			from, to := denseID[fromID], denseID[toID]
			if w.Forward {
				edges = append(edges, graph.RawEdge{Src: from, Tgt: to, Costs: append([]float64(nil), costs...)})
			}
			if w.Backward {
				edges = append(edges, graph.RawEdge{Src: to, Tgt: from, Costs: append([]float64(nil), costs...)})
			}
		}
	}
	if skipped > 0 {
		log.Printf("osmimport: skipped %d edges with missing node coordinates", skipped)
	}
	if bboxFiltered > 0 {
		log.Printf("osmimport: filtered %d edges outside bounding box", bboxFiltered)
	}
	log.Printf("osmimport: built %d directed edges over %d nodes", len(edges), len(denseID))

	return graph.Build(uint32(len(denseID)), Dim, edges), nil
}
