package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"prefregion/pkg/ch"
	"prefregion/pkg/graph"
	"prefregion/pkg/graphio"
	"prefregion/pkg/osmimport"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf or minimal text graph file")
	textInput := flag.Bool("text", false, "Treat --input as a minimal text graph file instead of .osm.pbf")
	output := flag.String("output", "graph.bin", "Output binary graph file path")
	bbox := flag.String("bbox", "", "Bounding box filter for OSM import: minLat,minLng,maxLat,maxLng")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm.pbf|graph.txt> [--text] [--output graph.bin] [--bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	start := time.Now()

	var g *graph.Graph

	if *textInput {
		log.Printf("Reading minimal text graph from %s...", *input)
		var err error
		g, _, err = graphio.Read(*input)
		if err != nil {
			log.Fatalf("Failed to read graph file: %v", err)
		}
		log.Printf("Read %d nodes, %d edges", g.NumNodes, g.NumEdges)
	} else {
		var opts osmimport.Options
		if *bbox != "" {
			var minLat, minLng, maxLat, maxLng float64
			if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
				log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
			}
			opts.BBox = osmimport.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
			log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
		}

		log.Println("Opening OSM file...")
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("Failed to open input file: %v", err)
		}
		defer f.Close()

		log.Println("Parsing OSM data...")
		g, err = osmimport.Import(context.Background(), f, opts)
		if err != nil {
			log.Fatalf("Failed to import OSM data: %v", err)
		}
		log.Printf("Imported %d nodes, %d edges", g.NumNodes, g.NumEdges)
	}

	log.Println("Checking connectivity...")
	componentNodes := graph.LargestComponent(g)
	log.Printf("Largest component: %d/%d nodes (%.1f%%)",
		len(componentNodes), g.NumNodes, 100*float64(len(componentNodes))/float64(g.NumNodes))

	log.Println("Running Contraction Hierarchies...")
	g = ch.Contract(g)
	log.Printf("Contraction complete: %d nodes, %d edges (including shortcuts)", g.NumNodes, g.NumEdges)

	log.Printf("Writing binary to %s...", *output)
	if err := graph.WriteBinary(*output, g); err != nil {
		log.Fatalf("Failed to write binary: %v", err)
	}

	info, _ := os.Stat(*output)
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f MB)", elapsed.Round(time.Second), *output, float64(info.Size())/(1024*1024))
}
