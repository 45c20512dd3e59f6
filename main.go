package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"apiscout/internal/config"
	"apiscout/internal/crawler"
	"apiscout/internal/extractor"
	"apiscout/internal/generator"
	"apiscout/internal/git"
	"apiscout/internal/index"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	root := "sample"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	cr := crawler.NewCrawler(cfg.Scan.Extensions, cfg.Scan.ExcludedDirs)
	ext := extractor.NewExtractorWithMarker(cfg.Scan.Marker)
	idx := index.NewIndexer(cr, ext, cfg.Scan.Workers)

	fmt.Printf("🚀 Analyzing frontend sources at %s...\n", root)
	result, err := idx.Scan(context.Background(), root)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	fmt.Printf("✅ Found %d endpoints in %d files.\n\n", result.Inventory.Len(), result.FilesScanned)

	snap := result.Snapshot(root, git.Revision(root))
	gen := generator.NewReportGenerator(cfg.Output.Format, cfg.Output.Colors)
	fmt.Print(gen.Generate(snap, result.Failures))
}
