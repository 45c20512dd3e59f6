package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"apiscout/internal/crawler"
	"apiscout/internal/extractor"
	"apiscout/internal/inventory"
	"apiscout/internal/ir"
)

// Indexer orchestrates endpoint discovery: crawl, parallel per-file
// extraction, and a deterministic single-threaded fold into the inventory.
type Indexer struct {
	crawler   *crawler.Crawler
	extractor *extractor.Extractor
	workers   int
}

// NewIndexer creates a new indexer. workers <= 0 selects one worker per CPU.
func NewIndexer(c *crawler.Crawler, e *extractor.Extractor, workers int) *Indexer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Indexer{
		crawler:   c,
		extractor: e,
		workers:   workers,
	}
}

// FileFailure records a file that contributed zero endpoints because it
// could not be read or parsed.
type FileFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is one completed scan.
type Result struct {
	Inventory    *inventory.Inventory
	Failures     []FileFailure
	FilesScanned int
}

// Snapshot freezes a result into its persistable form.
func (r *Result) Snapshot(root, revision string) *ir.Snapshot {
	return ir.NewSnapshot(root, revision, r.Inventory.Endpoints())
}

type fileOutcome struct {
	endpoints []ir.EndpointDescriptor
	failure   *FileFailure
}

// Scan walks the project and extracts endpoints from every analyzable file.
// Files are processed concurrently; results are folded in lexicographic file
// order so duplicate resolution does not depend on scheduling.
func (i *Indexer) Scan(ctx context.Context, root string) (*Result, error) {
	files, err := i.crawler.Collect(root)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	outcomes := make([]fileOutcome, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for idx, path := range files {
		idx, path := idx, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			endpoints, err := i.extractor.ExtractFromFile(path)
			if err != nil {
				// A file that cannot be read or parsed contributes zero
				// endpoints; sibling files proceed.
				reason := err.Error()
				var perr *extractor.ParseError
				if errors.As(err, &perr) {
					reason = perr.Err.Error()
				}
				outcomes[idx] = fileOutcome{failure: &FileFailure{Path: path, Reason: reason}}
				return nil
			}
			outcomes[idx] = fileOutcome{endpoints: endpoints}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inv := inventory.NewInventory()
	var failures []FileFailure
	for _, o := range outcomes {
		if o.failure != nil {
			failures = append(failures, *o.failure)
			continue
		}
		inv.AddAll(o.endpoints)
	}

	return &Result{
		Inventory:    inv,
		Failures:     failures,
		FilesScanned: len(files),
	}, nil
}

// SaveSnapshot persists a snapshot to a JSON file.
func SaveSnapshot(snap *ir.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot loads a snapshot from a JSON file, validates the document
// against the snapshot schema and verifies its schema version.
func LoadSnapshot(path string) (*ir.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	if err := validateSnapshotDocument(raw); err != nil {
		return nil, err
	}

	snap := &ir.Snapshot{}
	if err := json.Unmarshal(raw, snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.SchemaVersion != ir.SchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot version %q (want %q)", snap.SchemaVersion, ir.SchemaVersion)
	}
	return snap, nil
}
