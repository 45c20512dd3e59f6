package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"apiscout/internal/analysis"
	"apiscout/internal/crawler"
	"apiscout/internal/extractor"
	"apiscout/internal/git"
	"apiscout/internal/index"
	"apiscout/internal/ir"
	"apiscout/internal/storage"
)

// Sync keeps the stored endpoint surface aligned with the working tree.
type Sync struct {
	DBPath      string
	ProjectRoot string
	Workers     int
	Marker      string

	// Extensions and ExcludedDirs configure discovery. Empty slices
	// select the crawler defaults.
	Extensions   []string
	ExcludedDirs []string
}

func NewSync(dbPath, projectRoot string) *Sync {
	return &Sync{
		DBPath:      dbPath,
		ProjectRoot: projectRoot,
	}
}

type syncPlan struct {
	Revision   string
	Changed    []string
	FullRescan bool
}

func (s *Sync) Run(ctx context.Context, force bool) error {
	store, err := storage.NewSQLiteStore(s.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	previous, err := store.LoadSnapshot(ctx)
	if err != nil && !errors.Is(err, storage.ErrNoSnapshot) {
		return fmt.Errorf("failed to load stored snapshot: %w", err)
	}

	plan := s.detectChangesStage(previous, force)
	if !plan.FullRescan && len(plan.Changed) == 0 {
		fmt.Println("✅ No changes detected.")
		return nil
	}

	// Duplicate resolution is order-sensitive, so the scan always covers
	// the whole tree; only change detection is incremental.
	start := time.Now()
	result, err := s.scanStage(ctx)
	if err != nil {
		return err
	}
	snap := result.Snapshot(s.ProjectRoot, plan.Revision)
	fmt.Printf("📊 Scanned %d files in %v: %d endpoints.\n",
		result.FilesScanned, time.Since(start).Round(time.Millisecond), result.Inventory.Len())

	if previous != nil {
		s.diffStage(previous, snap)
	}

	if err := store.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	fmt.Println("✅ Endpoint surface saved.")
	return nil
}

func (s *Sync) detectChangesStage(previous *ir.Snapshot, force bool) *syncPlan {
	plan := &syncPlan{Revision: git.Revision(s.ProjectRoot)}

	switch {
	case previous == nil:
		fmt.Println("🧭 No stored snapshot. Scanning from scratch.")
		plan.FullRescan = true
	case force:
		fmt.Println("🧭 Forced rescan (--force).")
		plan.FullRescan = true
	case plan.Revision == "" || previous.Revision == "":
		// Without two revisions to compare there is nothing to skip.
		plan.FullRescan = true
	default:
		changed, err := git.ChangedFilesSince(s.ProjectRoot, previous.Revision)
		if err != nil {
			log.Printf("⚠️ Change detection failed, rescanning: %v", err)
			plan.FullRescan = true
			return plan
		}
		plan.Changed = analyzableChanges(changed)
		if len(plan.Changed) > 0 {
			fmt.Printf("📝 Detected %d changed source files.\n", len(plan.Changed))
		}
	}
	return plan
}

func (s *Sync) scanStage(ctx context.Context) (*index.Result, error) {
	ext := extractor.NewExtractorWithMarker(s.Marker)
	idx := index.NewIndexer(crawler.NewCrawler(s.Extensions, s.ExcludedDirs), ext, s.Workers)
	result, err := idx.Scan(ctx, s.ProjectRoot)
	if err != nil {
		return nil, err
	}
	for _, f := range result.Failures {
		log.Printf("⚠️ Skipped %s: %s", f.Path, f.Reason)
	}
	return result, nil
}

func (s *Sync) diffStage(previous, current *ir.Snapshot) {
	report := analysis.NewDiffer().Diff(previous, current)
	if report.Empty() {
		fmt.Println("🔍 Surface unchanged.")
		return
	}
	fmt.Printf("🔍 Surface drift: %d added, %d removed, %d changed (%d breaking).\n",
		len(report.Added), len(report.Removed), len(report.Changed), report.BreakingCount())
}

// analyzableChanges filters a change list down to files the extractor can
// parse.
func analyzableChanges(files []string) []string {
	var out []string
	for _, f := range files {
		if extractor.LanguageForFile(f) != "" {
			out = append(out, f)
		}
	}
	return out
}
