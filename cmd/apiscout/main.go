package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"apiscout/internal/analysis"
	"apiscout/internal/config"
	"apiscout/internal/crawler"
	"apiscout/internal/extractor"
	"apiscout/internal/generator"
	"apiscout/internal/git"
	"apiscout/internal/index"
	"apiscout/internal/inventory"
	"apiscout/internal/ir"
	"apiscout/internal/pipeline"
	"apiscout/internal/storage"
	"apiscout/internal/watcher"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "apiscout",
		Short: "Derive a backend API inventory from frontend call sites",
	}

	cfgFile string
	dbPath  string
	noColor bool

	scanWorkers    int
	scanMarker     string
	scanReportPath string

	listFormat     string
	listMethod     string
	listController string
	listFile       string
	listContains   string

	exportOut string

	updateForce bool

	docsOut string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the endpoint database (SQLite)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Parallel file workers (0 = one per CPU)")
	scanCmd.Flags().StringVar(&scanMarker, "marker", "", "URL substring that admits a call as an API endpoint")
	scanCmd.Flags().StringVar(&scanReportPath, "report", "", "Write a machine-readable run report to this file")

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "", "Output format: console or json")
	listCmd.Flags().StringVar(&listMethod, "method", "", "Only show endpoints with this HTTP method")
	listCmd.Flags().StringVar(&listController, "controller", "", "Only show endpoints of one controller")
	listCmd.Flags().StringVar(&listFile, "file", "", "Only show endpoints declared in one source file")
	listCmd.Flags().StringVar(&listContains, "contains", "", "Only show endpoints whose route contains this text")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "api-surface.json", "Snapshot output path")

	updateCmd.Flags().BoolVar(&updateForce, "force", false, "Rescan even when no changes are detected")

	docsCmd.Flags().StringVarP(&docsOut, "out", "o", "", "Documentation output directory")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
}

// loadSettings loads the configuration and applies the global flag overrides.
func loadSettings() *config.Config {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if noColor {
		cfg.Output.Colors = false
	}
	return cfg
}

func newIndexer(cfg *config.Config) *index.Indexer {
	cr := crawler.NewCrawler(cfg.Scan.Extensions, cfg.Scan.ExcludedDirs)
	ext := extractor.NewExtractorWithMarker(cfg.Scan.Marker)
	return index.NewIndexer(cr, ext, cfg.Scan.Workers)
}

func newSync(cfg *config.Config, root string) *pipeline.Sync {
	s := pipeline.NewSync(cfg.Storage.DBPath, root)
	s.Workers = cfg.Scan.Workers
	s.Marker = cfg.Scan.Marker
	s.Extensions = cfg.Scan.Extensions
	s.ExcludedDirs = cfg.Scan.ExcludedDirs
	return s
}

func openStore(cfg *config.Config) *storage.SQLiteStore {
	store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	return store
}

// storedSnapshot loads the persisted surface or exits with a hint to scan.
func storedSnapshot(ctx context.Context, store *storage.SQLiteStore) *ir.Snapshot {
	snap, err := store.LoadSnapshot(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		log.Fatalf("No endpoint surface stored yet. Run 'apiscout scan' first.")
	}
	if err != nil {
		log.Fatalf("Failed to load endpoint surface: %v", err)
	}
	return snap
}

func resolveRoot(cfg *config.Config, args []string) string {
	root := cfg.Project.Root
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		log.Fatalf("Failed to resolve path %s: %v", root, err)
	}
	return abs
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a frontend source tree and store its endpoint surface",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadSettings()
		if scanMarker != "" {
			cfg.Scan.Marker = scanMarker
		}
		if scanWorkers > 0 {
			cfg.Scan.Workers = scanWorkers
		}
		root := resolveRoot(cfg, args)
		ctx := context.Background()

		fmt.Printf("📂 Scanning %s\n", root)
		runReport := generator.NewScanReport(root)
		start := time.Now()

		stage := runReport.BeginStage("scan")
		result, err := newIndexer(cfg).Scan(ctx, root)
		if err != nil {
			runReport.EndStage(stage, "error", nil, err)
			log.Fatalf("Scan failed: %v", err)
		}
		runReport.EndStage(stage, "ok", map[string]float64{
			"files_scanned": float64(result.FilesScanned),
			"endpoints":     float64(result.Inventory.Len()),
		}, nil)

		for _, f := range result.Failures {
			fmt.Printf("⚠️  Skipped %s: %s\n", f.Path, f.Reason)
			runReport.AddSignal("parse_failure", "scan", "warning", fmt.Sprintf("%s: %s", f.Path, f.Reason), 0)
		}

		snap := result.Snapshot(root, git.Revision(root))
		fmt.Printf("✅ Found %d endpoints in %d files (%v).\n",
			result.Inventory.Len(), result.FilesScanned, time.Since(start).Round(time.Millisecond))

		store := openStore(cfg)
		defer store.Close()

		stage = runReport.BeginStage("persist")
		err = store.SaveSnapshot(ctx, snap)
		runReport.EndStage(stage, "ok", nil, err)
		if err != nil {
			log.Fatalf("Failed to save endpoint surface: %v", err)
		}

		runReport.RecordScan(result.FilesScanned, len(result.Failures), result.Inventory.Len())
		if scanReportPath != "" {
			if err := runReport.Save(scanReportPath); err != nil {
				log.Printf("⚠️ Failed to write run report: %v", err)
			} else {
				fmt.Printf("📊 Run report written to %s\n", scanReportPath)
			}
		}

		fmt.Printf("🎉 Scan complete! Database: %s\n", cfg.Storage.DBPath)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the stored endpoint surface",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadSettings()
		if listFormat != "" {
			cfg.Output.Format = listFormat
		}
		ctx := context.Background()

		store := openStore(cfg)
		defer store.Close()

		snap := storedSnapshot(ctx, store)

		var err error
		switch {
		case listController != "":
			snap.Endpoints, err = store.FindByController(ctx, listController)
		case listFile != "":
			snap.Endpoints, err = store.FindBySourceFile(ctx, listFile)
		}
		if err != nil {
			log.Fatalf("Failed to query endpoints: %v", err)
		}

		if listMethod != "" || listContains != "" {
			inv := inventory.NewInventory()
			inv.AddAll(snap.Endpoints)
			snap.Endpoints = inv.Filter(inventory.Query{
				Method:        listMethod,
				RouteContains: listContains,
			})
		}

		gen := generator.NewReportGenerator(cfg.Output.Format, cfg.Output.Colors)
		fmt.Print(gen.Generate(snap, nil))
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored endpoint surface as a JSON snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadSettings()
		ctx := context.Background()

		store := openStore(cfg)
		defer store.Close()

		snap := storedSnapshot(ctx, store)
		if err := index.SaveSnapshot(snap, exportOut); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		fmt.Printf("💾 Exported %d endpoints to %s\n", len(snap.Endpoints), exportOut)
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <before.json> [after.json]",
	Short: "Compare two endpoint snapshots and report surface drift",
	Long: "Compare two exported snapshots, or one snapshot against the stored surface " +
		"when after.json is omitted. Exits non-zero when the drift is breaking.",
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadSettings()
		ctx := context.Background()

		before, err := index.LoadSnapshot(args[0])
		if err != nil {
			log.Fatalf("Failed to load snapshot: %v", err)
		}

		var after *ir.Snapshot
		if len(args) > 1 {
			after, err = index.LoadSnapshot(args[1])
			if err != nil {
				log.Fatalf("Failed to load snapshot: %v", err)
			}
		} else {
			store := openStore(cfg)
			defer store.Close()
			after = storedSnapshot(ctx, store)
		}

		report := analysis.NewDiffer().Diff(before, after)
		if report.Empty() {
			fmt.Println("✅ No surface drift.")
			return
		}

		for _, e := range report.Added {
			fmt.Printf("  + %s %s\n", e.Method, e.Route)
		}
		for _, e := range report.Removed {
			fmt.Printf("  - %s %s\n", e.Method, e.Route)
		}
		for _, c := range report.Changed {
			marker := "~"
			if c.Breaking {
				marker = "!"
			}
			fmt.Printf("  %s %s %s (%s)\n", marker, c.After.Method, c.After.Route, strings.Join(c.Fields, ", "))
		}
		fmt.Printf("🔍 %d added, %d removed, %d changed (%d breaking).\n",
			len(report.Added), len(report.Removed), len(report.Changed), report.BreakingCount())

		if report.BreakingCount() > 0 {
			os.Exit(1)
		}
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Refresh the stored surface, skipping work when git reports no changes",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadSettings()
		root := resolveRoot(cfg, args)

		if err := newSync(cfg, root).Run(context.Background(), updateForce); err != nil {
			log.Fatalf("Update failed: %v", err)
		}
	},
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate markdown documentation from the stored endpoint surface",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadSettings()
		outDir := cfg.Output.DocsDir
		if docsOut != "" {
			outDir = docsOut
		}
		ctx := context.Background()

		store := openStore(cfg)
		defer store.Close()

		snap := storedSnapshot(ctx, store)
		if err := generator.NewMarkdownGenerator().GenerateDocs(snap, outDir); err != nil {
			log.Fatalf("Failed to generate docs: %v", err)
		}
		fmt.Printf("📄 Documentation written to %s\n", filepath.Join(outDir, "endpoints.md"))
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a source tree and keep the endpoint surface up to date",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadSettings()
		root := resolveRoot(cfg, args)
		ctx := context.Background()
		syncer := newSync(cfg, root)

		// Seed the surface before waiting for changes.
		if err := syncer.Run(ctx, true); err != nil {
			log.Fatalf("Initial scan failed: %v", err)
		}

		cr := crawler.NewCrawler(cfg.Scan.Extensions, cfg.Scan.ExcludedDirs)
		fw, err := watcher.NewFileWatcher(cr)
		if err != nil {
			log.Fatalf("Failed to create watcher: %v", err)
		}
		defer fw.Close()

		handler := func(changed []string) error {
			fmt.Printf("📝 %d files changed, rescanning...\n", len(changed))
			return syncer.Run(ctx, true)
		}
		if err := fw.Watch(root, handler); err != nil {
			log.Fatalf("Failed to watch %s: %v", root, err)
		}

		fmt.Println("👀 Watching for changes. Press Ctrl+C to stop.")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		fmt.Println("👋 Stopping watcher.")
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path := ".apiscout.yml"
		if _, err := os.Stat(path); err == nil {
			log.Fatalf("%s already exists.", path)
		}
		if err := config.GenerateConfig(path); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("✅ Wrote %s\n", path)
	},
}
