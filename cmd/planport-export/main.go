package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/planport/internal/export"
	"github.com/claude/planport/internal/models"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	sourcePath := flag.String("source", "", "path to source JSON (exercise library, or training plan with -plan)")
	dest := flag.String("dest", "", "export destination: planmypeak or intervalsicu")
	plan := flag.Bool("plan", false, "treat the source as a training plan (intervalsicu only)")
	name := flag.String("name", "", "destination library/folder name (defaults to the source name)")
	conflict := flag.String("conflict", "append", "conflict action when the destination exists: append or replace")
	dryRun := flag.Bool("dry-run", false, "transform and validate but don't send to the destination")

	serverURL := flag.String("server", os.Getenv("PLANPORT_PMP_URL"), "PlanMyPeak server URL")
	apiKey := flag.String("api-key", os.Getenv("PLANPORT_PMP_API_KEY"), "PlanMyPeak API key")
	icuBase := flag.String("icu-url", "", "Intervals.icu base URL (default https://intervals.icu)")
	athleteID := flag.String("athlete", os.Getenv("PLANPORT_ICU_ATHLETE_ID"), "Intervals.icu athlete id (e.g. i12345)")
	icuKey := flag.String("icu-key", os.Getenv("PLANPORT_ICU_API_KEY"), "Intervals.icu API key")

	stateDir := flag.String("state-dir", "", "export state directory (default ~/.planport)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("planport-export", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *sourcePath == "" || *dest == "" {
		fmt.Fprintf(os.Stderr, "Usage: planport-export -source <file.json> -dest <planmypeak|intervalsicu> [-plan] [-name N] [-conflict append|replace] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	action := export.ConflictAction(*conflict)
	if action != export.ConflictAppend && action != export.ConflictReplace {
		fmt.Fprintf(os.Stderr, "Error: -conflict must be append or replace\n")
		os.Exit(1)
	}

	state, err := openState(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode: nothing will be sent to the destination")
	}

	destination, err := buildDestination(destOptions{
		dest:      *dest,
		plan:      *plan,
		source:    *sourcePath,
		name:      *name,
		conflict:  action,
		dryRun:    *dryRun,
		serverURL: *serverURL,
		apiKey:    *apiKey,
		icuBase:   *icuBase,
		athleteID: *athleteID,
		icuKey:    *icuKey,
		state:     state,
		log:       log,
	})
	if err != nil {
		log.Error("cannot export", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	progress := func(phase export.Phase, message string) {
		fmt.Printf("[%s] %s\n", phase, message)
	}

	result := export.Run(ctx, destination, progress, log)
	printSummary(result)

	if !result.Success {
		os.Exit(1)
	}
}

type destOptions struct {
	dest      string
	plan      bool
	source    string
	name      string
	conflict  export.ConflictAction
	dryRun    bool
	serverURL string
	apiKey    string
	icuBase   string
	athleteID string
	icuKey    string
	state     *export.StateDB
	log       *slog.Logger
}

func buildDestination(opts destOptions) (export.Destination, error) {
	fileName := filepath.Base(opts.source)

	switch {
	case opts.dest == "planmypeak" && !opts.plan:
		library, err := loadLibrary(opts.source)
		if err != nil {
			return nil, err
		}
		name := opts.name
		if name == "" {
			name = library.LibraryName
		}
		var client *export.PlanMyPeakClient
		if !opts.dryRun {
			if opts.serverURL == "" {
				return nil, fmt.Errorf("-server is required for planmypeak (or use -dry-run)")
			}
			client = export.NewPlanMyPeakClient(opts.serverURL, opts.apiKey)
		}
		return export.NewPlanMyPeakDestination(client, opts.state, library.Items,
			name, opts.conflict, fileName, opts.dryRun, opts.log), nil

	case opts.dest == "intervalsicu" && !opts.plan:
		library, err := loadLibrary(opts.source)
		if err != nil {
			return nil, err
		}
		name := opts.name
		if name == "" {
			name = library.LibraryName
		}
		client, err := intervalsClient(opts)
		if err != nil {
			return nil, err
		}
		return export.NewIntervalsDestination(client, opts.state, library.Items,
			name, opts.conflict, fileName, opts.dryRun, opts.log), nil

	case opts.dest == "intervalsicu" && opts.plan:
		trainingPlan, err := loadPlan(opts.source)
		if err != nil {
			return nil, err
		}
		client, err := intervalsClient(opts)
		if err != nil {
			return nil, err
		}
		return export.NewIntervalsPlanDestination(client, opts.state, trainingPlan,
			opts.name, opts.conflict, fileName, opts.dryRun, opts.log), nil

	case opts.plan:
		return nil, fmt.Errorf("plan export is only supported for intervalsicu")
	default:
		return nil, fmt.Errorf("unknown destination %q", opts.dest)
	}
}

func intervalsClient(opts destOptions) (*export.IntervalsClient, error) {
	if opts.dryRun {
		return nil, nil
	}
	if opts.athleteID == "" || opts.icuKey == "" {
		return nil, fmt.Errorf("-athlete and -icu-key are required for intervalsicu (or use -dry-run)")
	}
	return export.NewIntervalsClient(opts.icuBase, opts.athleteID, opts.icuKey), nil
}

func openState(dir string) (*export.StateDB, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".planport")
	}
	return export.OpenStateDB(dir)
}

func loadLibrary(path string) (*models.ExerciseLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	var library models.ExerciseLibrary
	if err := json.Unmarshal(data, &library); err != nil {
		return nil, fmt.Errorf("parsing exercise library: %w", err)
	}
	return &library, nil
}

func loadPlan(path string) (*models.TrainingPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	var plan models.TrainingPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing training plan: %w", err)
	}
	return &plan, nil
}

func printSummary(result export.Result) {
	fmt.Println()
	fmt.Println("=== Export Summary ===")
	fmt.Printf("  File:      %s\n", result.FileName)
	fmt.Printf("  Format:    %s\n", result.Format)
	fmt.Printf("  Success:   %v\n", result.Success)
	fmt.Printf("  Exported:  %d\n", result.ItemsExported)

	if len(result.Warnings) > 0 {
		fmt.Printf("\n  Warnings:\n")
		for _, w := range result.Warnings {
			fmt.Printf("    - [%s] %s\n", w.Field, w.Message)
		}
	}
	if len(result.Errors) > 0 {
		fmt.Printf("\n  Errors:\n")
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}
	fmt.Println()
}
