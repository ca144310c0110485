package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/gwlsn/vidstitch/internal/batch"
	"github.com/gwlsn/vidstitch/internal/config"
	"github.com/gwlsn/vidstitch/internal/ffmpeg"
	"github.com/gwlsn/vidstitch/internal/logger"
	"github.com/gwlsn/vidstitch/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ./vidstitch.yaml)")
	inputDir := flag.String("input", "", "Override input directory from config")
	outputFile := flag.String("output", "", "Override output file from config")
	mode := flag.String("mode", "", "Encoder mode: 1/software (libx264) or 2/hardware (h264_nvenc)")
	listRuns := flag.Bool("list-runs", false, "Print recent run history and exit")
	flag.Parse()

	cfgPath := *configPath
	if cfgPath == "" {
		if envPath := os.Getenv("VIDSTITCH_CONFIG"); envPath != "" {
			cfgPath = envPath
		} else {
			cfgPath = "vidstitch.yaml"
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Init("info")
		logger.Warn("Could not load config", "path", cfgPath, "error", err)
		cfg = config.DefaultConfig()
	}

	logger.Init(cfg.LogLevel)

	// Flags override config
	if *inputDir != "" {
		cfg.InputDir = *inputDir
	}
	if *outputFile != "" {
		cfg.OutputFile = *outputFile
	}
	if *mode != "" {
		cfg.Mode = *mode
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Open run history (optional)
	var history store.Store
	if cfg.HistoryDB != "" {
		sqlStore, err := store.NewSQLiteStore(cfg.HistoryDB)
		if err != nil {
			logger.Warn("Run history disabled", "error", err)
		} else {
			history = sqlStore
			defer sqlStore.Close()
		}
	}

	if *listRuns {
		printRunHistory(history)
		return
	}

	// Mode not decided by flag or config: ask, defaulting to software.
	// Any unrecognized answer also means software.
	if cfg.Mode == "" {
		cfg.Mode = promptMode(os.Stdin)
	}
	profile := ffmpeg.SelectProfile(cfg.Mode)

	canvas := ffmpeg.Canvas{Width: cfg.TargetWidth, Height: cfg.TargetHeight}

	fmt.Println("vidstitch - normalize and merge video clips")
	fmt.Println()
	fmt.Printf("  Input dir:    %s\n", cfg.InputDir)
	fmt.Printf("  Output:       %s\n", cfg.OutputFile)
	fmt.Printf("  Canvas:       %s\n", canvas)
	fmt.Printf("  Encoder:      %s\n", profile.Name)
	fmt.Printf("  Scratch dir:  %s\n", cfg.ScratchDir)
	fmt.Println()

	prober := ffmpeg.NewProber(cfg.FFprobePath)
	norm := ffmpeg.NewNormalizer(cfg.FFmpegPath, prober, canvas)
	concat := ffmpeg.NewConcatenator(cfg.FFmpegPath)
	runner := batch.NewRunner(cfg, profile, norm, concat, history)

	// Ctrl+C kills the in-flight ffmpeg process via the context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := runner.Run(ctx)
	switch {
	case err == nil:
		fmt.Println()
		fmt.Printf("  Done: merged %d of %d clips into %s (%s)\n",
			res.Succeeded, res.Scanned, res.OutputPath, humanize.Bytes(uint64(res.MergedSize)))
		if res.Failed > 0 {
			fmt.Printf("  Skipped %d file(s) that could not be processed; partial output left in %s\n",
				res.Failed, cfg.ScratchDir)
		}
	case errors.Is(err, batch.ErrNoInputFiles):
		fmt.Println("  No video files found, nothing to do.")
	case errors.Is(err, batch.ErrEmptyManifest):
		fmt.Printf("  None of the %d file(s) could be normalized, nothing to merge.\n", res.Scanned)
	default:
		logger.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

// promptMode reads the encoder choice from the user. Empty input and
// anything unrecognized select the software profile.
func promptMode(in *os.File) string {
	fmt.Println("Select encoder mode:")
	fmt.Println(" [1] CPU (libx264)     - default, most compatible, slower")
	fmt.Println(" [2] GPU (h264_nvenc)  - needs an NVIDIA GPU, much faster")
	fmt.Print("\nChoice (1 or 2, Enter for 1): ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		fmt.Println()
		return string(ffmpeg.ModeSoftware)
	}
	fmt.Println()
	return strings.TrimSpace(scanner.Text())
}

func printRunHistory(history store.Store) {
	if history == nil {
		fmt.Println("Run history is disabled (no history_db configured).")
		return
	}
	runs, err := history.RecentRuns(20)
	if err != nil {
		logger.Error("Could not read run history", "error", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs yet.")
		return
	}
	for _, run := range runs {
		status := "not merged"
		if run.Merged {
			status = humanize.Bytes(uint64(run.MergedSize))
		}
		fmt.Printf("%s  %s  %s  ok=%d failed=%d  %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Mode, run.OutputPath,
			run.Succeeded, run.Failed, status)
	}
}
