package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mirkit/stemscan/internal/activity"
	"github.com/mirkit/stemscan/internal/audio"
	"github.com/mirkit/stemscan/internal/batch"
	"github.com/mirkit/stemscan/internal/corpus"
	"github.com/mirkit/stemscan/internal/report"
	"github.com/mirkit/stemscan/internal/viz"
	"github.com/mirkit/stemscan/pkg/logger"
)

var (
	inDir       string
	outDir      string
	frameMs     float64
	hopMs       float64
	thresholdDB float64
	minSegment  float64
	spectrogram bool
)

func init() {
	cfg := activity.DefaultConfig()
	flag.StringVar(&inDir, "in", getEnvOrDefault("STEMSCAN_INPUT_DIR", ""), "Directory (or single file) of WAV/MP3 stems to analyze")
	flag.StringVar(&outDir, "out", getEnvOrDefault("STEMSCAN_OUTPUT_DIR", "results"), "Directory for JSON/CSV results")
	flag.Float64Var(&frameMs, "frame-ms", cfg.WindowSeconds*1000, "RMS frame length in milliseconds")
	flag.Float64Var(&hopMs, "hop-ms", cfg.HopSeconds*1000, "Frame hop in milliseconds")
	flag.Float64Var(&thresholdDB, "threshold-db", cfg.ThresholdDB, "Activity threshold in dB relative to peak")
	flag.Float64Var(&minSegment, "min-segment", cfg.MinSegmentSeconds, "Minimum segment length in seconds")
	flag.BoolVar(&spectrogram, "spectrogram", false, "Render a spectrogram PNG next to each result")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log := logger.GetLogger()

	printBanner()
	flag.Parse()

	if flag.NArg() > 0 {
		inDir = flag.Arg(0)
	}
	if inDir == "" {
		fmt.Println("Error: input directory required")
		printUsage()
		os.Exit(1)
	}

	cfg := activity.Config{
		WindowSeconds:     frameMs / 1000,
		HopSeconds:        hopMs / 1000,
		ThresholdDB:       thresholdDB,
		MinSegmentSeconds: minSegment,
	}

	analyzer, err := activity.NewAnalyzer(cfg)
	if err != nil {
		fmt.Printf("❌ Invalid configuration: %v\n", err)
		log.Errorf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Infof("Scanning %s", inDir)
	files, err := corpus.ScanAudio(inDir)
	if err != nil {
		fmt.Printf("❌ Failed to scan input: %v\n", err)
		log.Errorf("Scan failed: %v", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("📭 No audio files found under %s\n", inDir)
		log.Warnf("No audio files under %s", inDir)
		os.Exit(1)
	}

	fmt.Printf("🎚️  Segmenting %d file(s) from %s\n\n", len(files), inDir)

	var records []report.ActivityRecord
	stats, failures := batch.Run(files, log, func(f corpus.File) error {
		clip, err := audio.DecodeFile(f.Path)
		if err != nil {
			return err
		}

		rep, err := analyzer.Analyze(clip)
		if err != nil {
			return err
		}

		rec := report.ActivityRecord{FileID: f.ID, Report: *rep}
		if _, err := report.WriteActivityJSON(outDir, rec); err != nil {
			return err
		}

		if spectrogram {
			png := filepath.Join(outDir, filepath.FromSlash(f.ID)+".png")
			if err := viz.RenderSpectrogram(clip, png, 0, 0); err != nil {
				log.Warnf("Spectrogram for %s failed: %v", f.ID, err)
			}
		}

		records = append(records, rec)
		fmt.Printf("   %s: %.1f%% active over %d segment(s)\n", f.ID, rec.ActivePercentage(), len(rec.Segments))
		return nil
	})

	if _, err := report.WriteActivityCSV(outDir, records); err != nil {
		fmt.Printf("❌ Failed to write CSV: %v\n", err)
		log.Errorf("CSV write failed: %v", err)
		os.Exit(1)
	}

	if len(failures) > 0 {
		fmt.Printf("\n⚠️  %d file(s) failed:\n", len(failures))
		for _, f := range failures {
			fmt.Printf("   %s: %v\n", f.ID, f.Err)
		}
	}

	fmt.Printf("\n✅ Done: %d analyzed, %d failed (results in %s)\n", stats.Processed, stats.Failed, outDir)
	log.Infof("Run complete: %d/%d analyzed", stats.Processed, stats.Total)

	if stats.Processed == 0 {
		log.Error("Every file failed")
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
    _        _   _       _ _
   / \   ___| |_(_)_   _(_) |_ _   _
  / _ \ / __| __| \ \ / / | __| | | |
 / ___ \ (__| |_| |\ V /| | |_| |_| |
/_/   \_\___|\__|_| \_/ |_|\__|\__, |
                               |___/

       stemscan Activity Analyzer
`
	fmt.Println(banner)
}

func printUsage() {
	fmt.Println("stemscan-activity - active/inactive segmentation for stem corpora")
	fmt.Println("\nUsage:")
	fmt.Println("  stemscan-activity [options] [input-dir]")
	fmt.Println("\nOptions:")
	fmt.Println("  -in <dir>           Input directory or file (env: STEMSCAN_INPUT_DIR)")
	fmt.Println("  -out <dir>          Output directory (env: STEMSCAN_OUTPUT_DIR, default: results)")
	fmt.Println("  -frame-ms <ms>      RMS frame length (default: 25)")
	fmt.Println("  -hop-ms <ms>        Frame hop (default: 10)")
	fmt.Println("  -threshold-db <db>  Threshold relative to peak (default: -40)")
	fmt.Println("  -min-segment <s>    Minimum segment length (default: 0.5)")
	fmt.Println("  -spectrogram        Render a PNG spectrogram per file")
	fmt.Println("\nExamples:")
	fmt.Println("  stemscan-activity corpus/")
	fmt.Println("  stemscan-activity -threshold-db -35 -min-segment 1.0 corpus/")
}
