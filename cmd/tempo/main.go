package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mirkit/stemscan/internal/audio"
	"github.com/mirkit/stemscan/internal/batch"
	"github.com/mirkit/stemscan/internal/corpus"
	"github.com/mirkit/stemscan/internal/report"
	"github.com/mirkit/stemscan/internal/tempo"
	"github.com/mirkit/stemscan/internal/viz"
	"github.com/mirkit/stemscan/pkg/logger"
)

var (
	inDir       string
	outDir      string
	windowSize  int
	hopSize     int
	minBPM      float64
	maxBPM      float64
	chunkSecs   float64
	candidates  int
	spectrogram bool
)

func init() {
	cfg := tempo.DefaultConfig()
	flag.StringVar(&inDir, "in", getEnvOrDefault("STEMSCAN_INPUT_DIR", ""), "Directory (or single file) of WAV/MP3 stems to analyze")
	flag.StringVar(&outDir, "out", getEnvOrDefault("STEMSCAN_OUTPUT_DIR", "results"), "Directory for JSON/CSV results")
	flag.IntVar(&windowSize, "window", cfg.WindowSize, "Analysis window size in samples")
	flag.IntVar(&hopSize, "hop", cfg.HopSize, "Hop size in samples")
	flag.Float64Var(&minBPM, "min-bpm", cfg.MinBPM, "Lower edge of the tempo search range")
	flag.Float64Var(&maxBPM, "max-bpm", cfg.MaxBPM, "Upper edge of the tempo search range")
	flag.Float64Var(&chunkSecs, "chunk", cfg.ChunkSeconds, "Chunk length in seconds for per-chunk voting")
	flag.IntVar(&candidates, "candidates", cfg.Candidates, "Number of BPM candidates to report per file")
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

	cfg := tempo.DefaultConfig()
	cfg.WindowSize = windowSize
	cfg.HopSize = hopSize
	cfg.MinBPM = minBPM
	cfg.MaxBPM = maxBPM
	cfg.ChunkSeconds = chunkSecs
	cfg.Candidates = candidates

	est, err := tempo.NewEstimator(cfg)
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

	fmt.Printf("🎵 Estimating tempo for %d file(s) from %s\n\n", len(files), inDir)

	var records []report.TempoRecord
	stats, failures := batch.Run(files, log, func(f corpus.File) error {
		clip, err := audio.DecodeFile(f.Path)
		if err != nil {
			return err
		}

		estimate, err := est.Analyze(clip)
		if err != nil {
			return err
		}

		rec := report.TempoRecord{FileID: f.ID, Estimate: *estimate}
		if _, err := report.WriteTempoJSON(outDir, rec); err != nil {
			return err
		}

		if spectrogram {
			png := filepath.Join(outDir, filepath.FromSlash(f.ID)+".png")
			if err := viz.RenderSpectrogram(clip, png, 0, 0); err != nil {
				log.Warnf("Spectrogram for %s failed: %v", f.ID, err)
			}
		}

		records = append(records, rec)
		fmt.Printf("   %s: %.1f BPM (confidence %.2f)\n", f.ID, rec.BPM, rec.Confidence)
		return nil
	})

	if _, err := report.WriteTempoSummary(outDir, records); err != nil {
		fmt.Printf("❌ Failed to write summary: %v\n", err)
		log.Errorf("Summary write failed: %v", err)
		os.Exit(1)
	}
	if _, err := report.WriteTempoCSV(outDir, records); err != nil {
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
 _____
|_   _|__ _ __ ___  _ __   ___
  | |/ _ \ '_ ` + "`" + ` _ \| '_ \ / _ \
  | |  __/ | | | | | |_) | (_) |
  |_|\___|_| |_| |_| .__/ \___/
                   |_|

        stemscan Tempo Estimator
`
	fmt.Println(banner)
}

func printUsage() {
	fmt.Println("stemscan-tempo - batch tempo estimation for stem corpora")
	fmt.Println("\nUsage:")
	fmt.Println("  stemscan-tempo [options] [input-dir]")
	fmt.Println("\nOptions:")
	fmt.Println("  -in <dir>          Input directory or file (env: STEMSCAN_INPUT_DIR)")
	fmt.Println("  -out <dir>         Output directory (env: STEMSCAN_OUTPUT_DIR, default: results)")
	fmt.Println("  -window <n>        Analysis window in samples (default: 2048)")
	fmt.Println("  -hop <n>           Hop size in samples (default: 512)")
	fmt.Println("  -min-bpm <bpm>     Lower tempo bound (default: 60)")
	fmt.Println("  -max-bpm <bpm>     Upper tempo bound (default: 200)")
	fmt.Println("  -chunk <seconds>   Voting chunk length (default: 10)")
	fmt.Println("  -candidates <n>    BPM candidates per file (default: 3)")
	fmt.Println("  -spectrogram       Render a PNG spectrogram per file")
	fmt.Println("\nExamples:")
	fmt.Println("  stemscan-tempo corpus/")
	fmt.Println("  stemscan-tempo -out analysis -min-bpm 80 -max-bpm 180 corpus/")
	fmt.Println("  stemscan-tempo -spectrogram -in corpus -out results")
}
