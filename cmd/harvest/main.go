package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mirkit/stemscan/internal/corpus"
	"github.com/mirkit/stemscan/internal/harvest"
	"github.com/mirkit/stemscan/internal/report"
	"github.com/mirkit/stemscan/pkg/logger"
)

var (
	listingURL string
	corpusRoot string
	outDir     string
	timeout    time.Duration
	retries    int
)

func init() {
	flag.StringVar(&listingURL, "url", getEnvOrDefault("STEMSCAN_LISTING_URL", harvest.DefaultListingURL), "Listing page URL")
	flag.StringVar(&corpusRoot, "corpus", "", "Local track index root; only indexed tracks are kept")
	flag.StringVar(&outDir, "out", getEnvOrDefault("STEMSCAN_OUTPUT_DIR", "results"), "Directory for link files")
	flag.DurationVar(&timeout, "timeout", 15*time.Second, "Per-request timeout")
	flag.IntVar(&retries, "retries", 3, "Attempts per request")
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
		fmt.Printf("Unexpected argument: %s\n", flag.Arg(0))
		printUsage()
		os.Exit(1)
	}

	h := harvest.New(harvest.Config{
		ListingURL: listingURL,
		Timeout:    timeout,
		MaxRetries: retries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("🌐 Fetching %s\n", listingURL)
	log.Infof("Fetching listing %s", listingURL)

	links, err := h.Run(ctx)
	if err != nil {
		// Fetch and parse failures are soft: record the empty result
		// and exit cleanly so scheduled runs keep going.
		if errors.Is(err, harvest.ErrFetch) || errors.Is(err, harvest.ErrParse) {
			fmt.Printf("⚠️  Harvest failed: %v\n", err)
			log.Errorf("Harvest failed: %v", err)
			if _, werr := report.WriteLinksJSON(outDir, nil); werr != nil {
				fmt.Printf("❌ Failed to write results: %v\n", werr)
				log.Errorf("Write failed: %v", werr)
				os.Exit(1)
			}
			fmt.Println("📭 Wrote empty link list")
			os.Exit(0)
		}
		fmt.Printf("❌ Harvest failed: %v\n", err)
		log.Errorf("Harvest failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("🔗 Found %d link(s)\n", len(links))
	log.Infof("Harvested %d links", len(links))

	if corpusRoot != "" {
		tracks, err := corpus.ScanIndex(corpusRoot)
		if err != nil {
			fmt.Printf("❌ Failed to read corpus index: %v\n", err)
			log.Errorf("Corpus index scan failed: %v", err)
			os.Exit(1)
		}
		log.Infof("Corpus index holds %d tracks", len(tracks))

		links = harvest.MatchCorpus(links, corpus.GenreIndex(tracks))
		fmt.Printf("🎯 %d link(s) match the local corpus\n", len(links))
	}

	if _, err := report.WriteLinksJSON(outDir, links); err != nil {
		fmt.Printf("❌ Failed to write results: %v\n", err)
		log.Errorf("Write failed: %v", err)
		os.Exit(1)
	}

	n, err := report.WriteTrackLinks(outDir, links)
	if err != nil {
		fmt.Printf("❌ Failed to write track files: %v\n", err)
		log.Errorf("Write failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\n✅ Wrote %d track file(s) and %s to %s\n", n, report.LinksJSONName, outDir)
	log.Infof("Run complete: %d links, %d track files", len(links), n)
}

func printBanner() {
	banner := `
 _   _                           _
| | | | __ _ _ ____   _____  ___| |_
| |_| |/ _` + "`" + ` | '__\ \ / / _ \/ __| __|
|  _  | (_| | |  \ V /  __/\__ \ |_
|_| |_|\__,_|_|   \_/ \___||___/\__|

        stemscan Link Harvester
`
	fmt.Println(banner)
}

func printUsage() {
	fmt.Println("stemscan-harvest - collect multitrack download links")
	fmt.Println("\nUsage:")
	fmt.Println("  stemscan-harvest [options]")
	fmt.Println("\nOptions:")
	fmt.Println("  -url <url>       Listing page (env: STEMSCAN_LISTING_URL)")
	fmt.Println("  -corpus <dir>    Local track index; keep only indexed tracks")
	fmt.Println("  -out <dir>       Output directory (env: STEMSCAN_OUTPUT_DIR, default: results)")
	fmt.Println("  -timeout <dur>   Per-request timeout (default: 15s)")
	fmt.Println("  -retries <n>     Attempts per request (default: 3)")
	fmt.Println("\nExamples:")
	fmt.Println("  stemscan-harvest")
	fmt.Println("  stemscan-harvest -corpus ~/mir-corpus -out results")
}
