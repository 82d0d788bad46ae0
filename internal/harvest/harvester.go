// Package harvest collects multitrack download links from a public
// listing page.
package harvest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Link kinds found on the listing page. The values double as the
// anchor-text markers that identify download links.
const (
	KindFullMultitrack = "Full Multitrack"
	KindEditedExcerpt  = "Edited Excerpt"
)

// Sentinel errors. Both mark soft failures: a run that hits one logs
// it and still exits cleanly with whatever was collected.
var (
	// ErrFetch marks transport failures: connection errors, timeouts,
	// or non-success status codes after retries.
	ErrFetch = errors.New("listing fetch failed")

	// ErrParse marks pages whose structure holds no recognizable
	// download links.
	ErrParse = errors.New("listing parse failed")
)

// TrackLink is one downloadable artifact discovered on the listing.
type TrackLink struct {
	Track string `json:"track"`
	Genre string `json:"genre"`
	Kind  string `json:"kind"`
	URL   string `json:"url"`
}

const DefaultListingURL = "https://www.cambridge-mt.com/ms/mtk/"

// Config holds the harvester tunables.
type Config struct {
	ListingURL   string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	UserAgent    string
}

func DefaultConfig() Config {
	return Config{
		ListingURL:   DefaultListingURL,
		Timeout:      15 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 500 * time.Millisecond,
		UserAgent:    "stemscan/1.0",
	}
}

// Harvester fetches and parses the listing page.
type Harvester struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Harvester {
	def := DefaultConfig()
	if cfg.ListingURL == "" {
		cfg.ListingURL = def.ListingURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}
	return &Harvester{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Run fetches the listing and returns its deduplicated links in page
// order.
func (h *Harvester) Run(ctx context.Context) ([]TrackLink, error) {
	body, err := h.fetch(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	links, err := ParseListing(body, h.cfg.ListingURL)
	if err != nil {
		return nil, err
	}
	return Dedupe(links), nil
}

// Dedupe drops links whose URL was already seen, keeping page order.
func Dedupe(links []TrackLink) []TrackLink {
	seen := make(map[string]struct{}, len(links))
	out := make([]TrackLink, 0, len(links))
	for _, l := range links {
		if _, ok := seen[l.URL]; ok {
			continue
		}
		seen[l.URL] = struct{}{}
		out = append(out, l)
	}
	return out
}

// MatchCorpus keeps only links whose track exists in the local corpus
// index, keyed case-insensitively by track name. The corpus genre
// replaces the page heading, since the local layout is the caller's
// ground truth.
func MatchCorpus(links []TrackLink, genres map[string]string) []TrackLink {
	norm := make(map[string]string, len(genres))
	for track, genre := range genres {
		norm[strings.ToLower(track)] = genre
	}

	out := make([]TrackLink, 0, len(links))
	for _, l := range links {
		genre, ok := norm[strings.ToLower(l.Track)]
		if !ok {
			continue
		}
		if genre != "" {
			l.Genre = genre
		}
		out = append(out, l)
	}
	return out
}
