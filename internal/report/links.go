package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mirkit/stemscan/internal/harvest"
)

type linksSummary struct {
	TotalLinks int                 `json:"total_links"`
	Links      []harvest.TrackLink `json:"links"`
}

// WriteLinksJSON writes every harvested link to one combined file.
func WriteLinksJSON(dir string, links []harvest.TrackLink) (string, error) {
	if links == nil {
		links = []harvest.TrackLink{}
	}
	path := filepath.Join(dir, LinksJSONName)
	summary := linksSummary{TotalLinks: len(links), Links: links}
	if err := writeJSON(path, summary); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTrackLinks writes one `<Track>_links.txt` per track, grouping
// links in page order. Links without a track name are dropped since
// there is nothing to file them under. Returns the number of files
// written.
func WriteTrackLinks(dir string, links []harvest.TrackLink) (int, error) {
	type group struct {
		genre string
		links []harvest.TrackLink
	}

	groups := make(map[string]*group)
	var order []string
	for _, l := range links {
		name := safeName(l.Track)
		if name == "" {
			continue
		}
		g, ok := groups[name]
		if !ok {
			g = &group{genre: l.Genre}
			groups[name] = g
			order = append(order, name)
		}
		g.links = append(g.links, l)
	}

	for _, name := range order {
		g := groups[name]

		var sb strings.Builder
		fmt.Fprintf(&sb, "Track: %s\n", name)
		fmt.Fprintf(&sb, "Genre: %s\n", g.genre)
		sb.WriteString("\nDownload Links:\n")
		for _, l := range g.links {
			fmt.Fprintf(&sb, "%s: %s\n", l.Kind, l.URL)
		}

		path := filepath.Join(dir, name+LinksSuffix)
		if err := writeFileAtomic(path, []byte(sb.String())); err != nil {
			return 0, err
		}
	}
	return len(order), nil
}
