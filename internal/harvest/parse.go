package harvest

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ParseListing extracts download links from the listing HTML. Each
// anchor whose text carries a kind marker contributes one TrackLink:
// the track name comes from the nearest preceding bold run and the
// genre from the nearest preceding heading. Relative hrefs resolve
// against baseURL.
func ParseListing(r io.Reader, baseURL string) ([]TrackLink, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url %q: %v", ErrParse, baseURL, err)
	}

	w := &listingWalker{base: base}
	w.walk(doc)

	if len(w.links) == 0 {
		return nil, fmt.Errorf("%w: no download links found", ErrParse)
	}
	return w.links, nil
}

// listingWalker scans the document in order, carrying the genre and
// track context that the page establishes before each link.
type listingWalker struct {
	base  *url.URL
	genre string
	track string
	links []TrackLink
}

func (w *listingWalker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3", "h4":
			if text := strings.TrimSpace(nodeText(n)); text != "" {
				w.genre = text
			}
		case "strong", "b":
			if text := strings.TrimSpace(nodeText(n)); text != "" {
				w.track = text
			}
		case "a":
			w.visitAnchor(n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *listingWalker) visitAnchor(n *html.Node) {
	text := strings.TrimSpace(nodeText(n))
	var kind string
	switch {
	case strings.Contains(text, KindFullMultitrack):
		kind = KindFullMultitrack
	case strings.Contains(text, KindEditedExcerpt):
		kind = KindEditedExcerpt
	default:
		return
	}

	href := attrVal(n, "href")
	if href == "" {
		return
	}
	resolved := href
	if ref, err := url.Parse(href); err == nil {
		resolved = w.base.ResolveReference(ref).String()
	}

	w.links = append(w.links, TrackLink{
		Track: w.track,
		Genre: w.genre,
		Kind:  kind,
		URL:   resolved,
	})
}

// nodeText concatenates every text node under n.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
