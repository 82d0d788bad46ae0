// Package corpus discovers audio files and track index entries in a
// genre-organized directory tree.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mirkit/stemscan/internal/audio"
)

// IndexSuffix marks per-track metadata directories in the local index
// layout: `<genre>/<Track>_MIR/<Track>.txt`.
const IndexSuffix = "_MIR"

// File is one audio file discovered under a corpus root. ID is the
// slash-separated path relative to the root with the extension
// stripped, so it stays stable across platforms and output formats.
type File struct {
	ID    string
	Genre string
	Path  string
}

// Track is one entry of the local track index.
type Track struct {
	Name  string
	Genre string
	Dir   string
}

// ScanAudio walks root and returns every supported audio file in
// lexical order. The genre is the first directory element under the
// root, empty for top-level files. A root that is itself a supported
// audio file yields a single entry.
func ScanAudio(root string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	if !info.IsDir() {
		if !audio.IsSupported(root) {
			return nil, fmt.Errorf("scanning %s: not a supported audio file", root)
		}
		base := filepath.Base(root)
		return []File{{
			ID:   strings.TrimSuffix(base, filepath.Ext(base)),
			Path: root,
		}}, nil
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories.
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !audio.IsSupported(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		var genre string
		if i := strings.IndexByte(rel, '/'); i >= 0 {
			genre = rel[:i]
		}

		files = append(files, File{
			ID:    strings.TrimSuffix(rel, filepath.Ext(rel)),
			Genre: genre,
			Path:  path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return files, nil
}

// ScanIndex reads the track index layout: one `<Track>_MIR` directory
// per track under its genre directory, holding a `<Track>.txt` file.
// Directories without the text file are ignored.
func ScanIndex(root string) ([]Track, error) {
	genres, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning index %s: %w", root, err)
	}

	var tracks []Track
	for _, g := range genres {
		if !g.IsDir() || strings.HasPrefix(g.Name(), ".") {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(root, g.Name()))
		if err != nil {
			return nil, fmt.Errorf("scanning index %s: %w", root, err)
		}
		for _, e := range entries {
			if !e.IsDir() || !strings.HasSuffix(e.Name(), IndexSuffix) {
				continue
			}
			name := strings.TrimSuffix(e.Name(), IndexSuffix)
			dir := filepath.Join(root, g.Name(), e.Name())
			if _, err := os.Stat(filepath.Join(dir, name+".txt")); err != nil {
				continue
			}
			tracks = append(tracks, Track{
				Name:  name,
				Genre: g.Name(),
				Dir:   dir,
			})
		}
	}
	return tracks, nil
}

// GenreIndex flattens index entries into a track-to-genre lookup.
func GenreIndex(tracks []Track) map[string]string {
	m := make(map[string]string, len(tracks))
	for _, t := range tracks {
		m[t.Name] = t.Genre
	}
	return m
}
