// Package report writes analysis results to flat files: per-file and
// combined JSON, tabular CSV summaries, and per-track link lists.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Output file names shared by the writers and the binaries.
const (
	TempoSummaryName = "all_bpm_results.json"
	TempoCSVName     = "bpm_results.csv"
	ActivityCSVName  = "audio_analysis_results.csv"
	LinksJSONName    = "download_links.json"

	TempoSuffix    = "_bpm.json"
	ActivitySuffix = "_activity.json"
	LinksSuffix    = "_links.txt"
)

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// writeFileAtomic lands content under its final name only once fully
// written, so a crashed run never leaves a truncated result behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving %s into place: %w", filepath.Base(path), err)
	}
	return nil
}

// safeName keeps names coming from page markup filesystem-safe.
func safeName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, string(filepath.Separator), "-")
	return strings.TrimSpace(name)
}
