package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/mirkit/stemscan/internal/tempo"
)

// TempoRecord pairs a corpus file with its tempo estimate. Embedding
// keeps the JSON shape flat: file_id, bpm, confidence, candidates.
type TempoRecord struct {
	FileID string `json:"file_id"`
	tempo.Estimate
}

type tempoSummary struct {
	RunID      string        `json:"run_id"`
	TotalFiles int           `json:"total_files"`
	Results    []TempoRecord `json:"results"`
}

// WriteTempoJSON writes one file's estimate next to its corpus path
// under dir, as `<id>_bpm.json`.
func WriteTempoJSON(dir string, rec TempoRecord) (string, error) {
	path := filepath.Join(dir, filepath.FromSlash(rec.FileID)+TempoSuffix)
	if err := writeJSON(path, rec); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTempoSummary writes the combined results file with a fresh run
// id.
func WriteTempoSummary(dir string, records []TempoRecord) (string, error) {
	if records == nil {
		records = []TempoRecord{}
	}
	path := filepath.Join(dir, TempoSummaryName)
	summary := tempoSummary{
		RunID:      uuid.New().String(),
		TotalFiles: len(records),
		Results:    records,
	}
	if err := writeJSON(path, summary); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTempoCSV writes the tabular summary, one row per analyzed file.
func WriteTempoCSV(dir string, records []TempoRecord) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"file_id", "bpm", "confidence"})
	for _, r := range records {
		w.Write([]string{
			r.FileID,
			strconv.FormatFloat(r.BPM, 'f', 1, 64),
			strconv.FormatFloat(r.Confidence, 'f', 3, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("encoding %s: %w", TempoCSVName, err)
	}

	path := filepath.Join(dir, TempoCSVName)
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}
