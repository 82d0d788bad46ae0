package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/mirkit/stemscan/internal/activity"
)

// ActivityRecord pairs a corpus file with its segmentation report.
type ActivityRecord struct {
	FileID string `json:"file_id"`
	activity.Report
}

// WriteActivityJSON writes one file's segment list under dir, as
// `<id>_activity.json`.
func WriteActivityJSON(dir string, rec ActivityRecord) (string, error) {
	path := filepath.Join(dir, filepath.FromSlash(rec.FileID)+ActivitySuffix)
	if err := writeJSON(path, rec); err != nil {
		return "", err
	}
	return path, nil
}

// WriteActivityCSV writes the tabular summary across all analyzed
// files, durations in seconds with two decimals.
func WriteActivityCSV(dir string, records []ActivityRecord) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{
		"file_name",
		"duration",
		"active_percentage",
		"total_active_duration",
		"total_silence_duration",
	})
	for _, r := range records {
		w.Write([]string{
			r.FileID,
			strconv.FormatFloat(r.Duration, 'f', 2, 64),
			strconv.FormatFloat(r.ActivePercentage(), 'f', 2, 64),
			strconv.FormatFloat(r.ActiveSeconds, 'f', 2, 64),
			strconv.FormatFloat(r.InactiveSeconds, 'f', 2, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("encoding %s: %w", ActivityCSVName, err)
	}

	path := filepath.Join(dir, ActivityCSVName)
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}
