// Package batch runs a per-file operation across a corpus, logging
// failures without aborting the run.
package batch

import (
	"github.com/mirkit/stemscan/internal/corpus"
	"github.com/mirkit/stemscan/pkg/logger"
)

// Func processes one corpus file.
type Func func(corpus.File) error

// Stats summarizes a batch run.
type Stats struct {
	Total     int
	Processed int
	Failed    int
}

// Failure records one file the run could not process.
type Failure struct {
	ID  string
	Err error
}

// Run applies fn to every file in order. A failing file is logged and
// recorded, and the run moves on to the next one. A nil log falls back
// to the shared logger.
func Run(files []corpus.File, log *logger.Logger, fn Func) (Stats, []Failure) {
	if log == nil {
		log = logger.GetLogger()
	}

	stats := Stats{Total: len(files)}
	var failures []Failure
	for i, f := range files {
		log.Infof("Processing (%d/%d) %s", i+1, len(files), f.ID)
		if err := fn(f); err != nil {
			log.Errorf("Failed %s: %v", f.ID, err)
			stats.Failed++
			failures = append(failures, Failure{ID: f.ID, Err: err})
			continue
		}
		stats.Processed++
	}
	return stats, failures
}
