package tempo

import (
	"fmt"
	"math"
	"sort"

	"github.com/mirkit/stemscan/internal/audio"
	"github.com/mirkit/stemscan/internal/dsp"
)

// Candidate is one tempo hypothesis with its relative strength. The
// strongest candidate in an Estimate always scores 1.0.
type Candidate struct {
	BPM   float64 `json:"bpm"`
	Score float64 `json:"score"`
}

// Estimate is the tempo analysis result for one clip.
type Estimate struct {
	BPM        float64     `json:"bpm"`
	Confidence float64     `json:"confidence"`
	Candidates []Candidate `json:"candidates"`
}

// Estimator derives tempo from the periodicity of a clip's onset
// envelope. It is stateless and safe to reuse across files.
type Estimator struct {
	cfg Config
}

func NewEstimator(cfg Config) (*Estimator, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("tempo config: %w", err)
	}
	return &Estimator{cfg: cfg}, nil
}

// Analyze estimates the tempo of a clip. The clip is split into
// ChunkSeconds chunks, each chunk votes with its strongest periodicity,
// and the final BPM is the median of the chunk winners. Identical
// input and config always produce an identical Estimate.
func (e *Estimator) Analyze(clip *audio.Clip) (*Estimate, error) {
	if err := clip.CheckMinDuration(audio.MinAnalysisSeconds); err != nil {
		return nil, err
	}

	sr := clip.SampleRate
	chunkLen := int(e.cfg.ChunkSeconds * float64(sr))
	minLen := int(audio.MinAnalysisSeconds * float64(sr))

	var (
		winners []float64
		confs   []float64
		bins    []candidateBin
	)

	for start := 0; start < clip.Frames(); start += chunkLen {
		end := start + chunkLen
		if end > clip.Frames() {
			end = clip.Frames()
		}
		// A trailing sliver carries too little periodicity to vote.
		if end-start < minLen {
			break
		}

		res, ok := e.analyzeChunk(clip.Samples[start:end], sr)
		if !ok {
			continue
		}
		winners = append(winners, res.winner)
		confs = append(confs, res.confidence)
		for _, c := range res.candidates {
			bins = mergeCandidate(bins, c)
		}
	}

	if len(winners) == 0 {
		return nil, fmt.Errorf("%w: no rhythmic activity detected in %s",
			audio.ErrShortSignal, clip.Path)
	}

	return &Estimate{
		BPM:        round1(median(winners)),
		Confidence: clamp01(dsp.Mean(confs)),
		Candidates: rankBins(bins, e.cfg.Candidates),
	}, nil
}

type chunkResult struct {
	winner     float64
	confidence float64
	candidates []Candidate
}

func (e *Estimator) analyzeChunk(samples []float64, sr int) (chunkResult, bool) {
	env := dsp.OnsetStrength(samples, sr, e.cfg.WindowSize, e.cfg.HopSize)
	onsets := dsp.SuppressNoiseFloor(env.Values, e.cfg.FloorRatio, e.cfg.FloorSpan)

	hop := float64(e.cfg.HopSize)
	minLag := int(math.Ceil(60.0 * float64(sr) / (e.cfg.MaxBPM * hop)))
	if minLag < 1 {
		minLag = 1
	}
	maxLag := int(60.0 * float64(sr) / (e.cfg.MinBPM * hop))
	if maxLag >= len(onsets) {
		maxLag = len(onsets) - 1
	}
	if maxLag < minLag {
		return chunkResult{}, false
	}

	corr := dsp.Autocorrelate(onsets, minLag, maxLag)

	weighted := make([]float64, len(corr))
	for i := range corr {
		weighted[i] = corr[i] * e.perceptualWeight(e.lagToBPM(minLag+i, sr))
	}

	peakVal, peakIdx := dsp.Max(weighted)
	if peakVal <= 0 {
		// Nothing periodic in this chunk, e.g. silence or steady noise.
		return chunkResult{}, false
	}

	idxs := dsp.PickPeaks(weighted, 1.0, 4)
	if len(idxs) == 0 {
		idxs = []int{peakIdx}
	}

	type hyp struct {
		idx int
		bpm float64
		w   float64
	}
	hyps := make([]hyp, 0, len(idxs))
	for _, idx := range idxs {
		bpm := FoldBPM(e.lagToBPM(minLag+idx, sr), e.cfg.MinBPM, e.cfg.MaxBPM)
		hyps = append(hyps, hyp{idx: idx, bpm: round1(bpm), w: weighted[idx]})
	}
	sort.Slice(hyps, func(i, j int) bool {
		if hyps[i].w == hyps[j].w {
			return hyps[i].bpm < hyps[j].bpm
		}
		return hyps[i].w > hyps[j].w
	})

	// Collapse hypotheses within 2 BPM of a stronger one.
	kept := hyps[:0]
	for _, h := range hyps {
		dup := false
		for _, k := range kept {
			if math.Abs(k.bpm-h.bpm) <= 2.0 {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, h)
		}
	}
	if len(kept) > e.cfg.Candidates {
		kept = kept[:e.cfg.Candidates]
	}

	top := kept[0]
	cands := make([]Candidate, len(kept))
	for i, h := range kept {
		cands[i] = Candidate{BPM: h.bpm, Score: h.w / top.w}
	}

	// Confidence is the prominence of the winning peak over the raw
	// correlation floor, before perceptual weighting.
	conf := 0.0
	if rawPeak := corr[top.idx]; rawPeak > 0 {
		conf = clamp01((rawPeak - dsp.Mean(corr)) / rawPeak)
	}

	return chunkResult{
		winner:     top.bpm,
		confidence: conf,
		candidates: cands,
	}, true
}

// lagToBPM converts an onset-envelope lag to beats per minute.
func (e *Estimator) lagToBPM(lag, sr int) float64 {
	return 60.0 * float64(sr) / (float64(lag) * float64(e.cfg.HopSize))
}

// perceptualWeight biases candidate ranking toward the preferred tempo
// so that octave pairs, like 70 against 140, resolve to the musically
// likely one.
func (e *Estimator) perceptualWeight(bpm float64) float64 {
	d := (bpm - e.cfg.PreferredBPM) / e.cfg.PreferredWidth
	return 0.8 + 0.2*math.Exp(-0.5*d*d)
}

// FoldBPM halves or doubles a tempo until it lands inside [min, max].
// The range must span at least one octave for the result to exist.
func FoldBPM(bpm, min, max float64) float64 {
	if bpm <= 0 {
		return bpm
	}
	for bpm > max {
		bpm /= 2
	}
	for bpm < min {
		bpm *= 2
	}
	return bpm
}

type candidateBin struct {
	bpm   float64
	score float64
}

// mergeCandidate accumulates a chunk candidate into the cross-chunk
// bins, grouping hypotheses within 2 BPM of an existing bin.
func mergeCandidate(bins []candidateBin, c Candidate) []candidateBin {
	for i := range bins {
		if math.Abs(bins[i].bpm-c.BPM) <= 2.0 {
			bins[i].score += c.Score
			return bins
		}
	}
	return append(bins, candidateBin{bpm: c.BPM, score: c.Score})
}

// rankBins orders the aggregated candidates by accumulated score and
// rescales so the winner reads 1.0.
func rankBins(bins []candidateBin, limit int) []Candidate {
	if len(bins) == 0 {
		return nil
	}
	sort.Slice(bins, func(i, j int) bool {
		if bins[i].score == bins[j].score {
			return bins[i].bpm < bins[j].bpm
		}
		return bins[i].score > bins[j].score
	})
	if len(bins) > limit {
		bins = bins[:limit]
	}

	out := make([]Candidate, len(bins))
	top := bins[0].score
	for i, b := range bins {
		out[i] = Candidate{BPM: b.bpm, Score: b.score / top}
	}
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
