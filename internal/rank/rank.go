package rank

import (
	"math"
	"sort"

	"AIWeekly/internal/domain"
)

// Weights control the contribution of each signal to a paper's score.
type Weights struct {
	Citation float64
	GitHub   float64
	Social   float64
}

// NormalizeStars min-max scales GitHub star counts into [0, 1]. The result is
// a side table aligned with the input by position, so papers keep their raw
// counts and equal or missing IDs cannot collide. When every paper has the
// same count there is no spread to scale and every entry is 0.
func NormalizeStars(papers []domain.Paper) []float64 {
	normalized := make([]float64, len(papers))
	if len(papers) == 0 {
		return normalized
	}

	lo, hi := papers[0].Stars(), papers[0].Stars()
	for _, p := range papers[1:] {
		s := p.Stars()
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	if hi == lo {
		return normalized
	}

	span := float64(hi - lo)
	for i, p := range papers {
		normalized[i] = float64(p.Stars()-lo) / span
	}
	return normalized
}

// Score computes the weighted rank score for one paper. The social term is
// reserved for a future buzz signal and currently contributes zero.
func Score(p domain.Paper, normalizedStars float64, w Weights) float64 {
	citation := math.Log(float64(p.Citations()) + 1)
	return w.Citation*citation + w.GitHub*normalizedStars + w.Social*0
}

// TopK scores every paper, orders them best-first and keeps at most k.
// The sort is stable, so equal scores keep their harvest order. The input
// slice is not modified.
func TopK(papers []domain.Paper, k int, w Weights) []domain.Paper {
	ranked := make([]domain.Paper, len(papers))
	copy(ranked, papers)

	normalized := NormalizeStars(ranked)
	for i := range ranked {
		ranked[i].Score = Score(ranked[i], normalized[i], w)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
