package impact

import (
	"strings"

	"aiVisibility/business/pillar"
	"aiVisibility/domain"
)

// Score ranks a recommendation 0-100 for a given scan state. It is a pure
// function: same inputs, same output, no clock, no randomness. It drives
// both initial batch selection and refresh-cycle replacement ordering.
func Score(rec domain.Recommendation, pillarScores []float64, industry, mode string) float64 {
	p := pillar.FromRecommendation(rec.Category, rec.Title)

	def := deficiencyScore(p, pillarScores)
	dif := difficultyScore(rec)
	com := compoundingScore(p, pillarScores)
	ind := industryScore(p, industry)

	w, ok := modeWeights[mode]
	if !ok {
		w = modeWeights[domain.ModeOptimization]
	}

	total := w.Deficiency*def + w.Difficulty*dif + w.Compounding*com + w.Industry*ind
	return clamp(total, 0, 100)
}

// deficiencyScore rewards fixing the weakest, most heavily weighted
// pillar: raw gap on the 0-10 scale, amplified by the pillar's global
// weight relative to a uniform 1/8 share.
func deficiencyScore(p pillar.Pillar, scores []float64) float64 {
	s := clamp(pillar.ScoreOf(p, scores), 0, 10)
	raw := (10 - s) / 10 * 100
	amplified := raw * pillar.Weights[p] * float64(len(pillar.All))
	return clamp(amplified, 0, 100)
}

var quickWinKeywords = []string{
	"add", "alt text", "meta", "title tag", "faq", "date", "link",
}

var complexKeywords = []string{
	"restructure", "migrate", "rewrite", "redesign", "architecture", "overhaul",
}

// difficultyScore is the inverse-effort multiplier. An explicit tag on
// the recommendation wins; otherwise keyword heuristics on the text
// decide, defaulting to moderate.
func difficultyScore(rec domain.Recommendation) float64 {
	switch rec.Difficulty {
	case DifficultyQuickWin:
		return difficultyQuickWinScore
	case DifficultyModerate:
		return difficultyModerateScore
	case DifficultyComplex:
		return difficultyComplexScore
	}

	text := strings.ToLower(rec.Title + " " + rec.PriorityText)
	for _, kw := range complexKeywords {
		if strings.Contains(text, kw) {
			return difficultyComplexScore
		}
	}
	for _, kw := range quickWinKeywords {
		if strings.Contains(text, kw) {
			return difficultyQuickWinScore
		}
	}
	return difficultyModerateScore
}

// compoundingScore rewards cross-pillar leverage: average deficiency over
// the set of pillars the fix plausibly moves, boosted by set size.
func compoundingScore(p pillar.Pillar, scores []float64) float64 {
	set, ok := compoundingSets[p]
	if !ok || len(set) == 0 {
		set = []pillar.Pillar{p}
	}

	sum := 0.0
	for _, member := range set {
		s := clamp(pillar.ScoreOf(member, scores), 0, 10)
		sum += (10 - s) / 10 * 100
	}
	avg := sum / float64(len(set))
	boosted := avg * (1 + compoundingBonusPerPillar*float64(len(set)))
	return clamp(boosted, 0, 100)
}

func industryScore(p pillar.Pillar, industry string) float64 {
	prio, ok := industryPriority[strings.ToLower(industry)]
	if !ok {
		return industryDefaultScore
	}
	for _, hp := range prio.High {
		if hp == p {
			return industryHighScore
		}
	}
	for _, mp := range prio.Medium {
		if mp == p {
			return industryMediumScore
		}
	}
	return industryDefaultScore
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
