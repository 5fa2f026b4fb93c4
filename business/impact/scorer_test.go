package impact

import (
	"testing"

	"aiVisibility/domain"
)

func uniformScores(v float64) []float64 {
	out := make([]float64, domain.NumPillars)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestScoreDeterministic(t *testing.T) {
	rec := domain.Recommendation{
		Category: "schema_markup",
		Title:    "Add Product schema to category pages",
	}
	scores := []float64{2, 5, 4, 6, 7, 8, 3, 5}

	first := Score(rec, scores, "ecommerce", domain.ModeOptimization)
	for i := 0; i < 10; i++ {
		if got := Score(rec, scores, "ecommerce", domain.ModeOptimization); got != first {
			t.Fatalf("call %d returned %f, first call returned %f", i, got, first)
		}
	}
}

func TestScoreWithinBounds(t *testing.T) {
	recs := []domain.Recommendation{
		{Category: "schema_markup", Title: "Add schema"},
		{Category: "content_depth", Title: "Rewrite and restructure all cornerstone content"},
		{Category: "unknown", Title: "something generic"},
	}
	grids := [][]float64{uniformScores(0), uniformScores(10), {0, 10, 0, 10, 0, 10, 0, 10}}
	for _, rec := range recs {
		for _, scores := range grids {
			for _, mode := range []string{domain.ModeOptimization, domain.ModeEliteMaintenance, "bogus"} {
				got := Score(rec, scores, "saas", mode)
				if got < 0 || got > 100 {
					t.Errorf("Score(%q, mode=%s) = %f out of [0,100]", rec.Category, mode, got)
				}
			}
		}
	}
}

func TestWeakPillarScoresHigher(t *testing.T) {
	rec := domain.Recommendation{Category: "schema_markup", Title: "Add schema markup"}

	weak := uniformScores(6)
	weak[0] = 1 // structured_data is index 0
	strong := uniformScores(6)
	strong[0] = 9

	weakScore := Score(rec, weak, "", domain.ModeOptimization)
	strongScore := Score(rec, strong, "", domain.ModeOptimization)
	if weakScore <= strongScore {
		t.Errorf("weak pillar scored %f, strong pillar scored %f; want weak > strong", weakScore, strongScore)
	}
}

func TestDifficultyHeuristics(t *testing.T) {
	cases := []struct {
		rec  domain.Recommendation
		want float64
	}{
		{domain.Recommendation{Difficulty: DifficultyQuickWin}, difficultyQuickWinScore},
		{domain.Recommendation{Difficulty: DifficultyComplex}, difficultyComplexScore},
		{domain.Recommendation{Title: "Add alt text to hero images"}, difficultyQuickWinScore},
		{domain.Recommendation{Title: "Migrate the blog to a new information architecture"}, difficultyComplexScore},
		{domain.Recommendation{Title: "Improve topical coverage of your services section"}, difficultyModerateScore},
	}
	for _, tc := range cases {
		if got := difficultyScore(tc.rec); got != tc.want {
			t.Errorf("difficultyScore(%q/%q) = %f, want %f", tc.rec.Difficulty, tc.rec.Title, got, tc.want)
		}
	}
}

func TestModeShiftsWeighting(t *testing.T) {
	// A high-leverage rec in a strong-pillar site: compounding and industry
	// carry it in elite maintenance, deficiency barely contributes.
	rec := domain.Recommendation{Category: "entity_clarity", Title: "Expand organization entity profile"}
	scores := uniformScores(8)

	opt := Score(rec, scores, "local_services", domain.ModeOptimization)
	elite := Score(rec, scores, "local_services", domain.ModeEliteMaintenance)
	if elite <= opt {
		t.Errorf("elite maintenance score %f should exceed optimization score %f for high industry-fit rec", elite, opt)
	}
}
