package pillar

import (
	"math"
	"testing"
)

func TestWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, p := range All {
		w, ok := Weights[p]
		if !ok {
			t.Fatalf("pillar %s has no weight", p)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("weights sum to %f, want 1.0", sum)
	}
}

func TestEveryCategoryMaps(t *testing.T) {
	for _, cat := range Categories() {
		p := FromRecommendation(cat, "")
		if _, ok := Weights[p]; !ok {
			t.Errorf("category %q mapped to unknown pillar %q", cat, p)
		}
	}
}

func TestFromRecommendation(t *testing.T) {
	cases := []struct {
		category string
		title    string
		want     Pillar
	}{
		{"schema_markup", "", StructuredData},
		{"FAQ", "", Answerability},
		{"", "Add FAQ blocks to your pricing page", Answerability},
		{"", "Fix missing alt text on product images", Multimedia},
		{"", "Publish an organization about page", EntityClarity},
		{"unknown_category", "no keyword here at all", DefaultPillar},
		{"", "", DefaultPillar},
	}
	for _, tc := range cases {
		if got := FromRecommendation(tc.category, tc.title); got != tc.want {
			t.Errorf("FromRecommendation(%q, %q) = %s, want %s", tc.category, tc.title, got, tc.want)
		}
	}
}

func TestIndexRoundTrip(t *testing.T) {
	scores := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	for i, p := range All {
		if Index(p) != i {
			t.Errorf("Index(%s) = %d, want %d", p, Index(p), i)
		}
		if ScoreOf(p, scores) != scores[i] {
			t.Errorf("ScoreOf(%s) = %f, want %f", p, ScoreOf(p, scores), scores[i])
		}
	}
	if ScoreOf(Multimedia, nil) != 0 {
		t.Error("ScoreOf on nil vector should be 0")
	}
}
