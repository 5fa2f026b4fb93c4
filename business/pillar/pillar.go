package pillar

// Pillar is one of the 8 weighted scoring dimensions of a scan. The order
// of All matches the index order of the pillar score vector on a scan.
type Pillar string

const (
	StructuredData Pillar = "structured_data"
	ContentDepth   Pillar = "content_depth"
	Answerability  Pillar = "answerability"
	Authority      Pillar = "authority"
	Freshness      Pillar = "freshness"
	Crawlability   Pillar = "crawlability"
	EntityClarity  Pillar = "entity_clarity"
	Multimedia     Pillar = "multimedia"
)

var All = []Pillar{
	StructuredData,
	ContentDepth,
	Answerability,
	Authority,
	Freshness,
	Crawlability,
	EntityClarity,
	Multimedia,
}

// Weights is the fixed global weight vector. It sums to 1.0.
var Weights = map[Pillar]float64{
	StructuredData: 0.18,
	ContentDepth:   0.16,
	Answerability:  0.15,
	Authority:      0.13,
	Freshness:      0.12,
	Crawlability:   0.11,
	EntityClarity:  0.09,
	Multimedia:     0.06,
}

var indexOf = func() map[Pillar]int {
	m := make(map[Pillar]int, len(All))
	for i, p := range All {
		m[p] = i
	}
	return m
}()

// Index returns the position of p in the scan score vector.
func Index(p Pillar) int {
	return indexOf[p]
}

// ScoreOf reads p's score out of a scan pillar vector. Short or nil
// vectors read as 0.
func ScoreOf(p Pillar, scores []float64) float64 {
	i := Index(p)
	if i >= len(scores) {
		return 0
	}
	return scores[i]
}
