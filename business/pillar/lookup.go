package pillar

import "strings"

// categoryTable is the closed category -> pillar lookup. Recommendation
// categories come from the template generator, so the set is known;
// anything outside it falls through to the keyword scan and finally to
// DefaultPillar.
var categoryTable = map[string]Pillar{
	"schema_markup":      StructuredData,
	"structured_data":    StructuredData,
	"rich_results":       StructuredData,
	"content_depth":      ContentDepth,
	"content_quality":    ContentDepth,
	"topical_coverage":   ContentDepth,
	"faq":                Answerability,
	"question_answering": Answerability,
	"snippet_targeting":  Answerability,
	"authority":          Authority,
	"citations":          Authority,
	"expert_signals":     Authority,
	"freshness":          Freshness,
	"content_updates":    Freshness,
	"crawlability":       Crawlability,
	"technical_seo":      Crawlability,
	"site_performance":   Crawlability,
	"entity_clarity":     EntityClarity,
	"about_organization": EntityClarity,
	"knowledge_graph":    EntityClarity,
	"multimedia":         Multimedia,
	"image_optimization": Multimedia,
	"video":              Multimedia,
}

// keywordTable backs up the category table for free-form titles.
var keywordTable = []struct {
	keyword string
	pillar  Pillar
}{
	{"schema", StructuredData},
	{"json-ld", StructuredData},
	{"markup", StructuredData},
	{"faq", Answerability},
	{"question", Answerability},
	{"answer", Answerability},
	{"fresh", Freshness},
	{"update", Freshness},
	{"date", Freshness},
	{"author", Authority},
	{"citation", Authority},
	{"expert", Authority},
	{"crawl", Crawlability},
	{"robots", Crawlability},
	{"sitemap", Crawlability},
	{"speed", Crawlability},
	{"entity", EntityClarity},
	{"about page", EntityClarity},
	{"organization", EntityClarity},
	{"image", Multimedia},
	{"alt text", Multimedia},
	{"video", Multimedia},
	{"content", ContentDepth},
}

// DefaultPillar is the deterministic fallback for categories the tables
// do not cover.
const DefaultPillar = ContentDepth

// FromRecommendation maps a recommendation's category and title to a
// pillar. Category match wins; otherwise the first keyword hit in the
// title decides; otherwise DefaultPillar.
func FromRecommendation(category, title string) Pillar {
	if p, ok := categoryTable[strings.ToLower(strings.TrimSpace(category))]; ok {
		return p
	}
	lower := strings.ToLower(title)
	for _, kw := range keywordTable {
		if strings.Contains(lower, kw.keyword) {
			return kw.pillar
		}
	}
	return DefaultPillar
}

// Categories returns every category the closed table declares. Used by
// tests to prove the lookup is exhaustive.
func Categories() []string {
	out := make([]string, 0, len(categoryTable))
	for c := range categoryTable {
		out = append(out, c)
	}
	return out
}
