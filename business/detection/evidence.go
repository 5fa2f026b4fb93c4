package detection

import (
	"fmt"

	"aiVisibility/business/pillar"
	"aiVisibility/domain"
)

// gatherEvidence diffs the structural signals of two scans and returns
// the items relevant to the recommendation's pillar. Each distinct diff
// is one evidence string.
func gatherEvidence(p pillar.Pillar, before, after domain.StructuralSignals) []string {
	switch p {
	case pillar.StructuredData, pillar.EntityClarity:
		return schemaTypeDiff(before, after)
	case pillar.Answerability:
		return faqDiff(before, after)
	case pillar.Freshness:
		return freshnessDiff(before, after)
	case pillar.Multimedia:
		return altTextDiff(before, after)
	default:
		// Content, authority and crawlability movement has no structural
		// counterpart in the extraction signals; the pillar delta stands alone.
		return nil
	}
}

func schemaTypeDiff(before, after domain.StructuralSignals) []string {
	seen := make(map[string]bool, len(before.SchemaTypes))
	for _, t := range before.SchemaTypes {
		seen[t] = true
	}
	var out []string
	for _, t := range after.SchemaTypes {
		if !seen[t] {
			out = append(out, fmt.Sprintf("schema type added: %s", t))
		}
	}
	return out
}

func faqDiff(before, after domain.StructuralSignals) []string {
	if after.FAQBlockCount > before.FAQBlockCount {
		return []string{fmt.Sprintf("faq blocks increased from %d to %d", before.FAQBlockCount, after.FAQBlockCount)}
	}
	return nil
}

func freshnessDiff(before, after domain.StructuralSignals) []string {
	seen := make(map[string]bool, len(before.FreshnessMarkers))
	for _, m := range before.FreshnessMarkers {
		seen[m] = true
	}
	var out []string
	for _, m := range after.FreshnessMarkers {
		if !seen[m] {
			out = append(out, fmt.Sprintf("freshness marker added: %s", m))
		}
	}
	return out
}

func altTextDiff(before, after domain.StructuralSignals) []string {
	if after.AltTextCoverage > before.AltTextCoverage {
		return []string{fmt.Sprintf("alt text coverage rose from %.0f%% to %.0f%%",
			before.AltTextCoverage*100, after.AltTextCoverage*100)}
	}
	return nil
}
