package impact

import (
	"aiVisibility/business/pillar"
	"aiVisibility/domain"
)

// Difficulty tiers. Higher means easier: quick wins score the full
// inverse-effort multiplier.
const (
	DifficultyQuickWin = "quick_win"
	DifficultyModerate = "moderate"
	DifficultyComplex  = "complex"

	difficultyQuickWinScore = 100.0
	difficultyModerateScore = 70.0
	difficultyComplexScore  = 40.0
)

// Compounding bonus per extra pillar a recommendation type touches.
const compoundingBonusPerPillar = 0.2

// Industry relevance tiers.
const (
	industryHighScore    = 100.0
	industryMediumScore  = 75.0
	industryDefaultScore = 50.0
)

// subWeights combines the four sub-scores. Foundational deficiency
// dominates in optimization mode; leverage and industry fit dominate in
// elite maintenance.
type subWeights struct {
	Deficiency  float64
	Difficulty  float64
	Compounding float64
	Industry    float64
}

var modeWeights = map[string]subWeights{
	domain.ModeOptimization: {
		Deficiency:  0.40,
		Difficulty:  0.30,
		Compounding: 0.20,
		Industry:    0.10,
	},
	domain.ModeEliteMaintenance: {
		Deficiency:  0.25,
		Difficulty:  0.20,
		Compounding: 0.30,
		Industry:    0.25,
	},
}

// compoundingSets maps a primary pillar to the set of pillars a fix of
// that kind plausibly also moves. Fixed product table.
var compoundingSets = map[pillar.Pillar][]pillar.Pillar{
	pillar.StructuredData: {pillar.StructuredData, pillar.Answerability, pillar.EntityClarity},
	pillar.ContentDepth:   {pillar.ContentDepth, pillar.Answerability, pillar.Authority, pillar.Freshness},
	pillar.Answerability:  {pillar.Answerability, pillar.StructuredData},
	pillar.Authority:      {pillar.Authority, pillar.EntityClarity},
	pillar.Freshness:      {pillar.Freshness, pillar.ContentDepth},
	pillar.Crawlability:   {pillar.Crawlability, pillar.Multimedia},
	pillar.EntityClarity:  {pillar.EntityClarity, pillar.StructuredData, pillar.Authority},
	pillar.Multimedia:     {pillar.Multimedia},
}

// industryPriority lists high and medium priority pillars per industry
// tag. Anything absent reads as default relevance.
var industryPriority = map[string]struct {
	High   []pillar.Pillar
	Medium []pillar.Pillar
}{
	"ecommerce": {
		High:   []pillar.Pillar{pillar.StructuredData, pillar.Multimedia},
		Medium: []pillar.Pillar{pillar.Answerability, pillar.Freshness},
	},
	"saas": {
		High:   []pillar.Pillar{pillar.ContentDepth, pillar.Answerability},
		Medium: []pillar.Pillar{pillar.Authority, pillar.StructuredData},
	},
	"healthcare": {
		High:   []pillar.Pillar{pillar.Authority, pillar.EntityClarity},
		Medium: []pillar.Pillar{pillar.ContentDepth, pillar.Freshness},
	},
	"finance": {
		High:   []pillar.Pillar{pillar.Authority, pillar.Freshness},
		Medium: []pillar.Pillar{pillar.EntityClarity, pillar.StructuredData},
	},
	"media": {
		High:   []pillar.Pillar{pillar.Freshness, pillar.ContentDepth},
		Medium: []pillar.Pillar{pillar.Multimedia, pillar.Crawlability},
	},
	"local_services": {
		High:   []pillar.Pillar{pillar.EntityClarity, pillar.Answerability},
		Medium: []pillar.Pillar{pillar.StructuredData},
	},
}
