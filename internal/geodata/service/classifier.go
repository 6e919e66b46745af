package service

import (
	"strings"

	"pandoorac_backend/internal/geodata/transport"
)

// Property categories.
const (
	CategoryResidential = "residential"
	CategoryOffice      = "office"
	CategoryRetail      = "retail"
	CategoryIndustrial  = "industrial"
	CategoryHospitality = "hospitality"
	CategoryEducation   = "education"
	CategoryHealthcare  = "healthcare"
	CategoryMixedUse    = "mixed_use"
	CategoryUnknown     = "unknown"
)

// usageGroups maps usage keywords to a category. Both the Dutch BAG
// gebruiksdoelen and their English equivalents are recognized.
var usageGroups = []struct {
	category string
	keywords []string
}{
	{CategoryResidential, []string{"woonfunctie", "residential", "woning"}},
	{CategoryOffice, []string{"kantoorfunctie", "office"}},
	{CategoryRetail, []string{"winkelfunctie", "retail", "shop"}},
	{CategoryIndustrial, []string{"industriefunctie", "industrial"}},
	{CategoryHospitality, []string{"logiesfunctie", "hotel", "hospitality"}},
	{CategoryEducation, []string{"onderwijsfunctie", "school", "education"}},
	{CategoryHealthcare, []string{"gezondheidszorgfunctie", "gezondheidsfunctie", "health"}},
}

const maxRelevanceScore = 10

// Classify derives a property category from the building's registered usages
// and scores how complete the collected data is. The score is additive:
// adding a source never lowers it.
func Classify(record *transport.AggregatedPropertyRecord) *transport.PropertyClassification {
	return &transport.PropertyClassification{
		Category:       categorize(record.Building),
		RelevanceScore: relevanceScore(record),
	}
}

// categorize walks the keyword groups in order and returns the first one
// that matches any registered usage. A usage that matches no group at all
// is some other registered function and classifies as mixed use; only a
// building without any usage is unknown.
func categorize(building *transport.BuildingFacts) string {
	if building == nil || len(building.Gebruiksdoelen) == 0 {
		return CategoryUnknown
	}

	usages := strings.ToLower(strings.Join(building.Gebruiksdoelen, " "))
	for _, group := range usageGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(usages, keyword) {
				return group.category
			}
		}
	}
	return CategoryMixedUse
}

func relevanceScore(record *transport.AggregatedPropertyRecord) int {
	score := 0

	if b := record.Building; b != nil {
		if b.Oppervlakte > 0 {
			score += 2
		}
		if b.Bouwjaar > 0 {
			score++
		}
		if len(b.Gebruiksdoelen) > 0 {
			score++
		}
	}

	if t := record.ThreeD; t != nil {
		if t.Hoogte > 0 || t.Dakhoogte > 0 {
			score++
		}
		if t.Gebouwvolume > 0 {
			score++
		}
	}

	if p := record.Parcel; p != nil {
		if p.KadastraleGrootte > 0 {
			score++
		}
		if p.Gebruik != "" {
			score++
		}
	}

	if t := record.Topography; t != nil {
		if t.BuildingCount > 0 {
			score++
		}
		if t.InfrastructureCount > 0 {
			score++
		}
	}

	if score > maxRelevanceScore {
		score = maxRelevanceScore
	}
	return score
}
