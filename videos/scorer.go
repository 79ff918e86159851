package videos

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	baseScore         = 40.0
	exactTagPoints    = 15.0
	partialTagPoints  = 8.0
	titleTagPoints    = 5.0
	maxTitlePoints    = 20.0
	maxPopularity     = 15.0
	difficultyPoints  = 10.0
	relevantThreshold = 50
	maxResults        = 8
	coldStartResults  = 3
	coldStartScore    = 60
)

var (
	advancedTerms     = toSet([]string{"quantum", "electromagnetic", "thermodynamics", "nuclear"})
	intermediateTerms = toSet([]string{"motion", "force", "energy", "velocity"})
)

// Recommendation is a catalog entry scored against a set of keywords.
type Recommendation struct {
	Entry
	RelevanceScore int      `json:"relevanceScore"`
	MatchingTags   []string `json:"matchingTags"`
}

// Score ranks catalog against keywords and title. Entries scoring above 50
// are returned best first, at most eight. When none qualify the three most
// viewed entries are returned with a flat score.
func Score(keywords []string, title string, catalog []Entry) []Recommendation {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	titleWords := strings.Fields(strings.ToLower(title))
	tier := inferDifficulty(keywords)

	out := make([]Recommendation, 0, len(catalog))
	for _, entry := range catalog {
		exact, partial := 0, 0
		matching := make([]string, 0)
		titleMatches := 0

		for _, tag := range entry.Tags {
			t := strings.ToLower(tag)
			if containsExact(lowered, t) {
				exact++
			}
			if overlapsAny(lowered, t) {
				partial++
				matching = append(matching, tag)
			}
			if overlapsAny(titleWords, t) {
				titleMatches++
			}
		}
		partial -= exact

		score := baseScore
		score += float64(exact) * exactTagPoints
		score += float64(partial) * partialTagPoints
		score += math.Min(maxTitlePoints, float64(titleMatches)*titleTagPoints)
		score += math.Min(maxPopularity, ParseViews(entry.Views)/100000*2)
		if entry.Difficulty == tier {
			score += difficultyPoints
		}
		score = math.Max(0, math.Min(100, score))

		rounded := int(math.Round(score))
		if rounded <= relevantThreshold {
			continue
		}
		out = append(out, Recommendation{Entry: entry, RelevanceScore: rounded, MatchingTags: matching})
	}

	if len(out) == 0 {
		return coldStart(catalog)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

// ParseViews turns display counts such as "2.5M" or "890K" into numbers.
// Unparseable input yields 0.
func ParseViews(views string) float64 {
	var digits strings.Builder
	for _, r := range views {
		if (r >= '0' && r <= '9') || r == '.' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return 0
	}
	switch {
	case strings.Contains(views, "M"):
		return n * 1_000_000
	case strings.Contains(views, "K"):
		return n * 1_000
	default:
		return n
	}
}

func coldStart(catalog []Entry) []Recommendation {
	sorted := append([]Entry(nil), catalog...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ParseViews(sorted[i].Views) > ParseViews(sorted[j].Views)
	})
	if len(sorted) > coldStartResults {
		sorted = sorted[:coldStartResults]
	}

	out := make([]Recommendation, 0, len(sorted))
	for _, entry := range sorted {
		out = append(out, Recommendation{Entry: entry, RelevanceScore: coldStartScore, MatchingTags: []string{}})
	}
	return out
}

func inferDifficulty(keywords []string) string {
	for _, kw := range keywords {
		if _, ok := advancedTerms[kw]; ok {
			return DifficultyAdvanced
		}
	}
	for _, kw := range keywords {
		if _, ok := intermediateTerms[kw]; ok {
			return DifficultyIntermediate
		}
	}
	return DifficultyBeginner
}

func containsExact(words []string, tag string) bool {
	for _, w := range words {
		if w == tag {
			return true
		}
	}
	return false
}

// overlapsAny reports substring containment in either direction.
func overlapsAny(words []string, tag string) bool {
	for _, w := range words {
		if w == "" {
			continue
		}
		if strings.Contains(tag, w) || strings.Contains(w, tag) {
			return true
		}
	}
	return false
}
