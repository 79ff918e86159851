package videos

import (
	"regexp"
	"sort"
	"strings"
)

var physicsKeywords = []string{
	"motion", "velocity", "acceleration", "force", "energy", "momentum",
	"gravity", "waves", "optics", "thermodynamics", "electricity", "magnetism",
	"quantum", "mechanics", "kinematics", "dynamics", "oscillations", "sound",
	"light", "electromagnetic", "nuclear", "atomic", "molecular", "units",
	"measurements", "vectors", "scalars", "work", "power", "friction",
	"circular motion", "rotational", "angular", "torque", "fluid", "pressure",
	"temperature", "heat", "entropy", "capacitance", "resistance", "current",
}

var stopWords = toSet([]string{
	"this", "that", "with", "from", "they", "have", "will", "been", "were", "said",
	"each", "which", "their", "time", "more", "very", "what", "know", "just", "first",
	"into", "over", "think", "also", "after", "back", "other", "many", "than", "then",
	"them", "these", "some", "her", "would", "make", "like", "him", "has", "two",
	"go", "no", "way", "could", "my", "call", "who", "its", "now", "find",
	"long", "down", "day", "did", "get", "come", "made", "may", "part",
})

var wordPattern = regexp.MustCompile(`\b[a-z]{4,}\b`)

const (
	maxDynamicKeywords = 10
	minKeywordFreq     = 2
)

// ExtractKeywords returns the curated physics terms found in text followed by
// its most frequent non-stop-word terms.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)

	found := make([]string, 0)
	seen := make(map[string]struct{})
	for _, kw := range physicsKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
			seen[kw] = struct{}{}
		}
	}

	type wordCount struct {
		word  string
		count int
	}
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, word := range wordPattern.FindAllString(lower, -1) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	frequent := make([]wordCount, 0, len(order))
	for _, word := range order {
		if counts[word] >= minKeywordFreq {
			frequent = append(frequent, wordCount{word: word, count: counts[word]})
		}
	}
	sort.SliceStable(frequent, func(i, j int) bool {
		return frequent[i].count > frequent[j].count
	})
	if len(frequent) > maxDynamicKeywords {
		frequent = frequent[:maxDynamicKeywords]
	}

	for _, wc := range frequent {
		if _, ok := seen[wc.word]; ok {
			continue
		}
		found = append(found, wc.word)
		seen[wc.word] = struct{}{}
	}
	return found
}

func toSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
