package match

import "sort"

// DefaultMinSuggestScore is the similarity floor below which a candidate is
// not worth suggesting.
const DefaultMinSuggestScore = 0.5

// Suggestion is a candidate name with its similarity score.
type Suggestion struct {
	Name  string
	Score float64
}

// Suggest ranks the pool of known names against a missing name and returns up
// to maxN candidates scoring at least DefaultMinSuggestScore, best first.
// Ties break alphabetically so diagnostics stay deterministic.
func Suggest(missing string, pool []string, maxN int) []string {
	var ranked []Suggestion

	for _, name := range pool {
		score := Score(missing, name)
		if score < DefaultMinSuggestScore {
			continue
		}

		ranked = append(ranked, Suggestion{Name: name, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}

		return ranked[i].Name < ranked[j].Name
	})

	if maxN > 0 && len(ranked) > maxN {
		ranked = ranked[:maxN]
	}

	names := make([]string, len(ranked))
	for i, s := range ranked {
		names[i] = s.Name
	}

	return names
}
