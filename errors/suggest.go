package errors

import (
	"slices"
	"strings"
)

// Suggestion is a visible name close to a misspelled one.
type Suggestion struct {
	Value    string
	Distance int
}

const maxSuggestions = 3

// tolerance is the largest edit distance accepted for a name of n letters.
func tolerance(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 5:
		return 2
	}
	return 3
}

// Similar returns up to three names that are a few edits away from target,
// closest first. Case is ignored and a swap of two adjacent letters counts as
// one edit.
func Similar(target string, names []string) []Suggestion {
	if target == "" {
		return nil
	}
	want := []rune(strings.ToLower(target))
	limit := tolerance(len(want))

	var out []Suggestion
	seen := map[string]bool{}
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		d := distance(want, []rune(strings.ToLower(name)))
		if d == 0 || d > limit {
			continue
		}
		out = append(out, Suggestion{Value: name, Distance: d})
	}
	slices.SortFunc(out, func(a, b Suggestion) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return strings.Compare(a.Value, b.Value)
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// Hint renders suggestions as "did you mean 'a' or 'b'?".
func Hint(suggestions []Suggestion) string {
	if len(suggestions) == 0 {
		return ""
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = "'" + s.Value + "'"
	}
	if len(quoted) == 1 {
		return "did you mean " + quoted[0] + "?"
	}
	last := len(quoted) - 1
	return "did you mean " + strings.Join(quoted[:last], ", ") + " or " + quoted[last] + "?"
}

// distance is the optimal string alignment distance between a and b.
func distance(a, b []rune) int {
	// three rows: two back, previous, current
	back := make([]int, len(b)+1)
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				cur[j] = min(cur[j], back[j-2]+1)
			}
		}
		back, prev, cur = prev, cur, back
	}
	return prev[len(b)]
}
